package api

import (
	"math"

	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/alvinbaena/pwd-advisor/pkg/estimate"
	"github.com/alvinbaena/pwd-advisor/pkg/strength"
)

type generateRequest struct {
	Length           int    `json:"length" binding:"required,min=8,max=32"`
	Count            int    `json:"count" binding:"omitempty,min=1,max=5"`
	Upper            bool   `json:"upper"`
	Lower            bool   `json:"lower"`
	Digits           bool   `json:"digits"`
	Specials         bool   `json:"specials"`
	ExcludeAmbiguous bool   `json:"excludeAmbiguous"`
	Exclude          string `json:"exclude"`
	Base64           bool   `json:"base64"`
}

type queryRequest struct {
	Password string `json:"password" binding:"required"`
}

type hashRequest struct {
	Hash string `json:"hash" binding:"required"`
}

// crackTime has a null seconds value when the estimate overflows.
type crackTime struct {
	Seconds   *float64 `json:"seconds"`
	Display   string   `json:"display"`
	Breakdown []string `json:"breakdown"`
}

type verdict struct {
	Level   strength.Level `json:"level"`
	Display string         `json:"display"`
}

type passwordStrength struct {
	Score            int      `json:"score"`
	Entropy          float64  `json:"entropy"`
	CrackTime        *float64 `json:"crackTime"`
	CrackTimeDisplay string   `json:"crackTimeDisplay"`
}

type generatedPassword struct {
	Password  string    `json:"password"`
	Base64    string    `json:"base64,omitempty"`
	CrackTime crackTime `json:"crackTime"`
	Strength  *verdict  `json:"strength,omitempty"`
}

type generateResponse struct {
	Passwords []generatedPassword `json:"passwords"`
}

type queryResponse struct {
	Leaked    bool             `json:"leaked"`
	Strength  verdict          `json:"strength"`
	CrackTime crackTime        `json:"crackTime"`
	Entropy   passwordStrength `json:"entropy"`
}

type hashResponse struct {
	Leaked bool `json:"leaked"`
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func toCrackTime(e estimate.CrackEstimate) crackTime {
	parts := make([]string, 0, len(e.Breakdown))
	for _, p := range e.Breakdown {
		parts = append(parts, p.String())
	}
	return crackTime{Seconds: finite(e.Seconds), Display: e.Breakdown.String(), Breakdown: parts}
}

func toGenerated(g advisor.Generated) generatedPassword {
	res := generatedPassword{Password: g.Password, Base64: g.Encoded, CrackTime: toCrackTime(g.Estimate)}
	if g.Verdict != nil {
		res.Strength = &verdict{Level: g.Verdict.Level, Display: g.Verdict.Display}
	}
	return res
}

func toQueryResponse(c advisor.Checked) queryResponse {
	return queryResponse{
		Leaked:    c.Leaked,
		Strength:  verdict{Level: c.Verdict.Level, Display: c.Verdict.Display},
		CrackTime: toCrackTime(c.Estimate),
		Entropy: passwordStrength{
			Score:            c.Entropy.Score,
			Entropy:          c.Entropy.Bits,
			CrackTime:        finite(c.Entropy.CrackTime),
			CrackTimeDisplay: c.Entropy.CrackTimeDisplay,
		},
	}
}
