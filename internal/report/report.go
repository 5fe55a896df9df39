// Package report presents advisor results to the user.
package report

import (
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/rs/zerolog"
)

// Sink consumes results. It never feeds anything back to the advisor.
type Sink interface {
	Generated(index int, g advisor.Generated)
	Checked(c advisor.Checked)
}

// LogSink writes results as zerolog events. Plaintext passwords are only
// included for generated ones.
type LogSink struct {
	Logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{Logger: logger}
}

func (s *LogSink) Generated(index int, g advisor.Generated) {
	e := s.Logger.Info().
		Int("n", index+1).
		Str("password", g.Password).
		Str("crackTime", g.Estimate.Breakdown.String())
	if g.Encoded != "" {
		e = e.Str("base64", g.Encoded)
	}
	if g.Verdict != nil {
		e = e.Stringer("tier", g.Verdict.Level).Str("strength", g.Verdict.Display)
	}
	e.Msg("generated password")
}

func (s *LogSink) Checked(c advisor.Checked) {
	var e *zerolog.Event
	if c.Leaked {
		e = s.Logger.Warn()
	} else {
		e = s.Logger.Info()
	}

	e.Bool("leaked", c.Leaked).
		Stringer("tier", c.Verdict.Level).
		Str("strength", c.Verdict.Display).
		Str("crackTime", c.Estimate.Breakdown.String()).
		Int("score", c.Entropy.Score).
		Float64("entropy", c.Entropy.Bits).
		Msg("password checked")
}
