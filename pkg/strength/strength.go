// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package strength classifies passwords into Danger, Medium and Safe tiers
// from their estimated crack time and leak-corpus membership.
package strength

import (
	"fmt"

	"github.com/alvinbaena/pwd-advisor/pkg/charset"
	"github.com/alvinbaena/pwd-advisor/pkg/estimate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultSafeYears is the crack time, in years, from which a password is Safe.
const DefaultSafeYears = 5

// Corpus is a read-only set of leaked passwords.
type Corpus interface {
	Contains(password string) bool
}

type Level int

const (
	Danger Level = iota
	Medium
	Safe
)

func (l Level) String() string {
	switch l {
	case Danger:
		return "Danger"
	case Medium:
		return "Medium"
	case Safe:
		return "Safe"
	default:
		return "Unknown"
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Danger":
		*l = Danger
	case "Medium":
		*l = Medium
	case "Safe":
		*l = Safe
	default:
		return fmt.Errorf("unknown strength level %q", text)
	}
	return nil
}

type Verdict struct {
	Level    Level
	Display  string
	Leaked   bool
	Estimate estimate.CrackEstimate
}

type Classifier struct {
	Charset   charset.Config
	Estimator estimate.Estimator
	SafeYears float64
}

func NewClassifier(cs charset.Config, e estimate.Estimator, safeYears float64) *Classifier {
	if safeYears <= 0 {
		safeYears = DefaultSafeYears
	}
	return &Classifier{Charset: cs, Estimator: e, SafeYears: safeYears}
}

// Estimate sizes the password's alphabet and returns its crack time.
func (c *Classifier) Estimate(password string) estimate.CrackEstimate {
	size := charset.InferSize(password, c.Charset)
	return c.Estimator.Estimate(len([]rune(password)), size)
}

// Classify returns the verdict for password. A nil corpus is treated as empty.
func (c *Classifier) Classify(password string, corpus Corpus) Verdict {
	est := c.Estimate(password)
	leaked := corpus != nil && corpus.Contains(password)
	return c.verdict(est, leaked)
}

func (c *Classifier) verdict(est estimate.CrackEstimate, leaked bool) Verdict {
	p := message.NewPrinter(language.English)
	years := est.Breakdown.Years()

	v := Verdict{Leaked: leaked, Estimate: est}
	switch {
	case leaked:
		v.Level, v.Display = Danger, "leaked"
	case years >= c.SafeYears:
		v.Level, v.Display = Safe, fmt.Sprintf("%s years or more", estimate.FormatMagnitude(p, years))
	case years > 0:
		v.Level, v.Display = Medium, fmt.Sprintf("under %s years", estimate.FormatMagnitude(p, years))
	default:
		v.Level, v.Display = Danger, p.Sprintf("under %v years", c.SafeYears)
	}
	return v
}
