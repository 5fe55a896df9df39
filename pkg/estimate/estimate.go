// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package estimate turns keyspace sizes into brute-force crack times.
//
// Durations use a fixed calendar: a year is 365.25 days and a month is 30
// days. The breakdown is approximate on purpose.
package estimate

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultGuessRate is the assumed attacker speed in guesses per second.
const DefaultGuessRate = 1e9

type Unit struct {
	Name    string
	Plural  string
	Seconds float64
}

var (
	Year   = Unit{"year", "years", 60 * 60 * 24 * 365.25}
	Month  = Unit{"month", "months", 60 * 60 * 24 * 30}
	Day    = Unit{"day", "days", 60 * 60 * 24}
	Hour   = Unit{"hour", "hours", 60 * 60}
	Minute = Unit{"minute", "minutes", 60}
	Second = Unit{"second", "seconds", 1}
)

// Units are ordered largest first.
var Units = []Unit{Year, Month, Day, Hour, Minute, Second}

// Part is one unit of a Breakdown. Magnitude is a whole number, kept as a
// float64 because year counts easily exceed the int64 range.
type Part struct {
	Unit      Unit
	Magnitude float64
}

type Breakdown []Part

// CrackEstimate is the worst-case time to exhaust a keyspace.
type CrackEstimate struct {
	Seconds   float64
	Breakdown Breakdown
}

type Estimator struct {
	GuessRate float64
}

func New(guessRate float64) Estimator {
	if guessRate <= 0 {
		guessRate = DefaultGuessRate
	}
	return Estimator{GuessRate: guessRate}
}

// Attempts is the keyspace size for a password of length characters drawn
// from alphabetSize characters. It is not clamped: a zero size gives zero
// attempts for any positive length and length zero always gives one.
func Attempts(length int, alphabetSize int) float64 {
	return math.Pow(float64(alphabetSize), float64(length))
}

func (e Estimator) Seconds(attempts float64) float64 {
	return attempts / e.GuessRate
}

func (e Estimator) Estimate(length int, alphabetSize int) CrackEstimate {
	seconds := e.Seconds(Attempts(length, alphabetSize))
	return CrackEstimate{Seconds: seconds, Breakdown: Format(seconds)}
}

// Format decomposes seconds greedily into Units by floor division, omitting
// zero parts. A duration with no whole second returns a single zero-second
// part. Negative durations (from non-positive alphabet sizes) are not
// clamped: floor division gives a negative year count followed by positive
// parts, -12s is -1 year, 12 months, 5 days, 5 hours, 59 minutes, 48 seconds.
// NaN and -Inf count as zero, +Inf as an infinite year count.
func Format(seconds float64) Breakdown {
	switch {
	case math.IsInf(seconds, 1):
		return Breakdown{{Unit: Year, Magnitude: math.Inf(1)}}
	case math.IsNaN(seconds), math.IsInf(seconds, -1):
		return Breakdown{{Unit: Second, Magnitude: 0}}
	}

	var parts Breakdown
	remaining := seconds

	for _, u := range Units {
		v := math.Floor(remaining / u.Seconds)
		if v != 0 {
			remaining -= v * u.Seconds
			// float rounding on huge values can leave a tiny negative rest
			if remaining < 0 {
				remaining = 0
			}
			parts = append(parts, Part{Unit: u, Magnitude: v})
		}
	}

	if len(parts) == 0 {
		return Breakdown{{Unit: Second, Magnitude: 0}}
	}
	return parts
}

// Get returns the magnitude of unit u, 0 when the breakdown omits it.
func (b Breakdown) Get(u Unit) float64 {
	for _, p := range b {
		if p.Unit.Name == u.Name {
			return p.Magnitude
		}
	}
	return 0
}

func (b Breakdown) Years() float64 {
	return b.Get(Year)
}

func (b Breakdown) String() string {
	p := message.NewPrinter(language.English)
	parts := make([]string, 0, len(b))
	for _, part := range b {
		parts = append(parts, part.format(p))
	}
	return strings.Join(parts, ", ")
}

func (p Part) String() string {
	return p.format(message.NewPrinter(language.English))
}

func (p Part) format(printer *message.Printer) string {
	name := p.Unit.Plural
	if math.Abs(p.Magnitude) == 1 {
		name = p.Unit.Name
	}
	return FormatMagnitude(printer, p.Magnitude) + " " + name
}

// FormatMagnitude renders a whole number with thousands grouping.
func FormatMagnitude(printer *message.Printer, v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "∞"
	case math.Abs(v) < 1<<53:
		return printer.Sprintf("%d", int64(v))
	default:
		return printer.Sprintf("%.0f", v)
	}
}
