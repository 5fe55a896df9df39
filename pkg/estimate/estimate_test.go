// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package estimate

import (
	"math"
	"reflect"
	"testing"
)

func TestAttempts(t *testing.T) {
	cases := []struct {
		length int
		size   int
		want   float64
	}{
		{1, 10, 10},
		{0, 10, 1},
		{0, 0, 1},
		{0, -3, 1},
		{8, 0, 0},
		{2, 94, 8836},
		{3, -2, -8},
	}

	for _, tc := range cases {
		if got := Attempts(tc.length, tc.size); got != tc.want {
			t.Errorf("Attempts(%d, %d): %v, want: %v", tc.length, tc.size, got, tc.want)
		}
	}
}

func TestEstimator_Seconds(t *testing.T) {
	e := Estimator{GuessRate: 10}
	if got := e.Seconds(1000); got != 100 {
		t.Errorf("Seconds(1000) at 10/s: %v, want: 100", got)
	}

	if New(0).GuessRate != DefaultGuessRate {
		t.Errorf("New(0) should fall back to the default guess rate")
	}
	if New(5).GuessRate != 5 {
		t.Errorf("New(5) should keep the given guess rate")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		name    string
		seconds float64
		want    Breakdown
	}{
		{"zero", 0, Breakdown{{Second, 0}}},
		{"sub second", 0.5, Breakdown{{Second, 0}}},
		{"negative", -12, Breakdown{{Year, -1}, {Month, 12}, {Day, 5}, {Hour, 5}, {Minute, 59}, {Second, 48}}},
		{"negative whole years", -2 * Year.Seconds, Breakdown{{Year, -2}}},
		{"nan", math.NaN(), Breakdown{{Second, 0}}},
		{"negative infinite", math.Inf(-1), Breakdown{{Second, 0}}},
		{"one of each small unit", 90061, Breakdown{{Day, 1}, {Hour, 1}, {Minute, 1}, {Second, 1}}},
		{"zero units omitted", 3601, Breakdown{{Hour, 1}, {Second, 1}}},
		{"month", 60 * 60 * 24 * 31, Breakdown{{Month, 1}, {Day, 1}}},
		{"year", Year.Seconds * 6, Breakdown{{Year, 6}}},
		{"year and a half day", Year.Seconds + 43200, Breakdown{{Year, 1}, {Hour, 12}}},
		{"infinite", math.Inf(1), Breakdown{{Year, math.Inf(1)}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Format(tc.seconds)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Format(%v): %v, want: %v", tc.seconds, got, tc.want)
			}
		})
	}
}

func TestFormat_Huge(t *testing.T) {
	// 94^32 guesses at 1e9/s does not fit an int64 year count
	b := Format(Attempts(32, 94) / DefaultGuessRate)
	if b[0].Unit != Year {
		t.Fatalf("First part should be years, got %v", b[0].Unit.Name)
	}
	if b.Years() < 1e40 {
		t.Errorf("Years should be huge, got %v", b.Years())
	}
	for _, p := range b {
		if p.Magnitude <= 0 {
			t.Errorf("Parts should be positive, got %v", p)
		}
	}
}

func TestBreakdown_Years(t *testing.T) {
	if y := Format(90061).Years(); y != 0 {
		t.Errorf("Breakdown without years should report 0, got %v", y)
	}
	if y := Format(Year.Seconds * 3).Years(); y != 3 {
		t.Errorf("Years: %v, want: 3", y)
	}
}

func TestBreakdown_String(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0 seconds"},
		{90061, "1 day, 1 hour, 1 minute, 1 second"},
		{2 * Year.Seconds, "2 years"},
		{1234 * Year.Seconds, "1,234 years"},
		{math.Inf(1), "∞ years"},
		{-12, "-1 year, 12 months, 5 days, 5 hours, 59 minutes, 48 seconds"},
	}

	for _, tc := range cases {
		if got := Format(tc.seconds).String(); got != tc.want {
			t.Errorf("Format(%v).String(): %q, want: %q", tc.seconds, got, tc.want)
		}
	}
}

func TestEstimator_Estimate(t *testing.T) {
	e := Estimator{GuessRate: 1}
	est := e.Estimate(2, 10)
	if est.Seconds != 100 {
		t.Errorf("Seconds: %v, want: 100", est.Seconds)
	}
	if want := (Breakdown{{Minute, 1}, {Second, 40}}); !reflect.DeepEqual(est.Breakdown, want) {
		t.Errorf("Breakdown: %v, want: %v", est.Breakdown, want)
	}
}
