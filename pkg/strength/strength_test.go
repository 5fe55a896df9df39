// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package strength

import (
	"testing"

	"github.com/alvinbaena/pwd-advisor/pkg/charset"
	"github.com/alvinbaena/pwd-advisor/pkg/estimate"
)

type mapCorpus map[string]struct{}

func (m mapCorpus) Contains(password string) bool {
	_, ok := m[password]
	return ok
}

// classifierForYears returns a classifier whose guess rate makes "abcd"
// (26^4 attempts) take years+0.5 years to crack.
func classifierForYears(years float64) *Classifier {
	attempts := estimate.Attempts(4, 26)
	rate := attempts / ((years + 0.5) * estimate.Year.Seconds)
	return NewClassifier(charset.DefaultConfig(), estimate.New(rate), DefaultSafeYears)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		classifier  *Classifier
		password    string
		corpus      Corpus
		wantLevel   Level
		wantDisplay string
		wantLeaked  bool
	}{
		{"six years", classifierForYears(6), "abcd", mapCorpus{}, Safe, "6 years or more", false},
		{"exactly threshold", classifierForYears(5), "abcd", mapCorpus{}, Safe, "5 years or more", false},
		{"three years", classifierForYears(3), "abcd", mapCorpus{}, Medium, "under 3 years", false},
		{"one year", classifierForYears(1), "abcd", nil, Medium, "under 1 years", false},
		{"under a year", classifierForYears(0), "abcd", mapCorpus{}, Danger, "under 5 years", false},
		{"leaked beats crack time", classifierForYears(600), "abcd", mapCorpus{"abcd": {}}, Danger, "leaked", true},
		{"empty password", NewClassifier(charset.DefaultConfig(), estimate.New(0), 0), "", mapCorpus{}, Danger, "under 5 years", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := tc.classifier.Classify(tc.password, tc.corpus)
			if v.Level != tc.wantLevel {
				t.Errorf("Level: %s, want: %s", v.Level, tc.wantLevel)
			}
			if v.Display != tc.wantDisplay {
				t.Errorf("Display: %q, want: %q", v.Display, tc.wantDisplay)
			}
			if v.Leaked != tc.wantLeaked {
				t.Errorf("Leaked: %v, want: %v", v.Leaked, tc.wantLeaked)
			}
		})
	}
}

func TestClassify_LeakedPassword(t *testing.T) {
	c := NewClassifier(charset.DefaultConfig(), estimate.New(estimate.DefaultGuessRate), DefaultSafeYears)
	v := c.Classify("password123", mapCorpus{"password123": {}})
	if v.Level != Danger || !v.Leaked || v.Display != "leaked" {
		t.Errorf("Leaked password should be Danger, got %+v", v)
	}
}

func TestClassify_DefaultRate(t *testing.T) {
	c := NewClassifier(charset.DefaultConfig(), estimate.New(estimate.DefaultGuessRate), DefaultSafeYears)

	// 94^16 guesses at 1e9/s is far beyond five years
	if v := c.Classify("Aa2!Aa2!Aa2!Aa2!", nil); v.Level != Safe {
		t.Errorf("Long mixed password should be Safe, got %s (%s)", v.Level, v.Display)
	}

	// 26^6 guesses take well under a second
	if v := c.Classify("abcdef", nil); v.Level != Danger || v.Display != "under 5 years" {
		t.Errorf("Short password should be Danger, got %s (%s)", v.Level, v.Display)
	}
}

func TestClassify_CustomThreshold(t *testing.T) {
	c := classifierForYears(6)
	c.SafeYears = 10
	v := c.Classify("abcd", nil)
	if v.Level != Medium || v.Display != "under 6 years" {
		t.Errorf("Should be Medium under a 10 year threshold, got %s (%s)", v.Level, v.Display)
	}

	c = classifierForYears(0)
	c.SafeYears = 10
	if v = c.Classify("abcd", nil); v.Display != "under 10 years" {
		t.Errorf("Display should name the threshold, got %q", v.Display)
	}
}

func TestClassify_NonPositiveAlphabet(t *testing.T) {
	c := NewClassifier(charset.DefaultConfig(), estimate.New(estimate.DefaultGuessRate), DefaultSafeYears)
	// "1111" infers a size of 6, "||||||||||||||||||||||||||||||||||" a negative one
	for _, p := range []string{"1111", "||||||||||||||||||||||||||||||||||"} {
		if v := c.Classify(p, nil); v.Level != Danger {
			t.Errorf("Classify(%q) should be Danger, got %s", p, v.Level)
		}
	}
	// eleven "1" infer a size of -1, (-1)^11 attempts is a negative duration
	v := c.Classify("11111111111", nil)
	if v.Estimate.Breakdown.Years() != -1 {
		t.Errorf("Negative durations should keep a negative year count, got %v", v.Estimate.Breakdown)
	}
	if v.Level != Danger || v.Display != "under 5 years" {
		t.Errorf("Negative durations should be Danger, got %s %q", v.Level, v.Display)
	}
}

func TestLevel_String(t *testing.T) {
	cases := map[Level]string{Danger: "Danger", Medium: "Medium", Safe: "Safe", Level(9): "Unknown"}
	for l, want := range cases {
		if l.String() != want {
			t.Errorf("Level(%d).String(): %s, want: %s", int(l), l.String(), want)
		}
	}
}

func TestLevel_Text(t *testing.T) {
	for _, l := range []Level{Danger, Medium, Safe} {
		text, _ := l.MarshalText()
		var got Level
		if err := got.UnmarshalText(text); err != nil || got != l {
			t.Errorf("UnmarshalText(%s): %s, err: %v", text, got, err)
		}
	}

	var l Level
	if err := l.UnmarshalText([]byte("Strong")); err == nil {
		t.Errorf("Should fail on unknown levels")
	}
}
