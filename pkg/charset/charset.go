// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package charset builds the alphabets passwords are drawn from, and sizes the
// alphabet an existing password was likely drawn from.
package charset

import (
	"strings"
	"unicode"
)

const (
	Upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lower  = "abcdefghijklmnopqrstuvwxyz"
	Digits = "0123456789"
	// Punctuation is the ASCII punctuation set, 32 characters.
	Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	// Ambiguous characters are visually confusable and can be excluded on request.
	Ambiguous = "O0I1|"
)

// Fixed class sizes used when inferring the alphabet of an existing password.
const (
	upperSize = 26
	lowerSize = 26
	digitSize = 10
)

// Config holds the character sets that are allowed to vary between deployments.
type Config struct {
	Ambiguous   string
	Punctuation string
}

func DefaultConfig() Config {
	return Config{Ambiguous: Ambiguous, Punctuation: Punctuation}
}

// Policy describes a single generation request.
type Policy struct {
	Length           int
	Upper            bool
	Lower            bool
	Digits           bool
	Specials         bool
	ExcludeAmbiguous bool
	// Exclude lists characters removed on top of the ambiguous ones.
	Exclude string
}

// Alphabet is a set of distinct characters, kept in insertion order.
type Alphabet []rune

func (a Alphabet) Len() int {
	return len(a)
}

func (a Alphabet) Contains(r rune) bool {
	for _, c := range a {
		if c == r {
			return true
		}
	}
	return false
}

func (a Alphabet) String() string {
	return string(a)
}

// Build returns the alphabet for the policy. It never returns an empty
// alphabet: when every class is disabled or removed, the digits are used.
func Build(p Policy, cfg Config) Alphabet {
	var sb strings.Builder
	if p.Upper {
		sb.WriteString(Upper)
	}
	if p.Lower {
		sb.WriteString(Lower)
	}
	if p.Digits {
		sb.WriteString(Digits)
	}
	if p.Specials {
		sb.WriteString(cfg.Punctuation)
	}

	removed := ""
	if p.ExcludeAmbiguous {
		removed = cfg.Ambiguous
	}
	removed += p.Exclude

	seen := make(map[rune]struct{}, sb.Len())
	alphabet := make(Alphabet, 0, sb.Len())
	for _, r := range sb.String() {
		if strings.ContainsRune(removed, r) {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		alphabet = append(alphabet, r)
	}

	if len(alphabet) == 0 {
		return Alphabet(Digits)
	}
	return alphabet
}

// InferSize estimates the alphabet size of password from the character
// classes present in it. Each class counts once, however many of its
// characters appear. Every occurrence of an ambiguous character then lowers
// the size by one, so the result can be zero or negative for short inputs;
// callers pass it through unchanged.
func InferSize(password string, cfg Config) int {
	var hasUpper, hasLower, hasDigit, hasPunct bool
	ambiguous := 0
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		if strings.ContainsRune(cfg.Punctuation, r) {
			hasPunct = true
		}
		if strings.ContainsRune(cfg.Ambiguous, r) {
			ambiguous++
		}
	}

	size := 0
	if hasUpper {
		size += upperSize
	}
	if hasLower {
		size += lowerSize
	}
	if hasDigit {
		size += digitSize
	}
	if hasPunct {
		size += len([]rune(cfg.Punctuation))
	}

	return size - ambiguous
}
