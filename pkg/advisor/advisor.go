// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package advisor ties generation, crack-time estimation, leak lookup and
// classification together behind the operations the CLI and HTTP API expose.
package advisor

import (
	"github.com/alvinbaena/pwd-advisor/pkg/charset"
	"github.com/alvinbaena/pwd-advisor/pkg/corpus"
	"github.com/alvinbaena/pwd-advisor/pkg/estimate"
	"github.com/alvinbaena/pwd-advisor/pkg/generator"
	"github.com/alvinbaena/pwd-advisor/pkg/strength"
	"github.com/nbutton23/zxcvbn-go"
)

const (
	MinLength = 8
	MaxLength = 32
	MinCount  = 1
	MaxCount  = 5
)

type Options struct {
	Charset   charset.Config
	GuessRate float64
	SafeYears float64
	// Corpus may be nil, then nothing is reported as leaked.
	Corpus strength.Corpus
	// Source may be nil, then crypto/rand is used.
	Source generator.Source
}

type Service struct {
	Charset    charset.Config
	Estimator  estimate.Estimator
	Classifier *strength.Classifier
	Corpus     strength.Corpus

	generator *generator.Generator
}

func New(opts Options) *Service {
	est := estimate.New(opts.GuessRate)
	return &Service{
		Charset:    opts.Charset,
		Estimator:  est,
		Classifier: strength.NewClassifier(opts.Charset, est, opts.SafeYears),
		Corpus:     opts.Corpus,
		generator:  generator.New(opts.Charset, opts.Source),
	}
}

type Generated struct {
	Password string
	// Encoded is the Base64 form, empty unless requested.
	Encoded  string
	Estimate estimate.CrackEstimate
	// Verdict of the plaintext, nil without a corpus.
	Verdict *strength.Verdict
}

// Entropy is the pattern-aware zxcvbn score, reported next to the brute
// force estimate.
type Entropy struct {
	Score            int
	Bits             float64
	CrackTime        float64
	CrackTimeDisplay string
}

type Checked struct {
	Leaked   bool
	Estimate estimate.CrackEstimate
	Verdict  strength.Verdict
	Entropy  Entropy
}

// Generate returns count passwords for policy. The estimate uses the size of
// the policy alphabet, the verdict always judges the plaintext.
func (s *Service) Generate(policy charset.Policy, count int, encode bool) []Generated {
	alphabet := charset.Build(policy, s.Charset)
	est := s.Estimator.Estimate(policy.Length, alphabet.Len())

	passwords := s.generator.Batch(policy, count)
	results := make([]Generated, 0, len(passwords))
	for _, pwd := range passwords {
		g := Generated{Password: pwd, Estimate: est}
		if encode {
			g.Encoded = generator.Encode(pwd)
		}
		if s.Corpus != nil {
			v := s.Classifier.Classify(pwd, s.Corpus)
			g.Verdict = &v
		}
		results = append(results, g)
	}
	return results
}

func (s *Service) Check(password string) Checked {
	v := s.Classifier.Classify(password, s.Corpus)
	z := zxcvbn.PasswordStrength(password, nil)

	return Checked{
		Leaked:   v.Leaked,
		Estimate: v.Estimate,
		Verdict:  v,
		Entropy: Entropy{
			Score:            z.Score,
			Bits:             z.Entropy,
			CrackTime:        z.CrackTime,
			CrackTimeDisplay: z.CrackTimeDisplay,
		},
	}
}

// CheckHash reports whether a SHA1 hex digest is in the corpus. Only GCS and
// Redis backed corpora support it.
func (s *Service) CheckHash(hash string) (bool, error) {
	if h, ok := s.Corpus.(corpus.HashChecker); ok {
		return h.ContainsSHA1(hash)
	}
	return false, corpus.ErrHashUnsupported
}
