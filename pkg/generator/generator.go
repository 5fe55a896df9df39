// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package generator draws random passwords from a charset.Alphabet.
package generator

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
	"strings"

	"github.com/alvinbaena/pwd-advisor/pkg/charset"
)

// Source returns uniform integers in [0, n). *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

type cryptoSource struct{}

// CryptoSource draws from crypto/rand.
var CryptoSource Source = cryptoSource{}

func (cryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken.
		panic(err)
	}
	return int(v.Int64())
}

type Generator struct {
	charset charset.Config
	source  Source
}

// New returns a Generator. A nil source defaults to CryptoSource.
func New(cfg charset.Config, source Source) *Generator {
	if source == nil {
		source = CryptoSource
	}
	return &Generator{charset: cfg, source: source}
}

// Generate draws policy.Length characters independently, with replacement,
// from the policy's alphabet.
func (g *Generator) Generate(policy charset.Policy) string {
	return Draw(charset.Build(policy, g.charset), policy.Length, g.source)
}

// Batch generates n independent passwords. Duplicates are possible.
func (g *Generator) Batch(policy charset.Policy, n int) []string {
	alphabet := charset.Build(policy, g.charset)
	passwords := make([]string, 0, n)
	for i := 0; i < n; i++ {
		passwords = append(passwords, Draw(alphabet, policy.Length, g.source))
	}
	return passwords
}

func Draw(alphabet charset.Alphabet, length int, source Source) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteRune(alphabet[source.Intn(len(alphabet))])
	}
	return sb.String()
}

// Encode returns the standard Base64 form of a password. It is a display
// transform only; strength is always evaluated on the plaintext.
func Encode(password string) string {
	return base64.StdEncoding.EncodeToString([]byte(password))
}

func Decode(encoded string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
