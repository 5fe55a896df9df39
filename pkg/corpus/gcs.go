// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package corpus

import (
	"errors"
	"regexp"
	"strings"

	"github.com/alvinbaena/pwd-advisor/pkg/gcs"
	"github.com/rs/zerolog/log"
)

var sha1Hex = regexp.MustCompile(`^[a-fA-F\d]{40}$`)

var (
	ErrInvalidHash     = errors.New("input is not a valid SHA1 Hexadecimal hash")
	ErrHashUnsupported = errors.New("corpus cannot be queried by hash")
)

// HashChecker is a corpus that can be queried with SHA1 digests instead of
// plaintext passwords.
type HashChecker interface {
	ContainsSHA1(hash string) (bool, error)
}

// GCS is a corpus backed by a Golomb Coded Set file. Membership is
// probabilistic, with the false positive rate the file was built with.
type GCS struct {
	reader *gcs.Reader
}

func OpenGCS(fileName string) (*GCS, error) {
	reader := gcs.NewReader(fileName)
	if err := reader.Initialize(); err != nil {
		return nil, err
	}
	return &GCS{reader: reader}, nil
}

// Contains fails closed: a password that cannot be looked up is reported as
// leaked.
func (g *GCS) Contains(password string) bool {
	exists, err := g.lookup(password)
	if err != nil {
		log.Error().Err(err).Msg("error querying GCS file, reporting password as leaked")
		return true
	}
	return exists
}

func (g *GCS) lookup(password string) (bool, error) {
	return g.reader.Exists(gcs.Key(password))
}

func (g *GCS) ContainsSHA1(hash string) (bool, error) {
	if !sha1Hex.MatchString(hash) {
		return false, ErrInvalidHash
	}

	key, err := gcs.KeyFromHex(strings.ToUpper(hash))
	if err != nil {
		return false, err
	}
	return g.reader.Exists(key)
}

func (g *GCS) Len() uint64 {
	return g.reader.Len()
}
