// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

type Options struct {
	// Encoding of plain text word lists.
	Encoding Encoding
	// CSV column holding the passwords.
	Column string
	// Answers cached in front of a GCS file. Zero disables the cache.
	CacheSize int64
}

// Open loads a corpus by file extension: .gcs files are queried in place,
// .csv files and anything else are read into memory.
func Open(fileName string, opts Options) (Checker, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".gcs":
		g, err := OpenGCS(fileName)
		if err != nil {
			return nil, err
		}
		log.Info().Msgf("opened GCS corpus %s with %d entries", fileName, g.Len())
		if opts.CacheSize <= 0 {
			return g, nil
		}
		c, err := NewCached(g, opts.CacheSize)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ".csv":
		file, err := os.Open(fileName)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		s, err := LoadCSV(file, opts.Column)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		file, err := os.Open(fileName)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		s, err := LoadText(file, opts.Encoding)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Lazy defers loading a corpus until the first query. A failed load is
// logged once and every query then reports the password as leaked.
type Lazy struct {
	load    func() (Checker, error)
	once    sync.Once
	checker Checker
	err     error
}

func NewLazy(load func() (Checker, error)) *Lazy {
	return &Lazy{load: load}
}

// LazyFile opens fileName on first use.
func LazyFile(fileName string, opts Options) *Lazy {
	return NewLazy(func() (Checker, error) {
		return Open(fileName, opts)
	})
}

// Load forces the corpus to load and returns the load error, if any.
func (l *Lazy) Load() error {
	l.once.Do(func() {
		l.checker, l.err = l.load()
		if l.err != nil {
			log.Error().Err(l.err).Msg("error loading leaked password corpus")
		}
	})
	return l.err
}

func (l *Lazy) Contains(password string) bool {
	if err := l.Load(); err != nil {
		return true
	}
	return l.checker.Contains(password)
}

func (l *Lazy) lookup(password string) (bool, error) {
	if err := l.Load(); err != nil {
		return false, err
	}
	if lk, ok := l.checker.(lookuper); ok {
		return lk.lookup(password)
	}
	return l.checker.Contains(password), nil
}

func (l *Lazy) ContainsSHA1(hash string) (bool, error) {
	if err := l.Load(); err != nil {
		return false, err
	}
	if h, ok := l.checker.(HashChecker); ok {
		return h.ContainsSHA1(hash)
	}
	return false, ErrHashUnsupported
}
