// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package corpus provides leaked-password sets with constant time membership
// checks: in-memory hash sets, GCS files, Redis sets, and the caching and
// lazy-loading wrappers around them.
package corpus

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Checker is anything that answers leaked-password membership.
type Checker interface {
	Contains(password string) bool
}

// Encoding of a plain text word list.
type Encoding int

const (
	UTF8 Encoding = iota
	// Latin1 is what the rockyou.txt dump uses.
	Latin1
)

// NewTextReader decodes r to UTF-8.
func NewTextReader(r io.Reader, enc Encoding) io.Reader {
	if enc == Latin1 {
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	return r
}

// Set is an immutable in-memory corpus. It is safe for concurrent reads.
type Set struct {
	words map[string]struct{}
}

func NewSet(words ...string) *Set {
	s := &Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.words[w] = struct{}{}
	}
	return s
}

func (s *Set) Contains(password string) bool {
	_, ok := s.words[password]
	return ok
}

func (s *Set) Len() int {
	return len(s.words)
}

// LoadText reads one password per line. Lines are trimmed and empty lines
// skipped.
func LoadText(r io.Reader, enc Encoding) (*Set, error) {
	scanner := bufio.NewScanner(NewTextReader(r, enc))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	s := NewSet()
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			s.words[w] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	log.Debug().Msgf("loaded %d leaked passwords", s.Len())
	return s, nil
}

// LoadCSV reads the named column of a CSV file with a header row. An empty
// column name means "password".
func LoadCSV(r io.Reader, column string) (*Set, error) {
	if column == "" {
		column = "password"
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("CSV has no %q column", column)
	}

	s := NewSet()
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if col < len(record) && record[col] != "" {
			s.words[record[col]] = struct{}{}
		}
	}

	log.Debug().Msgf("loaded %d leaked passwords", s.Len())
	return s, nil
}
