// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package corpus

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

// lookuper is a corpus that reports lookup failures instead of failing
// closed on its own.
type lookuper interface {
	lookup(password string) (bool, error)
}

// Cached memoises the answers of a slower corpus (GCS files hit the disk,
// Redis the network). Keys are SHA1 digests, never plaintext.
type Cached struct {
	inner Checker
	cache *ristretto.Cache
}

// NewCached wraps inner with a cache holding up to maxItems answers.
func NewCached(inner Checker, maxItems int64) (*Cached, error) {
	if maxItems <= 0 {
		maxItems = 100_000
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Cached{inner: inner, cache: cache}, nil
}

func (c *Cached) Contains(password string) bool {
	sum := sha1.Sum([]byte(password))
	key := hex.EncodeToString(sum[:])

	if v, ok := c.cache.Get(key); ok {
		return v.(bool)
	}

	var leaked bool
	if l, ok := c.inner.(lookuper); ok {
		var err error
		if leaked, err = l.lookup(password); err != nil {
			// failed lookups are not cached, the next query retries
			log.Error().Err(err).Msg("error querying leaked password corpus, reporting password as leaked")
			return true
		}
	} else {
		leaked = c.inner.Contains(password)
	}

	c.cache.Set(key, leaked, 1)
	return leaked
}

// ContainsSHA1 delegates to the wrapped corpus when it supports digests.
func (c *Cached) ContainsSHA1(hash string) (bool, error) {
	if h, ok := c.inner.(HashChecker); ok {
		return h.ContainsSHA1(hash)
	}
	return false, ErrHashUnsupported
}

// Wait blocks until pending cache writes are visible.
func (c *Cached) Wait() {
	c.cache.Wait()
}

func (c *Cached) Close() {
	c.cache.Close()
}
