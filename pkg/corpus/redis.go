// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package corpus

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"strings"
	"time"

	"github.com/alvinbaena/pwd-advisor/pkg/gcs"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultRedisKey = "pwd-advisor:leaked"
	// Entries sent on a single pipeline round trip when loading.
	redisChunkLen = 64 * 1024
)

// Redis is a corpus stored as a Redis set of uppercase SHA1 digests, so
// several servers can share one copy and plaintext is never stored.
type Redis struct {
	rdb     *redis.Client
	key     string
	Timeout time.Duration
}

// NewRedis connects to url (redis:// or rediss://) and pings the server.
func NewRedis(ctx context.Context, url, key string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 1 * time.Second
	opt.WriteTimeout = 1 * time.Second

	rdb := redis.NewClient(opt)
	if err = rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return NewRedisFromClient(rdb, key), nil
}

func NewRedisFromClient(rdb *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{rdb: rdb, key: key, Timeout: 500 * time.Millisecond}
}

func hashHex(password string) string {
	sum := sha1.Sum([]byte(password))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Contains fails closed: when Redis cannot answer the password is reported
// as leaked.
func (r *Redis) Contains(password string) bool {
	exists, err := r.lookup(password)
	if err != nil {
		log.Error().Err(err).Msg("error querying Redis corpus, reporting password as leaked")
		return true
	}
	return exists
}

func (r *Redis) lookup(password string) (bool, error) {
	return r.isMember(hashHex(password))
}

func (r *Redis) ContainsSHA1(hash string) (bool, error) {
	if !sha1Hex.MatchString(hash) {
		return false, ErrInvalidHash
	}
	return r.isMember(strings.ToUpper(hash))
}

func (r *Redis) isMember(member string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()
	return r.rdb.SIsMember(ctx, r.key, member).Result()
}

// Load adds every entry of in to the set, pipelining the SADD commands in
// chunks. Plain input holds one password per line, HIBP input holds
// HASH:COUNT lines. Returns the number of lines sent.
func (r *Redis) Load(ctx context.Context, in io.Reader, format gcs.Format) (uint64, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var sent uint64
	chunk := make([]interface{}, 0, redisChunkLen)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		pipe := r.rdb.Pipeline()
		pipe.SAdd(ctx, r.key, chunk...)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		sent += uint64(len(chunk))
		log.Debug().Msgf("sent %d entries to Redis", sent)
		chunk = chunk[:0]
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if format == gcs.HIBP {
			hash, _, _ := strings.Cut(line, ":")
			if !sha1Hex.MatchString(hash) {
				continue
			}
			chunk = append(chunk, strings.ToUpper(hash))
		} else {
			chunk = append(chunk, hashHex(line))
		}

		if len(chunk) == redisChunkLen {
			if err := flush(); err != nil {
				return sent, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return sent, err
	}
	if err := flush(); err != nil {
		return sent, err
	}

	return sent, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
