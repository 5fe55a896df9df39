// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Key maps a plaintext password to the 64-bit key stored in a GCS file: the
// first 8 bytes of its SHA1 digest, big-endian.
func Key(password string) uint64 {
	sum := sha1.Sum([]byte(password))
	return binary.BigEndian.Uint64(sum[:8])
}

// KeyFromHex reads the key of a hexadecimal SHA1 digest. Only the first 16
// hex characters are used.
func KeyFromHex(hash string) (uint64, error) {
	if len(hash) < 16 {
		return 0, fmt.Errorf("hash %q is too short", hash)
	}
	return strconv.ParseUint(hash[:16], 16, 64)
}

// EstimateLines samples up to 16MiB of f to guess its line count, then
// rewinds it. It is within ~1% on the Pwned Passwords dumps.
func EstimateLines(f *os.File) uint64 {
	const estimateLimit = 1024 * 1024 * 16

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return 0
	}

	size := info.Size()
	buffer := make([]byte, int64(math.Min(float64(size), estimateLimit)))
	n, err := io.ReadFull(f, buffer)
	if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil {
		log.Warn().Err(seekErr).Msg("error rewinding file after estimating lines")
		return 0
	}
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0
	}

	sample := uint64(0)
	for _, b := range buffer[:n] {
		if b == '\n' {
			sample++
		}
	}

	return sample * uint64(size) / uint64(n)
}

func toFixedBytes(content uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, content)
	return buf
}

// dedup removes consecutive duplicates of a sorted slice in place.
func dedup(slice []uint64) []uint64 {
	if len(slice) < 2 {
		return slice
	}

	e := 1
	for i := 1; i < len(slice); i++ {
		if slice[i] == slice[i-1] {
			continue
		}
		slice[e] = slice[i]
		e++
	}

	return slice[:e]
}
