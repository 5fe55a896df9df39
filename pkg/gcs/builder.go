// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package gcs reads and writes Golomb Coded Set files: a compact, sorted,
// probabilistic set of 64-bit password keys with a seekable index.
//
// Layout: Golomb-Rice coded gaps (closed by a zero gap), the index as
// (value, bit position) u64 pairs, and a 40 byte footer holding N, P, the
// byte offset of the index, the index length and the magic string.
package gcs

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/alvinbaena/pwd-advisor/internal/util"
	"github.com/jfcg/sorty/v2"
	"github.com/rs/zerolog/log"
)

// https://github.com/rasky/gcs
// https://github.com/Freaky/gcstool
// https://giovanni.bajo.it/post/47119962313/golomb-coded-sets-smaller-than-bloom-filters
const gcsMagic = "[GCS:v0]"

const footerSize = 40

// Format of the lines read by a Builder.
type Format int

const (
	// Plain holds one plaintext password per line.
	Plain Format = iota
	// HIBP holds Pwned Passwords lines, "SHA1HEX:count".
	HIBP
)

type indexPair struct {
	value  uint64
	bitPos uint64
}

type Builder struct {
	in               io.Reader
	out              io.Writer
	format           Format
	num              uint64
	probability      uint64
	indexGranularity uint64
	values           []uint64
	stat             *status
}

// NewBuilder returns a builder reading lines of the given format from in.
//
// probability is the false positive rate for queries, 1-in-p.
// indexGranularity is the entries per index point (16 bytes each).
func NewBuilder(in io.Reader, out io.Writer, format Format, probability uint64, indexGranularity uint64) *Builder {
	var estimatedLines uint64
	if f, ok := in.(*os.File); ok {
		estimatedLines = EstimateLines(f)
	}

	return &Builder{
		in:               in,
		out:              out,
		format:           format,
		num:              estimatedLines,
		probability:      probability,
		indexGranularity: indexGranularity,
		values:           make([]uint64, 0, estimatedLines),
	}
}

// ExpectLines sizes the builder for n input lines, for inputs that are
// not plain files (decoded or piped) and cannot be sampled.
func (b *Builder) ExpectLines(n uint64) *Builder {
	b.num = n
	if uint64(cap(b.values)) < n {
		b.values = make([]uint64, 0, n)
	}
	return b
}

func (b *Builder) parse(line string) (uint64, bool) {
	switch b.format {
	case HIBP:
		hash, _, _ := strings.Cut(strings.TrimSpace(line), ":")
		key, err := KeyFromHex(hash)
		if err != nil {
			log.Debug().Err(err).Msgf("skipping malformed line %q", line)
			return 0, false
		}
		return key, true
	default:
		password := strings.TrimSpace(line)
		if password == "" {
			return 0, false
		}
		return Key(password), true
	}
}

// Process reads every line of the input and writes the GCS file.
func (b *Builder) Process() error {
	if b.probability < 2 {
		return errors.New("false positive rate must be at least 2")
	}

	if err := util.CheckRam(b.num); err != nil {
		return err
	}

	s := util.Stats()
	defer s()

	b.stat = newStatus()
	log.Info().Msg("starting process. This might take a while, be patient :)")

	scanner := bufio.NewScanner(b.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	// lines are handed to the hashing goroutines in 64k chunks
	linesChunkLen := 64 * 1024
	linesPool := sync.Pool{New: func() interface{} {
		return make([]string, 0, linesChunkLen)
	}}
	lines := linesPool.Get().([]string)[:0]

	recordsPool := sync.Pool{New: func() interface{} {
		return make([]uint64, 0, linesChunkLen)
	}}

	mutex := &sync.Mutex{}
	wg := sync.WaitGroup{}

	b.stat.StageWork("Read", b.num)
	willScan := scanner.Scan()
	for willScan {
		lines = append(lines, scanner.Text())
		willScan = scanner.Scan()

		if len(lines) == linesChunkLen || !willScan {
			linesToProcess := lines
			wg.Add(1)

			go func() {
				defer wg.Done()
				records := recordsPool.Get().([]uint64)[:0]

				for _, line := range linesToProcess {
					if key, ok := b.parse(line); ok {
						records = append(records, key)
					}
				}

				linesPool.Put(linesToProcess[:0])

				mutex.Lock()
				for _, key := range records {
					b.stat.Incr()
					b.values = append(b.values, key)
				}
				mutex.Unlock()

				recordsPool.Put(records[:0])
			}()

			lines = linesPool.Get().([]string)[:0]
		}
	}
	wg.Wait()

	if err := scanner.Err(); err != nil {
		return err
	}

	if err := b.finalize(); err != nil {
		return err
	}

	b.stat.Done()
	return nil
}

func (b *Builder) finalize() error {
	// the real count replaces the estimate
	b.num = uint64(len(b.values))
	if b.num == 0 {
		return errors.New("no entries were read")
	}
	log.Debug().Msgf("database will have %d items", b.num)

	np := b.num * b.probability

	// keys live in [1, N*P] so that a zero gap can close the data
	b.stat.Stage("Normalise")
	for i, v := range b.values {
		b.values[i] = v%np + 1
	}

	b.stat.Stage("Sort")
	sorty.SortSlice(b.values)

	b.stat.Stage("Deduplicate")
	b.values = dedup(b.values)

	index := make([]indexPair, 0, uint64(len(b.values))/max(b.indexGranularity, 1)+1)
	encoder := newEncoder(b.out, b.probability)
	b.stat.StageWork("Encode", uint64(len(b.values)))

	totalBits, prev := uint64(0), uint64(0)
	for i, v := range b.values {
		d, err := encoder.Encode(v - prev)
		if err != nil {
			return err
		}
		totalBits += d
		prev = v

		n := uint64(i + 1)
		if b.indexGranularity > 0 && n%b.indexGranularity == 0 && n < uint64(len(b.values)) {
			index = append(index, indexPair{value: v, bitPos: totalBits})
		}

		b.stat.Incr()
	}

	d, err := encoder.Encode(0)
	if err != nil {
		return err
	}
	totalBits += d

	padding, err := encoder.Finalize()
	if err != nil {
		return err
	}

	endOfData := (totalBits + padding) / 8
	log.Debug().Msgf("end of data: %d", endOfData)

	b.stat.Stage("Write Index")
	log.Debug().Msgf("index will have %d items", len(index))

	for _, pair := range index {
		if _, err = b.out.Write(toFixedBytes(pair.value)); err != nil {
			return err
		}
		if _, err = b.out.Write(toFixedBytes(pair.bitPos)); err != nil {
			return err
		}
	}

	for _, v := range []uint64{b.num, b.probability, endOfData, uint64(len(index))} {
		if _, err = b.out.Write(toFixedBytes(v)); err != nil {
			return err
		}
	}
	_, err = b.out.Write([]byte(gcsMagic))
	return err
}
