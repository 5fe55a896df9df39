// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrNotGCS = errors.New("not a GCS file")

type Reader struct {
	fileName    string
	num         uint64
	probability uint64
	endOfData   uint64
	index       []indexPair
}

func NewReader(fileName string) *Reader {
	return &Reader{fileName: fileName}
}

// Initialize loads the footer and the index into memory. The coded data
// stays on disk.
func (r *Reader) Initialize() error {
	file, err := os.Open(r.fileName)
	if err != nil {
		return err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing GCS file")
		}
	}(file)

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < footerSize {
		return ErrNotGCS
	}

	if _, err = file.Seek(-footerSize, io.SeekEnd); err != nil {
		return err
	}

	footer := make([]byte, footerSize)
	if _, err = io.ReadFull(file, footer); err != nil {
		return err
	}

	if string(footer[32:]) != gcsMagic {
		return ErrNotGCS
	}

	r.num = binary.BigEndian.Uint64(footer[0:8])
	r.probability = binary.BigEndian.Uint64(footer[8:16])
	r.endOfData = binary.BigEndian.Uint64(footer[16:24])
	indexLen := binary.BigEndian.Uint64(footer[24:32])
	log.Debug().Msgf("items: %d, probability: %d, end of data: %d, index length: %d",
		r.num, r.probability, r.endOfData, indexLen)

	if r.num == 0 || r.probability < 2 || r.endOfData+indexLen*16+footerSize != uint64(info.Size()) {
		return fmt.Errorf("%w: inconsistent footer", ErrNotGCS)
	}

	if _, err = file.Seek(int64(r.endOfData), io.SeekStart); err != nil {
		return err
	}

	raw := make([]byte, indexLen*16)
	if _, err = io.ReadFull(file, raw); err != nil {
		return err
	}

	// a sentinel at the start of the data
	r.index = make([]indexPair, 0, 1+indexLen)
	r.index = append(r.index, indexPair{0, 0})
	for i := uint64(0); i < indexLen; i++ {
		r.index = append(r.index, indexPair{
			value:  binary.BigEndian.Uint64(raw[i*16 : i*16+8]),
			bitPos: binary.BigEndian.Uint64(raw[i*16+8 : i*16+16]),
		})
	}

	p := message.NewPrinter(language.English)
	log.Info().Msgf("ready for queries on %s items with a 1 in %s false-positive rate.",
		p.Sprintf("%d", r.num), p.Sprintf("%d", r.probability))
	return nil
}

// Len is the number of keys the file was built from.
func (r *Reader) Len() uint64 {
	return r.num
}

// Exists reports whether key is probably in the set.
func (r *Reader) Exists(key uint64) (bool, error) {
	if r.num == 0 {
		return false, errors.New("reader is not initialized")
	}

	h := key%(r.num*r.probability) + 1

	// closest index point at or below h; the sentinel guarantees one
	i := sort.Search(len(r.index), func(i int) bool { return r.index[i].value > h }) - 1
	entry := r.index[i]
	if entry.value == h {
		return true, nil
	}

	// one handle per query, lookups share no state
	file, err := os.Open(r.fileName)
	if err != nil {
		return false, err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing GCS file")
		}
	}(file)

	decoder := newDecoder(file, r.probability)
	if err = decoder.Seek(entry.bitPos); err != nil {
		return false, err
	}

	last := entry.value
	for last < h {
		diff, err := decoder.Decode()
		if err != nil {
			return false, err
		}
		// end of data
		if diff == 0 {
			break
		}
		last += diff
	}

	return last == h, nil
}
