// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"fmt"
	"io"
	"math"
)

func log2Ceil(probability uint64) uint8 {
	return uint8(math.Ceil(math.Log2(float64(probability))))
}

// golombEncoder writes Golomb-Rice codes: the quotient in unary (ones closed
// by a zero), then the remainder in log2(p) bits.
type golombEncoder struct {
	inner       *bitWriter
	probability uint64
	log2p       uint8
}

func newEncoder(w io.Writer, probability uint64) *golombEncoder {
	return &golombEncoder{
		inner:       newBitWriter(w),
		probability: probability,
		log2p:       log2Ceil(probability),
	}
}

// Encode writes value and returns the number of bits used.
func (e *golombEncoder) Encode(value uint64) (uint64, error) {
	q := value / e.probability
	r := value % e.probability

	if q+1 > 64 {
		return 0, fmt.Errorf("value %d is too far from its predecessor to encode with p=%d", value, e.probability)
	}

	if err := e.inner.WriteBits(uint8(q+1), (1<<(q+1))-2); err != nil {
		return 0, err
	}
	if err := e.inner.WriteBits(e.log2p, r); err != nil {
		return q + 1, err
	}

	return q + 1 + uint64(e.log2p), nil
}

// Finalize pads to a byte boundary and returns the padding in bits.
func (e *golombEncoder) Finalize() (uint64, error) {
	return e.inner.Flush()
}

type golombDecoder struct {
	inner       *bitReader
	probability uint64
	log2p       uint8
}

func newDecoder(r io.ReadSeeker, probability uint64) *golombDecoder {
	return &golombDecoder{
		inner:       newBitReader(r),
		probability: probability,
		log2p:       log2Ceil(probability),
	}
}

func (d *golombDecoder) Seek(bitPos uint64) error {
	return d.inner.SeekBit(bitPos)
}

func (d *golombDecoder) Decode() (uint64, error) {
	value := uint64(0)
	for {
		bit, err := d.inner.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			break
		}
		value += d.probability
	}

	r, err := d.inner.ReadBits(d.log2p)
	if err != nil {
		return 0, err
	}
	return value + r, nil
}
