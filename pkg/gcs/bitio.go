// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"bufio"
	"errors"
	"io"
)

var errTooManyBits = errors.New("cannot transfer more than 64 bits at a time")

// bitReader reads an io.ReadSeeker bit by bit, most significant bit first.
type bitReader struct {
	inner  io.ReadSeeker
	buffer []byte
	// number of bits of buffer not read yet
	unused uint8
}

func newBitReader(r io.ReadSeeker) *bitReader {
	return &bitReader{inner: r, buffer: make([]byte, 1)}
}

func (r *bitReader) reset() {
	r.buffer[0] = 0
	r.unused = 0
}

// ReadBits reads up to 64 bits.
func (r *bitReader) ReadBits(n uint8) (uint64, error) {
	if n > 64 {
		return 0, errTooManyBits
	}

	ret := uint64(0)
	rBits := n

	for rBits > r.unused {
		ret |= uint64(r.buffer[0]) << (rBits - r.unused)
		rBits -= r.unused

		if _, err := io.ReadFull(r.inner, r.buffer); err != nil {
			return 0, err
		}
		r.unused = 8
	}

	if rBits > 0 {
		ret |= uint64(r.buffer[0]) >> (r.unused - rBits)
		r.buffer[0] &= (1 << (r.unused - rBits)) - 1
		r.unused -= rBits
	}

	return ret, nil
}

func (r *bitReader) ReadBit() (uint64, error) {
	return r.ReadBits(1)
}

// SeekBit moves to an absolute bit position from the start of the stream.
func (r *bitReader) SeekBit(pos uint64) error {
	r.reset()
	if _, err := r.inner.Seek(int64(pos/8), io.SeekStart); err != nil {
		return err
	}
	_, err := r.ReadBits(uint8(pos % 8))
	return err
}

type writerAndByteWriter interface {
	io.Writer
	io.ByteWriter
}

// bitWriter adds bit-level writing to any io.Writer.
type bitWriter struct {
	inner writerAndByteWriter
	// set when the target does not implement io.ByteWriter
	wrapper *bufio.Writer
	buffer  uint8
	unused  uint8
}

func newBitWriter(out io.Writer) *bitWriter {
	w := &bitWriter{}
	var ok bool
	w.inner, ok = out.(writerAndByteWriter)
	if !ok {
		w.wrapper = bufio.NewWriter(out)
		w.inner = w.wrapper
	}
	return w
}

// WriteBits writes the n lowest bits of v, n <= 64.
func (w *bitWriter) WriteBits(n uint8, v uint64) error {
	if n > 64 {
		return errTooManyBits
	}
	return w.writeBits(n, v&(1<<n-1))
}

// writeBits expects v to have no bits set at position n or higher.
func (w *bitWriter) writeBits(n uint8, v uint64) error {
	newBits := w.unused + n
	if newBits < 8 {
		w.buffer |= byte(v) << (8 - newBits)
		w.unused = newBits
		return nil
	}

	if newBits > 8 {
		free := 8 - w.unused
		if err := w.inner.WriteByte(w.buffer | uint8(v>>(n-free))); err != nil {
			return err
		}
		n -= free

		for n >= 8 {
			n -= 8
			if err := w.inner.WriteByte(uint8(v >> n)); err != nil {
				return err
			}
		}

		if n > 0 {
			w.buffer, w.unused = (uint8(v)&((1<<n)-1))<<(8-n), n
		} else {
			w.buffer, w.unused = 0, 0
		}
		return nil
	}

	bb := w.buffer | uint8(v)
	w.buffer, w.unused = 0, 0
	return w.inner.WriteByte(bb)
}

// Flush pads the stream with zero bits up to the next byte boundary, flushes
// any wrapping buffer, and returns the number of padding bits.
func (w *bitWriter) Flush() (skipped uint64, err error) {
	if w.unused > 0 {
		if err = w.inner.WriteByte(w.buffer); err != nil {
			return 0, err
		}
		skipped = uint64(8 - w.unused)
		w.buffer, w.unused = 0, 0
	}
	if w.wrapper != nil {
		err = w.wrapper.Flush()
	}
	return
}
