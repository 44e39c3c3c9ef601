// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/biogo/alndiff"
)

// DefaultBlockSize is the default number of alignments held in a block.
const DefaultBlockSize = 10000

// Writer writes alignments to a difference store.
type Writer struct {
	w      io.Writer
	id     uuid.UUID
	method Method
	size   int

	buf []byte
	n   int
	err error
}

// NewWriter returns a Writer that writes blocks of at most blockSize
// alignments to w compressed with method m. If blockSize is less than one,
// DefaultBlockSize is used. The store is given a new random ID.
func NewWriter(w io.Writer, m Method, blockSize int) (*Writer, error) {
	if m != Raw && m != XZ {
		return nil, fmt.Errorf("store: unknown compression method %v", m)
	}
	if blockSize < 1 {
		blockSize = DefaultBlockSize
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	d := definition{Magic: magic, Version: Version, ID: id}
	err = d.writeTo(w)
	if err != nil {
		return nil, err
	}
	return &Writer{w: w, id: id, method: m, size: blockSize}, nil
}

// ID returns the ID of the store being written.
func (w *Writer) ID() uuid.UUID { return w.id }

// Write adds a to the store. Differences of a must be held in order.
func (w *Writer) Write(a *alndiff.Alignment) error {
	if w.err != nil {
		return w.err
	}
	for i, d := range a.Differences {
		if d.Len < 0 || d.Pos < 0 || (i != 0 && d.Pos < a.Differences[i-1].Pos) {
			return fmt.Errorf("store: %q: %w", a.Name, &alndiff.DifferenceError{
				Index: i,
				Pos:   d.Pos,
				Err:   alndiff.ErrMalformedDifferenceList,
			})
		}
	}
	w.buf = appendAlignment(w.buf, a)
	w.n++
	if w.n >= w.size {
		return w.Flush()
	}
	return nil
}

// Flush writes any buffered alignments to the underlying io.Writer
// as a block.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.n == 0 {
		return nil
	}
	w.err = w.writeBlock(w.n, w.buf)
	w.buf = w.buf[:0]
	w.n = 0
	return w.err
}

func (w *Writer) writeBlock(n int, raw []byte) error {
	b, err := newBlock(w.method, n, raw)
	if err != nil {
		return err
	}
	return b.writeTo(w.w)
}

// Close flushes buffered alignments and writes the terminating block.
// It does not close the underlying io.Writer.
func (w *Writer) Close() error {
	err := w.Flush()
	if err != nil {
		return err
	}
	w.err = w.writeBlock(0, nil)
	if w.err != nil {
		return w.err
	}
	w.err = errors.New("store: write to closed Writer")
	return nil
}

// Reader reads alignments from a difference store.
type Reader struct {
	r  io.Reader
	id uuid.UUID

	version [2]byte
	pending []*alndiff.Alignment
	done    bool
}

// NewReader returns a Reader reading from r after validating the store
// definition.
func NewReader(r io.Reader) (*Reader, error) {
	var d definition
	err := d.readFrom(r)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, id: d.ID, version: d.Version}, nil
}

// ID returns the ID of the store.
func (r *Reader) ID() uuid.UUID { return r.id }

// Version returns the format version of the store.
func (r *Reader) Version() [2]byte { return r.version }

// Read returns the next alignment in the store. At the terminating
// block Read returns io.EOF. If the stream ends without a terminating
// block, io.ErrUnexpectedEOF is returned.
func (r *Reader) Read() (*alndiff.Alignment, error) {
	for len(r.pending) == 0 {
		if r.done {
			return nil, io.EOF
		}
		var b block
		err := b.readFrom(r.r)
		if err != nil {
			return nil, unexpected(err)
		}
		if b.count == 0 {
			r.done = true
			continue
		}
		r.pending, err = b.alignments()
		if err != nil {
			return nil, err
		}
	}
	a := r.pending[0]
	r.pending[0] = nil
	r.pending = r.pending[1:]
	return a, nil
}
