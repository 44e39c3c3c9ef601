// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sam implements the subset of SAM text format reading and writing
// needed to move alignments in and out of the difference representation.
// Header lines are carried through verbatim rather than interpreted.
//
// http://samtools.github.io/hts-specs/SAMv1.pdf
package sam

import (
	"bufio"
	"bytes"
	"io"
)

// Reader implements SAM format reading.
type Reader struct {
	r      *bufio.Reader
	header []byte
}

// NewReader returns a new Reader, reading from the given io.Reader.
// Any header lines are consumed and made available via Header.
func NewReader(r io.Reader) (*Reader, error) {
	sr := &Reader{r: bufio.NewReader(r)}
	for {
		p, err := sr.r.Peek(1)
		if err == io.EOF {
			return sr, nil
		}
		if err != nil {
			return nil, err
		}
		if p[0] != '@' {
			return sr, nil
		}
		l, err := sr.r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		sr.header = append(sr.header, l...)
		if len(l) != 0 && l[len(l)-1] != '\n' {
			sr.header = append(sr.header, '\n')
		}
	}
}

// Header returns the raw SAM header text read by the Reader.
func (r *Reader) Header() []byte { return r.header }

// Read returns the next sam.Record in the SAM stream.
func (r *Reader) Read() (*Record, error) {
	var b []byte
	for len(b) == 0 {
		var err error
		b, err = r.r.ReadBytes('\n')
		if err != nil && (err != io.EOF || len(b) == 0) {
			return nil, err
		}
		b = bytes.TrimRight(b, "\r\n")
	}
	var rec Record
	err := rec.UnmarshalSAM(b)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecordReader wraps types that can read SAM Records.
type RecordReader interface {
	Read() (*Record, error)
}

// Iterator wraps a Reader to provide a convenient loop interface for reading SAM data.
// Successive calls to the Next method will step through the features of the provided
// Reader. Iteration stops unrecoverably at EOF or the first error.
type Iterator struct {
	r   RecordReader
	rec *Record
	err error
}

// NewIterator returns a Iterator to read from r.
//
//  i := NewIterator(r)
//  for i.Next() {
//  	fn(i.Record())
//  }
//  return i.Error()
//
func NewIterator(r RecordReader) *Iterator { return &Iterator{r: r} }

// Next advances the Iterator past the next record, which will then be available through
// the Record method. It returns false when the iteration stops, either by reaching the end of the
// input or an error.
func (i *Iterator) Next() bool {
	if i.err != nil {
		return false
	}
	i.rec, i.err = i.r.Read()
	return i.err == nil
}

// Error returns the first non-EOF error that was encountered by the Iterator.
func (i *Iterator) Error() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

// Record returns the most recent record read by a call to Next.
func (i *Iterator) Record() *Record { return i.rec }

// Writer implements SAM format writing.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer to the given io.Writer, first writing the
// provided raw header text.
func NewWriter(w io.Writer, header []byte) (*Writer, error) {
	_, err := w.Write(header)
	if err != nil {
		return nil, err
	}
	return &Writer{w: w}, nil
}

// Write writes r to the SAM stream.
func (w *Writer) Write(r *Record) error {
	b, err := r.MarshalSAM()
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.w.Write(b)
	return err
}
