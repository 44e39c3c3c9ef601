// Copyright ©2020 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fai

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

var (
	// ErrNoSequence is returned when a requested sequence
	// is not present in the index.
	ErrNoSequence = errors.New("fai: no sequence")

	// ErrOutOfRange is returned when a requested range is
	// not within the sequence.
	ErrOutOfRange = errors.New("fai: index out of range")
)

// File is a sequence file with an FAI index. It provides reference bases
// for arbitrary sequence ranges and is safe for concurrent use.
type File struct {
	r   io.ReaderAt
	c   io.Closer
	idx Index
}

// NewFile returns a File reading the fasta sequence data in r using the
// provided index.
func NewFile(r io.ReaderAt, idx Index) *File {
	f := &File{r: r, idx: idx}
	if c, ok := r.(io.Closer); ok {
		f.c = c
	}
	return f
}

// OpenFile opens the sequence file at the given path and associates it with
// the specified index. File access is implemented via mmapped file memory,
// so integer indexing limits may impact on access to large files.
func OpenFile(path string, idx Index) (*File, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	return NewFile(m, idx), nil
}

// Open opens the fasta file at the given path using the index in the
// adjacent .fai file. If there is no .fai file, the index is built from
// the fasta data.
func Open(path string) (*File, error) {
	idx, err := readIndexFile(path + ".fai")
	if errors.Is(err, os.ErrNotExist) {
		idx, err = buildIndex(path)
	}
	if err != nil {
		return nil, err
	}
	return OpenFile(path, idx)
}

func readIndexFile(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFrom(f)
}

func buildIndex(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewIndex(f)
}

// Index returns the index of the sequence file.
func (f *File) Index() Index { return f.idx }

// Close closes the sequence file and releases the index.
func (f *File) Close() error {
	var err error
	if f.c != nil {
		err = f.c.Close()
	}
	*f = File{}
	return err
}

// SequenceLength returns the length of the named sequence.
func (f *File) SequenceLength(name string) (int, error) {
	rec, ok := f.idx[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoSequence, name)
	}
	return rec.Length, nil
}

// Bases returns the upper-cased bases of the named sequence in the
// zero-based half-open interval [start, end).
func (f *File) Bases(name string, start, end int) ([]byte, error) {
	rec, ok := f.idx[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSequence, name)
	}
	if start < 0 || end < start || rec.Length < end {
		return nil, fmt.Errorf("%w: %s:%d-%d with length %d", ErrOutOfRange, name, start, end, rec.Length)
	}
	b := make([]byte, end-start)
	for n := 0; n < len(b); {
		p := start + n
		l := min(rec.BasesPerLine-p%rec.BasesPerLine, len(b)-n)
		m, err := f.r.ReadAt(b[n:n+l], rec.position(p))
		if m < l {
			if err == nil || err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		n += l
	}
	return bytes.ToUpper(b), nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
