// Copyright ©2013 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fai implements FAI fasta sequence file index handling and
// reference base retrieval from indexed fasta files.
package fai

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

const (
	nameField = iota
	lengthField
	startField
	basesField
	bytesField
)

var ErrNonUnique = errors.New("non-unique record name")

// Index is an FAI index.
type Index map[string]Record

// NewIndex returns a new Index constructed from the FASTA sequence
// in the provided io.Reader.
func NewIndex(fasta io.Reader) (Index, error) {
	r := bufio.NewReader(fasta)
	idx := make(Index)
	var (
		rec          Record
		offset       int64
		wantDescLine bool
	)
	flush := func() {
		if rec.Name != "" {
			idx[rec.Name] = rec
			rec = Record{}
		}
	}
	for {
		line, err := r.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			if err != io.EOF {
				return nil, err
			}
			break
		}
		b := bytes.TrimSpace(line)
		switch {
		case len(b) == 0:
		case b[0] == '>':
			flush()
			name := bytes.Fields(b[1:])
			if len(name) == 0 {
				return nil, fmt.Errorf("fai: missing sequence name at %d", offset)
			}
			rec.Name = string(name[0])
			if _, exists := idx[rec.Name]; exists {
				return nil, fmt.Errorf("fai: duplicate sequence identifier %s at %d", rec.Name, offset)
			}
			rec.Start = offset + int64(len(line))
			wantDescLine = false
		default:
			if wantDescLine {
				return nil, fmt.Errorf("fai: unexpected short line before offset %d", offset)
			}
			switch {
			case rec.BytesPerLine == 0:
				rec.BytesPerLine = len(line)
				rec.BasesPerLine = len(b)
			case len(line) > rec.BytesPerLine || len(b) > rec.BasesPerLine:
				return nil, fmt.Errorf("fai: unexpected long line at offset %d", offset)
			case len(line) < rec.BytesPerLine || len(b) < rec.BasesPerLine:
				wantDescLine = true
			}
			rec.Length += len(b)
		}
		offset += int64(len(line))
		if err == io.EOF {
			break
		}
	}
	flush()
	return idx, nil
}

// Record is a single FAI index record.
type Record struct {
	// Name is the name of the sequence.
	Name string
	// Length is the length of the sequence.
	Length int
	// Start is the starting seek offset of
	// the sequence.
	Start int64
	// BasesPerLine is the number of sequences
	// bases per line.
	BasesPerLine int
	// BytesPerLine is the number of bytes
	// used to represent each line.
	BytesPerLine int
}

// Position returns the seek offset of the sequence position p for the
// given Record.
func (r Record) Position(p int) int64 {
	if p < 0 || r.Length <= p {
		panic("fai: index out of range")
	}
	return r.position(p)
}

func (r Record) position(p int) int64 {
	return r.Start + int64(p/r.BasesPerLine*r.BytesPerLine+p%r.BasesPerLine)
}

// ReadFrom returns an Index from the stream provided by an io.Reader or an error. If the input
// contains non-unique records the error is a csv.ParseError identifying the second non-unique
// record.
func ReadFrom(r io.Reader) (Index, error) {
	tr := csv.NewReader(r)
	tr.Comma = '\t'
	tr.FieldsPerRecord = 5
	var idx Index
	for line := 1; ; line++ {
		fields, err := tr.Read()
		if err == io.EOF {
			return idx, nil
		}
		if err != nil {
			return nil, err
		}
		if idx == nil {
			idx = make(Index)
		} else if _, exists := idx[fields[nameField]]; exists {
			return nil, parseError(line, 0, ErrNonUnique)
		}
		rec := Record{Name: fields[nameField]}
		for _, f := range []struct {
			col int
			dst *int
		}{
			{lengthField, &rec.Length},
			{basesField, &rec.BasesPerLine},
			{bytesField, &rec.BytesPerLine},
		} {
			v, err := strconv.ParseInt(fields[f.col], 10, 0)
			if err != nil {
				return nil, parseError(line, f.col, err)
			}
			*f.dst = int(v)
		}
		rec.Start, err = strconv.ParseInt(fields[startField], 10, 64)
		if err != nil {
			return nil, parseError(line, startField, err)
		}
		idx[rec.Name] = rec
	}
}

func parseError(line, column int, err error) *csv.ParseError {
	return &csv.ParseError{
		StartLine: line,
		Line:      line,
		Column:    column,
		Err:       err,
	}
}

// Records returns the records of the index in order of ascending start
// position.
func (idx Index) Records() []Record {
	recs := make([]Record, 0, len(idx))
	for _, r := range idx {
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Start < recs[j].Start })
	return recs
}

// WriteTo writes the the given index to w in order of ascending start position.
func WriteTo(w io.Writer, idx Index) error {
	for _, r := range idx.Records() {
		_, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", r.Name, r.Length, r.Start, r.BasesPerLine, r.BytesPerLine)
		if err != nil {
			return err
		}
	}
	return nil
}
