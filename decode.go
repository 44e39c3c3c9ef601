// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alndiff

import (
	"bytes"
	"fmt"

	"github.com/biogo/alndiff/sam"
)

// Placeholder is written for insertion bases that were not stored.
const Placeholder = '*'

// Decoded is a reconstructed read.
type Decoded struct {
	Seq   []byte
	Cigar sam.Cigar

	// Warnings holds the non-fatal problems found while
	// decoding. Each wraps one of ErrMissingInsertionData,
	// ErrTooManyDifferences or ErrMalformedDifferenceList.
	Warnings []error
}

// Decoder reconstructs reads from difference lists.
type Decoder struct {
	// Strict specifies that out of order or overlapping
	// differences are returned as an error rather than
	// being recorded as a warning.
	Strict bool
}

// Decode reconstructs a read using the default Decoder.
func Decode(diffs []Difference, length int, ref []byte, refOffset int) (*Decoded, error) {
	return Decoder{}.Decode(diffs, length, ref, refOffset)
}

// Decode reconstructs the bases and CIGAR of a read of the given length
// from diffs. Difference positions are relative to refOffset in ref.
// Reference stretches not covered by a difference are written as sequence
// matches, and the read is completed with a final sequence match if the
// differences do not reach length.
//
// Slicing outside ref returns an error matching ErrShortReference.
func (d Decoder) Decode(diffs []Difference, length int, ref []byte, refOffset int) (*Decoded, error) {
	s := decodeState{
		ref: refOffset,
		seq: make([]byte, 0, length),
	}
	var err error
	for i, diff := range diffs {
		s, err = d.step(s, i, diff, ref, refOffset)
		if err != nil {
			return nil, err
		}
	}
	switch n := len(s.seq); {
	case n < length:
		r, err := slice(ref, s.ref, s.ref+length-n, sam.CigarEqual, true)
		if err != nil {
			return nil, err
		}
		s.seq = append(s.seq, r...)
		s.cigar = append(s.cigar, sam.NewCigarOp(sam.CigarEqual, len(r)))
	case n > length:
		s.warnings = append(s.warnings, fmt.Errorf("%w: decoded %d bases for length %d", ErrTooManyDifferences, n, length))
	}
	return &Decoded{Seq: s.seq, Cigar: s.cigar, Warnings: s.warnings}, nil
}

// decodeState is the state threaded through the difference walk.
// The read offset is the length of seq.
type decodeState struct {
	ref      int // Offset into the reference.
	seq      []byte
	cigar    sam.Cigar
	warnings []error
}

func (d Decoder) step(s decodeState, i int, diff Difference, ref []byte, refOffset int) (decodeState, error) {
	if !diff.Op.IsValid() {
		return s, &DifferenceError{Index: i, Pos: diff.Pos, Err: fmt.Errorf("%w: invalid operation %d", ErrMalformedDifferenceList, diff.Op)}
	}
	if diff.Len < 0 {
		return s, &DifferenceError{Index: i, Pos: diff.Pos, Err: fmt.Errorf("%w: negative length %d", ErrMalformedDifferenceList, diff.Len)}
	}
	switch gap := diff.Pos - (s.ref - refOffset); {
	case gap > 0:
		r, err := slice(ref, s.ref, s.ref+gap, sam.CigarEqual, true)
		if err != nil {
			return s, err
		}
		s.seq = append(s.seq, r...)
		s.cigar = append(s.cigar, sam.NewCigarOp(sam.CigarEqual, gap))
		s.ref += gap
	case gap < 0:
		err := &DifferenceError{Index: i, Pos: diff.Pos, Err: ErrMalformedDifferenceList}
		if d.Strict {
			return s, err
		}
		s.warnings = append(s.warnings, err)
	}

	n := diff.Len
	s.cigar = append(s.cigar, sam.NewCigarOp(diff.Op.CigarOpType(), n))
	switch diff.Op {
	case Insertion:
		if diff.IsAllSequenceStored() {
			s.seq = append(s.seq, diff.Seq...)
		} else {
			s.seq = append(s.seq, bytes.Repeat([]byte{Placeholder}, n)...)
			s.warnings = append(s.warnings, &DifferenceError{Index: i, Pos: diff.Pos, Err: ErrMissingInsertionData})
		}
	case MatchMismatch, Mismatch, SoftClipping:
		if diff.IsAllSequenceStored() {
			s.seq = append(s.seq, diff.Seq...)
		} else {
			r, err := slice(ref, s.ref, s.ref+n, diff.Op, true)
			if err != nil {
				return s, err
			}
			s.seq = append(s.seq, r...)
		}
		s.ref += n
	case Deletion, SkippedRegion, HardClipping:
		s.ref += n
	case Padding:
	}
	return s, nil
}
