// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alndiff

import (
	"bytes"
	"fmt"

	"github.com/biogo/alndiff/sam"
)

// DefaultMaxStored is the default maximum number of bases, including the
// ellipsis, stored for a single insertion, deletion or skipped region.
const DefaultMaxStored = 30

// Encoder converts CIGAR-described alignments into difference lists.
type Encoder struct {
	// MaxStored is the maximum number of bases stored for an
	// insertion, deletion or skipped region. Sequences longer
	// than MaxStored are truncated to MaxStored-3 bases followed
	// by an ellipsis.
	// If MaxStored is zero, DefaultMaxStored is used. Negative
	// values disable truncation.
	MaxStored int
}

func (e Encoder) maxStored() int {
	if e.MaxStored == 0 {
		return DefaultMaxStored
	}
	return e.MaxStored
}

// Encode returns the differences described by cigar for the given read
// bases using the default Encoder.
func Encode(cigar sam.Cigar, read, ref []byte, unmapped bool) ([]Difference, error) {
	return Encoder{}.Encode(cigar, read, ref, unmapped)
}

// Encode returns the differences of an alignment described by cigar and
// read against ref. The reference must start at the unclipped start of the
// alignment; a nil ref indicates that no reference is available, in which
// case aligned bases are held unresolved as MatchMismatch differences and
// deletions carry only their length.
//
// If unmapped is true, the CIGAR is ignored and a single MatchMismatch
// difference holding the whole read is returned.
//
// Slicing outside read returns an error matching ErrOutOfBounds and slicing
// outside ref returns an error matching ErrShortReference.
func (e Encoder) Encode(cigar sam.Cigar, read, ref []byte, unmapped bool) ([]Difference, error) {
	if unmapped {
		return []Difference{newStored(0, MatchMismatch, clone(read))}, nil
	}
	return e.EncodeAt(cigar, read, ref, 0)
}

// EncodeAt returns the differences of a mapped alignment described by
// cigar and read against ref, where the unclipped start of the alignment
// is at refOffset in ref. The offset may be negative when the clipped
// bases of the alignment extend before the start of the reference.
// Reference bases outside ref are only required for aligned bases and
// deletions; clips extending beyond ref are stored from the read or
// clamped to ref.
func (e Encoder) EncodeAt(cigar sam.Cigar, read, ref []byte, refOffset int) ([]Difference, error) {
	w := walk{
		read:   read,
		ref:    ref,
		off:    refOffset,
		blocks: cigar.Blocks(),
		max:    e.maxStored(),
	}
	var (
		s   encodeState
		err error
	)
	for _, co := range cigar {
		s, err = w.step(s, co)
		if err != nil {
			return nil, err
		}
	}
	return s.diffs, nil
}

// walk holds the read-only inputs of an encoding.
type walk struct {
	read, ref []byte
	off       int // Offset of the unclipped start in ref.
	blocks    []sam.Block
	max       int
}

// encodeState is the state threaded through the CIGAR walk.
type encodeState struct {
	read  int // Offset into the read bases.
	ref   int // Offset from the unclipped start.
	block int // Index of the next alignment block.
	diffs []Difference
}

func (w walk) step(s encodeState, co sam.CigarOp) (encodeState, error) {
	t := co.Type()
	n := co.Len()
	switch t {
	case sam.CigarEqual, sam.CigarMatch, sam.CigarMismatch:
		if s.block >= len(w.blocks) {
			return s, fmt.Errorf("alndiff: alignment block %d missing for %v", s.block, co)
		}
		// Block offsets exclude clipped bases so they never pass a
		// well-formed running offset; the larger of the two is used
		// in case clipping has left the running offset behind.
		if blk := w.blocks[s.block]; blk.Ref > s.ref {
			s.ref = blk.Ref
		}
		s.block++
		sub, err := slice(w.read, s.read, s.read+n, t, false)
		if err != nil {
			return s, err
		}
		switch {
		case t == sam.CigarEqual:
		case w.ref == nil:
			s.diffs = append(s.diffs, newStored(s.ref, MatchMismatch, clone(sub)))
		default:
			r, err := slice(w.ref, w.off+s.ref, w.off+s.ref+n, t, true)
			if err != nil {
				return s, err
			}
			s.diffs = append(s.diffs, MismatchDiff(r, sub, s.ref)...)
		}
		s.read += n
		s.ref += n

	case sam.CigarInsertion:
		sub, err := slice(w.read, s.read, s.read+n, t, false)
		if err != nil {
			return s, err
		}
		s.diffs = append(s.diffs, newBounded(s.ref, Insertion, sub, w.max))
		s.read += n

	case sam.CigarDeletion, sam.CigarSkipped:
		op := Deletion
		if t == sam.CigarSkipped {
			op = SkippedRegion
		}
		if w.ref == nil {
			s.diffs = append(s.diffs, newLength(s.ref, op, n, NotApplicable))
		} else {
			r, err := slice(w.ref, w.off+s.ref, w.off+s.ref+n, t, true)
			if err != nil {
				return s, err
			}
			s.diffs = append(s.diffs, newBounded(s.ref, op, r, w.max))
		}
		s.ref += n

	case sam.CigarSoftClipped:
		sub, err := slice(w.read, s.read, s.read+n, t, false)
		if err != nil {
			return s, err
		}
		if p := w.off + s.ref; w.ref != nil && p >= 0 && p+n <= len(w.ref) && bytes.Equal(sub, w.ref[p:p+n]) {
			s.diffs = append(s.diffs, newLength(s.ref, SoftClipping, n, Elided))
		} else {
			s.diffs = append(s.diffs, newStored(s.ref, SoftClipping, clone(sub)))
		}
		s.read += n
		s.ref += n

	case sam.CigarHardClipped:
		s.diffs = append(s.diffs, clampedReference(s.ref, HardClipping, n, w.ref, w.off+s.ref))
		s.ref += n

	case sam.CigarPadded:
		s.diffs = append(s.diffs, newLength(s.ref, Padding, n, NotApplicable))

	default:
		return s, fmt.Errorf("alndiff: unsupported cigar operation %v", co)
	}
	return s, nil
}

// clampedReference returns a difference at pos holding the reference
// bases in [start, start+n) that are present in ref. If the reference is
// nil or the span starts outside it, the difference holds no bases. If the
// reference ends within the span, the available prefix is held as Truncated.
func clampedReference(pos int, op Operation, n int, ref []byte, start int) Difference {
	if ref == nil || start < 0 || len(ref) <= start || n == 0 {
		return newLength(pos, op, n, NotApplicable)
	}
	end := start + n
	if end <= len(ref) {
		return newStored(pos, op, clone(ref[start:end]))
	}
	return Difference{Pos: pos, Op: op, Len: n, Kind: Truncated, Seq: clone(ref[start:])}
}
