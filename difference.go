// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alndiff

import (
	"fmt"

	"github.com/biogo/alndiff/sam"
)

// Operation is the type of an alignment difference.
type Operation byte

const (
	MatchMismatch Operation = iota // Aligned bases not yet resolved against a reference.
	Mismatch                       // Aligned bases differing from the reference.
	Insertion                      // Bases inserted relative to the reference.
	Deletion                       // Reference bases absent from the read.
	SkippedRegion                  // Skipped reference region, usually an intron.
	SoftClipping                   // Clipped bases present in the read.
	HardClipping                   // Clipped bases absent from the read.
	Padding                        // Silent deletion from a padded reference.
	lastOperation
)

var operations = [...]string{
	MatchMismatch: "MATCH_MISMATCH",
	Mismatch:      "MISMATCH",
	Insertion:     "INSERTION",
	Deletion:      "DELETION",
	SkippedRegion: "SKIPPED_REGION",
	SoftClipping:  "SOFT_CLIPPING",
	HardClipping:  "HARD_CLIPPING",
	Padding:       "PADDING",
	lastOperation: "UNKNOWN",
}

// String returns the string representation of an Operation.
func (op Operation) String() string {
	if op > lastOperation {
		op = lastOperation
	}
	return operations[op]
}

// IsValid returns whether op is a known Operation.
func (op Operation) IsValid() bool { return op < lastOperation }

var cigarTypes = [...]sam.CigarOpType{
	MatchMismatch: sam.CigarMatch,
	Mismatch:      sam.CigarMismatch,
	Insertion:     sam.CigarInsertion,
	Deletion:      sam.CigarDeletion,
	SkippedRegion: sam.CigarSkipped,
	SoftClipping:  sam.CigarSoftClipped,
	HardClipping:  sam.CigarHardClipped,
	Padding:       sam.CigarPadded,
}

// CigarOpType returns the CIGAR operation type that op is decoded to.
// It panics if op is not valid.
func (op Operation) CigarOpType() sam.CigarOpType {
	if !op.IsValid() {
		panic(fmt.Sprintf("alndiff: invalid operation %d", op))
	}
	return cigarTypes[op]
}

// SeqKind describes how much of a difference's bases are held in its Seq.
type SeqKind byte

const (
	// NotApplicable differences carry only a length; the bases
	// were not available when the difference was made.
	NotApplicable SeqKind = iota
	// Elided differences carry no bases because they are identical
	// to the reference and can be recovered from it.
	Elided
	// Stored differences hold all of their bases.
	Stored
	// Truncated differences hold a prefix of their bases. A prefix
	// shortened by the storage limit ends with Ellipsis.
	Truncated
	lastSeqKind
)

var seqKinds = [...]string{
	NotApplicable: "none",
	Elided:        "elided",
	Stored:        "stored",
	Truncated:     "truncated",
	lastSeqKind:   "unknown",
}

// String returns the string representation of a SeqKind.
func (k SeqKind) String() string {
	if k > lastSeqKind {
		k = lastSeqKind
	}
	return seqKinds[k]
}

// IsValid returns whether k is a known SeqKind.
func (k SeqKind) IsValid() bool { return k < lastSeqKind }

// Ellipsis marks the end of a truncated difference sequence.
const Ellipsis = "..."

// Difference is a single divergence of an aligned read from an implicit
// reference.
type Difference struct {
	// Pos is the zero-based offset of the difference from the
	// unclipped start of the alignment.
	Pos int
	// Op is the type of the difference.
	Op Operation
	// Len is the number of reference and/or read positions
	// spanned by the difference.
	Len int
	// Kind describes the content of Seq.
	Kind SeqKind
	// Seq holds the bases of the difference subject to Kind.
	// Read bases are held for insertions, mismatches and soft
	// clips and reference bases for deletions, skips and hard
	// clips.
	Seq []byte
}

// IsAllSequenceStored returns whether every base spanned by d is held in
// d.Seq.
func (d Difference) IsAllSequenceStored() bool {
	return d.Kind == Stored && len(d.Seq) == d.Len
}

// End returns the reference-relative position following d.
// Clipped bases occupy reference-relative positions since positions are
// measured from the unclipped start.
func (d Difference) End() int {
	switch d.Op {
	case Insertion, Padding:
		return d.Pos
	}
	return d.Pos + d.Len
}

// String returns a compact representation of d.
func (d Difference) String() string {
	switch d.Kind {
	case Stored, Truncated:
		return fmt.Sprintf("%d:%v:%d:%s", d.Pos, d.Op, d.Len, d.Seq)
	default:
		return fmt.Sprintf("%d:%v:%d", d.Pos, d.Op, d.Len)
	}
}

// newStored returns a Difference holding all of seq.
func newStored(pos int, op Operation, seq []byte) Difference {
	return Difference{Pos: pos, Op: op, Len: len(seq), Kind: Stored, Seq: seq}
}

// newLength returns a Difference of length n holding no bases.
func newLength(pos int, op Operation, n int, kind SeqKind) Difference {
	return Difference{Pos: pos, Op: op, Len: n, Kind: kind}
}

// newBounded returns a Difference holding seq, truncated to max bases
// including the ellipsis when len(seq) exceeds max. A max no longer
// than the ellipsis disables truncation.
func newBounded(pos int, op Operation, seq []byte, max int) Difference {
	if max <= len(Ellipsis) || len(seq) <= max {
		return newStored(pos, op, clone(seq))
	}
	t := make([]byte, 0, max)
	t = append(t, seq[:max-len(Ellipsis)]...)
	t = append(t, Ellipsis...)
	return Difference{Pos: pos, Op: op, Len: len(seq), Kind: Truncated, Seq: t}
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }

// Validate checks that the positions of diffs are non-decreasing and that
// no difference starts before the reference span of its predecessor ends.
// The returned error wraps ErrMalformedDifferenceList.
func Validate(diffs []Difference) error {
	end := 0
	for i, d := range diffs {
		if !d.Op.IsValid() || !d.Kind.IsValid() || d.Len < 0 || d.Pos < 0 {
			return &DifferenceError{Index: i, Pos: d.Pos, Err: ErrMalformedDifferenceList}
		}
		if d.Pos < end {
			return &DifferenceError{Index: i, Pos: d.Pos, Err: ErrMalformedDifferenceList}
		}
		end = d.End()
	}
	return nil
}
