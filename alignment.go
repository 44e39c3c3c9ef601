// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alndiff

import (
	"errors"
	"fmt"

	"github.com/biogo/alndiff/sam"
)

// ReferenceProvider supplies reference bases.
type ReferenceProvider interface {
	// Bases returns the bases of the named reference sequence
	// in the zero-based half-open interval [start, end).
	Bases(chrom string, start, end int) ([]byte, error)
}

// SequenceLengther is implemented by ReferenceProviders that can report
// the length of a reference sequence. Reference requests made through a
// SequenceLengther are clamped to the end of the sequence.
type SequenceLengther interface {
	SequenceLength(chrom string) (int, error)
}

// window returns the part of [start, end) on chrom that lies within the
// reference sequence.
func window(ref ReferenceProvider, chrom string, start, end int) (lo, hi int) {
	lo, hi = start, end
	if lo < 0 {
		lo = 0
	}
	if l, ok := ref.(SequenceLengther); ok {
		n, err := l.SequenceLength(chrom)
		if err == nil && n < hi {
			hi = n
		}
	}
	return lo, hi
}

// fetch returns the reference bases of chrom within [start, end) and the
// offset of start in the returned bases. It returns nil bases if the
// reference cannot provide them.
func fetch(ref ReferenceProvider, chrom string, start, end int) ([]byte, int) {
	if ref == nil {
		return nil, 0
	}
	lo, hi := window(ref, chrom, start, end)
	if hi <= lo {
		return nil, 0
	}
	b, err := ref.Bases(chrom, lo, hi)
	if err != nil {
		return nil, 0
	}
	return b, start - lo
}

// Alignment is an aligned read held as differences from the reference.
type Alignment struct {
	Name  string
	Chrom string

	// UnclippedStart is the zero-based reference position of
	// the first base of the alignment including clipped bases.
	// Difference positions are relative to UnclippedStart.
	UnclippedStart int

	// Length is the number of read bases.
	Length int

	Flags sam.Flags
	MapQ  byte
	Qual  []byte

	// Mate and optional fields are held verbatim.
	MateRef string
	MatePos int
	TempLen int
	Extra   [][]byte

	Differences []Difference
}

// IsUnmapped returns whether the alignment has the Unmapped flag set.
func (a *Alignment) IsUnmapped() bool { return a.Flags&sam.Unmapped != 0 }

// NewAlignment returns an Alignment encoding r with enc. Reference bases
// spanning the unclipped extent of r are requested from ref, which may be
// nil. The request is limited to the start of the reference sequence, and
// to its end when ref is a SequenceLengther, so clipped bases overhanging
// the sequence do not prevent reference use. If the reference cannot be
// obtained or is shorter than the alignment needs, r is encoded without a
// reference.
func NewAlignment(r *sam.Record, ref ReferenceProvider, enc Encoder) (*Alignment, error) {
	a := &Alignment{
		Name:   r.Name,
		Chrom:  r.Ref,
		Length: len(r.Seq),
		Flags:  r.Flags,
		MapQ:   r.MapQ,
		Qual:   r.Qual,

		MateRef: r.MateRef,
		MatePos: r.MatePos,
		TempLen: r.TempLen,
		Extra:   r.Extra,
	}
	if r.IsUnmapped() {
		a.UnclippedStart = r.Pos
		a.Differences, _ = enc.Encode(nil, r.Seq, nil, true)
		return a, nil
	}
	a.UnclippedStart = r.UnclippedStart()

	bases, off := fetch(ref, r.Ref, a.UnclippedStart, r.UnclippedEnd())
	diffs, err := enc.EncodeAt(r.Cigar, r.Seq, bases, off)
	if bases != nil && errors.Is(err, ErrShortReference) {
		diffs, err = enc.EncodeAt(r.Cigar, r.Seq, nil, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("alndiff: encoding %q: %w", r.Name, err)
	}
	a.Differences = diffs
	return a, nil
}

// RefSpan returns the number of reference positions from UnclippedStart
// needed to decode a.
func (a *Alignment) RefSpan() int {
	var ref, read int
	for _, d := range a.Differences {
		if gap := d.Pos - ref; gap > 0 {
			ref += gap
			read += gap
		}
		switch d.Op {
		case Insertion:
			read += d.Len
		case MatchMismatch, Mismatch, SoftClipping:
			read += d.Len
			ref += d.Len
		case Deletion, SkippedRegion, HardClipping:
			ref += d.Len
		}
	}
	if read < a.Length {
		ref += a.Length - read
	}
	return ref
}

// Record returns the SAM record described by a, decoding its differences
// with dec against reference bases obtained from ref. The decoded CIGAR
// and any decoding warnings are available from the returned Decoded.
func (a *Alignment) Record(ref ReferenceProvider, dec Decoder) (*sam.Record, *Decoded, error) {
	r := &sam.Record{
		Name:    a.Name,
		Ref:     a.Chrom,
		Pos:     a.UnclippedStart,
		MapQ:    a.MapQ,
		Flags:   a.Flags,
		MateRef: a.MateRef,
		MatePos: a.MatePos,
		TempLen: a.TempLen,
		Qual:    a.Qual,
		Extra:   a.Extra,
	}
	if a.IsUnmapped() {
		if len(a.Differences) != 1 || !a.Differences[0].IsAllSequenceStored() {
			return nil, nil, fmt.Errorf("alndiff: %q: unmapped alignment without stored read", a.Name)
		}
		r.Seq = a.Differences[0].Seq
		return r, &Decoded{Seq: r.Seq}, nil
	}

	bases, off := fetch(ref, a.Chrom, a.UnclippedStart, a.UnclippedStart+a.RefSpan())
	d, err := dec.Decode(a.Differences, a.Length, bases, off)
	if err != nil {
		return nil, nil, fmt.Errorf("alndiff: decoding %q: %w", a.Name, err)
	}
	r.Seq = d.Seq
	r.Cigar = d.Cigar
	r.Pos += d.Cigar.LeadingClip()
	return r, d, nil
}
