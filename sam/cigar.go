// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"fmt"
)

// Cigar is a set of CIGAR operations.
type Cigar []CigarOp

// IsValid returns whether the CIGAR string is valid for a record of the given
// sequence length. Validity is defined by the sum of query consuming operations
// matching the given length and clipping operations only being present at the
// ends of alignments.
func (c Cigar) IsValid(length int) bool {
	for i, co := range c {
		ct := co.Type()
		if ct == CigarHardClipped && i != 0 && i != len(c)-1 {
			return false
		}
		if ct == CigarSoftClipped && i != 0 && i != len(c)-1 {
			if c[i-1].Type() != CigarHardClipped && c[i+1].Type() != CigarHardClipped {
				return false
			}
		}
		length -= co.Len() * ct.Consumes().Query
	}
	return length == 0
}

// String returns the CIGAR string for c.
func (c Cigar) String() string {
	if len(c) == 0 {
		return "*"
	}
	var b bytes.Buffer
	for _, co := range c {
		fmt.Fprint(&b, co)
	}
	return b.String()
}

// Lengths returns the number of reference and read bases described by the Cigar.
func (c Cigar) Lengths() (ref, read int) {
	for _, co := range c {
		con := co.Type().Consumes()
		if co.Type() != CigarBack {
			ref += co.Len() * con.Reference
		}
		read += co.Len() * con.Query
	}
	return ref, read
}

// LeadingClip returns the total length of the clipping operations at the
// start of the Cigar.
func (c Cigar) LeadingClip() int {
	var n int
	for _, co := range c {
		if !co.Type().IsClip() {
			break
		}
		n += co.Len()
	}
	return n
}

// TrailingClip returns the total length of the clipping operations at the
// end of the Cigar.
func (c Cigar) TrailingClip() int {
	var n int
	for i := len(c) - 1; i >= 0; i-- {
		if !c[i].Type().IsClip() {
			break
		}
		n += c[i].Len()
	}
	return n
}

// Block is an ungapped aligned segment of a read.
type Block struct {
	// Ref is the offset of the block from the
	// alignment start on the reference.
	Ref int
	// Read is the offset of the block into the
	// stored read bases.
	Read int
	// Len is the length of the block.
	Len int
}

// Blocks returns the alignment blocks described by c, one for each M, = or
// X operation in order. Clipping operations do not advance the reference
// offset and hard clipping does not advance the read offset.
func (c Cigar) Blocks() []Block {
	var (
		blocks    []Block
		ref, read int
	)
	for _, co := range c {
		ct := co.Type()
		switch ct {
		case CigarMatch, CigarEqual, CigarMismatch:
			blocks = append(blocks, Block{Ref: ref, Read: read, Len: co.Len()})
		case CigarSoftClipped:
			read += co.Len()
			continue
		case CigarHardClipped:
			continue
		}
		con := ct.Consumes()
		ref += co.Len() * con.Reference
		read += co.Len() * con.Query
	}
	return blocks
}

// Normalize returns a copy of c with all alignment match, sequence match and
// sequence mismatch operations expressed as CigarMatch, adjacent operations
// of the same type merged and zero length operations removed.
func (c Cigar) Normalize() Cigar {
	var n Cigar
	for _, co := range c {
		if co.Len() == 0 {
			continue
		}
		ct := co.Type()
		if ct == CigarEqual || ct == CigarMismatch {
			ct = CigarMatch
		}
		if len(n) != 0 && n[len(n)-1].Type() == ct {
			n[len(n)-1] = NewCigarOp(ct, n[len(n)-1].Len()+co.Len())
			continue
		}
		n = append(n, NewCigarOp(ct, co.Len()))
	}
	return n
}

// CigarOp is a single CIGAR operation including the operation type and the
// length of the operation.
type CigarOp uint32

// NewCigarOp returns a CIGAR operation of the specified type with length n.
func NewCigarOp(t CigarOpType, n int) CigarOp {
	return CigarOp(t) | (CigarOp(n) << 4)
}

// Type returns the type of the CIGAR operation for the CigarOp.
func (co CigarOp) Type() CigarOpType { return CigarOpType(co & 0xf) }

// Len returns the number of positions affected by the CigarOp CIGAR operation.
func (co CigarOp) Len() int { return int(co >> 4) }

// String returns the string representation of the CigarOp
func (co CigarOp) String() string { return fmt.Sprintf("%d%s", co.Len(), co.Type().String()) }

// A CigarOpType represents the type of operation described by a CigarOp.
type CigarOpType byte

const (
	CigarMatch       CigarOpType = iota // Alignment match (can be a sequence match or mismatch).
	CigarInsertion                      // Insertion to the reference.
	CigarDeletion                       // Deletion from the reference.
	CigarSkipped                        // Skipped region from the reference.
	CigarSoftClipped                    // Soft clipping (clipped sequences present in SEQ).
	CigarHardClipped                    // Hard clipping (clipped sequences NOT present in SEQ).
	CigarPadded                         // Padding (silent deletion from padded reference).
	CigarEqual                          // Sequence match.
	CigarMismatch                       // Sequence mismatch.
	CigarBack                           // Skip backwards.
	lastCigar
)

var cigarOps = []string{"M", "I", "D", "N", "S", "H", "P", "=", "X", "B", "?"}

// Consumes returns the CIGAR operation alignment consumption characteristics for the CigarOpType.
//
// The Consume values for each of the CigarOpTypes is as follows:
//
//                    Query  Reference
//  CigarMatch          1        1
//  CigarInsertion      1        0
//  CigarDeletion       0        1
//  CigarSkipped        0        1
//  CigarSoftClipped    1        0
//  CigarHardClipped    0        0
//  CigarPadded         0        0
//  CigarEqual          1        1
//  CigarMismatch       1        1
//  CigarBack           0       -1
//
func (ct CigarOpType) Consumes() Consume { return consume[ct] }

// IsClip returns whether the CigarOpType is a soft or hard clip.
func (ct CigarOpType) IsClip() bool {
	return ct == CigarSoftClipped || ct == CigarHardClipped
}

// String returns the string representation of a CigarOpType.
func (ct CigarOpType) String() string {
	if ct > lastCigar {
		ct = lastCigar
	}
	return cigarOps[ct]
}

// Consume describes how CIGAR operations consume alignment bases.
type Consume struct {
	Query, Reference int
}

// CigarBack is accepted by the parser but has no
// alignment difference representation.
var consume = []Consume{
	CigarMatch:       {Query: 1, Reference: 1},
	CigarInsertion:   {Query: 1, Reference: 0},
	CigarDeletion:    {Query: 0, Reference: 1},
	CigarSkipped:     {Query: 0, Reference: 1},
	CigarSoftClipped: {Query: 1, Reference: 0},
	CigarHardClipped: {Query: 0, Reference: 0},
	CigarPadded:      {Query: 0, Reference: 0},
	CigarEqual:       {Query: 1, Reference: 1},
	CigarMismatch:    {Query: 1, Reference: 1},
	CigarBack:        {Query: 0, Reference: -1},
	lastCigar:        {},
}

var cigarOpTypeLookup [256]CigarOpType

func init() {
	for i := range cigarOpTypeLookup {
		cigarOpTypeLookup[i] = lastCigar
	}
	for op, c := range []byte{'M', 'I', 'D', 'N', 'S', 'H', 'P', '=', 'X', 'B'} {
		cigarOpTypeLookup[c] = CigarOpType(op)
	}
}

var powers = []int{1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8}

// atoi returns the integer interpretation of b which must be an ASCII decimal number representation.
func atoi(b []byte, i int) (int, error) {
	if len(b) == 0 || len(b) > len(powers) {
		return 0, fmt.Errorf("sam: invalid cigar operation count: %q at %d", b, i)
	}
	n := 0
	k := len(b) - 1
	for i, v := range b {
		n += int(v-'0') * powers[k-i]
	}
	if n < 0 || 1<<28 <= n {
		return n, fmt.Errorf("sam: invalid cigar operation count: %q at %d", b, i)
	}
	return n, nil
}

// ParseCigar returns a Cigar parsed from the provided byte slice.
func ParseCigar(b []byte) (Cigar, error) {
	if len(b) == 1 && b[0] == '*' {
		return nil, nil
	}
	var (
		c   Cigar
		op  CigarOpType
		n   int
		err error
	)
	for i := 0; i < len(b); i++ {
		op = lastCigar
		for j := i; j < len(b); j++ {
			if b[j] < '0' || '9' < b[j] {
				n, err = atoi(b[i:j], i)
				if err != nil {
					return nil, err
				}
				op = cigarOpTypeLookup[b[j]]
				i = j
				break
			}
		}
		if op == lastCigar {
			return nil, fmt.Errorf("sam: failed to parse cigar string %q: unknown operation at %d", b, i)
		}
		c = append(c, NewCigarOp(op, n))
	}
	return c, nil
}
