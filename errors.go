// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alndiff

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is matched by errors arising from a slice of
	// the read or reference falling outside the available bases.
	ErrOutOfBounds = errors.New("alndiff: index out of bounds")

	// ErrShortReference is matched by bounds errors where the
	// reference was too short. Callers may retry with a wider
	// reference window.
	ErrShortReference = errors.New("alndiff: reference too short")

	// ErrMalformedDifferenceList is matched by errors reporting
	// difference positions that are out of order or overlapping.
	ErrMalformedDifferenceList = errors.New("alndiff: malformed difference list")

	// ErrMissingInsertionData is matched by decode warnings for
	// insertions whose bases were not fully stored.
	ErrMissingInsertionData = errors.New("alndiff: missing insertion data")

	// ErrTooManyDifferences is matched by decode warnings where the
	// reconstructed sequence exceeds the target length.
	ErrTooManyDifferences = errors.New("alndiff: too many differences")
)

// BoundsError reports an attempt to slice bases outside the bounds of the
// read or reference.
type BoundsError struct {
	Op        string // CIGAR or difference operation being processed.
	Reference bool   // Whether the reference rather than the read was sliced.

	Start, End int // Requested slice bounds.
	Len        int // Length of the sliced sequence.
}

func (e *BoundsError) Error() string {
	seq := "read"
	if e.Reference {
		seq = "reference"
	}
	return fmt.Sprintf("alndiff: %s: %s slice [%d:%d] out of range with length %d", e.Op, seq, e.Start, e.End, e.Len)
}

// Is allows a BoundsError to match ErrOutOfBounds, and ErrShortReference
// when the reference was sliced.
func (e *BoundsError) Is(target error) bool {
	switch target {
	case ErrOutOfBounds:
		return true
	case ErrShortReference:
		return e.Reference
	}
	return false
}

// DifferenceError associates an error with a difference in a list.
type DifferenceError struct {
	Index int // Index of the difference in the list.
	Pos   int // Position of the difference.
	Err   error
}

func (e *DifferenceError) Error() string {
	return fmt.Sprintf("%v: difference %d at position %d", e.Err, e.Index, e.Pos)
}

func (e *DifferenceError) Unwrap() error { return e.Err }

// slice returns b[start:end] or a *BoundsError.
func slice(b []byte, start, end int, op fmt.Stringer, ref bool) ([]byte, error) {
	if start < 0 || end < start || len(b) < end {
		return nil, &BoundsError{Op: op.String(), Reference: ref, Start: start, End: end, Len: len(b)}
	}
	return b[start:end], nil
}
