// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alndiff

import "bytes"

// Complete returns a copy of diffs resolved against ref, for difference
// lists made when no reference was available. Difference positions are
// relative to refOffset in ref.
//
// Unresolved MatchMismatch differences are replaced by the Mismatch runs of
// their bases, deletions and skipped regions without bases gain their
// reference bases subject to the maxStored truncation policy of Encoder,
// hard clips without bases gain the reference bases within ref, and soft
// clips identical to the reference are elided. Other differences are
// copied unchanged.
//
// Slicing outside ref returns an error matching ErrShortReference.
func Complete(diffs []Difference, ref []byte, refOffset, maxStored int) ([]Difference, error) {
	if maxStored == 0 {
		maxStored = DefaultMaxStored
	}
	out := make([]Difference, 0, len(diffs))
	for _, d := range diffs {
		start := refOffset + d.Pos
		switch {
		case d.Op == MatchMismatch && d.IsAllSequenceStored():
			r, err := slice(ref, start, start+d.Len, d.Op, true)
			if err != nil {
				return nil, err
			}
			out = append(out, MismatchDiff(r, d.Seq, d.Pos)...)

		case (d.Op == Deletion || d.Op == SkippedRegion) && d.Kind == NotApplicable:
			r, err := slice(ref, start, start+d.Len, d.Op, true)
			if err != nil {
				return nil, err
			}
			out = append(out, newBounded(d.Pos, d.Op, r, maxStored))

		case d.Op == HardClipping && d.Kind == NotApplicable:
			out = append(out, clampedReference(d.Pos, d.Op, d.Len, ref, start))

		case d.Op == SoftClipping && d.IsAllSequenceStored():
			if start >= 0 && start+d.Len <= len(ref) && bytes.Equal(d.Seq, ref[start:start+d.Len]) {
				out = append(out, newLength(d.Pos, d.Op, d.Len, Elided))
			} else {
				out = append(out, d)
			}

		default:
			out = append(out, d)
		}
	}
	return out, nil
}
