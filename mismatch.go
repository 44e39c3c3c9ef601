// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alndiff

// MismatchDiff returns the maximal runs of positions at which read differs
// from ref as Mismatch differences holding the read bases. Positions are
// offset by base. Only the first min(len(ref), len(read)) positions are
// compared. Matching positions produce no differences.
func MismatchDiff(ref, read []byte, base int) []Difference {
	n := len(ref)
	if len(read) < n {
		n = len(read)
	}
	var (
		diffs []Difference
		start = -1
	)
	for i := 0; i < n; i++ {
		if ref[i] != read[i] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			diffs = append(diffs, newStored(base+start, Mismatch, clone(read[start:i])))
			start = -1
		}
	}
	if start >= 0 {
		diffs = append(diffs, newStored(base+start, Mismatch, clone(read[start:n])))
	}
	return diffs
}
