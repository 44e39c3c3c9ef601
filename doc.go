// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alndiff converts sequence alignments between their CIGAR
// representation and a compact list of differences from the reference.
//
// An Encoder walks a CIGAR alongside the read bases and, when available, the
// reference bases spanning the unclipped alignment, and records only what
// cannot be recovered from the reference: mismatching runs, insertions,
// deletions, skipped regions, clips and padding. Stretches matching the
// reference are left implicit. A Decoder performs the inverse, filling the
// implicit stretches from the reference to rebuild the read and a CIGAR
// using sequence match and mismatch operations.
//
// Long insertions, deletions and skipped regions are stored truncated, so
// reads holding them decode only approximately.
//
// The functions in this package hold no shared state and may be called
// concurrently on independent inputs.
package alndiff
