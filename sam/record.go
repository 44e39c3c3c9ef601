// Copyright ©2012-2013 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// A Flags represents a SAM record's alignment FLAG field.
type Flags uint16

const (
	Paired        Flags = 1 << iota // The read is paired in sequencing, no matter whether it is mapped in a pair.
	ProperPair                      // The read is mapped in a proper pair.
	Unmapped                        // The read itself is unmapped; conflictive with ProperPair.
	MateUnmapped                    // The mate is unmapped.
	Reverse                         // The read is mapped to the reverse strand.
	MateReverse                     // The mate is mapped to the reverse strand.
	Read1                           // This is read1.
	Read2                           // This is read2.
	Secondary                       // Not primary alignment.
	QCFail                          // QC failure.
	Duplicate                       // Optical or PCR duplicate.
	Supplementary                   // Supplementary alignment, indicates alignment is part of a chimeric alignment.
)

// String returns the samtools-style letter representation of f, with
// unset flags shown as '-' and flag bits represented high order to the right.
func (f Flags) String() string {
	const flags = "pPuUrR12sfdS"
	b := []byte(flags)
	for i := range b {
		if f&(1<<uint(i)) == 0 {
			b[i] = '-'
		}
	}
	return string(b)
}

// Record is a single SAM alignment line. Fields after QUAL are retained
// verbatim in Extra and are written back unchanged.
type Record struct {
	Name    string
	Ref     string // "*" for an unplaced read.
	Pos     int    // Zero-based; -1 for an unplaced read.
	MapQ    byte
	Flags   Flags
	Cigar   Cigar
	MateRef string
	MatePos int
	TempLen int
	Seq     []byte
	Qual    []byte // Phred+33; nil when absent.
	Extra   [][]byte
}

// Start returns the lower-coordinate end of the alignment.
func (r *Record) Start() int { return r.Pos }

// End returns the highest reference-consuming coordinate end of the alignment.
func (r *Record) End() int {
	pos := r.Pos
	end := pos
	for _, co := range r.Cigar {
		pos += co.Len() * co.Type().Consumes().Reference
		if pos > end {
			end = pos
		}
	}
	return end
}

// UnclippedStart returns the alignment start including leading soft
// and hard clipped bases.
func (r *Record) UnclippedStart() int { return r.Pos - r.Cigar.LeadingClip() }

// UnclippedEnd returns the alignment end including trailing soft and
// hard clipped bases.
func (r *Record) UnclippedEnd() int { return r.End() + r.Cigar.TrailingClip() }

// IsUnmapped returns whether the record has the Unmapped flag set.
func (r *Record) IsUnmapped() bool { return r.Flags&Unmapped != 0 }

// String returns a string representation of the Record.
func (r *Record) String() string {
	return fmt.Sprintf("%s %v %v %d %s:%d..%d %s",
		r.Name, r.Flags, r.Cigar, r.MapQ, r.Ref, r.Pos, r.End(), r.Seq)
}

// UnmarshalText implements the encoding.TextUnmarshaler.
func (r *Record) UnmarshalText(b []byte) error { return r.UnmarshalSAM(b) }

// UnmarshalSAM parses a SAM format alignment line in the provided []byte.
func (r *Record) UnmarshalSAM(b []byte) error {
	f := bytes.Split(b, []byte{'\t'})
	if len(f) < 11 {
		return errors.New("sam: missing SAM fields")
	}
	*r = Record{Name: string(f[0]), Ref: string(f[2]), MateRef: string(f[6])}
	flags, err := strconv.ParseUint(string(f[1]), 0, 16)
	if err != nil {
		return fmt.Errorf("sam: failed to parse flags: %v", err)
	}
	r.Flags = Flags(flags)
	r.Pos, err = strconv.Atoi(string(f[3]))
	if err != nil {
		return fmt.Errorf("sam: failed to parse position: %v", err)
	}
	r.Pos--
	mapQ, err := strconv.ParseUint(string(f[4]), 10, 8)
	if err != nil {
		return fmt.Errorf("sam: failed to parse map quality: %v", err)
	}
	r.MapQ = byte(mapQ)
	r.Cigar, err = ParseCigar(f[5])
	if err != nil {
		return fmt.Errorf("sam: failed to parse cigar string: %v", err)
	}
	r.MatePos, err = strconv.Atoi(string(f[7]))
	if err != nil {
		return fmt.Errorf("sam: failed to parse mate position: %v", err)
	}
	r.MatePos--
	r.TempLen, err = strconv.Atoi(string(f[8]))
	if err != nil {
		return fmt.Errorf("sam: failed to parse template length: %v", err)
	}
	if !bytes.Equal(f[9], []byte{'*'}) {
		r.Seq = append([]byte(nil), f[9]...)
		if len(r.Cigar) != 0 && !r.Cigar.IsValid(len(r.Seq)) {
			return errors.New("sam: sequence/CIGAR length mismatch")
		}
	}
	if !bytes.Equal(f[10], []byte{'*'}) {
		r.Qual = append([]byte(nil), f[10]...)
		if len(r.Qual) != len(r.Seq) {
			return errors.New("sam: sequence/quality length mismatch")
		}
	}
	for _, e := range f[11:] {
		r.Extra = append(r.Extra, append([]byte(nil), e...))
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r *Record) MarshalText() ([]byte, error) { return r.MarshalSAM() }

// MarshalSAM formats a Record as a SAM line without the trailing newline.
func (r *Record) MarshalSAM() ([]byte, error) {
	if r.Qual != nil && len(r.Qual) != len(r.Seq) {
		return nil, errors.New("sam: sequence/quality length mismatch")
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\t%d\t%s\t%d\t%d\t%s\t%s\t%d\t%d\t%s\t%s",
		r.Name,
		uint16(r.Flags),
		orStar(r.Ref),
		r.Pos+1,
		r.MapQ,
		r.Cigar,
		orStar(r.MateRef),
		r.MatePos+1,
		r.TempLen,
		orStar(string(r.Seq)),
		orStar(string(r.Qual)),
	)
	for _, e := range r.Extra {
		buf.WriteByte('\t')
		buf.Write(e)
	}
	return buf.Bytes(), nil
}

func orStar(s string) string {
	if s == "" {
		return "*"
	}
	return s
}
