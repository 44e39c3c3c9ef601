// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/kortschak/utter"
	"gopkg.in/check.v1"

	"github.com/biogo/alndiff"
	"github.com/biogo/alndiff/sam"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

var alignments = []*alndiff.Alignment{
	{
		Name:           "r001",
		Chrom:          "chr1",
		UnclippedStart: 1000,
		Length:         15,
		Flags:          sam.Paired | sam.Read1,
		MapQ:           60,
		Qual:           []byte("IIIIIIIIIIIIIII"),
		MateRef:        "=",
		MatePos:        1200,
		TempLen:        -215,
		Extra:          [][]byte{[]byte("NM:i:2"), []byte("RG:Z:lane1")},
		Differences: []alndiff.Difference{
			{Pos: 0, Op: alndiff.HardClipping, Len: 2, Kind: alndiff.Stored, Seq: []byte("TT")},
			{Pos: 2, Op: alndiff.SoftClipping, Len: 3, Kind: alndiff.Elided},
			{Pos: 9, Op: alndiff.Mismatch, Len: 1, Kind: alndiff.Stored, Seq: []byte("C")},
			{Pos: 10, Op: alndiff.Insertion, Len: 40, Kind: alndiff.Truncated, Seq: []byte("ACGTACGTACGTACGTACGTACGTACG...")},
			{Pos: 10, Op: alndiff.Deletion, Len: 2, Kind: alndiff.NotApplicable},
			{Pos: 12, Op: alndiff.Padding, Len: 1, Kind: alndiff.NotApplicable},
			{Pos: 16, Op: alndiff.SkippedRegion, Len: 100000, Kind: alndiff.NotApplicable},
		},
	},
	{
		Name:           "r002",
		Chrom:          "chr1",
		UnclippedStart: 1 << 30,
		Length:         4,
		MateRef:        "*",
		MatePos:        -1,
	},
	{
		Name:           "u",
		Chrom:          "*",
		UnclippedStart: -1,
		Length:         4,
		Flags:          sam.Unmapped,
		Differences: []alndiff.Difference{
			{Pos: 0, Op: alndiff.MatchMismatch, Len: 4, Kind: alndiff.Stored, Seq: []byte("ACGT")},
		},
	},
}

func writeStore(c *check.C, m Method, blockSize int, alns []*alndiff.Alignment) ([]byte, uuid.UUID) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, m, blockSize)
	c.Assert(err, check.Equals, nil)
	for _, a := range alns {
		c.Assert(w.Write(a), check.Equals, nil)
	}
	c.Assert(w.Close(), check.Equals, nil)
	return buf.Bytes(), w.ID()
}

func readStore(r *Reader) ([]*alndiff.Alignment, error) {
	var alns []*alndiff.Alignment
	for {
		a, err := r.Read()
		if err == io.EOF {
			return alns, nil
		}
		if err != nil {
			return alns, err
		}
		alns = append(alns, a)
	}
}

func (s *S) TestRoundTrip(c *check.C) {
	for _, m := range []Method{Raw, XZ} {
		for _, size := range []int{1, 2, 0} {
			data, id := writeStore(c, m, size, alignments)
			r, err := NewReader(bytes.NewReader(data))
			c.Assert(err, check.Equals, nil)
			c.Check(r.ID(), check.Equals, id)
			c.Check(r.Version(), check.Equals, Version)
			got, err := readStore(r)
			c.Assert(err, check.Equals, nil, check.Commentf("method %v block size %d", m, size))
			c.Check(got, check.DeepEquals, alignments, check.Commentf("method %v block size %d\n%s", m, size, utter.Sdump(got)))

			_, err = r.Read()
			c.Check(err, check.Equals, io.EOF)
		}
	}
}

func (s *S) TestEmpty(c *check.C) {
	data, _ := writeStore(c, XZ, 0, nil)
	r, err := NewReader(bytes.NewReader(data))
	c.Assert(err, check.Equals, nil)
	_, err = r.Read()
	c.Check(err, check.Equals, io.EOF)
}

func (s *S) TestCodecRoundTrip(c *check.C) {
	ref := []byte("TTGCAACGTAGGTCCAGTACGTTAGCATGCA")
	read := []byte("GCAACGTCTGGTCCACC")
	cigar, err := sam.ParseCigar([]byte("2H3S5M1I2D4M2S3H"))
	c.Assert(err, check.Equals, nil)
	diffs, err := alndiff.Encode(cigar, read[:15], ref, false)
	c.Assert(err, check.Equals, nil)
	a := &alndiff.Alignment{Name: "r", Chrom: "chr1", Length: 15, Differences: diffs}

	data, _ := writeStore(c, XZ, 0, []*alndiff.Alignment{a})
	r, err := NewReader(bytes.NewReader(data))
	c.Assert(err, check.Equals, nil)
	got, err := r.Read()
	c.Assert(err, check.Equals, nil)

	want, err := alndiff.Decode(diffs, 15, ref, 0)
	c.Assert(err, check.Equals, nil)
	dec, err := alndiff.Decode(got.Differences, got.Length, ref, 0)
	c.Assert(err, check.Equals, nil)
	c.Check(dec, check.DeepEquals, want)
}

func (s *S) TestCorrupt(c *check.C) {
	data, _ := writeStore(c, Raw, 0, alignments)

	_, err := NewReader(bytes.NewReader([]byte("BAM\x01")))
	c.Check(err, check.NotNil)

	bad := append([]byte(nil), data...)
	bad[len(bad)-12] ^= 0xff
	r, err := NewReader(bytes.NewReader(bad))
	c.Assert(err, check.Equals, nil)
	_, err = readStore(r)
	c.Check(errors.Is(err, ErrCorrupt), check.Equals, true, check.Commentf("%v", err))

	// Drop the terminating block.
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Raw, 0)
	c.Assert(err, check.Equals, nil)
	for _, a := range alignments {
		c.Assert(w.Write(a), check.Equals, nil)
	}
	c.Assert(w.Flush(), check.Equals, nil)
	r, err = NewReader(bytes.NewReader(buf.Bytes()))
	c.Assert(err, check.Equals, nil)
	got, err := readStore(r)
	c.Check(err, check.Equals, io.ErrUnexpectedEOF)
	c.Check(got, check.HasLen, len(alignments))

	// Truncate within the first block.
	r, err = NewReader(bytes.NewReader(data[:40]))
	c.Assert(err, check.Equals, nil)
	_, err = readStore(r)
	c.Check(err, check.Equals, io.ErrUnexpectedEOF)
}

// rawStore returns a store holding alns without the checks made by Writer.
func rawStore(c *check.C, alns ...*alndiff.Alignment) []byte {
	var buf bytes.Buffer
	d := definition{Magic: magic, Version: Version}
	c.Assert(d.writeTo(&buf), check.Equals, nil)
	var raw []byte
	for _, a := range alns {
		raw = appendAlignment(raw, a)
	}
	for _, n := range []int{len(alns), 0} {
		if n == 0 {
			raw = nil
		}
		b, err := newBlock(Raw, n, raw)
		c.Assert(err, check.Equals, nil)
		c.Assert(b.writeTo(&buf), check.Equals, nil)
	}
	return buf.Bytes()
}

func (s *S) TestInvalidDifferences(c *check.C) {
	for _, diffs := range [][]alndiff.Difference{
		{{Pos: 0, Op: alndiff.Insertion, Len: -3, Kind: alndiff.NotApplicable}},
		{{Pos: 4, Op: alndiff.Deletion, Len: -1, Kind: alndiff.NotApplicable}},
		{
			{Pos: 4, Op: alndiff.Mismatch, Len: 1, Kind: alndiff.Stored, Seq: []byte("A")},
			{Pos: -2, Op: alndiff.Mismatch, Len: 1, Kind: alndiff.Stored, Seq: []byte("C")},
		},
		{{Pos: 0, Op: alndiff.Operation(100), Len: 1, Kind: alndiff.NotApplicable}},
	} {
		a := &alndiff.Alignment{Name: "r", Chrom: "chr1", Length: 4, Differences: diffs}
		r, err := NewReader(bytes.NewReader(rawStore(c, alignments[1], a)))
		c.Assert(err, check.Equals, nil)
		got, err := readStore(r)
		c.Check(errors.Is(err, ErrCorrupt), check.Equals, true, check.Commentf("%v", err))
		c.Check(got, check.HasLen, 0)

		w, err := NewWriter(io.Discard, Raw, 0)
		c.Assert(err, check.Equals, nil)
		err = w.Write(a)
		if diffs[0].Op.IsValid() {
			c.Check(errors.Is(err, alndiff.ErrMalformedDifferenceList), check.Equals, true, check.Commentf("%v", err))
		}
	}

	// The same alignments without the invalid difference are read back.
	r, err := NewReader(bytes.NewReader(rawStore(c, alignments...)))
	c.Assert(err, check.Equals, nil)
	got, err := readStore(r)
	c.Assert(err, check.Equals, nil)
	c.Check(got, check.DeepEquals, alignments)
}

func (s *S) TestWriterErrors(c *check.C) {
	_, err := NewWriter(io.Discard, Method(7), 0)
	c.Check(err, check.NotNil)

	w, err := NewWriter(io.Discard, Raw, 0)
	c.Assert(err, check.Equals, nil)
	err = w.Write(&alndiff.Alignment{
		Name: "r",
		Differences: []alndiff.Difference{
			{Pos: 5, Op: alndiff.Mismatch, Len: 1, Kind: alndiff.Stored, Seq: []byte("A")},
			{Pos: 3, Op: alndiff.Mismatch, Len: 1, Kind: alndiff.Stored, Seq: []byte("A")},
		},
	})
	c.Check(errors.Is(err, alndiff.ErrMalformedDifferenceList), check.Equals, true)

	c.Assert(w.Close(), check.Equals, nil)
	c.Check(w.Write(alignments[1]), check.NotNil)
}

func (s *S) TestParseMethod(c *check.C) {
	for _, test := range []struct {
		in   string
		want Method
		err  bool
	}{
		{in: "raw", want: Raw},
		{in: "none", want: Raw},
		{in: "xz", want: XZ},
		{in: "gzip", err: true},
	} {
		got, err := ParseMethod(test.in)
		c.Check(err != nil, check.Equals, test.err)
		c.Check(got, check.Equals, test.want)
	}
	c.Check(XZ.String(), check.Equals, "xz")
}
