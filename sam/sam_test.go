// Copyright ©2013 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func (s *S) TestParseCigar(c *check.C) {
	for _, test := range []struct {
		cigar string
		want  Cigar
		err   bool
	}{
		{cigar: "*", want: nil},
		{cigar: "", want: nil},
		{
			cigar: "2H3S5M1I2D4=1X2N1P2S",
			want: Cigar{
				NewCigarOp(CigarHardClipped, 2),
				NewCigarOp(CigarSoftClipped, 3),
				NewCigarOp(CigarMatch, 5),
				NewCigarOp(CigarInsertion, 1),
				NewCigarOp(CigarDeletion, 2),
				NewCigarOp(CigarEqual, 4),
				NewCigarOp(CigarMismatch, 1),
				NewCigarOp(CigarSkipped, 2),
				NewCigarOp(CigarPadded, 1),
				NewCigarOp(CigarSoftClipped, 2),
			},
		},
		{cigar: "100M", want: Cigar{NewCigarOp(CigarMatch, 100)}},
		{cigar: "10Q", err: true},
		{cigar: "M", err: true},
		{cigar: "10", err: true},
		{cigar: "1000000000M", err: true},
	} {
		got, err := ParseCigar([]byte(test.cigar))
		if test.err {
			c.Check(err, check.NotNil, check.Commentf("cigar %q", test.cigar))
			continue
		}
		c.Check(err, check.Equals, nil, check.Commentf("cigar %q", test.cigar))
		c.Check(got, check.DeepEquals, test.want)
		if len(test.cigar) > 1 {
			c.Check(got.String(), check.Equals, test.cigar)
		}
	}
}

func mustCigar(s string) Cigar {
	c, err := ParseCigar([]byte(s))
	if err != nil {
		panic(err)
	}
	return c
}

func (s *S) TestCigarLengths(c *check.C) {
	for _, test := range []struct {
		cigar     string
		ref, read int
		lead      int
		trail     int
	}{
		{cigar: "10M", ref: 10, read: 10},
		{cigar: "2H3S5M1I2D4M2S3H", ref: 11, read: 15, lead: 5, trail: 5},
		{cigar: "3M6N3M", ref: 12, read: 6},
		{cigar: "4M2P1I4M", ref: 8, read: 9},
	} {
		cigar := mustCigar(test.cigar)
		ref, read := cigar.Lengths()
		c.Check(ref, check.Equals, test.ref, check.Commentf("cigar %s", test.cigar))
		c.Check(read, check.Equals, test.read, check.Commentf("cigar %s", test.cigar))
		c.Check(cigar.LeadingClip(), check.Equals, test.lead)
		c.Check(cigar.TrailingClip(), check.Equals, test.trail)
		c.Check(cigar.IsValid(test.read), check.Equals, true)
		c.Check(cigar.IsValid(test.read+1), check.Equals, false)
	}
	c.Check(mustCigar("5M2S5M").IsValid(12), check.Equals, false)
}

func (s *S) TestBlocks(c *check.C) {
	for _, test := range []struct {
		cigar string
		want  []Block
	}{
		{cigar: "10M", want: []Block{{Ref: 0, Read: 0, Len: 10}}},
		{
			cigar: "2H3S5M1I2D4M2S3H",
			want: []Block{
				{Ref: 0, Read: 3, Len: 5},
				{Ref: 7, Read: 9, Len: 4},
			},
		},
		{
			cigar: "4=1X5=",
			want: []Block{
				{Ref: 0, Read: 0, Len: 4},
				{Ref: 4, Read: 4, Len: 1},
				{Ref: 5, Read: 5, Len: 5},
			},
		},
		{
			cigar: "3M6N3M",
			want: []Block{
				{Ref: 0, Read: 0, Len: 3},
				{Ref: 9, Read: 3, Len: 3},
			},
		},
		{cigar: "5S", want: nil},
	} {
		c.Check(mustCigar(test.cigar).Blocks(), check.DeepEquals, test.want, check.Commentf("cigar %s", test.cigar))
	}
}

func (s *S) TestNormalize(c *check.C) {
	for _, test := range []struct {
		cigar, want string
	}{
		{cigar: "4=1X5=", want: "10M"},
		{cigar: "2H3S4=1X1I2D4=2S3H", want: "2H3S5M1I2D4M2S3H"},
		{cigar: "2M0I3M", want: "5M"},
		{cigar: "1I1I", want: "2I"},
		{cigar: "10M", want: "10M"},
	} {
		got := mustCigar(test.cigar).Normalize()
		c.Check(got.String(), check.Equals, test.want)
	}
	c.Check(Cigar(nil).Normalize(), check.HasLen, 0)
}

func (s *S) TestFlags(c *check.C) {
	c.Check((Paired | Reverse | Read1).String(), check.Equals, "p---r-1-----")
	c.Check(Flags(0).String(), check.Equals, "------------")
}

const samData = `@HD	VN:1.6	SO:coordinate
@SQ	SN:chr1	LN:41
r001	99	chr1	7	30	8M2I4M1D3M	=	37	39	TTAGATAAAGGATACTG	*
r002	0	chr1	9	30	3S6M1P1I4M	*	0	0	AAAAGATAAGGATA	IIIIIIIIIIIIII	NM:i:1

r003	4	*	0	0	*	*	0	0	GCCTAAGCTAA	*
`

func (s *S) TestReader(c *check.C) {
	sr, err := NewReader(strings.NewReader(samData))
	c.Assert(err, check.Equals, nil)
	c.Check(string(sr.Header()), check.Equals, "@HD\tVN:1.6\tSO:coordinate\n@SQ\tSN:chr1\tLN:41\n")

	var recs []*Record
	it := NewIterator(sr)
	for it.Next() {
		recs = append(recs, it.Record())
	}
	c.Assert(it.Error(), check.Equals, nil)
	c.Assert(recs, check.HasLen, 3)

	r := recs[0]
	c.Check(r.Name, check.Equals, "r001")
	c.Check(r.Flags, check.Equals, Paired|ProperPair|MateReverse|Read1)
	c.Check(r.Pos, check.Equals, 6)
	c.Check(r.End(), check.Equals, 6+8+4+1+3)
	c.Check(r.MateRef, check.Equals, "=")
	c.Check(r.MatePos, check.Equals, 36)
	c.Check(r.TempLen, check.Equals, 39)
	c.Check(r.Qual, check.IsNil)

	r = recs[1]
	c.Check(r.UnclippedStart(), check.Equals, 5)
	c.Check(r.UnclippedEnd(), check.Equals, 18)
	c.Check(string(r.Qual), check.Equals, "IIIIIIIIIIIIII")
	c.Check(r.Extra, check.DeepEquals, [][]byte{[]byte("NM:i:1")})

	r = recs[2]
	c.Check(r.IsUnmapped(), check.Equals, true)
	c.Check(r.Pos, check.Equals, -1)
	c.Check(r.Cigar, check.HasLen, 0)

	_, err = sr.Read()
	c.Check(err, check.Equals, io.EOF)
}

func (s *S) TestRoundTrip(c *check.C) {
	sr, err := NewReader(strings.NewReader(samData))
	c.Assert(err, check.Equals, nil)
	var buf bytes.Buffer
	sw, err := NewWriter(&buf, sr.Header())
	c.Assert(err, check.Equals, nil)
	for {
		r, err := sr.Read()
		if err == io.EOF {
			break
		}
		c.Assert(err, check.Equals, nil)
		c.Assert(sw.Write(r), check.Equals, nil)
	}
	c.Check(buf.String(), check.Equals, strings.Replace(samData, "\n\n", "\n", 1))
}

func (s *S) TestUnmarshalErrors(c *check.C) {
	for _, line := range []string{
		"r\t0\tchr1\t1\t30\t4M",
		"r\tx\tchr1\t1\t30\t4M\t*\t0\t0\tACGT\t*",
		"r\t0\tchr1\t1\t30\t4M\t*\t0\t0\tACG\t*",
		"r\t0\tchr1\t1\t30\t4M\t*\t0\t0\tACGT\tII",
		"r\t0\tchr1\t1\t300\t4M\t*\t0\t0\tACGT\t*",
	} {
		var r Record
		c.Check(r.UnmarshalText([]byte(line)), check.NotNil, check.Commentf("line %q", line))
	}

	r := &Record{Seq: []byte("ACGT"), Qual: []byte("II")}
	_, err := r.MarshalText()
	c.Check(err, check.NotNil)
}
