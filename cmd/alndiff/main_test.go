// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/biogo/alndiff"
	"github.com/biogo/alndiff/fai"
	"github.com/biogo/alndiff/sam"
	"github.com/biogo/alndiff/store"
)

const testFasta = `>chr1
GGGGGGGGGGTTGCAACGTA
GGTCCAGTACGTTAGCATGC
A
`

const testSAM = `@HD	VN:1.6
r1	67	chr1	11	60	10M	=	30	29	TTGAAACGTC	*	NM:i:2	RG:Z:lane1
r2	16	chr1	16	60	2H3S5M1I2D4M2S3H	*	0	0	GCAACGTCTTCCACC	*
r3	4	*	0	0	*	*	0	0	ACGT	*
`

func readSAM(t *testing.T, path string) ([]byte, []*sam.Record) {
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()
	sr, err := sam.NewReader(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var recs []*sam.Record
	for {
		r, err := sr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		recs = append(recs, r)
	}
	return sr.Header(), recs
}

func TestEncodeDecode(t *testing.T) {
	log.SetLevel(log.WarnLevel)
	dir := t.TempDir()
	refPath := filepath.Join(dir, "ref.fa")
	samPath := filepath.Join(dir, "in.sam")
	storePath := filepath.Join(dir, "reads.aldf")
	outPath := filepath.Join(dir, "out.sam")
	dumpPath := filepath.Join(dir, "reads.tsv")
	for path, data := range map[string]string{refPath: testFasta, samPath: testSAM} {
		err := os.WriteFile(path, []byte(data), 0o644)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	output = ""
	cmd := faidxCommand()
	cmd.SetArgs([]string{refPath})
	err := cmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error building index: %v", err)
	}
	f, err := os.Open(refPath + ".fai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx, err := fai.ReadFrom(f)
	f.Close()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := (fai.Record{Name: "chr1", Length: 41, Start: 6, BasesPerLine: 20, BytesPerLine: 21}); idx["chr1"] != want {
		t.Errorf("unexpected index record: got:%#v want:%#v", idx["chr1"], want)
	}

	reference = refPath
	threads = 2
	batchSize = 2
	progress = false

	output = storePath
	err = encode(samPath, alndiff.Encoder{}, store.XZ, 0, true)
	if err != nil {
		t.Fatalf("unexpected error encoding: %v", err)
	}

	output = outPath
	err = decode(storePath, alndiff.Decoder{Strict: true}, true)
	if err != nil {
		t.Fatalf("unexpected error decoding: %v", err)
	}

	_, want := readSAM(t, samPath)
	header, got := readSAM(t, outPath)
	if !bytes.Contains(header, []byte("@SQ\tSN:chr1\tLN:41\n")) {
		t.Errorf("missing reference line in header:\n%s", header)
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected number of records: got:%d want:%d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name {
			t.Errorf("unexpected name for record %d: got:%s want:%s", i, got[i].Name, want[i].Name)
		}
		if got[i].Pos != want[i].Pos {
			t.Errorf("unexpected position for %s: got:%d want:%d", want[i].Name, got[i].Pos, want[i].Pos)
		}
		if got[i].Flags != want[i].Flags {
			t.Errorf("unexpected flags for %s: got:%v want:%v", want[i].Name, got[i].Flags, want[i].Flags)
		}
		if !bytes.Equal(got[i].Seq, want[i].Seq) {
			t.Errorf("unexpected sequence for %s: got:%s want:%s", want[i].Name, got[i].Seq, want[i].Seq)
		}
		if got[i].MateRef != want[i].MateRef || got[i].MatePos != want[i].MatePos || got[i].TempLen != want[i].TempLen {
			t.Errorf("unexpected mate for %s: got:%s:%d:%d want:%s:%d:%d", want[i].Name,
				got[i].MateRef, got[i].MatePos, got[i].TempLen, want[i].MateRef, want[i].MatePos, want[i].TempLen)
		}
		if !bytes.Equal(bytes.Join(got[i].Extra, []byte{'\t'}), bytes.Join(want[i].Extra, []byte{'\t'})) {
			t.Errorf("unexpected optional fields for %s: got:%q want:%q", want[i].Name, got[i].Extra, want[i].Extra)
		}
		if got[i].Cigar.String() != want[i].Cigar.Normalize().String() {
			t.Errorf("unexpected cigar for %s: got:%v want:%v", want[i].Name, got[i].Cigar, want[i].Cigar)
		}
	}

	output = dumpPath
	ops, err := parseOperations("insertion, MISMATCH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = dump(storePath, ops)
	if err != nil {
		t.Fatalf("unexpected error dumping: %v", err)
	}
	b, err := os.ReadFile(dumpPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	wantLines := []string{
		"r1\tchr1\t13\tMISMATCH\t1\tstored\tA",
		"r1\tchr1\t19\tMISMATCH\t1\tstored\tC",
		"r2\tchr1\t19\tMISMATCH\t1\tstored\tC",
		"r2\tchr1\t20\tINSERTION\t1\tstored\tT",
	}
	if len(lines) != len(wantLines)+1 || !strings.HasPrefix(lines[0], "# store ") {
		t.Fatalf("unexpected dump:\n%s", b)
	}
	for i, l := range lines[1:] {
		if l != wantLines[i] {
			t.Errorf("unexpected dump line %d: got:%q want:%q", i, l, wantLines[i])
		}
	}

	_, err = parseOperations("INSERTION,FOO")
	if err == nil {
		t.Error("expected error for unknown operation")
	}
	output = ""
}
