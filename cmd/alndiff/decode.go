// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/biogo/alndiff"
	"github.com/biogo/alndiff/fai"
	"github.com/biogo/alndiff/sam"
	"github.com/biogo/alndiff/store"
)

func decodeCommand() *cobra.Command {
	var (
		strict   bool
		collapse bool
	)
	cmd := &cobra.Command{
		Use:   "decode [flags] [in.aldf]",
		Short: "decode a difference store to SAM",
		Long: `decode reconstructs SAM alignments from a difference store.

Bases not held by the store are taken from the reference. Insertions whose
bases were truncated are written as '*'. Mate fields and optional fields
are written as they were encoded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in string
			if len(args) != 0 {
				in = args[0]
			}
			return decode(in, alndiff.Decoder{Strict: strict}, collapse)
		},
	}
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Indexed fasta reference")
	cmd.Flags().BoolVar(&strict, "strict", false, "Abort on malformed difference lists and undecodable records")
	cmd.Flags().BoolVar(&collapse, "collapse", false, "Write sequence matches and mismatches as M")
	cmd.Flags().BoolVarP(&progress, "progress", "p", false, "Show a progress bar")
	return cmd
}

// samHeader returns a SAM header describing the sequences of idx.
func samHeader(idx fai.Index) []byte {
	var buf bytes.Buffer
	buf.WriteString("@HD\tVN:1.6\tSO:unknown\n")
	for _, r := range idx.Records() {
		fmt.Fprintf(&buf, "@SQ\tSN:%s\tLN:%d\n", r.Name, r.Length)
	}
	return buf.Bytes()
}

func decode(in string, dec alndiff.Decoder, collapse bool) error {
	ref, refFile, err := openReference(reference)
	if err != nil {
		return err
	}
	var header []byte
	if refFile != nil {
		defer refFile.Close()
		header = samHeader(refFile.Index())
	}
	f, err := openInput(in)
	if err != nil {
		return err
	}
	defer f.Close()
	sr, err := store.NewReader(f)
	if err != nil {
		return err
	}
	log.WithField("id", sr.ID()).Debug("reading difference store")

	out, err := createOutput(output)
	if err != nil {
		return err
	}
	sw, err := sam.NewWriter(out, header)
	if err != nil {
		out.Close()
		return err
	}

	if batchSize < 1 {
		batchSize = 1
	}
	bar := newBar()
	var (
		alns    = make([]*alndiff.Alignment, 0, batchSize)
		recs    = make([]*sam.Record, batchSize)
		results = make([]*alndiff.Decoded, batchSize)
		errs    = make([]error, batchSize)
		written int
		skipped int
	)
	flush := func() error {
		forEach(len(alns), func(i int) {
			recs[i], results[i], errs[i] = alns[i].Record(ref, dec)
		})
		for i, r := range recs[:len(alns)] {
			if errs[i] != nil {
				if dec.Strict {
					return errs[i]
				}
				log.WithFields(log.Fields{"read": alns[i].Name, "error": errs[i]}).Warn("skipping record")
				skipped++
				continue
			}
			for _, w := range results[i].Warnings {
				log.WithFields(log.Fields{"read": r.Name, "warning": w}).Debug("decoded with warning")
			}
			if collapse {
				r.Cigar = r.Cigar.Normalize()
			}
			if len(r.Qual) != len(r.Seq) {
				r.Qual = nil
			}
			err := sw.Write(r)
			if err != nil {
				return err
			}
			written++
		}
		addBar(bar, len(alns))
		alns = alns[:0]
		return nil
	}
	for {
		a, err := sr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			out.Close()
			return fmt.Errorf("reading %s: %w", in, err)
		}
		alns = append(alns, a)
		if len(alns) == batchSize {
			if err = flush(); err != nil {
				out.Close()
				return err
			}
		}
	}
	err = flush()
	finishBar(bar)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"written": written, "skipped": skipped}).Info("decoded alignments")
	return nil
}
