// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/biogo/alndiff"
	"github.com/biogo/alndiff/sam"
	"github.com/biogo/alndiff/store"
)

func encodeCommand() *cobra.Command {
	var (
		maxStored   int
		compression string
		blockSize   int
		strict      bool
	)
	cmd := &cobra.Command{
		Use:   "encode [flags] [in.sam]",
		Short: "encode SAM alignments as differences from the reference",
		Long: `encode reads SAM alignments and writes them to a difference store.

Without a reference, aligned bases are stored unresolved and deletions
carry only their lengths.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := store.ParseMethod(compression)
			if err != nil {
				return err
			}
			var in string
			if len(args) != 0 {
				in = args[0]
			}
			return encode(in, alndiff.Encoder{MaxStored: maxStored}, m, blockSize, strict)
		},
	}
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Indexed fasta reference")
	cmd.Flags().IntVarP(&maxStored, "max-stored", "m", alndiff.DefaultMaxStored, "Maximum stored bases per insertion, deletion or skip")
	cmd.Flags().StringVarP(&compression, "compress", "z", "xz", "Block compression method (raw or xz)")
	cmd.Flags().IntVar(&blockSize, "block-size", store.DefaultBlockSize, "Alignments per store block")
	cmd.Flags().BoolVar(&strict, "strict", false, "Abort on the first record that cannot be encoded")
	cmd.Flags().BoolVarP(&progress, "progress", "p", false, "Show a progress bar")
	return cmd
}

func encode(in string, enc alndiff.Encoder, m store.Method, blockSize int, strict bool) error {
	ref, refFile, err := openReference(reference)
	if err != nil {
		return err
	}
	if refFile != nil {
		defer refFile.Close()
	}
	f, err := openInput(in)
	if err != nil {
		return err
	}
	defer f.Close()
	sr, err := sam.NewReader(f)
	if err != nil {
		return err
	}

	out, err := createOutput(output)
	if err != nil {
		return err
	}
	sw, err := store.NewWriter(out, m, blockSize)
	if err != nil {
		out.Close()
		return err
	}
	log.WithField("id", sw.ID()).Debug("writing difference store")

	if batchSize < 1 {
		batchSize = 1
	}
	bar := newBar()
	var (
		recs    = make([]*sam.Record, 0, batchSize)
		alns    = make([]*alndiff.Alignment, batchSize)
		errs    = make([]error, batchSize)
		written int
		skipped int
	)
	flush := func() error {
		forEach(len(recs), func(i int) {
			alns[i], errs[i] = alndiff.NewAlignment(recs[i], ref, enc)
		})
		for i, a := range alns[:len(recs)] {
			if errs[i] != nil {
				if strict {
					return errs[i]
				}
				log.WithFields(log.Fields{"read": recs[i].Name, "error": errs[i]}).Warn("skipping record")
				skipped++
				continue
			}
			err := sw.Write(a)
			if err != nil {
				return err
			}
			written++
		}
		addBar(bar, len(recs))
		recs = recs[:0]
		return nil
	}
	for {
		r, err := sr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			out.Close()
			return fmt.Errorf("reading %s: %w", in, err)
		}
		recs = append(recs, r)
		if len(recs) == batchSize {
			if err = flush(); err != nil {
				out.Close()
				return err
			}
		}
	}
	err = flush()
	if err == nil {
		err = sw.Close()
	}
	finishBar(bar)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"written": written, "skipped": skipped}).Info("encoded alignments")
	return nil
}
