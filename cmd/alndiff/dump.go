// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/willf/bitset"

	"github.com/biogo/alndiff"
	"github.com/biogo/alndiff/fai"
	"github.com/biogo/alndiff/store"
)

func dumpCommand() *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "dump [in.aldf]",
		Short: "write the differences held in a store as text",
		Long: `dump writes one line per difference:

  name  chrom  position  operation  length  kind  sequence

Positions are zero-based reference coordinates.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := parseOperations(only)
			if err != nil {
				return err
			}
			var in string
			if len(args) != 0 {
				in = args[0]
			}
			return dump(in, ops)
		},
	}
	cmd.Flags().StringVar(&only, "only", "", "Comma-separated operations to write, for example INSERTION,DELETION")
	return cmd
}

// parseOperations returns the set of operations named in the comma-separated
// list s. An empty list selects all operations.
func parseOperations(s string) (*bitset.BitSet, error) {
	ops := bitset.New(8)
	if s == "" {
		for op := alndiff.Operation(0); op.IsValid(); op++ {
			ops.Set(uint(op))
		}
		return ops, nil
	}
outer:
	for _, name := range strings.Split(s, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		for op := alndiff.Operation(0); op.IsValid(); op++ {
			if op.String() == name {
				ops.Set(uint(op))
				continue outer
			}
		}
		return nil, fmt.Errorf("unknown operation %q", name)
	}
	return ops, nil
}

func dump(in string, ops *bitset.BitSet) error {
	f, err := openInput(in)
	if err != nil {
		return err
	}
	defer f.Close()
	sr, err := store.NewReader(f)
	if err != nil {
		return err
	}
	out, err := createOutput(output)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# store %s version %d.%d\n", sr.ID(), sr.Version()[0], sr.Version()[1])
	for {
		a, err := sr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			out.Close()
			return err
		}
		err = writeDifferences(out, a, ops)
		if err != nil {
			out.Close()
			return err
		}
	}
	return out.Close()
}

func writeDifferences(w io.Writer, a *alndiff.Alignment, ops *bitset.BitSet) error {
	for _, d := range a.Differences {
		if !ops.Test(uint(d.Op)) {
			continue
		}
		seq := "*"
		if len(d.Seq) != 0 {
			seq = string(d.Seq)
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%d\t%v\t%s\n",
			a.Name, a.Chrom, a.UnclippedStart+d.Pos, d.Op, d.Len, d.Kind, seq)
		if err != nil {
			return err
		}
	}
	return nil
}

func faidxCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "faidx ref.fa",
		Short: "write an FAI index for a fasta file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			idx, err := fai.NewIndex(f)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = args[0] + ".fai"
			}
			out, err := createOutput(path)
			if err != nil {
				return err
			}
			err = fai.WriteTo(out, idx)
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			return err
		},
	}
}
