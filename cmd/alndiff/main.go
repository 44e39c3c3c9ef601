// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// alndiff converts SAM alignments to and from difference stores.
//
//  alndiff encode -r ref.fa -o reads.aldf reads.sam
//  alndiff decode -r ref.fa -o reads.sam reads.aldf
//  alndiff dump reads.aldf
//  alndiff faidx ref.fa
package main

import (
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	threads   int
	batchSize int
	reference string
	output    string
	progress  bool
)

func main() {
	root := &cobra.Command{
		Use:           "alndiff",
		Short:         "convert SAM alignments to and from reference difference stores",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log per-record diagnostics")
	root.PersistentFlags().IntVarP(&threads, "threads", "t", runtime.GOMAXPROCS(0), "Number of worker goroutines")
	root.PersistentFlags().IntVarP(&batchSize, "batch", "b", 4096, "Number of records processed per batch")
	root.PersistentFlags().StringVarP(&output, "output", "o", "", "Output path (default standard output)")

	root.AddCommand(encodeCommand(), decodeCommand(), dumpCommand(), faidxCommand())

	log.SetOutput(os.Stderr)
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
