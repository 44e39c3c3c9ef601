// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/exascience/pargo/parallel"

	"github.com/biogo/alndiff"
	"github.com/biogo/alndiff/fai"
)

// openInput returns a reader for path, or standard input if path
// is empty or "-".
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// bufferedOutput is a buffered output file.
type bufferedOutput struct {
	*bufio.Writer
	f *os.File
}

// createOutput returns a buffered writer to path, or standard output
// if path is empty or "-".
func createOutput(path string) (*bufferedOutput, error) {
	if path == "" || path == "-" {
		return &bufferedOutput{Writer: bufio.NewWriter(os.Stdout)}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &bufferedOutput{Writer: bufio.NewWriter(f), f: f}, nil
}

func (o *bufferedOutput) Close() error {
	err := o.Flush()
	if o.f == nil {
		return err
	}
	if cerr := o.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// openReference opens the indexed fasta file at path. An empty path
// returns a nil provider and file.
func openReference(path string) (alndiff.ReferenceProvider, *fai.File, error) {
	if path == "" {
		return nil, nil, nil
	}
	f, err := fai.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// forEach calls fn for each index of a batch of n items using the
// configured number of worker goroutines.
func forEach(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	parallel.Range(0, n, threads, func(low, high int) {
		for i := low; i < high; i++ {
			fn(i)
		}
	})
}

// newBar returns a started progress bar if progress reporting is
// requested, otherwise nil.
func newBar() *pb.ProgressBar {
	if !progress {
		return nil
	}
	return pb.Full.Start64(0)
}

func addBar(bar *pb.ProgressBar, n int) {
	if bar != nil {
		bar.Add(n)
	}
}

func finishBar(bar *pb.ProgressBar) {
	if bar != nil {
		bar.Finish()
	}
}
