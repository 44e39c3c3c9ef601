// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store implements a block container format for alignments held as
// difference lists.
//
// A store begins with a definition holding the magic bytes "ALDF", a two
// byte version and a 16 byte UUID identifying the file. It is followed by a
// series of blocks, terminated by an empty block. Each block is
//
//  method          byte      compression method
//  count           ITF-8     number of alignments
//  compressed size ITF-8     length of data
//  raw size        ITF-8     length of data after decompression
//  data            byte[]
//  crc32           uint32    little-endian IEEE CRC-32 of the preceding fields
//
// Block data holds the alignments one after another with all integers ITF-8
// encoded and byte strings prefixed by their ITF-8 length. Each alignment is
// its name, reference name, unclipped start, length, flags, mapping quality
// byte, qualities, mate reference name, mate position, template length, the
// count and bytes of its optional fields, and the count of its differences
// followed by each difference as a position delta, operation byte, kind
// byte, length and, for stored and truncated kinds, its bases.
package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Method is a block compression method.
type Method byte

const (
	Raw Method = iota // Uncompressed block data.
	XZ                // xz compressed block data.
)

// String returns the string representation of a Method.
func (m Method) String() string {
	switch m {
	case Raw:
		return "raw"
	case XZ:
		return "xz"
	default:
		return fmt.Sprintf("Method(%d)", byte(m))
	}
}

// ParseMethod returns the Method named by s.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "raw", "none":
		return Raw, nil
	case "xz":
		return XZ, nil
	}
	return 0, fmt.Errorf("store: unknown compression method %q", s)
}

// Version is the store format version written by Writer.
var Version = [2]byte{2, 0}

var magic = [4]byte{'A', 'L', 'D', 'F'}

// ErrCorrupt is matched by errors reporting malformed store data.
var ErrCorrupt = errors.New("store: corrupt data")

type definition struct {
	Magic   [4]byte
	Version [2]byte
	ID      uuid.UUID
}

func (d *definition) writeTo(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, d)
}

func (d *definition) readFrom(r io.Reader) error {
	err := binary.Read(r, binary.LittleEndian, d)
	if err != nil {
		return err
	}
	if !bytes.Equal(d.Magic[:], magic[:]) {
		return fmt.Errorf("store: not a difference store: magic bytes %q", d.Magic)
	}
	if d.Version[0] != Version[0] {
		return fmt.Errorf("store: unsupported version %d.%d", d.Version[0], d.Version[1])
	}
	return nil
}
