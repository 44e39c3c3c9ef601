// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/biogo/alndiff"
	"github.com/biogo/alndiff/internal/itf8"
	"github.com/biogo/alndiff/sam"
)

type block struct {
	method         Method
	count          int32
	compressedSize int32
	rawSize        int32
	data           []byte
	crc32          uint32
}

// newBlock returns a block holding count alignments from raw, compressed
// with method m.
func newBlock(m Method, count int, raw []byte) (*block, error) {
	b := &block{method: m, count: int32(count), rawSize: int32(len(raw))}
	switch m {
	case Raw:
		b.data = raw
	case XZ:
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		_, err = w.Write(raw)
		if err != nil {
			return nil, err
		}
		err = w.Close()
		if err != nil {
			return nil, err
		}
		b.data = buf.Bytes()
	default:
		return nil, fmt.Errorf("store: unknown compression method %v", m)
	}
	b.compressedSize = int32(len(b.data))
	return b, nil
}

func (b *block) writeTo(w io.Writer) error {
	crc := crc32.NewIEEE()
	mw := io.MultiWriter(w, crc)
	hdr := []byte{byte(b.method)}
	hdr = itf8.Append(hdr, b.count)
	hdr = itf8.Append(hdr, b.compressedSize)
	hdr = itf8.Append(hdr, b.rawSize)
	_, err := mw.Write(hdr)
	if err != nil {
		return err
	}
	_, err = mw.Write(b.data)
	if err != nil {
		return err
	}
	var sum [4]byte
	binary.LittleEndian.PutUint32(sum[:], crc.Sum32())
	_, err = w.Write(sum[:])
	return err
}

func (b *block) readFrom(r io.Reader) error {
	crc := crc32.NewIEEE()
	er := errorReader{r: io.TeeReader(r, crc)}
	var buf [4]byte
	_, err := io.ReadFull(&er, buf[:1])
	if err != nil {
		return err
	}
	b.method = Method(buf[0])
	b.count = er.itf8()
	b.compressedSize = er.itf8()
	b.rawSize = er.itf8()
	if er.err != nil {
		return unexpected(er.err)
	}
	if b.count < 0 || b.compressedSize < 0 || b.rawSize < 0 {
		return fmt.Errorf("%w: negative block size", ErrCorrupt)
	}
	if b.method == Raw && b.compressedSize != b.rawSize {
		return fmt.Errorf("%w: compressed (%d) != raw (%d) size for raw method", ErrCorrupt, b.compressedSize, b.rawSize)
	}
	b.data = make([]byte, b.compressedSize)
	_, err = io.ReadFull(&er, b.data)
	if err != nil {
		return unexpected(err)
	}
	sum := crc.Sum32()
	_, err = io.ReadFull(r, buf[:])
	if err != nil {
		return unexpected(err)
	}
	b.crc32 = binary.LittleEndian.Uint32(buf[:])
	if b.crc32 != sum {
		return fmt.Errorf("%w: block crc32 mismatch got:0x%08x want:0x%08x", ErrCorrupt, sum, b.crc32)
	}
	return nil
}

// alignments decodes the alignments held by the block.
func (b *block) alignments() ([]*alndiff.Alignment, error) {
	raw := b.data
	if b.method == XZ {
		r, err := xz.NewReader(bytes.NewReader(b.data))
		if err != nil {
			return nil, err
		}
		raw = make([]byte, b.rawSize)
		_, err = io.ReadFull(r, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	} else if b.method != Raw {
		return nil, fmt.Errorf("%w: unknown compression method %v", ErrCorrupt, b.method)
	}
	d := decoder{b: raw}
	alns := make([]*alndiff.Alignment, 0, b.count)
	for i := int32(0); i < b.count; i++ {
		a := d.alignment()
		if d.err != nil {
			return nil, d.err
		}
		alns = append(alns, a)
	}
	if len(d.b) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes in block", ErrCorrupt, len(d.b))
	}
	return alns, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// appendAlignment appends the encoding of a to b.
func appendAlignment(b []byte, a *alndiff.Alignment) []byte {
	b = appendBytes(b, []byte(a.Name))
	b = appendBytes(b, []byte(a.Chrom))
	b = itf8.Append(b, int32(a.UnclippedStart))
	b = itf8.Append(b, int32(a.Length))
	b = itf8.Append(b, int32(a.Flags))
	b = append(b, a.MapQ)
	b = appendBytes(b, a.Qual)
	b = appendBytes(b, []byte(a.MateRef))
	b = itf8.Append(b, int32(a.MatePos))
	b = itf8.Append(b, int32(a.TempLen))
	b = itf8.Append(b, int32(len(a.Extra)))
	for _, e := range a.Extra {
		b = appendBytes(b, e)
	}
	b = itf8.Append(b, int32(len(a.Differences)))
	var last int
	for _, d := range a.Differences {
		b = itf8.Append(b, int32(d.Pos-last))
		last = d.Pos
		b = append(b, byte(d.Op), byte(d.Kind))
		b = itf8.Append(b, int32(d.Len))
		switch d.Kind {
		case alndiff.Stored, alndiff.Truncated:
			b = appendBytes(b, d.Seq)
		}
	}
	return b
}

func appendBytes(b, s []byte) []byte {
	b = itf8.Append(b, int32(len(s)))
	return append(b, s...)
}

// decoder decodes alignments from block data. The first error
// encountered is retained and halts decoding.
type decoder struct {
	b   []byte
	err error
}

func (d *decoder) itf8() int32 {
	if d.err != nil {
		return 0
	}
	v, n, ok := itf8.Decode(d.b)
	if !ok {
		if n > len(d.b) {
			n = len(d.b)
		}
		d.err = fmt.Errorf("%w: failed to decode itf-8 stream %#v", ErrCorrupt, d.b[:n])
		return 0
	}
	d.b = d.b[n:]
	return v
}

func (d *decoder) byte() byte {
	if d.err != nil {
		return 0
	}
	if len(d.b) == 0 {
		d.err = fmt.Errorf("%w: unexpected end of block", ErrCorrupt)
		return 0
	}
	c := d.b[0]
	d.b = d.b[1:]
	return c
}

// bytes returns a copy of the next length-prefixed byte string,
// or nil if it is empty.
func (d *decoder) bytes() []byte {
	n := int(d.itf8())
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.b) < n {
		d.err = fmt.Errorf("%w: byte string length %d out of range", ErrCorrupt, n)
		return nil
	}
	if n == 0 {
		return nil
	}
	s := append([]byte(nil), d.b[:n]...)
	d.b = d.b[n:]
	return s
}

func (d *decoder) alignment() *alndiff.Alignment {
	a := &alndiff.Alignment{
		Name:           string(d.bytes()),
		Chrom:          string(d.bytes()),
		UnclippedStart: int(d.itf8()),
		Length:         int(d.itf8()),
		Flags:          sam.Flags(d.itf8()),
		MapQ:           d.byte(),
		Qual:           d.bytes(),
		MateRef:        string(d.bytes()),
		MatePos:        int(d.itf8()),
		TempLen:        int(d.itf8()),
	}
	n := int(d.itf8())
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.b) < n {
		d.err = fmt.Errorf("%w: optional field count %d out of range", ErrCorrupt, n)
		return nil
	}
	if n != 0 {
		a.Extra = make([][]byte, n)
	}
	for i := range a.Extra {
		a.Extra[i] = d.bytes()
	}
	n = int(d.itf8())
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.b) < n {
		d.err = fmt.Errorf("%w: difference count %d out of range", ErrCorrupt, n)
		return nil
	}
	if n != 0 {
		a.Differences = make([]alndiff.Difference, n)
	}
	var pos int
	for i := range a.Differences {
		pos += int(d.itf8())
		diff := alndiff.Difference{
			Pos:  pos,
			Op:   alndiff.Operation(d.byte()),
			Kind: alndiff.SeqKind(d.byte()),
			Len:  int(d.itf8()),
		}
		switch diff.Kind {
		case alndiff.Stored, alndiff.Truncated:
			diff.Seq = d.bytes()
		}
		if d.err != nil {
			return nil
		}
		if !diff.Op.IsValid() || !diff.Kind.IsValid() || diff.Len < 0 || diff.Pos < 0 {
			d.err = fmt.Errorf("%w: invalid difference %v", ErrCorrupt, diff)
			return nil
		}
		a.Differences[i] = diff
	}
	return a
}

type errorReader struct {
	r   io.Reader
	err error
}

func (r *errorReader) Read(b []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(b)
	if n == 0 {
		r.err = err
	}
	return n, err
}

func (r *errorReader) itf8() int32 {
	var buf [5]byte
	_, r.err = io.ReadFull(r, buf[:1])
	if r.err != nil {
		return 0
	}
	i, n, ok := itf8.Decode(buf[:1])
	if ok {
		return i
	}
	_, r.err = io.ReadFull(r, buf[1:n])
	if r.err != nil {
		return 0
	}
	i, _, ok = itf8.Decode(buf[:n])
	if !ok {
		r.err = fmt.Errorf("%w: failed to decode itf-8 stream %#v", ErrCorrupt, buf[:n])
	}
	return i
}
