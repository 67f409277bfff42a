// Package keycodec implements the tagged-field binary record format the
// two database tables' keys and values are encoded with.
//
// The format is a small, self-describing tag/wire-type/value stream,
// deliberately shaped like the wire format of a schemaless serialization
// library (so it stays forwards-compatible: an unknown tag is skipped
// rather than rejected) without requiring a code generator to produce it.
// Once a comparator name is frozen (see internal/store), the byte layout of
// the fields it compares must never change; that constraint lives with the
// comparator, not with this package.
package keycodec

import (
	"encoding/binary"
	"math"

	"github.com/mfkiwl/geo-backtracer/internal/btstatus"
)

type wireType byte

const (
	wireVarint  wireType = 0
	wireFixed32 wireType = 1
	wireBytes   wireType = 2
)

// Writer accumulates tagged fields into a single byte record.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with a pre-sized backing buffer.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

func (w *Writer) putTag(tag byte, wt wireType) {
	w.buf = append(w.buf, (tag<<2)|byte(wt))
}

// PutUint64 appends a varint-encoded unsigned integer field.
func (w *Writer) PutUint64(tag byte, v uint64) {
	w.putTag(tag, wireVarint)
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], v)
	w.buf = append(w.buf, scratch[:n]...)
}

// PutFloat32 appends a fixed-width 32-bit float field.
func (w *Writer) PutFloat32(tag byte, v float32) {
	w.putTag(tag, wireFixed32)
	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], math.Float32bits(v))
	w.buf = append(w.buf, scratch[:]...)
}

// PutBytes appends a length-prefixed raw byte field. Repeating the same
// tag multiple times encodes a repeated field, the same convention
// protobuf's wire format uses for repeated sub-messages.
func (w *Writer) PutBytes(tag byte, v []byte) {
	w.putTag(tag, wireBytes)
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], uint64(len(v)))
	w.buf = append(w.buf, scratch[:n]...)
	w.buf = append(w.buf, v...)
}

// Bytes returns the encoded record.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reader decodes a tagged-field record one field at a time.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps data for field-by-field decoding.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Next advances to the next field, returning its tag and wire type. ok is
// false once the record is exhausted.
func (r *Reader) Next() (tag byte, wt wireType, ok bool, err error) {
	if r.pos >= len(r.buf) {
		return 0, 0, false, nil
	}
	b := r.buf[r.pos]
	r.pos++
	return b >> 2, wireType(b & 3), true, nil
}

// Uint64 decodes the value of the field most recently returned by Next,
// which must have wire type wireVarint.
func (r *Reader) Uint64() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, btstatus.New(btstatus.Serialization, "truncated varint field at offset %d", r.pos)
	}
	r.pos += n
	return v, nil
}

// Float32 decodes the value of the field most recently returned by Next,
// which must have wire type wireFixed32.
func (r *Reader) Float32() (float32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, btstatus.New(btstatus.Serialization, "truncated fixed32 field at offset %d", r.pos)
	}
	bits := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return math.Float32frombits(bits), nil
}

// Bytes decodes the value of the field most recently returned by Next,
// which must have wire type wireBytes. The returned slice aliases the
// Reader's input buffer and must not be retained past its lifetime
// without copying.
func (r *Reader) Bytes() ([]byte, error) {
	n, k := binary.Uvarint(r.buf[r.pos:])
	if k <= 0 {
		return nil, btstatus.New(btstatus.Serialization, "truncated length prefix at offset %d", r.pos)
	}
	r.pos += k
	if r.pos+int(n) > len(r.buf) {
		return nil, btstatus.New(btstatus.Serialization, "truncated bytes field at offset %d", r.pos)
	}
	v := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return v, nil
}

// Skip discards the value of the field most recently returned by Next,
// without knowing its semantic type, so unknown tags don't break decoding
// of records written by a newer version of this package.
func (r *Reader) Skip(wt wireType) error {
	switch wt {
	case wireVarint:
		_, err := r.Uint64()
		return err
	case wireFixed32:
		_, err := r.Float32()
		return err
	case wireBytes:
		_, err := r.Bytes()
		return err
	default:
		return btstatus.New(btstatus.Serialization, "unknown wire type %d", wt)
	}
}
