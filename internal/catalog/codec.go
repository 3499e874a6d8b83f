package catalog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// writer is a tiny little-endian/varint-string binary encoder for the
// packet bodies the catalog serializes. Game-packet bodies beyond the
// handshake family are treated as opaque by the rest of the pipeline,
// so this only needs to be internally consistent, not byte-exact to
// any particular client implementation.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) Uint8(v uint8) { w.buf.WriteByte(v) }
func (w *writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}
func (w *writer) Int32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}
func (w *writer) Uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}
func (w *writer) Uint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) String(s string) {
	w.varint(uint64(len(s)))
	w.buf.WriteString(s)
}

func (w *writer) Bytes(b []byte) {
	w.varint(uint64(len(b)))
	w.buf.Write(b)
}

func (w *writer) varint(v uint64) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

func (w *writer) Out() []byte { return w.buf.Bytes() }

// reader is the corresponding decoder.
type reader struct {
	buf *bytes.Reader
}

func newReader(b []byte) *reader { return &reader{buf: bytes.NewReader(b)} }

func (r *reader) Uint8() (uint8, error) { return r.buf.ReadByte() }

func (r *reader) Bool() (bool, error) {
	b, err := r.buf.ReadByte()
	return b != 0, err
}

func (r *reader) Int32() (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.buf, b[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b[:])), nil
}

func (r *reader) Uint32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.buf, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (r *reader) Uint64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r.buf, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func (r *reader) String() (string, error) {
	n, err := r.varint()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.buf, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) Bytes() ([]byte, error) {
	n, err := r.varint()
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.buf, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *reader) varint() (uint64, error) {
	var value uint64
	var shift uint
	for {
		b, err := r.buf.ReadByte()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return value, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, fmt.Errorf("catalog: varint overflow")
		}
	}
}
