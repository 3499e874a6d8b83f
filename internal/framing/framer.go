// Package framing concatenates and splits length-prefixed sub-packets
// inside a single batch. A Framer is pure and stateless: it knows
// nothing about compression or encryption, only varint-prefixed byte
// slices.
package framing

import (
	"bytes"
	"io"

	"bedrock/internal/domain"
)

const (
	segmentBits = 0x7F
	continueBit = 0x80
)

// Frame concatenates sub-packets, each preceded by its unsigned varint
// length.
func Frame(subPackets [][]byte) []byte {
	var buf bytes.Buffer
	for _, p := range subPackets {
		writeUvarint(&buf, uint64(len(p)))
		buf.Write(p)
	}
	return buf.Bytes()
}

// Unframe splits a framed batch back into its sub-packets, in order.
// It returns domain.ErrTruncatedFrame if a declared length runs past
// the remaining bytes.
func Unframe(batch []byte) ([][]byte, error) {
	r := bytes.NewReader(batch)
	var out [][]byte
	for r.Len() > 0 {
		n, err := readUvarint(r)
		if err != nil {
			return nil, domain.ErrTruncatedFrame
		}
		if uint64(r.Len()) < n {
			return nil, domain.ErrTruncatedFrame
		}
		sub := make([]byte, n)
		if _, err := io.ReadFull(r, sub); err != nil {
			return nil, domain.ErrTruncatedFrame
		}
		out = append(out, sub)
	}
	return out, nil
}

func writeUvarint(w *bytes.Buffer, v uint64) {
	for {
		b := byte(v & segmentBits)
		v >>= 7
		if v != 0 {
			b |= continueBit
		}
		w.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

func readUvarint(r *bytes.Reader) (uint64, error) {
	var value uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&segmentBits) << shift
		if b&continueBit == 0 {
			return value, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, io.ErrUnexpectedEOF
		}
	}
}
