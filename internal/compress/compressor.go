// Package compress implements the wire-level compression envelope
// used around a framed batch: a leading 0xFE game-packet marker, an
// optional method byte, and the (possibly deflated) framed bytes.
package compress

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/klauspost/compress/snappy"

	"bedrock/internal/domain"
)

// GameLeader is the RakNet game-packet tag every outbound batch begins
// with, unconditionally, encrypted or not.
const GameLeader byte = 0xFE

// Method identifies the compression used for a batch, matching the
// single wire byte that follows the leader when encryption is off.
type Method byte

const (
	MethodZlib   Method = 0x00
	MethodSnappy Method = 0x01
	MethodNone   Method = 0xFF
)

// Compressor deflates/inflates framed batches above a negotiated
// threshold. A zero-value Compressor defaults to MethodZlib and an
// unset threshold (0 — every non-empty batch gets deflated).
type Compressor struct {
	Method    Method
	Threshold int
}

// New builds a Compressor for the given method/threshold, as
// negotiated by NetworkSettings.
func New(method Method, threshold int) *Compressor {
	return &Compressor{Method: method, Threshold: threshold}
}

// Encode produces the bytes that follow the 0xFE leader when
// encryption is OFF: a method byte, then the framed bytes (deflated
// when they exceed the threshold and compression applies, verbatim
// otherwise).
func (c *Compressor) Encode(framed []byte) ([]byte, error) {
	if len(framed) <= c.Threshold || c.Method == MethodNone {
		out := make([]byte, 0, len(framed)+1)
		out = append(out, byte(MethodNone))
		return append(out, framed...), nil
	}

	deflated, err := c.deflate(framed)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(deflated)+1)
	out = append(out, byte(c.Method))
	return append(out, deflated...), nil
}

// Decode reverses Encode: strip the method byte, inflate if required.
func (c *Compressor) Decode(buf []byte) ([]byte, error) {
	if len(buf) == 0 {
		return nil, domain.ErrUnsupportedCompression
	}
	method := Method(buf[0])
	body := buf[1:]
	switch method {
	case MethodNone:
		return body, nil
	case MethodZlib:
		return inflateZlib(body)
	case MethodSnappy:
		return snappy.Decode(nil, body)
	default:
		return nil, domain.ErrUnsupportedCompression
	}
}

func (c *Compressor) deflate(framed []byte) ([]byte, error) {
	switch c.Method {
	case MethodZlib:
		var buf bytes.Buffer
		w, err := zlib.NewWriterLevel(&buf, 7)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(framed); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case MethodSnappy:
		return snappy.Encode(nil, framed), nil
	default:
		return nil, domain.ErrUnsupportedCompression
	}
}

func inflateZlib(body []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
