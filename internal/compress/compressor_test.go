package compress

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		method    Method
		threshold int
		payload   []byte
	}{
		{"below-threshold-zlib", MethodZlib, 512, bytes.Repeat([]byte{0x42}, 64)},
		{"above-threshold-zlib", MethodZlib, 512, bytes.Repeat([]byte{0x42}, 2048)},
		{"above-threshold-snappy", MethodSnappy, 16, []byte("hello world hello world hello world")},
		{"empty", MethodZlib, 0, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := New(tc.method, tc.threshold)
			enc, err := c.Encode(tc.payload)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			dec, err := c.Decode(enc)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !bytes.Equal(dec, tc.payload) {
				t.Fatalf("round trip mismatch: got %x want %x", dec, tc.payload)
			}
		})
	}
}

func TestEncodeBelowThresholdUsesMethodNone(t *testing.T) {
	t.Parallel()
	c := New(MethodZlib, 512)
	payload := []byte("small")
	enc, err := c.Encode(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if Method(enc[0]) != MethodNone {
		t.Fatalf("got method byte %#x, want MethodNone", enc[0])
	}
	if !bytes.Equal(enc[1:], payload) {
		t.Fatalf("payload carried verbatim mismatch: got %x want %x", enc[1:], payload)
	}
}

func TestDecodeUnsupportedMethod(t *testing.T) {
	t.Parallel()
	c := New(MethodZlib, 0)
	_, err := c.Decode([]byte{0x02, 1, 2, 3})
	if err == nil {
		t.Fatal("expected unsupported compression error")
	}
}
