package transport

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestLoopbackSendRecv(t *testing.T) {
	t.Parallel()
	a, b := NewLoopback()
	defer a.Close()
	defer b.Close()

	if err := a.Send([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := b.Recv(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestLoopbackPreservesOrder(t *testing.T) {
	t.Parallel()
	a, b := NewLoopback()
	defer a.Close()
	defer b.Close()

	msgs := [][]byte{[]byte("1"), []byte("2"), []byte("3")}
	for _, m := range msgs {
		if err := a.Send(m); err != nil {
			t.Fatal(err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, want := range msgs {
		got, err := b.Recv(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestLoopbackListenerRateLimits(t *testing.T) {
	t.Parallel()
	l := NewLoopbackListener(0, 1) // burst 1, no refill
	defer l.Close()

	ctx := context.Background()
	if _, err := l.Dial(ctx); err != nil {
		t.Fatalf("first dial should succeed: %v", err)
	}
	if _, err := l.Dial(ctx); err == nil {
		t.Fatal("second dial should be rate-limited")
	}
}
