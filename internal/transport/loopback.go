package transport

import (
	"context"
	"errors"
	"sync"
)

// loopbackConn is an in-memory Conn backed by a buffered channel,
// enough to drive the end-to-end scenarios without a real UDP socket.
type loopbackConn struct {
	name   string
	out    chan []byte
	in     chan []byte
	once   sync.Once
	closed chan struct{}
}

// NewLoopback returns a connected pair: bytes sent on one side arrive
// on Recv of the other, in order, exactly as RakNet's ordered channel
// 0 guarantees.
func NewLoopback() (Conn, Conn) {
	a2b := make(chan []byte, 64)
	b2a := make(chan []byte, 64)
	a := &loopbackConn{name: "a", out: a2b, in: b2a, closed: make(chan struct{})}
	b := &loopbackConn{name: "b", out: b2a, in: a2b, closed: make(chan struct{})}
	return a, b
}

func (c *loopbackConn) Send(buf []byte) error {
	cp := append([]byte(nil), buf...)
	select {
	case <-c.closed:
		return errors.New("transport: connection closed")
	case c.out <- cp:
		return nil
	}
}

func (c *loopbackConn) Recv(ctx context.Context) ([]byte, error) {
	select {
	case <-c.closed:
		return nil, errors.New("transport: connection closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	case buf, ok := <-c.in:
		if !ok {
			return nil, errors.New("transport: connection closed")
		}
		return buf, nil
	}
}

func (c *loopbackConn) RemoteAddr() string { return "loopback/" + c.name }

func (c *loopbackConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}
