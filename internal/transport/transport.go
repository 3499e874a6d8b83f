// Package transport defines the boundary to the RakNet reliability
// layer, treated as an external collaborator by the rest of this
// toolkit (spec.md §6.1). Only an in-memory fake ships here; a real
// RakNet implementation is out of scope.
package transport

import "context"

// Conn is one encapsulated, ordered, channel-0 connection to a peer.
// The core consumes and produces opaque byte buffers over it; framing,
// compression, and encryption all happen above this boundary.
type Conn interface {
	Send(buf []byte) error
	Recv(ctx context.Context) ([]byte, error)
	RemoteAddr() string
	Close() error
}

// Listener accepts inbound connections, standing in for RakNet's
// Unconnected Ping / Open Connection handshake.
type Listener interface {
	Accept(ctx context.Context) (Conn, error)
	Close() error
}
