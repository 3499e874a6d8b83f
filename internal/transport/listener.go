package transport

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// LoopbackListener is a test/harness Listener over in-memory Conns. It
// rate-limits Dial attempts the way a real RakNet listener would
// throttle unconnected-ping floods, standing in for the connection-
// attempt policy spec.md explicitly leaves to the RakNet layer —
// this toolkit still needs somewhere to exercise that policy in the
// harness binaries, so it lives here rather than in the protocol core.
type LoopbackListener struct {
	limiter *rate.Limiter
	pending chan Conn
	closed  chan struct{}
}

// NewLoopbackListener builds a listener accepting up to burst
// simultaneous connection attempts and refilling at ratePerSec/second
// thereafter.
func NewLoopbackListener(ratePerSec float64, burst int) *LoopbackListener {
	return &LoopbackListener{
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		pending: make(chan Conn, burst),
		closed:  make(chan struct{}),
	}
}

// Dial simulates an inbound client connecting to this listener: it
// creates a loopback pair, hands one side to Accept's caller, and
// returns the other side to the dialer. Returns an error if the rate
// limit is exceeded.
func (l *LoopbackListener) Dial(ctx context.Context) (Conn, error) {
	if !l.limiter.Allow() {
		return nil, fmt.Errorf("transport: connection attempt rate-limited")
	}
	serverSide, clientSide := NewLoopback()
	select {
	case <-l.closed:
		return nil, errors.New("transport: listener closed")
	case l.pending <- serverSide:
		return clientSide, nil
	}
}

func (l *LoopbackListener) Accept(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closed:
		return nil, errors.New("transport: listener closed")
	case c := <-l.pending:
		return c, nil
	}
}

func (l *LoopbackListener) Close() error {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
	return nil
}
