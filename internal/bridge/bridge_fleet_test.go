package bridge_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"bedrock/internal/auth"
	"bedrock/internal/bridge"
	"bedrock/internal/catalog"
	"bedrock/internal/domain"
	"bedrock/internal/session"
	"bedrock/internal/transport"
)

// TestBridgeAcceptsConnections exercises the Bridge fleet type's
// accept loop: a downstream connection arriving at the Listener
// yields a Connect callback with a usable Pair, one per connection.
func TestBridgeAcceptsConnections(t *testing.T) {
	t.Parallel()

	downstreamListener := transport.NewLoopbackListener(0, 4)
	upstreamListener := transport.NewLoopbackListener(0, 4)

	var mu sync.Mutex
	var pairs []*bridge.Pair
	br := bridge.NewBridge(bridge.BridgeConfig{
		Listener: downstreamListener,
		Dial:     upstreamListener.Dial,
		Catalog:  catalog.Default(),
		Broker:   auth.New(nil),
		Connect: func(p *bridge.Pair) {
			mu.Lock()
			pairs = append(pairs, p)
			mu.Unlock()
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()
	go func() { _ = br.Start(ctx) }()

	clientConn, err := downstreamListener.Dial(ctx)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	realClient, err := session.New(session.Config{
		Role:        domain.RoleClient,
		Conn:        clientConn,
		Catalog:     catalog.Default(),
		Broker:      auth.New(nil),
		OfflineName: "Fleet",
	})
	if err != nil {
		t.Fatalf("new real client: %v", err)
	}
	go func() { _ = realClient.Run(ctx) }()

	waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(pairs) == 1
	})
}
