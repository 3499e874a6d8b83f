package bridge_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"bedrock/internal/auth"
	"bedrock/internal/bridge"
	"bedrock/internal/catalog"
	"bedrock/internal/compress"
	"bedrock/internal/dispatch"
	"bedrock/internal/domain"
	"bedrock/internal/session"
	"bedrock/internal/transport"
)

// fixture wires a real client, a bridge downstream/upstream Pair, and
// a real server, each over its own loopback transport, and drives all
// three Run loops concurrently.
type fixture struct {
	realClient *session.Session
	realServer *session.Session
	pair       *bridge.Pair

	clientboundSeen []domain.Packet
	serverboundSeen []domain.Packet
	serverboundRaw  map[string][]byte
	mu              sync.Mutex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clientConn, dConn := transport.NewLoopback()
	uConn, serverConn := transport.NewLoopback()

	f := &fixture{serverboundRaw: make(map[string][]byte)}

	realClient, err := session.New(session.Config{
		Role:        domain.RoleClient,
		Conn:        clientConn,
		Catalog:     catalog.Default(),
		Broker:      auth.New(nil),
		OfflineName: "Alex",
	})
	if err != nil {
		t.Fatalf("new real client: %v", err)
	}
	realClient.Dispatcher().On(dispatch.Generic, func(pk domain.Packet, _ *dispatch.Signal) {
		f.mu.Lock()
		f.clientboundSeen = append(f.clientboundSeen, pk)
		f.mu.Unlock()
	})

	d, err := session.New(session.Config{
		Role:                  domain.RoleServer,
		Conn:                  dConn,
		Catalog:               catalog.Default(),
		Broker:                auth.New(nil),
		CompressionThreshold:  session.DefaultCompressionThreshold,
		CompressionMethod:     compress.MethodZlib,
		SuppressAutoResponses: true,
	})
	if err != nil {
		t.Fatalf("new downstream session: %v", err)
	}

	realServer, err := session.New(session.Config{
		Role:                 domain.RoleServer,
		Conn:                 serverConn,
		Catalog:              catalog.Default(),
		Broker:               auth.New(nil),
		CompressionThreshold: session.DefaultCompressionThreshold,
		CompressionMethod:    compress.MethodZlib,
	})
	if err != nil {
		t.Fatalf("new real server: %v", err)
	}
	realServer.Dispatcher().On(dispatch.Generic, func(pk domain.Packet, _ *dispatch.Signal) {
		f.mu.Lock()
		f.serverboundSeen = append(f.serverboundSeen, pk)
		f.mu.Unlock()
	})
	realServer.OnBody(func(body []byte) {
		if _, name, err := catalog.Default().PeekID(body); err == nil && name != "" {
			f.mu.Lock()
			f.serverboundRaw[name] = append([]byte(nil), body...)
			f.mu.Unlock()
		}
	})

	pair := bridge.New(bridge.Config{
		Downstream: d,
		Dial: func(ctx context.Context) (transport.Conn, error) {
			return uConn, nil
		},
		Catalog: catalog.Default(),
		Broker:  auth.New(nil),
	})

	f.realClient = realClient
	f.realServer = realServer
	f.pair = pair
	return f
}

func (f *fixture) seenClientbound(name string) domain.Packet {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pk := range f.clientboundSeen {
		if pk.Name() == name {
			return pk
		}
	}
	return nil
}

func (f *fixture) seenServerbound(name string) domain.Packet {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pk := range f.serverboundSeen {
		if pk.Name() == name {
			return pk
		}
	}
	return nil
}

func (f *fixture) rawServerbound(name string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.serverboundRaw[name]
	return body, ok
}

func (f *fixture) run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(3)
	go func() { defer wg.Done(); _ = f.realClient.Run(ctx) }()
	go func() { defer wg.Done(); _ = f.realServer.Run(ctx) }()
	go func() { defer wg.Done(); _ = f.pair.Run(ctx) }()
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

// TestS4TransparentPassthrough: a Text packet with no registered bridge
// hooks arrives at the real server content-identical to what the real
// client sent, exercising invariant 9 (byte-faithful passthrough when
// unobserved).
func TestS4TransparentPassthrough(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	f.run(ctx, &wg)

	waitFor(t, 6*time.Second, func() bool { return f.realClient.State() == domain.StateSpawned })

	if err := f.realClient.Send(catalog.Text{Message: "hello upstream"}); err != nil {
		t.Fatalf("send text: %v", err)
	}

	waitFor(t, 3*time.Second, func() bool { return f.seenServerbound("Text") != nil })
	got := f.seenServerbound("Text").(catalog.Text)
	if got.Message != "hello upstream" {
		t.Fatalf("real server saw %q, want unmodified %q", got.Message, "hello upstream")
	}

	wantBody, err := catalog.Default().Serialize(catalog.Text{Message: "hello upstream"})
	if err != nil {
		t.Fatalf("serialize expected body: %v", err)
	}
	gotBody, ok := f.rawServerbound("Text")
	if !ok {
		t.Fatal("real server never saw a raw Text body")
	}
	if string(gotBody) != string(wantBody) {
		t.Fatalf("real server's raw Text bytes = %x, want byte-identical %x", gotBody, wantBody)
	}

	cancel()
	wg.Wait()
}

// TestS5InterceptModifyAndCancel exercises invariant 8: a registered
// hook can rewrite a packet's fields before it reaches the other side,
// or cancel it outright.
func TestS5InterceptModifyAndCancel(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.pair.OnServerbound("Text", func(pk domain.Packet) (domain.Packet, bool) {
		txt := pk.(catalog.Text)
		txt.Message = "MODIFIED: " + txt.Message
		return txt, false
	})
	f.pair.OnClientbound("Text", func(pk domain.Packet) (domain.Packet, bool) {
		txt := pk.(catalog.Text)
		if txt.Message == "drop me" {
			return nil, true
		}
		return pk, false
	})

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	f.run(ctx, &wg)

	waitFor(t, 6*time.Second, func() bool { return f.realClient.State() == domain.StateSpawned })

	if err := f.realClient.Send(catalog.Text{Message: "hi"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 3*time.Second, func() bool { return f.seenServerbound("Text") != nil })
	if got := f.seenServerbound("Text").(catalog.Text).Message; got != "MODIFIED: hi" {
		t.Fatalf("server saw %q, want MODIFIED: hi", got)
	}

	if err := f.realServer.Send(catalog.Text{Message: "drop me"}); err != nil {
		t.Fatal(err)
	}
	if err := f.realServer.Send(catalog.Text{Message: "keep me"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 3*time.Second, func() bool { return f.seenClientbound("Text") != nil })

	cancel()
	wg.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pk := range f.clientboundSeen {
		if txt, ok := pk.(catalog.Text); ok && txt.Message == "drop me" {
			t.Fatal("cancelled text reached the real client")
		}
	}
}

// TestS6PreStartGameChunkQueue exercises invariant 10: a chunk the real
// server sends before its own StartGame is held back and only replayed
// to the real client once StartGame has crossed the bridge.
func TestS6PreStartGameChunkQueue(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	// Sent directly, ahead of either Run loop: by the time the upstream
	// session exists and starts draining this connection, these bytes
	// are already queued in front of anything the handshake produces.
	if err := f.realServer.Send(catalog.LevelChunk{ChunkX: 3, ChunkZ: -1, Payload: []byte("early chunk")}); err != nil {
		t.Fatalf("pre-send chunk: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	f.run(ctx, &wg)

	waitFor(t, 6*time.Second, func() bool { return f.realClient.State() == domain.StateSpawned })

	f.mu.Lock()
	var sawStartGame, sawChunkBeforeStartGame bool
	for _, pk := range f.clientboundSeen {
		switch pk.Name() {
		case "StartGame":
			sawStartGame = true
		case "LevelChunk":
			if !sawStartGame {
				sawChunkBeforeStartGame = true
			}
		}
	}
	f.mu.Unlock()

	if !sawStartGame {
		t.Fatal("real client never saw StartGame")
	}
	if sawChunkBeforeStartGame {
		t.Fatal("real client saw a chunk ahead of StartGame")
	}

	chunk := f.seenClientbound("LevelChunk")
	if chunk == nil {
		t.Fatal("queued chunk was never replayed to the real client")
	}
	if got := chunk.(catalog.LevelChunk); string(got.Payload) != "early chunk" {
		t.Fatalf("replayed chunk payload = %q, want %q", got.Payload, "early chunk")
	}

	cancel()
	wg.Wait()
}

// TestClientCacheStatusForcedOff exercises invariant 8's specific case:
// regardless of what the real client declares, the real server always
// sees ClientCacheStatus.Enabled == false.
func TestClientCacheStatusForcedOff(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	f.run(ctx, &wg)

	waitFor(t, 6*time.Second, func() bool { return f.realClient.State() == domain.StateSpawned })

	if err := f.realClient.Send(catalog.ClientCacheStatus{Enabled: true}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 3*time.Second, func() bool { return f.seenServerbound("ClientCacheStatus") != nil })

	got := f.seenServerbound("ClientCacheStatus").(catalog.ClientCacheStatus)
	if got.Enabled {
		t.Fatal("real server saw ClientCacheStatus.Enabled = true, want forced false")
	}

	cancel()
	wg.Wait()
}
