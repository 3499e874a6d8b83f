package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"bedrock/internal/auth"
	"bedrock/internal/catalog"
	"bedrock/internal/cipher"
	"bedrock/internal/compress"
	"bedrock/internal/domain"
	"bedrock/internal/transport"
)

func newHandshakePair(t *testing.T) (*Session, *Session) {
	t.Helper()
	clientConn, serverConn := transport.NewLoopback()

	client, err := New(Config{
		Role:        domain.RoleClient,
		Conn:        clientConn,
		Catalog:     catalog.Default(),
		Broker:      auth.New(nil),
		OfflineName: "Steve",
	})
	if err != nil {
		t.Fatalf("new client session: %v", err)
	}
	server, err := New(Config{
		Role:                 domain.RoleServer,
		Conn:                 serverConn,
		Catalog:              catalog.Default(),
		Broker:               auth.New(nil),
		CompressionThreshold: DefaultCompressionThreshold,
		CompressionMethod:    compress.MethodZlib,
	})
	if err != nil {
		t.Fatalf("new server session: %v", err)
	}
	return client, server
}

// TestS1OfflineClientHandshake drives a full client/server handshake
// over an in-memory transport: the client reaches SPAWNED, the server
// reaches IN_GAME having sent StartGame and PlayStatus=PlayerSpawn, and the
// client's profile resolves to the deterministic offline UUID.
func TestS1OfflineClientHandshake(t *testing.T) {
	t.Parallel()
	client, server := newHandshakePair(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = client.Run(ctx) }()
	go func() { defer wg.Done(); _ = server.Run(ctx) }()

	// Run's teardown moves both sessions to DISCONNECTED once ctx is
	// cancelled, so the client's state is sampled while it still runs.
	var clientState domain.State
	deadline := time.Now().Add(4 * time.Second)
	for time.Now().Before(deadline) {
		clientState = client.State()
		if clientState == domain.StateSpawned && server.State() == domain.StateInGame {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	wg.Wait()

	if clientState != domain.StateSpawned {
		t.Fatalf("client did not reach SPAWNED: %s", clientState)
	}
	if client.profile.DisplayName != "Steve" {
		t.Fatalf("client profile display name = %q, want Steve", client.profile.DisplayName)
	}
	wantUUID := auth.OfflineUUID("Steve")
	if client.profile.UUID != wantUUID {
		t.Fatalf("client profile uuid = %q, want %q", client.profile.UUID, wantUUID)
	}
	if client.profile.XUID != "0" {
		t.Fatalf("client profile xuid = %q, want 0", client.profile.XUID)
	}
	if client.encryptor == nil {
		t.Fatal("client never installed an encryptor")
	}
}

// TestS2ThresholdBehavior: a framed batch under the negotiated
// threshold carries method byte "none" verbatim; one over it is
// deflated under method byte "zlib".
func TestS2ThresholdBehavior(t *testing.T) {
	t.Parallel()
	conn := &captureConn{}
	s, err := New(Config{Role: domain.RoleServer, Conn: conn, Catalog: catalog.Default()})
	if err != nil {
		t.Fatal(err)
	}
	s.compressor = compress.New(compress.MethodZlib, 512)
	s.compEnable = true

	small := domain.RawPacket{IDValue: 900, Bytes: make([]byte, 390)}
	if err := s.Send(small); err != nil {
		t.Fatal(err)
	}
	big := domain.RawPacket{IDValue: 900, Bytes: make([]byte, 2048)}
	if err := s.Send(big); err != nil {
		t.Fatal(err)
	}

	if len(conn.sent) != 2 {
		t.Fatalf("expected 2 sent batches, got %d", len(conn.sent))
	}
	if got := compress.Method(conn.sent[0][1]); got != compress.MethodNone {
		t.Fatalf("small batch method = %v, want MethodNone", got)
	}
	if got := compress.Method(conn.sent[1][1]); got != compress.MethodZlib {
		t.Fatalf("large batch method = %v, want MethodZlib", got)
	}
}

// TestS3EncryptionCounter sends consecutive Text packets after a
// manually-installed shared cipher; tampering with a ciphertext byte
// mid-stream must surface an integrity error and end the session right
// there. CFB8's 16-byte sliding shift register means the corrupted byte
// also poisons the keystream for whatever comes after it on the same
// stream, so the spec treats a checksum failure as session-terminating
// rather than something to recover from and keep reading past.
func TestS3EncryptionCounter(t *testing.T) {
	t.Parallel()
	sendConn, recvConn := transport.NewLoopback()
	sender, err := New(Config{Role: domain.RoleServer, Conn: sendConn, Catalog: catalog.Default()})
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := New(Config{Role: domain.RoleClient, Conn: recvConn, Catalog: catalog.Default()})
	if err != nil {
		t.Fatal(err)
	}

	key := make([]byte, 32)
	iv := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
	}
	for i := range iv {
		iv[i] = byte(i * 3)
	}
	senderEnc, err := cipher.New(key, iv)
	if err != nil {
		t.Fatal(err)
	}
	receiverEnc, err := cipher.New(key, iv)
	if err != nil {
		t.Fatal(err)
	}
	sender.encryptor = senderEnc
	sender.encEnabled = true
	receiver.encryptor = receiverEnc
	receiver.encEnabled = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tamperAt := 500
	for i := 1; i < tamperAt; i++ {
		if err := sender.Send(catalog.Text{Message: "hi"}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		buf, err := recvConn.Recv(ctx)
		if err != nil {
			t.Fatalf("recv %d: %v", i, err)
		}
		if err := receiver.processBatch(buf); err != nil {
			t.Fatalf("message %d: unexpected error: %v", i, err)
		}
	}
	if sender.encryptor.Counters().Send != uint64(tamperAt-1) {
		t.Fatalf("sender send counter = %d, want %d", sender.encryptor.Counters().Send, tamperAt-1)
	}

	if err := sender.Send(catalog.Text{Message: "hi"}); err != nil {
		t.Fatalf("send %d: %v", tamperAt, err)
	}
	buf, err := recvConn.Recv(ctx)
	if err != nil {
		t.Fatalf("recv %d: %v", tamperAt, err)
	}
	buf[len(buf)-1] ^= 0xFF

	err = receiver.processBatch(buf)
	if err == nil {
		t.Fatalf("message %d: expected integrity error after tampering", tamperAt)
	}
	receiver.Disconnect(err.Error())
	if receiver.State() != domain.StateDisconnected {
		t.Fatalf("receiver state = %v, want Disconnected after integrity failure", receiver.State())
	}
	select {
	case <-receiver.closed:
	default:
		t.Fatal("receiver.closed never closed after integrity failure")
	}
}

type captureConn struct {
	sent [][]byte
}

func (c *captureConn) Send(buf []byte) error {
	c.sent = append(c.sent, append([]byte(nil), buf...))
	return nil
}
func (c *captureConn) Recv(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (c *captureConn) RemoteAddr() string { return "capture" }
func (c *captureConn) Close() error       { return nil }
