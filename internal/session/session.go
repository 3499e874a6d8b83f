// Package session implements the Bedrock session pipeline's central
// state machine: network-settings negotiation, the Login/Handshake
// sequence, symmetric encryption bring-up, and steady-state packet
// dispatch, for all three personas (client, server, bridge-upstream).
package session

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"bedrock/internal/auth"
	"bedrock/internal/catalog"
	"bedrock/internal/cipher"
	"bedrock/internal/compress"
	"bedrock/internal/dispatch"
	"bedrock/internal/domain"
	"bedrock/internal/framing"
	"bedrock/internal/keys"
	"bedrock/internal/transport"
)

// ClientProtocol is the single negotiated protocol id this toolkit
// speaks (spec.md's non-goals exclude multi-version support).
const ClientProtocol int32 = 712

// DefaultCompressionThreshold matches the common default negotiated
// by real servers.
const DefaultCompressionThreshold = 256

// Config bundles everything a Session needs to drive the handshake.
type Config struct {
	Role       domain.Role
	Conn       transport.Conn
	Catalog    *catalog.Catalog
	Dispatcher *dispatch.Dispatcher
	Broker     *auth.Broker
	Logger     *slog.Logger

	// Client-only.
	OfflineName string
	Payload     domain.Payload

	// Server-only.
	CompressionThreshold int
	CompressionMethod    compress.Method

	// SuppressAutoResponses applies to both a server-role Session and a
	// bridge-upstream (client-role) Session: when true, the post-login
	// resource-pack/play-status dance still advances this Session's
	// state machine but stops authoring its own packet content. The
	// bridge package sets this on both the downstream Session, so that
	// content instead comes from whatever the real upstream server
	// sends, and the upstream Session, so U doesn't answer the real
	// server's resource-pack/play-status packets on D's behalf while
	// the real client's own forwarded responses are already in flight.
	SuppressAutoResponses bool
}

// Session is the central per-connection entity: peer address, role,
// negotiated protocol id, state, compression/encryption configuration,
// identity, counters, and the Framer/Compressor/Encryptor it owns
// exclusively. It holds a reference to its transport.Conn, never
// ownership of the underlying socket.
type Session struct {
	cfg Config

	mu    sync.Mutex
	state domain.State

	login           domain.LoginData
	sessionKey      *ecdsa.PrivateKey
	profile         domain.Profile
	receivedPayload domain.Payload // server-only: the client's Payload, recovered from its user chain

	stateHooks []StateHook
	bodyHooks  []BodyHook

	compressor *compress.Compressor
	compEnable bool

	encryptor  *cipher.Encryptor
	encEnabled bool

	sendMu sync.Mutex // serializes sendBodies: encrypt and hand-off as one step

	pending [][]byte // Queue()'d bodies awaiting the next flush
	rpStage int      // server-side: how many ResourcePackClientResponses seen

	disconnectOnce sync.Once
	closed         chan struct{}

	log *slog.Logger
}

// New constructs a Session in the Disconnected state. Call Run to
// drive it through the handshake and into steady-state dispatch.
func New(cfg Config) (*Session, error) {
	priv, err := keys.GenerateKeypair()
	if err != nil {
		return nil, fmt.Errorf("session: generate keypair: %w", err)
	}
	x5u, err := keys.EncodeSPKI(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("session: encode spki: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = dispatch.New(cfg.Logger)
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	s := &Session{
		cfg:        cfg,
		state:      initialState(cfg.Role),
		login:      domain.LoginData{SelfSignedX5U: x5u},
		sessionKey: priv,
		closed:     make(chan struct{}),
		log:        cfg.Logger,
	}
	return s, nil
}

func initialState(role domain.Role) domain.State {
	if role == domain.RoleServer {
		return domain.StateAwaitNetworkSettings
	}
	// A bridge's upstream session originates toward the real server, so
	// it drives the handshake exactly like a client.
	return domain.StateConnecting
}

// State reports the Session's current state machine node.
func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(next domain.State) {
	s.mu.Lock()
	s.state = next
	hooks := append([]StateHook(nil), s.stateHooks...)
	s.mu.Unlock()
	for _, h := range hooks {
		h(next)
	}
}

// StateHook is called synchronously whenever the Session's state
// changes. The bridge uses this to learn when a downstream Session
// has reached LOGGED_IN, its cue to bring the upstream Session up.
type StateHook func(domain.State)

// OnState registers fn to run on every subsequent state transition.
func (s *Session) OnState(fn StateHook) {
	s.mu.Lock()
	s.stateHooks = append(s.stateHooks, fn)
	s.mu.Unlock()
}

// BodyHook observes one inbound sub-packet's raw, still id-prefixed
// wire bytes, ahead of catalog decode. The Bridge Pair drives its own
// forwarding off this instead of the Dispatcher, so a packet nothing
// is inspecting can be relayed byte-for-byte instead of being decoded
// and re-serialized.
type BodyHook func(body []byte)

// OnBody registers fn to run for every inbound sub-packet, in arrival
// order, before it reaches catalog.Lookup.
func (s *Session) OnBody(fn BodyHook) {
	s.mu.Lock()
	s.bodyHooks = append(s.bodyHooks, fn)
	s.mu.Unlock()
}

func (s *Session) fireBodyHooks(body []byte) {
	s.mu.Lock()
	hooks := append([]BodyHook(nil), s.bodyHooks...)
	s.mu.Unlock()
	for _, h := range hooks {
		h(body)
	}
}

// Profile reports the Session's resolved identity: the offline or
// online profile for a client, the verified peer's profile for a
// server.
func (s *Session) Profile() domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// ReceivedPayload reports the Payload a server-role Session recovered
// from the client's user chain during Login. A bridge's downstream
// session uses this to hand the same Payload to its upstream session,
// so the real server sees the same skin/build-platform/device-id the
// real client presented.
func (s *Session) ReceivedPayload() domain.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receivedPayload
}

// Role reports the Session's configured persona.
func (s *Session) Role() domain.Role { return s.cfg.Role }

// On subscribes fn to packets named name (or dispatch.Generic for all
// packets) on this Session's Dispatcher.
func (s *Session) On(name string, fn dispatch.ListenerFunc) {
	s.cfg.Dispatcher.On(name, fn)
}

// Dispatcher exposes the Session's event bus, mainly so bridge code
// can install its own interception listeners.
func (s *Session) Dispatcher() *dispatch.Dispatcher { return s.cfg.Dispatcher }

// Catalog exposes the Session's packet catalog.
func (s *Session) Catalog() *catalog.Catalog { return s.cfg.Catalog }

// Queue buffers pk to be sent with the next flush instead of its own
// batch. The next Send() or SendBodies() drains it ahead of its own
// packet; Disconnect() does not send queued packets.
func (s *Session) Queue(pk domain.Packet) error {
	body, err := s.cfg.Catalog.Serialize(pk)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.pending = append(s.pending, body)
	s.mu.Unlock()
	return nil
}

// Send serializes pk, flushes any queued packets ahead of it in the
// same batch, and hands the framed/compressed/encrypted bytes to the
// transport. Sends are serialized: each batch is encrypted (advancing
// the send counter) and handed to the transport before the next batch
// starts, keeping outbound order matched to the cipher's counter
// sequence.
func (s *Session) Send(pk domain.Packet) error {
	body, err := s.cfg.Catalog.Serialize(pk)
	if err != nil {
		return err
	}
	return s.sendBodies(body)
}

func (s *Session) sendBodies(last []byte) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	bodies := append(s.pending, last)
	s.pending = nil
	compEnabled := s.compEnable
	encEnabled := s.encEnabled
	compressor := s.compressor
	encryptor := s.encryptor
	s.mu.Unlock()

	framed := framing.Frame(bodies)

	var payload []byte
	var err error
	if encEnabled {
		// Once encryption is on, the method byte and any deflate step
		// are both folded away: only ciphertext follows the leader.
		payload = framed
	} else if compEnabled {
		payload, err = compressor.Encode(framed)
		if err != nil {
			return err
		}
	} else {
		payload = framed
	}

	if encEnabled {
		payload = encryptor.Encrypt(payload)
	}

	out := make([]byte, 0, len(payload)+1)
	out = append(out, compress.GameLeader)
	out = append(out, payload...)
	return s.cfg.Conn.Send(out)
}

// recvBatch decodes one inbound RakNet buffer into its sub-packet
// bodies, reversing Send's pipeline.
func (s *Session) recvBatch(buf []byte) ([][]byte, error) {
	if len(buf) == 0 || buf[0] != compress.GameLeader {
		return nil, &domain.ProtocolError{State: s.State().String(), Event: "missing 0xFE leader"}
	}
	body := buf[1:]

	s.mu.Lock()
	compEnabled := s.compEnable
	encEnabled := s.encEnabled
	compressor := s.compressor
	encryptor := s.encryptor
	s.mu.Unlock()

	var framed []byte
	var err error
	if encEnabled {
		framed, err = encryptor.Decrypt(body)
		if err != nil {
			return nil, err
		}
	} else if compEnabled {
		framed, err = compressor.Decode(body)
		if err != nil {
			return nil, err
		}
	} else {
		framed = body
	}

	return framing.Unframe(framed)
}

// processBatch decodes each sub-packet via the catalog, advances the
// state machine, and fans decoded packets out through the Dispatcher.
// Per-packet decode failures are logged and dropped; the session
// continues. Sub-packets are processed in arrival order.
func (s *Session) processBatch(buf []byte) error {
	bodies, err := s.recvBatch(buf)
	if err != nil {
		return err
	}
	for _, body := range bodies {
		s.fireBodyHooks(body)
		pk, name, decErr := s.cfg.Catalog.Lookup(body)
		if decErr != nil {
			s.log.Warn("session: packet decode failed", "err", decErr)
			continue
		}
		if err := s.handle(name, pk); err != nil {
			return err
		}
		if s.cfg.Dispatcher.HasListeners(name) {
			s.cfg.Dispatcher.Emit(name, pk, nil)
		}
	}
	return nil
}

// RecvBodies blocks for one inbound batch and returns its decoded
// sub-packet bodies (each still id-prefixed) without running them
// through the state machine or the Dispatcher. It reads from the same
// Conn as Run. The Bridge Pair does not use it: it relays through
// OnBody hooks while Run keeps driving both of its Sessions.
func (s *Session) RecvBodies(ctx context.Context) ([][]byte, error) {
	buf, err := s.cfg.Conn.Recv(ctx)
	if err != nil {
		return nil, err
	}
	return s.recvBatch(buf)
}

// SendBodies frames, compresses, and encrypts bodies (each already
// id-prefixed, as returned by RecvBodies or Catalog.Serialize) as a
// single outbound batch, bypassing Queue/Send's own serialization.
func (s *Session) SendBodies(bodies ...[]byte) error {
	if len(bodies) == 0 {
		return nil
	}
	s.mu.Lock()
	s.pending = append(s.pending, bodies[:len(bodies)-1]...)
	s.mu.Unlock()
	return s.sendBodies(bodies[len(bodies)-1])
}

// enableEncryption derives the shared secret and installs the
// Encryptor. salt is the fixed salt-emoji bytes both sides mix in;
// peerX5U is the other side's ECDH public key as carried in the
// handshake token.
func (s *Session) enableEncryption(peerX5U string, salt []byte) error {
	peerPub, err := keys.DecodeSPKI(peerX5U)
	if err != nil {
		return &domain.AuthError{Reason: "decode peer x5u", Err: err}
	}
	secret, err := keys.DH(s.sessionKey, peerPub)
	if err != nil {
		return &domain.AuthError{Reason: "ecdh", Err: err}
	}

	h := sha256.New()
	h.Write(salt)
	h.Write(secret)
	secretHash := h.Sum(nil)
	iv := secretHash[:16]

	enc, err := cipher.New(secretHash, iv)
	if err != nil {
		return &domain.EncryptionError{Reason: "install cipher", Err: err}
	}

	s.mu.Lock()
	s.login.SharedSecret = secret
	s.login.SecretHash = secretHash
	s.login.IV = append([]byte(nil), iv...)
	s.encryptor = enc
	s.mu.Unlock()
	return nil
}

// Disconnect is idempotent: the first call tears down the cipher and
// notifies the transport; subsequent calls are no-ops.
func (s *Session) Disconnect(reason string) error {
	var err error
	s.disconnectOnce.Do(func() {
		s.log.Debug("session: disconnecting", "reason", reason)
		s.mu.Lock()
		if s.encryptor != nil {
			s.encryptor.Close()
		}
		s.login.Zero()
		s.state = domain.StateDisconnected
		s.mu.Unlock()
		close(s.closed)
		err = s.cfg.Conn.Close()
	})
	return err
}

// disconnectReasonFor reports the wire Disconnect reason for the fatal
// error categories that the protocol actually sends one for. Only
// ProtocolError and AuthError get a packet; TransportError and
// EncryptionError close without one, per their own doc comments.
func disconnectReasonFor(err error) (string, bool) {
	var protoErr *domain.ProtocolError
	if errors.As(err, &protoErr) {
		return "protocol", true
	}
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return "version mismatch", true
	}
	return "", false
}

// disconnectFor tears the session down after Run exits, sending a wire
// catalog.Disconnect first when err's category calls for one.
func (s *Session) disconnectFor(err error) {
	if reason, ok := disconnectReasonFor(err); ok {
		if sendErr := s.Send(catalog.Disconnect{Message: reason}); sendErr != nil {
			s.log.Debug("session: disconnect packet not sent", "err", sendErr)
		}
	}
	closeReason := "session ended"
	if err != nil {
		closeReason = err.Error()
	}
	_ = s.Disconnect(closeReason)
}

// Run drives the Session from its initial state through the handshake
// and into steady-state packet processing until ctx is cancelled or
// the peer disconnects.
func (s *Session) Run(ctx context.Context) (err error) {
	defer func() { s.disconnectFor(err) }()

	if s.cfg.Role != domain.RoleServer {
		if err = s.clientBegin(); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closed:
			return nil
		default:
		}

		var buf []byte
		buf, err = s.cfg.Conn.Recv(ctx)
		if err != nil {
			return err
		}
		if err = s.processBatch(buf); err != nil {
			return err
		}
	}
}
