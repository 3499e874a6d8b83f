// Package bridge implements the Bridge Pair: a downstream Session
// accepting a real client coupled to an upstream Session the bridge
// itself drives toward a real server, with byte-faithful interception
// of whatever steady-state traffic passes between them.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"bedrock/internal/auth"
	"bedrock/internal/catalog"
	"bedrock/internal/domain"
	"bedrock/internal/session"
	"bedrock/internal/transport"
)

// Listener observes one direction's traffic for one packet name. It
// returns the packet to actually forward (pk itself when unmodified)
// or cancel=true to drop it entirely.
type Listener func(pk domain.Packet) (fwd domain.Packet, cancel bool)

type direction int

const (
	directionServerbound direction = iota
	directionClientbound
)

// handshakeFamily packets are never relayed between D and U: each
// Session negotiates its own compression and encryption independently
// against its own peer.
var handshakeFamily = map[string]bool{
	"RequestNetworkSettings":  true,
	"NetworkSettings":         true,
	"Login":                   true,
	"ServerToClientHandshake": true,
	"ClientToServerHandshake": true,
}

// Config bundles what Pair needs to bring an upstream Session up once
// the downstream one has authenticated a real client.
type Config struct {
	// Downstream is the already-constructed server-role Session
	// accepting the real client. Its Config.SuppressAutoResponses must
	// be true: the downstream session's post-login content comes from
	// Dial's peer, not from its own synthesized resource-pack dance.
	Downstream *session.Session

	// Dial opens the connection toward the real server, once the
	// downstream session has logged the real client in.
	Dial func(ctx context.Context) (transport.Conn, error)

	Catalog *catalog.Catalog
	Broker  *auth.Broker
	Logger  *slog.Logger
}

// Pair couples a downstream and an upstream Session and relays
// whatever passes between them once both sides are past their own
// independent handshakes.
type Pair struct {
	cfg Config
	D   *session.Session
	log *slog.Logger

	mu               sync.Mutex
	U                *session.Session
	postStartGame    bool
	chunkQueue       [][]byte
	clientboundHooks map[string][]Listener
	serverboundHooks map[string][]Listener
	cache            *packetCache
	cat              *catalog.Catalog
}

// New builds a Pair around an already-constructed downstream Session.
// Call Run to drive it.
func New(cfg Config) *Pair {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cat := cfg.Catalog
	if cat == nil {
		cat = cfg.Downstream.Catalog()
	}
	return &Pair{
		cfg:              cfg,
		D:                cfg.Downstream,
		log:              cfg.Logger,
		clientboundHooks: make(map[string][]Listener),
		serverboundHooks: make(map[string][]Listener),
		cache:            newPacketCache(cat, 256),
		cat:              cat,
	}
}

// OnClientbound registers fn to observe packets named name as they
// travel from the real server toward the real client.
func (p *Pair) OnClientbound(name string, fn Listener) {
	p.mu.Lock()
	p.clientboundHooks[name] = append(p.clientboundHooks[name], fn)
	p.mu.Unlock()
}

// OnServerbound registers fn to observe packets named name as they
// travel from the real client toward the real server.
func (p *Pair) OnServerbound(name string, fn Listener) {
	p.mu.Lock()
	p.serverboundHooks[name] = append(p.serverboundHooks[name], fn)
	p.mu.Unlock()
}

// Run drives the downstream Session's own handshake, dials and brings
// up the upstream Session once the real client has logged in, and
// relays steady-state traffic bidirectionally until ctx is cancelled
// or either side disconnects.
func (p *Pair) Run(ctx context.Context) error {
	loggedIn := make(chan struct{}, 1)
	p.D.OnState(func(st domain.State) {
		if st == domain.StateLoggedIn {
			select {
			case loggedIn <- struct{}{}:
			default:
			}
		}
	})
	p.D.OnBody(func(body []byte) {
		p.forward(directionServerbound, body)
	})

	dErr := make(chan error, 1)
	go func() { dErr <- p.D.Run(ctx) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-dErr:
		// U never existed: nothing to notify.
		return err
	case <-loggedIn:
	}

	conn, err := p.cfg.Dial(ctx)
	if err != nil {
		return fmt.Errorf("bridge: dial upstream: %w", err)
	}
	u, err := session.New(session.Config{
		Role:                  domain.RoleBridgeUpstream,
		Conn:                  conn,
		Catalog:               p.cfg.Catalog,
		Broker:                p.cfg.Broker,
		Logger:                p.log,
		OfflineName:           p.D.Profile().DisplayName,
		Payload:               p.D.ReceivedPayload(),
		SuppressAutoResponses: true,
	})
	if err != nil {
		return fmt.Errorf("bridge: build upstream session: %w", err)
	}
	p.mu.Lock()
	p.U = u
	p.mu.Unlock()
	u.OnBody(func(body []byte) {
		p.forward(directionClientbound, body)
	})

	uErr := make(chan error, 1)
	go func() { uErr <- u.Run(ctx) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-dErr:
		p.notifyPeerDisconnect(u, err)
		return err
	case err := <-uErr:
		p.notifyPeerDisconnect(p.D, err)
		return err
	}
}

// notifyPeerDisconnect best-effort forwards a Disconnect to peer when
// the other side of the Pair has died, per the bridge's contract that
// both legs tear down together.
func (p *Pair) notifyPeerDisconnect(peer *session.Session, cause error) {
	reason := "peer disconnected"
	if cause != nil {
		reason = cause.Error()
	}
	if err := peer.Send(catalog.Disconnect{Message: reason}); err != nil {
		p.log.Debug("bridge: forward disconnect failed", "err", err)
	}
}

// forward implements the interception rules: handshake-family packets
// never cross, ClientCacheStatus is always forced off on its way to
// the real server, LevelChunk is deferred until the real client has
// seen its own StartGame, and everything else is relayed byte-for-byte
// unless a hook is actually registered for its name — only then is it
// decoded, run through the hook chain, and re-serialized.
func (p *Pair) forward(dir direction, body []byte) {
	_, name, err := p.cat.PeekID(body)
	if err != nil {
		p.log.Warn("bridge: peek packet id failed", "err", err)
		return
	}
	if handshakeFamily[name] {
		return
	}

	p.mu.Lock()
	u := p.U
	p.mu.Unlock()
	if u == nil {
		return
	}

	var target *session.Session
	var hooks []Listener
	var cachePrefix string
	forceCacheOff := false

	switch dir {
	case directionServerbound:
		target = u
		hooks = p.hooksFor(p.serverboundHooks, name)
		cachePrefix = "serverbound-" + name
		forceCacheOff = name == "ClientCacheStatus"
	case directionClientbound:
		target = p.D
		hooks = p.hooksFor(p.clientboundHooks, name)
		cachePrefix = "clientbound-" + name
		if name == "LevelChunk" && !p.isPostStartGame() {
			p.queueChunk(body)
			return
		}
	}

	if !forceCacheOff && len(hooks) == 0 {
		if err := target.SendBodies(body); err != nil {
			p.log.Error("bridge: forward failed", "packet", name, "err", err)
		}
	} else if err := p.forwardDecoded(target, cachePrefix, hooks, forceCacheOff, body); err != nil {
		p.log.Error("bridge: forward failed", "packet", name, "err", err)
	}

	if dir == directionClientbound && name == "StartGame" {
		p.flipPostStartGameAndFlush(target)
	}
}

// forwardDecoded handles the cases that need the typed packet: a
// mandatory field rewrite (ClientCacheStatus) and/or a registered
// Listener chain. A decode failure here still forwards the original
// bytes verbatim rather than dropping the packet.
func (p *Pair) forwardDecoded(target *session.Session, cachePrefix string, hooks []Listener, forceCacheOff bool, body []byte) error {
	pk, _, decErr := p.cat.Lookup(body)
	if decErr != nil {
		p.log.Warn("bridge: decode failed, forwarding raw", "err", decErr)
		return target.SendBodies(body)
	}

	if forceCacheOff {
		cs := pk.(catalog.ClientCacheStatus)
		cs.Enabled = false
		pk = cs
	}

	fwd, cancel := p.runHooks(cachePrefix, hooks, pk)
	if cancel {
		return nil
	}
	return target.Send(fwd)
}

func (p *Pair) hooksFor(table map[string][]Listener, name string) []Listener {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Listener(nil), table[name]...)
}

// runHooks chains hooks, short-circuiting on the first cancel. With no
// hooks registered it forwards pk unchanged without touching the
// cache at all, the common case for a bridge nobody is observing.
func (p *Pair) runHooks(cachePrefix string, hooks []Listener, pk domain.Packet) (domain.Packet, bool) {
	if len(hooks) == 0 {
		return pk, false
	}

	key, cacheable := p.cache.key(cachePrefix, pk)
	if cacheable {
		if cached, hit := p.cache.get(key); hit {
			return cached.fwd, cached.cancel
		}
	}

	fwd := pk
	cancelled := false
	for _, h := range hooks {
		out, cancel := h(fwd)
		if cancel {
			cancelled = true
			fwd = nil
			break
		}
		fwd = out
	}

	if cacheable {
		p.cache.put(key, cacheEntry{fwd: fwd, cancel: cancelled})
	}
	return fwd, cancelled
}

func (p *Pair) isPostStartGame() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.postStartGame
}

func (p *Pair) queueChunk(body []byte) {
	p.mu.Lock()
	p.chunkQueue = append(p.chunkQueue, append([]byte(nil), body...))
	p.mu.Unlock()
}

// flipPostStartGameAndFlush replays every chunk queued while waiting
// for StartGame, in arrival order and byte-for-byte, through the same
// SendBodies path a live chunk would take.
func (p *Pair) flipPostStartGameAndFlush(target *session.Session) {
	p.mu.Lock()
	p.postStartGame = true
	queued := p.chunkQueue
	p.chunkQueue = nil
	p.mu.Unlock()

	for _, body := range queued {
		if err := target.SendBodies(body); err != nil {
			p.log.Error("bridge: flush queued chunk failed", "err", err)
			return
		}
	}
}
