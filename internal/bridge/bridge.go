package bridge

import (
	"context"
	"log/slog"

	"bedrock/internal/auth"
	"bedrock/internal/catalog"
	"bedrock/internal/domain"
	"bedrock/internal/session"
	"bedrock/internal/transport"
)

// BridgeConfig bundles what Bridge needs to accept downstream
// connections and build a Pair for each.
type BridgeConfig struct {
	Listener transport.Listener
	Dial     func(ctx context.Context) (transport.Conn, error)

	Catalog *catalog.Catalog
	Broker  *auth.Broker
	Logger  *slog.Logger

	// Connect fires with each newly constructed Pair before it starts
	// running, the caller's chance to register OnClientbound/
	// OnServerbound interception hooks before any traffic flows.
	Connect func(pair *Pair)
}

// Bridge accepts inbound connections and runs a Pair against the
// configured upstream for each, the many-downstream-connections
// analogue of session.Server for the bridge persona.
type Bridge struct {
	cfg BridgeConfig
	log *slog.Logger
}

// NewBridge builds a Bridge. Call Start to begin accepting.
func NewBridge(cfg BridgeConfig) *Bridge {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Bridge{cfg: cfg, log: cfg.Logger}
}

// Start accepts connections until ctx is cancelled or the Listener
// reports a fatal error. Each accepted connection becomes a
// downstream Session driving its own Pair in its own goroutine.
func (b *Bridge) Start(ctx context.Context) error {
	defer func() { _ = b.cfg.Listener.Close() }()

	for {
		conn, err := b.cfg.Listener.Accept(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return err
			}
		}
		b.handleConn(ctx, conn)
	}
}

func (b *Bridge) handleConn(ctx context.Context, conn transport.Conn) {
	downstream, err := session.New(session.Config{
		Role:                  domain.RoleServer,
		Conn:                  conn,
		Catalog:               b.cfg.Catalog,
		Broker:                b.cfg.Broker,
		Logger:                b.log,
		CompressionThreshold:  session.DefaultCompressionThreshold,
		SuppressAutoResponses: true,
	})
	if err != nil {
		b.log.Error("bridge: build downstream session failed", "peer", conn.RemoteAddr(), "err", err)
		_ = conn.Close()
		return
	}

	pair := New(Config{
		Downstream: downstream,
		Dial:       b.cfg.Dial,
		Catalog:    b.cfg.Catalog,
		Broker:     b.cfg.Broker,
		Logger:     b.log,
	})
	if b.cfg.Connect != nil {
		b.cfg.Connect(pair)
	}

	go func() {
		if err := pair.Run(ctx); err != nil {
			b.log.Debug("bridge: pair ended", "peer", conn.RemoteAddr(), "err", err)
		}
	}()
}
