package session

import (
	"context"
	"log/slog"

	"bedrock/internal/auth"
	"bedrock/internal/catalog"
	"bedrock/internal/compress"
	"bedrock/internal/domain"
	"bedrock/internal/transport"
)

// ServerConfig bundles what a Server needs to accept connections and
// drive a Session per peer.
type ServerConfig struct {
	Listener             transport.Listener
	Catalog              *catalog.Catalog
	Broker               *auth.Broker
	Logger               *slog.Logger
	CompressionThreshold int
	CompressionMethod    compress.Method

	// OnConnect fires once a newly accepted Session exists in the
	// Registry, before it starts running its handshake.
	OnConnect func(id string, s *Session)

	// OnDisconnect fires after a Session's Run loop returns, with the
	// reason Run exited (ctx.Err() when ctx was cancelled, nil when the
	// Session was disconnected locally).
	OnDisconnect func(id string, s *Session, reason error)
}

// Server accepts inbound connections over a transport.Listener and
// runs a server-role Session for each, tracking them in a Registry.
type Server struct {
	cfg      ServerConfig
	Sessions *Registry
	log      *slog.Logger
}

// NewServer builds a Server. Call Start to begin accepting.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{cfg: cfg, Sessions: NewRegistry(), log: cfg.Logger}
}

// Start accepts connections until ctx is cancelled or the Listener
// reports a fatal error. Each accepted connection gets its own
// goroutine running a Session to completion.
func (srv *Server) Start(ctx context.Context) error {
	defer func() { _ = srv.cfg.Listener.Close() }()

	for {
		conn, err := srv.cfg.Listener.Accept(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return err
			}
		}
		srv.handleConn(ctx, conn)
	}
}

func (srv *Server) handleConn(ctx context.Context, conn transport.Conn) {
	s, err := New(Config{
		Role:                 domain.RoleServer,
		Conn:                 conn,
		Catalog:              srv.cfg.Catalog,
		Broker:               srv.cfg.Broker,
		Logger:               srv.log,
		CompressionThreshold: srv.cfg.CompressionThreshold,
		CompressionMethod:    srv.cfg.CompressionMethod,
	})
	if err != nil {
		srv.log.Error("server: build session failed", "peer", conn.RemoteAddr(), "err", err)
		_ = conn.Close()
		return
	}

	id := srv.Sessions.Add(s)
	if srv.cfg.OnConnect != nil {
		srv.cfg.OnConnect(id, s)
	}

	go func() {
		runErr := s.Run(ctx)
		srv.Sessions.Remove(id)
		if srv.cfg.OnDisconnect != nil {
			srv.cfg.OnDisconnect(id, s, runErr)
		}
	}()
}
