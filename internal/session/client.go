package session

import (
	"context"
	"fmt"
	"log/slog"

	"bedrock/internal/auth"
	"bedrock/internal/catalog"
	"bedrock/internal/dispatch"
	"bedrock/internal/domain"
	"bedrock/internal/transport"
)

// ClientConfig bundles what a Client needs to dial and log in.
type ClientConfig struct {
	Dial        func(ctx context.Context) (transport.Conn, error)
	Catalog     *catalog.Catalog
	Broker      *auth.Broker
	Logger      *slog.Logger
	OfflineName string
	Payload     domain.Payload
}

// Client drives a single outbound Session from dial through spawn, the
// thin facade cmd/bedrockctl's connect command reaches into.
type Client struct {
	cfg ClientConfig
}

// NewClient builds a Client. Call Connect to dial and log in.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{cfg: cfg}
}

// Connect dials, drives the Session through the full handshake, and
// blocks until it reaches StateSpawned (success) or Run returns an
// error. It reports the resolved Profile and the StartGame packet the
// server sent along the way.
func (c *Client) Connect(ctx context.Context) (domain.Profile, catalog.StartGame, error) {
	conn, err := c.cfg.Dial(ctx)
	if err != nil {
		return domain.Profile{}, catalog.StartGame{}, fmt.Errorf("client: dial: %w", err)
	}

	s, err := New(Config{
		Role:        domain.RoleClient,
		Conn:        conn,
		Catalog:     c.cfg.Catalog,
		Broker:      c.cfg.Broker,
		Logger:      c.cfg.Logger,
		OfflineName: c.cfg.OfflineName,
		Payload:     c.cfg.Payload,
	})
	if err != nil {
		return domain.Profile{}, catalog.StartGame{}, fmt.Errorf("client: build session: %w", err)
	}

	var startGame catalog.StartGame
	s.Dispatcher().On("StartGame", func(pk domain.Packet, _ *dispatch.Signal) {
		startGame = pk.(catalog.StartGame)
	})

	spawned := make(chan struct{}, 1)
	s.OnState(func(st domain.State) {
		if st == domain.StateSpawned {
			select {
			case spawned <- struct{}{}:
			default:
			}
		}
	})

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx) }()

	select {
	case <-ctx.Done():
		return domain.Profile{}, catalog.StartGame{}, ctx.Err()
	case err := <-runErr:
		return domain.Profile{}, catalog.StartGame{}, err
	case <-spawned:
		return s.Profile(), startGame, nil
	}
}
