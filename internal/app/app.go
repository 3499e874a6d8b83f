package app

import (
	"context"

	"bedrock/internal/bridge"
	"bedrock/internal/domain"
	"bedrock/internal/session"
	"bedrock/internal/transport"
)

// App is the thin facade CLI commands reach into: given a Wire, it
// builds the persona-specific type (Server, Client, or Bridge) each
// command actually drives.
type App struct {
	Wire *Wire
}

// New builds an App around an already-constructed Wire.
func New(w *Wire) *App {
	return &App{Wire: w}
}

// NewServer builds a session.Server listening on listener.
func (a *App) NewServer(listener transport.Listener) *session.Server {
	return session.NewServer(session.ServerConfig{
		Listener:             listener,
		Catalog:              a.Wire.Catalog,
		Broker:               a.Wire.Broker,
		Logger:               a.Wire.Logger,
		CompressionThreshold: a.Wire.Threshold,
		CompressionMethod:    a.Wire.Compression,
	})
}

// NewClient builds a session.Client dialing through dial.
func (a *App) NewClient(dial func(ctx context.Context) (transport.Conn, error), offlineName string, payload domain.Payload) *session.Client {
	return session.NewClient(session.ClientConfig{
		Dial:        dial,
		Catalog:     a.Wire.Catalog,
		Broker:      a.Wire.Broker,
		Logger:      a.Wire.Logger,
		OfflineName: offlineName,
		Payload:     payload,
	})
}

// NewBridge builds a bridge.Bridge accepting on listener and dialing
// upstream connections through dial.
func (a *App) NewBridge(listener transport.Listener, dial func(ctx context.Context) (transport.Conn, error)) *bridge.Bridge {
	return bridge.NewBridge(bridge.BridgeConfig{
		Listener: listener,
		Dial:     dial,
		Catalog:  a.Wire.Catalog,
		Broker:   a.Wire.Broker,
		Logger:   a.Wire.Logger,
	})
}
