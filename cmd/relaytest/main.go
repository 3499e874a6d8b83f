// Command relaytest is a tiny loopback harness: it wires a client
// straight through a server over an in-memory transport and reports
// whether the handshake reached StateSpawned, without a cobra command
// tree or any persistent state.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"bedrock/internal/auth"
	"bedrock/internal/catalog"
	"bedrock/internal/session"
	"bedrock/internal/transport"
)

func main() {
	listener := transport.NewLoopbackListener(0, 4)

	srv := session.NewServer(session.ServerConfig{
		Listener:             listener,
		Catalog:              catalog.Default(),
		Broker:               auth.New(nil),
		CompressionThreshold: session.DefaultCompressionThreshold,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		if err := srv.Start(ctx); err != nil && ctx.Err() == nil {
			log.Printf("relaytest: server stopped: %v", err)
		}
	}()

	client := session.NewClient(session.ClientConfig{
		Dial:        listener.Dial,
		Catalog:     catalog.Default(),
		Broker:      auth.New(nil),
		OfflineName: "RelayTest",
	})

	profile, startGame, err := client.Connect(ctx)
	if err != nil {
		log.Fatalf("relaytest: connect failed: %v", err)
	}
	fmt.Printf("relaytest: spawned as %s into %q (uuid=%s)\n", profile.DisplayName, startGame.WorldName, profile.UUID)
}
