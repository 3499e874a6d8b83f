package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bedrock/internal/transport"
)

// serve: run a Server over an in-process loopback listener, printing
// each connect/disconnect until interrupted. A real RakNet listener
// is out of scope; this exercises the same Server type a real one
// would drive.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run a server over an in-process loopback transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			listener := transport.NewLoopbackListener(0, 16)
			srv := appCtx.NewServer(listener)

			fmt.Println("serving on an in-process loopback transport; Ctrl+C to stop")
			return runUntilCancelled(ctx, srv.Start)
		},
	}
}

func runUntilCancelled(ctx context.Context, start func(context.Context) error) error {
	err := start(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
