package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"bedrock/internal/domain"
	"bedrock/internal/transport"
)

var connectOfflineName string

// connect: drive a full Client handshake against a Server, both over
// an in-process loopback transport, printing the resolved profile and
// StartGame data. A real RakNet dial target is out of scope.
func connectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Run a client handshake against an in-process loopback server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			listener := transport.NewLoopbackListener(0, 4)
			srv := appCtx.NewServer(listener)
			go func() { _ = srv.Start(ctx) }()

			client := appCtx.NewClient(listener.Dial, connectOfflineName, domain.Payload{})
			profile, startGame, err := client.Connect(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("connected as %s (uuid=%s)\n", profile.DisplayName, profile.UUID)
			fmt.Printf("spawned into %q\n", startGame.WorldName)
			return nil
		},
	}
	cmd.Flags().StringVar(&connectOfflineName, "name", "Player", "offline display name to log in as")
	return cmd
}
