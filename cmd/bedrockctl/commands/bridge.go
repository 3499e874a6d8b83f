package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"bedrock/internal/domain"
	"bedrock/internal/transport"
)

var bridgeOfflineName string

// bridge: wire a Bridge between two in-process loopback transports —
// one accepting a real client, one dialing a real server — and drive
// a real client through it end to end, printing the resolved profile
// and the real server's StartGame world name. A real RakNet dial
// target is out of scope.
func bridgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Bridge a real client to a real server over in-process loopback transports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			upstreamListener := transport.NewLoopbackListener(0, 4)
			realServer := appCtx.NewServer(upstreamListener)
			go func() { _ = realServer.Start(ctx) }()

			downstreamListener := transport.NewLoopbackListener(0, 4)
			br := appCtx.NewBridge(downstreamListener, upstreamListener.Dial)
			go func() { _ = br.Start(ctx) }()

			client := appCtx.NewClient(downstreamListener.Dial, bridgeOfflineName, domain.Payload{})
			profile, startGame, err := client.Connect(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("bridged connection established for %s (uuid=%s)\n", profile.DisplayName, profile.UUID)
			fmt.Printf("real server's StartGame reached the real client: %q\n", startGame.WorldName)
			return nil
		},
	}
	cmd.Flags().StringVar(&bridgeOfflineName, "name", "Player", "offline display name the real client logs in as")
	return cmd
}
