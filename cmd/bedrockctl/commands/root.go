// Package commands implements bedrockctl's cobra command tree.
package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bedrock/internal/app"
	appconfig "bedrock/internal/config"
)

var (
	home       string
	configPath string
	logLevel   string
	appCtx     *app.App
)

// Execute builds the command tree and runs it.
func Execute() error {
	root := &cobra.Command{
		Use:   "bedrockctl",
		Short: "Minecraft Bedrock Edition session pipeline toolkit",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".bedrockctl")
			}

			fileCfg := appconfig.Default()
			if configPath != "" {
				loaded, err := appconfig.Load(configPath)
				if err != nil {
					return err
				}
				fileCfg = loaded
			}
			if logLevel != "" {
				fileCfg.Logging.Level = logLevel
			}

			wire, err := app.NewWire(app.Config{Home: home, File: fileCfg})
			if err != nil {
				return err
			}
			appCtx = app.New(wire)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.bedrockctl)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(serveCmd(), connectCmd(), bridgeCmd())
	return root.Execute()
}
