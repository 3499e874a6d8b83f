package app

import (
	"bedrock/internal/config"
)

// Config holds runtime wiring options for building the app, layered
// on top of whatever internal/config.Config a file supplied.
type Config struct {
	Home string // state directory, e.g. $HOME/.bedrockctl

	File config.Config
}
