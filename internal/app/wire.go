package app

import (
	"log/slog"
	"os"
	"path/filepath"

	"bedrock/internal/auth"
	"bedrock/internal/catalog"
	"bedrock/internal/compress"
	"bedrock/internal/logging"
	"bedrock/internal/store"
)

// Wire bundles the constructed collaborators every persona shares:
// the process-global Catalog, the Auth Broker, the token cache, and
// the logger. Session/Server/Client/Bridge are built per-command from
// these, not held here, since each command needs a different subset.
type Wire struct {
	Catalog     *catalog.Catalog
	Broker      *auth.Broker
	TokenCache  *store.TokenCache
	Logger      *slog.Logger
	Compression compress.Method
	Threshold   int
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	home := cfg.Home
	if home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(dir, ".bedrockctl")
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{Level: cfg.File.Logging.Level, Format: cfg.File.Logging.Format})
	logger := logging.L()

	tokenCache := store.NewTokenCache(home, cfg.File.Client.TokenCacheKey)

	// The online path's Xbox Live OAuth flow is out of scope; nil here
	// means CreateOnline always fails until a caller supplies its own
	// auth.OnlineProvider.
	broker := auth.New(nil)

	return &Wire{
		Catalog:     catalog.Default(),
		Broker:      broker,
		TokenCache:  tokenCache,
		Logger:      logger,
		Compression: compressionMethod(cfg.File.Server.CompressionMethod),
		Threshold:   cfg.File.Server.CompressionThreshold,
	}, nil
}

func compressionMethod(s string) compress.Method {
	switch s {
	case "snappy":
		return compress.MethodSnappy
	case "none":
		return compress.MethodNone
	default:
		return compress.MethodZlib
	}
}
