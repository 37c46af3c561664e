package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/lpm"
	"github.com/aretw0/lpm/internal/config"
	"github.com/aretw0/lpm/pkg/adapters/file"
	"github.com/aretw0/lpm/pkg/adapters/memory"
	"github.com/aretw0/lpm/pkg/adapters/redis"
	"github.com/aretw0/lpm/pkg/persistence/middleware"
	"github.com/aretw0/lpm/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// LockPrefix namespaces the name-record locks of the redis backend.
const LockPrefix = "lpm:"

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	CacheDir   string
	Backend    string
	Debug      bool
}

// LoadConfig loads the configuration and applies flag overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if opts.CacheDir != "" {
		cfg.CacheDir = opts.CacheDir
	}
	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// NewToolkit wires the configured artifact store into a Toolkit.
// The returned close function releases backend connections.
// reg may be nil to disable metrics.
func NewToolkit(cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*lpm.Toolkit, func() error, error) {
	opts := []lpm.Option{lpm.WithLogger(logger)}
	if reg != nil {
		opts = append(opts, lpm.WithMetrics(reg))
	}

	var (
		store   ports.ArtifactStore
		closeFn = func() error { return nil }
	)
	switch cfg.Backend {
	case config.BackendFile:
		fs, err := file.New(cfg.CacheDir, file.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing cache: %w", err)
		}
		store = fs
	case config.BackendMemory:
		store = memory.NewStore()
	case config.BackendRedis:
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		store = rs
		closeFn = rs.Close
		opts = append(opts, lpm.WithLocker(redis.NewLocker(rs.Client(), LockPrefix)))
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	if cfg.LogLevel == "debug" {
		store = middleware.Chain(store, middleware.NewLoggingMiddleware(logger))
	}

	logger.Debug("Artifact store ready", "backend", cfg.Backend, "cache_dir", cfg.CacheDir)
	return lpm.New(store, opts...), closeFn, nil
}
