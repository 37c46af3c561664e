// Package config loads lpm settings from lpm.yaml / lpm.json and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backends understood by the artifact store factory.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Environment overrides.
const (
	EnvCacheDir  = "LPM_CACHE_DIR"
	EnvBackend   = "LPM_BACKEND"
	EnvRedisAddr = "LPM_REDIS_ADDR"
	EnvLogLevel  = "LPM_LOG_LEVEL"
)

// DefaultFiles are probed in order when no explicit config path is given.
var DefaultFiles = []string{"lpm.yaml", "lpm.yml", "lpm.json"}

// Redis configures the redis artifact backend.
type Redis struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// HTTP configures the serve command.
type HTTP struct {
	Port int `yaml:"port" json:"port"`
}

// Config is the resolved runtime configuration.
type Config struct {
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
	Backend  string `yaml:"backend" json:"backend"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	Redis    Redis  `yaml:"redis" json:"redis"`
	HTTP     HTTP   `yaml:"http" json:"http"`
}

// Default returns the configuration used when nothing is configured.
func Default() Config {
	return Config{
		CacheDir: "lp-cache",
		Backend:  BackendFile,
		LogLevel: "info",
		Redis: Redis{
			Addr:   "localhost:6379",
			Prefix: "lpm:artifact:",
		},
		HTTP: HTTP{Port: 8080},
	}
}

// Load reads path (YAML or JSON, chosen by extension) over the defaults and
// then applies environment overrides. An empty path probes DefaultFiles in
// the working directory; a missing default file is not an error, a missing
// explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	candidates := []string{path}
	if !explicit {
		candidates = DefaultFiles
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && !explicit {
				continue
			}
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decode(candidate, data, &cfg); err != nil {
			return cfg, err
		}
		break
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	// Default to YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvCacheDir); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LPM_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.HTTP.Port = port
		}
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want file, redis or memory)", c.Backend)
	}
	if c.Backend == BackendFile && c.CacheDir == "" {
		return fmt.Errorf("cache_dir cannot be empty for the file backend")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	return nil
}
