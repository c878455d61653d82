package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/untangle/pkg/cache"
	"github.com/matzehuels/untangle/pkg/errors"
	"github.com/matzehuels/untangle/pkg/layout"
	"github.com/matzehuels/untangle/pkg/render/svg"
)

// configFileName is the config file looked up in the working directory.
const configFileName = "untangle.toml"

// Config holds the file-based configuration. Every field maps to a
// command-line flag; flags win when both are set.
type Config struct {
	// Layout holds simulation defaults, overriding the built-in ones.
	Layout layout.Options `toml:"layout"`

	// Render holds SVG rendering defaults.
	Render svg.Options `toml:"render"`

	// Cache configures where cached layouts live.
	Cache CacheConfig `toml:"cache"`

	// Serve configures the HTTP API.
	Serve ServeConfig `toml:"serve"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Dir overrides the layout cache directory. Empty uses the
	// platform user cache dir.
	Dir string `toml:"dir"`

	// RedisAddr switches caching to Redis when non-empty (host:port).
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServeConfig holds HTTP server settings.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// defaultConfig returns the built-in configuration.
func defaultConfig() Config {
	return Config{
		Layout: layout.DefaultOptions(),
		Render: svg.DefaultOptions(),
		Serve:  ServeConfig{Addr: ":8311"},
	}
}

// loadConfig reads the configuration file and merges it over the defaults.
//
// Resolution order:
//  1. The explicit path (errors if missing)
//  2. ./untangle.toml
//  3. ~/.config/untangle/config.toml
//
// When no file is found, the built-in defaults are returned.
func loadConfig(explicit string) (Config, error) {
	cfg := defaultConfig()

	path, err := resolveConfigPath(explicit)
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// resolveConfigPath finds the config file to load, or "" when none exists.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", explicit)
		}
		return explicit, nil
	}

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	path := filepath.Join(home, ".config", "untangle", "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

// cacheDir returns the layout cache directory, creating nothing.
func cacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "untangle", "layouts"), nil
}

// openCache builds the cache backend described by cfg. A Redis address
// takes precedence over the file cache; failures to reach Redis are
// returned rather than silently degraded.
func openCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	if cfg.RedisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	dir := cfg.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return nil, err
		}
	}
	return cache.NewFileCache(dir)
}
