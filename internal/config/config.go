// Package config loads boardviz settings.
//
// Sources are applied in order, later ones winning:
//
//  1. built-in defaults
//  2. a TOML file (--config, or $XDG_CONFIG_HOME/boardviz/config.toml if present)
//  3. a .env file in the working directory
//  4. BOARDVIZ_* environment variables
//
// Command-line flags are applied by the CLI on top of the result.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/store"
)

const (
	appName = "boardviz"

	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "BOARDVIZ_"

	// DefaultAddr is the address the server listens on.
	DefaultAddr = ":8080"

	// DefaultPollInterval is how often live streams redraw.
	DefaultPollInterval = time.Second

	// DefaultCacheEntries bounds the server's in-memory artifact cache.
	DefaultCacheEntries = 256
)

// Config holds every setting the CLI and server read.
type Config struct {
	LogLevel string       `toml:"log_level"`
	Store    store.Config `toml:"store"`
	Render   Render       `toml:"render"`
	Server   Server       `toml:"server"`
	Cache    Cache        `toml:"cache"`
}

// Render holds defaults for render runs.
type Render struct {
	KeyPrefix string   `toml:"key_prefix"`
	Formats   []string `toml:"formats"`
	Scale     float64  `toml:"scale"`
}

// Server holds HTTP server settings.
type Server struct {
	Addr         string        `toml:"addr"`
	PollInterval time.Duration `toml:"poll_interval"`
	ReadOnly     bool          `toml:"read_only"`
	CacheEntries int           `toml:"cache_entries"`
}

// Cache holds the CLI's artifact cache settings.
type Cache struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Store:    store.Config{Kind: store.KindDir, Dir: "states", Format: "json"},
		Render:   Render{Formats: []string{"svg"}, Scale: 2},
		Server: Server{
			Addr:         DefaultAddr,
			PollInterval: DefaultPollInterval,
			CacheEntries: DefaultCacheEntries,
		},
	}
}

// Load reads the configuration. An explicit path must exist; with an empty
// path the default location is used only if a file is there.
func Load(path string) (*Config, error) {
	return load(path, ".env", os.LookupEnv)
}

func load(path, envFile string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			if explicit {
				return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "config file %s", path)
			}
		}
	}

	dotenv, err := readDotenv(envFile)
	if err != nil {
		return nil, err
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/boardviz/config.toml, falling back to
// ~/.config. It returns "" when no home directory is known.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName, "config.toml")
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "read %s", path)
	}
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return values, nil
}

// applyEnv overrides fields from BOARDVIZ_* variables.
func (c *Config) applyEnv(env func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := env(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("LOG_LEVEL", &c.LogLevel)
	str("STORE", &c.Store.Kind)
	str("DIR", &c.Store.Dir)
	str("FORMAT", &c.Store.Format)
	str("REDIS_ADDR", &c.Store.RedisAddr)
	str("REDIS_PASSWORD", &c.Store.RedisPassword)
	str("REDIS_PREFIX", &c.Store.KeyPrefix)
	str("MONGO_URI", &c.Store.MongoURI)
	str("MONGO_DATABASE", &c.Store.MongoDatabase)
	str("MONGO_COLLECTION", &c.Store.MongoCollection)
	str("KEY_PREFIX", &c.Render.KeyPrefix)
	str("ADDR", &c.Server.Addr)
	str("CACHE_DIR", &c.Cache.Dir)

	if v, ok := env(EnvPrefix + "FORMATS"); ok {
		c.Render.Formats = splitList(v)
	}
	if v, ok := env(EnvPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "%sREDIS_DB", EnvPrefix)
		}
		c.Store.RedisDB = n
	}
	if v, ok := env(EnvPrefix + "SCALE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "%sSCALE", EnvPrefix)
		}
		c.Render.Scale = f
	}
	if v, ok := env(EnvPrefix + "POLL_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "%sPOLL_INTERVAL", EnvPrefix)
		}
		c.Server.PollInterval = d
	}
	for name, dst := range map[string]*bool{
		"READ_ONLY":      &c.Server.ReadOnly,
		"CACHE_DISABLED": &c.Cache.Disabled,
	} {
		if v, ok := env(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, name)
			}
			*dst = b
		}
	}
	return nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return apperr.New(apperr.ErrCodeInvalidConfig, "unknown log level %q", c.LogLevel)
	}
	switch strings.ToLower(c.Store.Kind) {
	case store.KindMemory, store.KindDir, store.KindRedis, store.KindMongo:
	default:
		return apperr.New(apperr.ErrCodeInvalidConfig, "unknown store kind %q (must be memory, dir, redis or mongo)", c.Store.Kind)
	}
	if c.Server.PollInterval <= 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "poll interval must be positive")
	}
	if c.Render.Scale < 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "scale must not be negative")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
