// Package cli implements the boardviz command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boardviz/internal/config"
	"github.com/matzehuels/boardviz/pkg/buildinfo"
	"github.com/matzehuels/boardviz/pkg/cache"
	"github.com/matzehuels/boardviz/pkg/pipeline"
	"github.com/matzehuels/boardviz/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "boardviz"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	storeKind  string
	storeDir   string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Boardviz draws 4x4 board game snapshots as SVG",
		Long:              `Boardviz reads GameState snapshots from a store and draws them as value grids or piece grids, on the command line or over HTTP.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/boardviz/config.toml)")
	flags.StringVar(&c.storeKind, "store", "", "state store: dir, redis, mongo or memory")
	flags.StringVar(&c.storeDir, "dir", "", "state directory for the dir store")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.putCommand())
	root.AddCommand(c.rmCommand())
	root.AddCommand(c.lsCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration, applies global flags on top and attaches
// the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.storeKind != "" {
		cfg.Store.Kind = c.storeKind
	}
	if c.storeDir != "" {
		cfg.Store.Dir = c.storeDir
		if c.storeKind == "" {
			cfg.Store.Kind = store.KindDir
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg

	level := log.InfoLevel
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		level = lvl
	}
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Store & Runner Factory
// =============================================================================

// openStore opens the configured state store. Network backends show a
// spinner while connecting.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	c.Logger.Debug("opening store", "kind", cfg.Kind)

	if cfg.Kind != store.KindRedis && cfg.Kind != store.KindMongo {
		return store.Open(ctx, cfg)
	}
	spin := newSpinner(ctx, "Connecting to "+cfg.Kind)
	spin.Start()
	st, err := store.Open(ctx, cfg)
	spin.Stop()
	return st, err
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(p store.Provider, noCache bool) (*pipeline.Runner, error) {
	ca, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(p, ca, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// standard (~/.cache/boardviz/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{pipeline.FormatSVG}
	}
	return out
}
