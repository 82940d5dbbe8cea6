package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boardviz/internal/server"
	"github.com/matzehuels/boardviz/pkg/cache"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		poll     time.Duration
		readOnly bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scenes over HTTP",
		Long: `Serve scenes over HTTP.

  GET /scenes/values.svg        redraw the value grid
  GET /scenes/pieces.png        redraw the piece grid as PNG
  GET /scenes/pieces/live       websocket stream, pushed when the drawing changes
  PUT /states/GameState0        store a snapshot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("poll") {
				cfg.PollInterval = poll
			}
			if cmd.Flags().Changed("read-only") {
				cfg.ReadOnly = readOnly
			}

			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			artifacts, err := cache.NewMemoryCache(cfg.CacheEntries)
			if err != nil {
				return err
			}
			defer artifacts.Close()

			srv := server.New(st, artifacts, c.Logger, server.Options{
				PollInterval: cfg.PollInterval,
				ReadOnly:     cfg.ReadOnly,
				KeyPrefix:    c.Config.Render.KeyPrefix,
				Scale:        c.Config.Render.Scale,
			})
			printInfo("Serving %s store on %s", c.Config.Store.Kind, StyleHighlight.Render(cfg.Addr))
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().DurationVar(&poll, "poll", 0, "live stream redraw interval (default 1s)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "reject state writes")

	return cmd
}
