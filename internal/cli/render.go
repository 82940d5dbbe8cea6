package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/pipeline"
	"github.com/matzehuels/boardviz/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string  // output file path (or base path for multiple formats)
	formats string  // comma-separated output formats
	states  int     // number of slots read (0 keeps the scene default)
	prefix  string  // slot key prefix
	scale   float64 // PNG scale factor
	noCache bool    // bypass the artifact cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:       "render <values|pieces>",
		Short:     "Draw a scene from stored snapshots",
		Long:      "Draw a scene from stored snapshots.\n\nvalues draws the cell values of GameState0 and GameState1.\npieces draws coloured squares for GameState0 through GameState12.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: sceneNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().IntVar(&opts.states, "states", 0, "number of state slots to read (default: 2 for values, 13 for pieces)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "state key prefix (default GameState)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func sceneNames() []string {
	var names []string
	for _, s := range render.Scenes() {
		names = append(names, string(s))
	}
	return names
}

// runRender draws the scene and writes one file per format.
func (c *CLI) runRender(ctx context.Context, scene string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	popts := pipeline.Options{
		Scene:     scene,
		Formats:   c.Config.Render.Formats,
		Scale:     c.Config.Render.Scale,
		KeyPrefix: c.Config.Render.KeyPrefix,
		States:    opts.states,
		NoCache:   opts.noCache,
	}
	if opts.formats != "" {
		popts.Formats = parseFormats(opts.formats)
	}
	if opts.scale > 0 {
		popts.Scale = opts.scale
	}
	if opts.prefix != "" {
		popts.KeyPrefix = opts.prefix
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if opts.output == "-" && len(popts.Formats) != 1 {
		return apperr.New(apperr.ErrCodeInvalidInput, "writing to stdout needs exactly one format")
	}

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	runner, err := c.newRunner(st, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}

	if opts.output == "-" {
		_, err := os.Stdout.Write(result.Artifacts[popts.Formats[0]])
		return err
	}

	paths := outputPaths(opts.output, popts.Scene, popts.Formats)
	for _, format := range popts.Formats {
		if err := writeFile(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}

	prog.done("Rendered " + popts.Scene)
	printSuccess("Rendered %s", StyleHighlight.Render(popts.Scene))
	printStats(result.Draw, result.Stats.CacheHits > 0)
	for _, format := range popts.Formats {
		printFile(paths[format])
	}
	if result.Draw.States == 0 {
		printWarning("No snapshots found for %s", popts.Scene)
		printNextStep("Store one with", appName+" put GameState0 board.json")
	}
	return nil
}

// outputPaths maps each format to its output file. With one format the
// output flag is used as-is; otherwise it is a base path and the format is
// appended. An empty output derives the name from the scene.
func outputPaths(output, scene string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, scene)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath strips a known format extension from output, or returns the
// scene name when output is empty.
func basePath(output, scene string) string {
	if output == "" {
		return scene
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
