package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boardviz/pkg/board"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/store"
)

// putCommand creates the put command for writing a snapshot.
func (c *CLI) putCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <file|->",
		Short: "Store a snapshot from a JSON or TOML file",
		Long: `Store a snapshot from a JSON or TOML file.

The document needs a "board" field holding 4 rows of 4 values:

  {"board": [[0, 1, 2, 3], [4, 5, 6, 7], [8, 9, 10, 11], [12, 13, 14, 15]]}

Files ending in .toml are read as TOML; everything else, including stdin, as JSON.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(args[1])
			if err != nil {
				return err
			}
			snap.Key = args[0]
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				if err := st.Put(ctx, snap); err != nil {
					return err
				}
				printSuccess("Stored %s", StyleHighlight.Render(snap.Key))
				return nil
			})
		},
	}
}

// rmCommand creates the rm command for deleting snapshots.
func (c *CLI) rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>...",
		Short: "Delete stored snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				for _, key := range args {
					if err := st.Delete(ctx, key); err != nil {
						return err
					}
					printSuccess("Deleted %s", StyleHighlight.Render(key))
				}
				return nil
			})
		},
	}
}

// lsCommand creates the ls command for listing stored keys.
func (c *CLI) lsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored snapshot keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				keys, err := st.Keys(ctx)
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					printInfo("No snapshots stored")
					return nil
				}
				for _, k := range keys {
					fmt.Println(k)
				}
				printDetail("%d snapshots in %s store", len(keys), c.Config.Store.Kind)
				return nil
			})
		},
	}
}

// showCommand creates the show command for printing one board.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <key>",
		Short: "Print a stored board as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				snap, ok, err := st.Snapshot(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return apperr.New(apperr.ErrCodeNotFound, "no snapshot %q", args[0])
				}
				fmt.Println(StyleTitle.Render(snap.Key))
				fmt.Println(boardTable(snap.Board))
				return nil
			})
		},
	}
}

// withStore opens the configured store, runs fn and closes the store.
func (c *CLI) withStore(ctx context.Context, fn func(context.Context, store.Store) error) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, st)
}

// readSnapshot decodes a snapshot document from path, or stdin for "-".
func readSnapshot(path string) (board.Snapshot, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return board.Snapshot{}, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return board.DecodeTOML(data)
	}
	return board.DecodeJSON(data)
}

// boardTable renders a board as a bordered 4x4 table. Rows of the table are
// board columns so the layout matches the drawn value grid.
func boardTable(b board.Board) string {
	rows := make([][]string, board.Size)
	for col := range board.Size {
		rows[col] = make([]string, board.Size)
		for row := range board.Size {
			rows[col][row] = styleCell(b[row][col])
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		BorderRow(true).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
		}).
		String()
}
