package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boardviz/pkg/board"
	"github.com/matzehuels/boardviz/pkg/render"
	"github.com/matzehuels/boardviz/pkg/store"
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		states int
		prefix string
		watch  time.Duration
	)

	cmd := &cobra.Command{
		Use:       "preview [values|pieces]",
		Short:     "Browse stored boards in the terminal",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: sceneNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene := render.SceneValues
			if len(args) == 1 {
				s, err := render.ParseScene(args[0])
				if err != nil {
					return err
				}
				scene = s
			}
			if prefix == "" {
				prefix = c.Config.Render.KeyPrefix
			}

			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			m := newPreviewModel(ctx, st, scene, states, prefix, watch)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().IntVar(&states, "states", 0, "number of state slots to show (default: scene default)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "state key prefix (default GameState)")
	cmd.Flags().DurationVar(&watch, "watch", 0, "reload every interval (0 disables)")

	return cmd
}

// =============================================================================
// previewModel - Interactive slot viewer
// =============================================================================

// slot is one loaded state slot.
type slot struct {
	key     string
	snap    board.Snapshot
	present bool
}

type (
	slotsMsg struct {
		slots []slot
		at    time.Time
	}
	errMsg  struct{ err error }
	tickMsg time.Time
)

// previewModel is the bubbletea model behind the preview command.
type previewModel struct {
	ctx      context.Context
	provider store.Provider
	scene    render.Scene
	count    int
	prefix   string
	watch    time.Duration

	slots    []slot
	cursor   int
	loadedAt time.Time
	err      error
	loading  bool
}

func newPreviewModel(ctx context.Context, p store.Provider, scene render.Scene, count int, prefix string, watch time.Duration) previewModel {
	if count <= 0 {
		count = scene.DefaultStates()
	}
	if prefix == "" {
		prefix = board.DefaultPrefix
	}
	return previewModel{
		ctx:      ctx,
		provider: p,
		scene:    scene,
		count:    count,
		prefix:   prefix,
		watch:    watch,
		loading:  true,
	}
}

// load reads every slot the scene would draw.
func (m previewModel) load() tea.Cmd {
	return func() tea.Msg {
		slots := make([]slot, m.count)
		for i := range slots {
			key := board.Key(m.prefix, i)
			snap, ok, err := m.provider.Snapshot(m.ctx, key)
			if err != nil {
				return errMsg{err}
			}
			slots[i] = slot{key: key, snap: snap, present: ok}
		}
		return slotsMsg{slots: slots, at: time.Now()}
	}
}

func (m previewModel) tick() tea.Cmd {
	if m.watch <= 0 {
		return nil
	}
	return tea.Tick(m.watch, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m previewModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k", "left", "h":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j", "right", "l":
			if m.cursor < m.count-1 {
				m.cursor++
			}
		case "r":
			m.loading = true
			return m, m.load()
		}
	case slotsMsg:
		m.slots = msg.slots
		m.loadedAt = msg.at
		m.loading = false
		m.err = nil
	case errMsg:
		m.err = msg.err
		m.loading = false
	case tickMsg:
		return m, tea.Batch(m.load(), m.tick())
	}
	return m, nil
}

var (
	previewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	previewPanelStyle    = lipgloss.NewStyle().PaddingLeft(2)
)

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("boardviz preview · " + string(m.scene)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ select  r reload  q quit"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error() + "\n")
		return b.String()
	}
	if m.loading && m.slots == nil {
		b.WriteString(StyleDim.Render("Loading…") + "\n")
		return b.String()
	}

	list := make([]string, 0, len(m.slots))
	for i, s := range m.slots {
		cursor, style := "  ", previewNormalStyle
		if i == m.cursor {
			cursor, style = "▸ ", previewSelectedStyle
		}
		line := cursor + style.Render(s.key)
		if !s.present {
			line += " " + StyleDim.Render("(missing)")
		}
		list = append(list, line)
	}

	var panel string
	if m.cursor < len(m.slots) && m.slots[m.cursor].present {
		panel = boardTable(m.slots[m.cursor].snap.Board)
	} else {
		panel = StyleDim.Render("no snapshot")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		strings.Join(list, "\n"),
		previewPanelStyle.Render(panel)))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d/%d present · loaded %s",
		m.present(), len(m.slots), m.loadedAt.Format("15:04:05"))))
	b.WriteString("\n")
	return b.String()
}

func (m previewModel) present() int {
	n := 0
	for _, s := range m.slots {
		if s.present {
			n++
		}
	}
	return n
}
