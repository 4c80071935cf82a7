package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/render/boxes"
)

// A terminal cell stands in for this many pixels, so pixel constraints keep
// their meaning on screen.
const (
	cellWidthPx  = 8
	cellHeightPx = 16
)

var (
	tileStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	selectedStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorCyan)
	draggingStyle = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(colorGreen)
	helpStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

// tuiCommand opens a layout in an interactive terminal view.
func (c *CLI) tuiCommand() *cobra.Command {
	var (
		lo      layoutOpts
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "tui [layout]",
		Short: "Drag panels of a layout interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The alternate screen owns the terminal; logs go to a file or nowhere.
			var out io.Writer = io.Discard
			if logFile != "" {
				f, err := os.Create(logFile)
				if err != nil {
					return fmt.Errorf("create %s: %w", logFile, err)
				}
				defer f.Close()
				out = f
			}
			c.Logger.SetOutput(out)

			sched := &teaScheduler{}
			tree, err := c.loadTree(args[0], lo, sched)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newLayoutModel(tree, sched), tea.WithAltScreen())
			sched.setSend(p.Send)
			_, err = p.Run()
			return err
		},
	}

	lo.register(cmd)
	cmd.Flags().StringVar(&logFile, "log", "", "write logs to this file")

	return cmd
}

// =============================================================================
// Scheduler
// =============================================================================

// flushMsg carries a scheduled commit flush into the program loop.
type flushMsg struct{ task *teaTask }

type teaTask struct {
	mu       sync.Mutex
	fn       func()
	canceled bool
}

func (t *teaTask) run() {
	t.mu.Lock()
	canceled := t.canceled
	t.mu.Unlock()
	if !canceled {
		t.fn()
	}
}

// teaScheduler posts flushes as messages so observers run on the UI
// goroutine between key presses, never concurrently with Update.
type teaScheduler struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (s *teaScheduler) setSend(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	s.mu.Unlock()
}

// Schedule implements grid.Scheduler. Send blocks until the loop receives
// the message, and Schedule is called from inside Update, so the send
// happens on its own goroutine.
func (s *teaScheduler) Schedule(fn func()) func() {
	task := &teaTask{fn: fn}
	s.mu.Lock()
	send := s.send
	s.mu.Unlock()
	if send != nil {
		go send(flushMsg{task: task})
	}
	return func() {
		task.mu.Lock()
		task.canceled = true
		task.mu.Unlock()
	}
}

// =============================================================================
// layoutModel - Interactive drag view
// =============================================================================

type layoutModel struct {
	tree   *grid.Tree
	sched  *teaScheduler
	layout *boxes.Layout

	tiles   []*grid.Tile
	cursor  int
	session *grid.DragSession
	side    grid.Side

	cols, rows int
	refreshes  int
	status     string
}

func newLayoutModel(tree *grid.Tree, sched *teaScheduler) *layoutModel {
	m := &layoutModel{tree: tree, sched: sched, cols: 80, rows: 24}
	m.layout = boxes.Attach(tree, m.pixelFrame(), false)
	tree.Walk(func(c grid.Child, _ int) bool {
		switch v := c.(type) {
		case *grid.Grid:
			_ = tree.SetObserver(v, grid.ObserverFunc(m.refresh))
		case *grid.Tile:
			if _, isTab := tree.Parent(v).(*grid.Tile); isTab {
				return false
			}
			m.tiles = append(m.tiles, v)
		}
		return true
	})
	m.status = "tab to select a panel, arrows to drag its edges"
	return m
}

// refresh re-arranges after a flushed commit changed a grid.
func (m *layoutModel) refresh() {
	m.layout.Arrange()
	m.refreshes++
}

func (m *layoutModel) pixelFrame() grid.Box {
	return grid.Box{Width: float64(m.cols * cellWidthPx), Height: float64(m.viewRows() * cellHeightPx)}
}

// viewRows leaves two lines for the status bar.
func (m *layoutModel) viewRows() int {
	return max(m.rows-2, 1)
}

func (m *layoutModel) Init() tea.Cmd {
	return nil
}

func (m *layoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case flushMsg:
		msg.task.run()
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.layout.Resize(m.pixelFrame())
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.endDrag()
			return m, tea.Quit
		case "tab":
			m.selectTile(1)
		case "shift+tab":
			m.selectTile(-1)
		case "enter", "esc":
			m.endDrag()
		case "right":
			m.drag(grid.SideRight, grid.SideLeft, cellWidthPx)
		case "left":
			m.drag(grid.SideRight, grid.SideLeft, -cellWidthPx)
		case "down":
			m.drag(grid.SideBottom, grid.SideTop, cellHeightPx)
		case "up":
			m.drag(grid.SideBottom, grid.SideTop, -cellHeightPx)
		case "t":
			m.nextTab()
		}
	}
	return m, nil
}

func (m *layoutModel) selected() *grid.Tile {
	if len(m.tiles) == 0 {
		return nil
	}
	return m.tiles[m.cursor]
}

func (m *layoutModel) selectTile(delta int) {
	if len(m.tiles) == 0 {
		return
	}
	m.endDrag()
	m.cursor = (m.cursor + delta + len(m.tiles)) % len(m.tiles)
	m.status = "selected " + nodeName(m.selected())
}

// drag moves the selected tile's primary edge, falling back to the opposite
// edge when the primary one has no resize partner.
func (m *layoutModel) drag(primary, fallback grid.Side, px float64) {
	t := m.selected()
	if t == nil {
		return
	}
	side := primary
	if !m.tree.EdgeInDirection(t, primary).Resizable {
		side = fallback
	}
	if m.session == nil || m.side != side {
		m.endDrag()
		s, err := m.tree.BeginDrag(t, side)
		if err != nil {
			m.status = err.Error()
			return
		}
		m.session, m.side = s, side
	}
	if _, err := m.session.Move(px); err != nil {
		m.status = err.Error()
		return
	}
	e := m.session.Edge()
	m.status = fmt.Sprintf("%s %s: %s %s / %s %s", nodeName(t), side,
		nodeName(e.Child), fmtWeight(e.Child.Weight()), nodeName(e.Neighbor), fmtWeight(e.Neighbor.Weight()))
}

func (m *layoutModel) endDrag() {
	if m.session == nil {
		return
	}
	m.session.End()
	m.session = nil
}

func (m *layoutModel) nextTab() {
	t := m.selected()
	if t == nil || len(t.Tabs()) == 0 {
		return
	}
	next := (t.ActiveTab() + 1) % len(t.Tabs())
	if _, err := m.tree.SetActiveTab(t, next, nil); err != nil {
		m.status = err.Error()
	}
}

func (m *layoutModel) View() string {
	cells := boxes.ArrangeCells(m.tree, grid.Box{Width: float64(m.cols), Height: float64(m.viewRows())})

	var b strings.Builder
	b.WriteString(m.renderNode(m.tree.Root(), cells))
	b.WriteString("\n")
	b.WriteString(StyleHighlight.Render(m.status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab select  ←→↑↓ drag  t next tab  enter end drag  q quit"))
	return b.String()
}

func (m *layoutModel) renderNode(c grid.Child, cells boxes.Boxes) string {
	box := cells[c.ID()]
	w, h := int(box.Width), int(box.Height)

	switch v := c.(type) {
	case *grid.Grid:
		children := v.Children()
		if len(children) == 0 {
			return lipgloss.NewStyle().Width(w).Height(h).Render("")
		}
		parts := make([]string, len(children))
		for i, ch := range children {
			parts[i] = m.renderNode(ch, cells)
		}
		if v.Direction() == grid.Vertical {
			return lipgloss.JoinVertical(lipgloss.Left, parts...)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	case *grid.Tile:
		return m.renderTile(v, w, h)
	}
	return ""
}

func (m *layoutModel) renderTile(t *grid.Tile, w, h int) string {
	if w < 3 || h < 3 {
		return lipgloss.NewStyle().Width(w).Height(h).Render("")
	}
	style := tileStyle
	if t == m.selected() {
		style = selectedStyle
		if m.session != nil {
			style = draggingStyle
		}
	}
	content, ok := m.tree.RenderTile(t)
	if !ok || content == "" {
		content = nodeName(t)
	}
	content += "\n" + StyleDim.Render(fmtWeight(t.Weight()))
	return style.
		Width(w - 2).Height(h - 2).
		MaxWidth(w).MaxHeight(h).
		Render(content)
}
