package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/buildinfo"
	errs "github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/layoutfile"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "tilegrid"

	defaultWidth  = 1200 // default frame width in pixels
	defaultHeight = 800  // default frame height in pixels
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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Tilegrid lays out resizable, nestable panels",
		Long:         `Tilegrid loads declarative panel layouts, resolves their resize edges, and applies drags with the stateful, passive or push policies.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.edgesCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Tree Loading
// =============================================================================

// layoutOpts are the flags that override values from a layout file.
type layoutOpts struct {
	style     string
	direction string
	tabbed    bool
}

func (o *layoutOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.style, "style", "", "resize style: stateful, passive, push (overrides the file)")
	cmd.Flags().StringVar(&o.direction, "direction", "", "default grid direction: h, v (overrides the file)")
	cmd.Flags().BoolVar(&o.tabbed, "tabbed", false, "render tiles as tabbed widgets")
}

// loadConfig reads path and applies flag overrides.
func loadConfig(path string, o layoutOpts) (grid.Config, error) {
	f, err := layoutfile.Load(path)
	if err != nil {
		return grid.Config{}, err
	}
	if o.style != "" {
		f.ResizeStyle = grid.ResizeStyle(o.style)
	}
	if o.direction != "" {
		if f.Defaults == nil {
			f.Defaults = &layoutfile.Defaults{}
		}
		f.Defaults.Direction = grid.Direction(o.direction)
	}
	f.Tabbed = f.Tabbed || o.tabbed
	cfg, err := f.Config()
	if err != nil {
		return grid.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// loadTree builds a tree from the layout file at path. Flushes run on sched,
// which defaults to a manual scheduler drained by the caller.
func (c *CLI) loadTree(path string, o layoutOpts, sched grid.Scheduler) (*grid.Tree, error) {
	cfg, err := loadConfig(path, o)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		c.SetLogLevel(LogDebug)
	}
	if sched == nil {
		sched = &grid.ManualScheduler{}
	}
	tree, err := grid.New(cfg, grid.Options{Scheduler: sched, Logger: c.Logger.WithPrefix(appName)})
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("layout loaded", "file", path, "nodes", tree.Len(), "style", cfg.ResizeStyle)
	return tree, nil
}

// findNode resolves ref as a node id first, then as a component id. An
// empty ref names the root.
func findNode(tree *grid.Tree, ref string) (grid.Child, error) {
	if ref == "" {
		return tree.Root(), nil
	}
	if n, ok := tree.Node(ref); ok {
		return n, nil
	}
	var found grid.Child
	tree.Walk(func(c grid.Child, _ int) bool {
		if found != nil {
			return false
		}
		if t, ok := c.(*grid.Tile); ok && t.ComponentID() == ref {
			found = t
		}
		return true
	})
	if found == nil {
		return nil, errs.New(errs.ErrCodeNotFound, "no node or component %q", ref)
	}
	return found, nil
}

// nodeName is the label used for a node in tables and trees.
func nodeName(c grid.Child) string {
	switch v := c.(type) {
	case *grid.Grid:
		return "grid " + string(v.Direction())
	case *grid.Tile:
		switch {
		case v.ComponentID() != "":
			return v.ComponentID()
		case v.Title() != "":
			return v.Title()
		case len(v.Tabs()) > 0:
			names := make([]string, len(v.Tabs()))
			for i, tab := range v.Tabs() {
				names[i] = nodeName(tab)
			}
			return "tabs(" + strings.Join(names, ",") + ")"
		}
	}
	return c.ID()
}

// parseSide validates a --side flag value.
func parseSide(s string) (grid.Side, error) {
	if err := errs.ValidateSide(s); err != nil {
		return "", err
	}
	return grid.Side(s), nil
}

// parseFormats parses a comma-separated format string into a slice.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}
