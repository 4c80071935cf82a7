package cli

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/layoutfile"
	"github.com/matzehuels/tilegrid/pkg/render/boxes"
)

// resizeOpts holds the command-line flags for the resize command.
type resizeOpts struct {
	layout layoutOpts
	node   string    // node id or component id owning the edge
	side   string    // side of the node to drag
	region string    // region a positive step shrinks
	steps  []float64 // successive drag amounts
	pixels bool      // interpret steps as pointer pixels
	width  float64   // frame width for pixel drags
	height float64   // frame height for pixel drags
	output string    // write the resulting description here
}

// resizeCommand drags one edge of a layout through a sequence of steps.
func (c *CLI) resizeCommand() *cobra.Command {
	opts := resizeOpts{
		side:   string(grid.SideRight),
		region: string(grid.RegionNeighbor),
		width:  defaultWidth,
		height: defaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "resize [layout]",
		Short: "Drag an edge of a node and print the resulting weights",
		Long: `Drag an edge of a node through one or more steps.

Each --step is a weight amount (or pointer pixels with --px). Positive steps
shrink the --region side of the edge, negative steps shrink the other side.
With the stateful style, dragging back restores weights borrowed earlier in
the same gesture.`,
		Example: `  tilegrid resize layout.toml --node editor --side right --step 10 --step 10 --step -15
  tilegrid resize layout.yaml -n terminal --side top --px --step -120 -o out.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResize(args[0], opts)
		},
	}

	opts.layout.register(cmd)
	cmd.Flags().StringVarP(&opts.node, "node", "n", "", "node id or component id (required)")
	cmd.Flags().StringVar(&opts.side, "side", opts.side, "side to drag: top, bottom, left, right")
	cmd.Flags().StringVar(&opts.region, "region", opts.region, "region a positive step shrinks: child, neighbor")
	cmd.Flags().Float64SliceVar(&opts.steps, "step", nil, "drag amount, repeatable")
	cmd.Flags().BoolVar(&opts.pixels, "px", false, "steps are pointer pixels instead of weight")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "frame width for --px")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "frame height for --px")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the resulting layout (.json, .toml, .yaml)")
	_ = cmd.MarkFlagRequired("node")

	return cmd
}

func (c *CLI) runResize(path string, opts resizeOpts) error {
	side, err := parseSide(opts.side)
	if err != nil {
		return err
	}
	region := grid.Region(opts.region)
	if region != grid.RegionChild && region != grid.RegionNeighbor {
		return errs.New(errs.ErrCodeInvalidInput, "invalid region %q (want child or neighbor)", opts.region)
	}
	if len(opts.steps) == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "at least one --step is required")
	}

	tree, err := c.loadTree(path, opts.layout, nil)
	if err != nil {
		return err
	}
	n, err := findNode(tree, opts.node)
	if err != nil {
		return err
	}

	var layout *boxes.Layout
	if opts.pixels {
		layout = boxes.Attach(tree, grid.Box{Width: opts.width, Height: opts.height}, false)
	}

	session, err := tree.BeginDrag(n, side)
	if err != nil {
		return err
	}
	parent := session.Edge().Parent
	for i, step := range opts.steps {
		before := weightsOf(parent)
		if opts.pixels {
			_, err = session.Move(step)
			layout.Arrange()
		} else {
			_, err = session.Resize(region, step)
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if slices.Equal(before, weightsOf(parent)) {
			printWarning("step %d (%g) was absorbed by constraints", i+1, step)
		}
	}
	session.End()
	tree.Flush()

	printSuccess("Dragged %s %s in %d step(s), %d applied", nodeName(n), side, len(opts.steps), session.Steps())
	printDetail("style %s, session %s", tree.Config().ResizeStyle, session.ID)
	fmt.Println(weightTable(parent, session.Edge()))

	if opts.output != "" {
		if err := layoutfile.ExportDescription(opts.output, tree.Describe()); err != nil {
			return err
		}
		printFile(opts.output)
	}
	return nil
}

func weightsOf(g *grid.Grid) []float64 {
	children := g.Children()
	out := make([]float64, len(children))
	for i, ch := range children {
		out[i] = ch.Weight()
	}
	return out
}

// weightTable lists the children of the dragged grid, marking the pair
// across the edge.
func weightTable(g *grid.Grid, e *grid.Edge) string {
	var rows [][]string
	for i, ch := range g.Children() {
		mark := ""
		switch i {
		case e.ChildIndex:
			mark = "child"
		case e.NeighborIndex:
			mark = "neighbor"
		}
		rows = append(rows, []string{nodeName(ch), fmtWeight(ch.Weight()), mark})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "Weight", "Edge").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 1 {
				return StyleNumber
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
