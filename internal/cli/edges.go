package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/grid"
)

// edgesCommand shows how each side of a node resolves.
func (c *CLI) edgesCommand() *cobra.Command {
	var (
		lo   layoutOpts
		node string
	)

	cmd := &cobra.Command{
		Use:   "edges [layout]",
		Short: "Show the resize edges of a node, or every resizable boundary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := c.loadTree(args[0], lo, nil)
			if err != nil {
				return err
			}
			if node == "" {
				rows := boundaryRows(tree)
				if len(rows) == 0 {
					printWarning("layout has no resizable boundaries")
					return nil
				}
				fmt.Println(edgeTable([]string{"Node", "Side", "Neighbor", "Parent"}, rows, -1))
				return nil
			}

			n, err := findNode(tree, node)
			if err != nil {
				return err
			}
			fmt.Println(StyleTitle.Render(nodeName(n)) + " " + StyleDim.Render(n.ID()))
			fmt.Println(edgeTable([]string{"Side", "Resizable", "Child", "Neighbor", "Index"}, sideRows(tree, n), 1))
			return nil
		},
	}

	lo.register(cmd)
	cmd.Flags().StringVarP(&node, "node", "n", "", "node id or component id (default: list all resizable boundaries)")

	return cmd
}

// sideRows describes the edge on each side of n.
func sideRows(tree *grid.Tree, n grid.Child) [][]string {
	edges := tree.Edges(n)
	rows := make([][]string, 0, len(grid.Sides))
	for _, side := range grid.Sides {
		e := edges.Side(side)
		if e.Neighbor == nil {
			rows = append(rows, []string{string(side), fmtResizable(false), "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			string(side),
			fmtResizable(e.Resizable),
			nodeName(e.Child),
			nodeName(e.Neighbor),
			strconv.Itoa(e.ChildIndex) + " " + iconArrow + " " + strconv.Itoa(e.NeighborIndex),
		})
	}
	return rows
}

// boundaryRows lists each resizable boundary once, from the node that owns it.
func boundaryRows(tree *grid.Tree) [][]string {
	var rows [][]string
	tree.Walk(func(c grid.Child, _ int) bool {
		if _, isTab := tree.Parent(c).(*grid.Tile); isTab {
			return false
		}
		for _, side := range []grid.Side{grid.SideRight, grid.SideBottom} {
			e := tree.EdgeInDirection(c, side)
			if e.Resizable && e.Child == c {
				rows = append(rows, []string{nodeName(c), string(side), nodeName(e.Neighbor), nodeName(e.Parent)})
			}
		}
		return true
	})
	return rows
}

// edgeTable renders rows, leaving column raw unstyled because its cells
// carry their own colors. Pass -1 to style every column.
func edgeTable(headers []string, rows [][]string, raw int) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == raw {
				return lipgloss.NewStyle()
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
