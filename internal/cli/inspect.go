package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	ltree "github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/layoutfile"
)

// inspectCommand prints the structure of a layout.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		lo       layoutOpts
		describe string
	)

	cmd := &cobra.Command{
		Use:   "inspect [layout]",
		Short: "Show the node tree, weights and constraints of a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := c.loadTree(args[0], lo, nil)
			if err != nil {
				return err
			}
			if describe != "" {
				format, err := layoutfile.ParseFormat(describe)
				if err != nil {
					return err
				}
				return layoutfile.WriteDescription(os.Stdout, format, tree.Describe())
			}

			cfg := tree.Config()
			fmt.Println(StyleTitle.Render(args[0]))
			printKeyValue("instance", tree.Instance())
			printKeyValue("style", string(cfg.ResizeStyle))
			printKeyValue("nodes", strconv.Itoa(tree.Len()))
			fmt.Println()
			fmt.Println(nodeTree(tree))
			fmt.Println()
			fmt.Println(nodeTable(tree))
			fmt.Println()
			printNextStep("Show the edges of a node", appName+" edges "+args[0]+" --node <id>")
			return nil
		},
	}

	lo.register(cmd)
	cmd.Flags().StringVar(&describe, "describe", "", "print the materialized description as json, toml or yaml")

	return cmd
}

// nodeTree renders the layout hierarchy with weights.
func nodeTree(tree *grid.Tree) string {
	var build func(c grid.Child) *ltree.Tree
	build = func(c grid.Child) *ltree.Tree {
		label := nodeName(c)
		if tree.Parent(c) != nil {
			label += " " + StyleNumber.Render(fmtWeight(c.Weight()))
		}
		if t, ok := c.(*grid.Tile); ok && len(t.Tabs()) > 1 {
			label += " " + StyleDim.Render("active "+strconv.Itoa(t.ActiveTab()))
		}
		node := ltree.Root(label)
		switch v := c.(type) {
		case *grid.Grid:
			for _, ch := range v.Children() {
				node.Child(build(ch))
			}
		case *grid.Tile:
			for _, tab := range v.Tabs() {
				node.Child(build(tab))
			}
		}
		return node
	}

	return build(tree.Root()).
		Enumerator(ltree.RoundedEnumerator).
		EnumeratorStyle(StyleDim).
		RootStyle(StyleTitle).
		String()
}

// nodeTable lists every attached node with its effective constraints.
func nodeTable(tree *grid.Tree) string {
	var rows [][]string
	tree.Walk(func(c grid.Child, depth int) bool {
		cons := tree.Constraints(c)
		rows = append(rows, []string{
			nodeName(c),
			c.ID(),
			c.Kind().String(),
			fmtWeight(c.Weight()),
			strconv.Itoa(depth),
			fmt.Sprintf("%gpx / %g%%", cons.Width.MinPx, cons.Width.MinPct),
			fmt.Sprintf("%gpx / %g%%", cons.Height.MinPx, cons.Height.MinPct),
		})
		return true
	})

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "ID", "Kind", "Weight", "Depth", "Min width", "Min height").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 1 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
