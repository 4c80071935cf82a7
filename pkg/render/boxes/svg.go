package boxes

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/matzehuels/tilegrid/pkg/grid"
)

// Options configures SVG output.
type Options struct {
	// Handles marks every resizable boundary with a draggable-looking bar.
	Handles bool

	// Weights appends the weight to each tile label.
	Weights bool
}

const svgCSS = `
    .tile { fill: #ffffff; stroke: #333333; stroke-width: 1.5; }
    .tile.tabs { stroke-dasharray: 6 3; }
    .grid { fill: none; stroke: #999999; stroke-width: 0.5; }
    .handle { fill: steelblue; opacity: 0.6; }
    .label { font-family: sans-serif; font-size: 13px; fill: #222222; }
    .tabbar { font-family: sans-serif; font-size: 11px; fill: #666666; }`

// RenderSVG draws the tiles of tree at the positions in b.
func RenderSVG(tree *grid.Tree, b Boxes, opts Options) []byte {
	frame := b[tree.Root().ID()]
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		frame.Left, frame.Top, frame.Width, frame.Height, frame.Width, frame.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgCSS)

	tree.Walk(func(c grid.Child, _ int) bool {
		box, ok := b[c.ID()]
		if !ok {
			return false
		}
		switch v := c.(type) {
		case *grid.Grid:
			renderGrid(&buf, v, box)
			return true
		case *grid.Tile:
			renderTile(&buf, v, box, opts)
		}
		// Tabs draw inside their holder.
		return false
	})

	if opts.Handles {
		renderHandles(&buf, tree, b)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderGrid(buf *bytes.Buffer, g *grid.Grid, box grid.Box) {
	fmt.Fprintf(buf, `  <rect id="%s" class="grid" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
		escapeXML(g.ID()), box.Left, box.Top, box.Width, box.Height)
}

func renderTile(buf *bytes.Buffer, t *grid.Tile, box grid.Box, opts Options) {
	class := "tile"
	tabs := t.Tabs()
	if len(tabs) > 0 {
		class += " tabs"
	}
	fmt.Fprintf(buf, `  <rect id="%s" class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
		escapeXML(t.ID()), class, box.Left, box.Top, box.Width, box.Height)

	label := tileLabel(t)
	if opts.Weights {
		label += " (" + strconv.FormatFloat(t.Weight(), 'f', -1, 64) + "%)"
	}
	fmt.Fprintf(buf, `  <text class="label" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		box.Left+box.Width/2, box.Top+box.Height/2, escapeXML(label))

	if len(tabs) == 0 {
		return
	}
	x := box.Left + 6
	for i, tab := range tabs {
		name := tileLabel(tab)
		if i == t.ActiveTab() {
			name = "[" + name + "]"
		}
		fmt.Fprintf(buf, `  <text class="tabbar" x="%.2f" y="%.2f">%s</text>`+"\n", x, box.Top+14, escapeXML(name))
		x += float64(len(name))*7 + 12
	}
}

func renderHandles(buf *bytes.Buffer, tree *grid.Tree, b Boxes) {
	const thickness = 4.0
	tree.Walk(func(c grid.Child, _ int) bool {
		if _, isTab := tree.Parent(c).(*grid.Tile); isTab {
			return false
		}
		box, ok := b[c.ID()]
		if !ok {
			return false
		}
		for _, side := range []grid.Side{grid.SideRight, grid.SideBottom} {
			e := tree.EdgeInDirection(c, side)
			if !e.Resizable || e.Child != c {
				continue
			}
			h := box
			if side == grid.SideRight {
				h.Left, h.Width = box.Left+box.Width-thickness/2, thickness
			} else {
				h.Top, h.Height = box.Top+box.Height-thickness/2, thickness
			}
			fmt.Fprintf(buf, `  <rect class="handle" data-node="%s" data-side="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
				escapeXML(c.ID()), side, h.Left, h.Top, h.Width, h.Height)
		}
		return true
	})
}

func tileLabel(t *grid.Tile) string {
	switch {
	case t.ComponentID() != "":
		return t.ComponentID()
	case t.Active() != nil && t.Active() != t:
		return t.Active().ComponentID()
	case t.Title() != "":
		return t.Title()
	}
	return t.ID()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
