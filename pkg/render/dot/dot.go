package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/render"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds node ids and effective constraints to labels.
	Detailed bool

	// Edges draws every resizable boundary as a dotted arrow.
	Edges bool
}

// ToDOT converts the attached nodes of tree to Graphviz DOT source.
func ToDOT(tree *grid.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var links []string
	tree.Walk(func(c grid.Child, _ int) bool {
		fmt.Fprintf(&buf, "  %q [%s];\n", c.ID(), strings.Join(fmtAttrs(tree, c, opts.Detailed), ", "))
		if p := tree.Parent(c); p != nil {
			links = append(links, fmtLink(p, c))
		}
		return true
	})

	buf.WriteString("\n")
	for _, l := range links {
		buf.WriteString(l)
	}

	if opts.Edges {
		buf.WriteString("\n")
		tree.Walk(func(c grid.Child, _ int) bool {
			if _, isTab := tree.Parent(c).(*grid.Tile); isTab {
				return false
			}
			for _, side := range []grid.Side{grid.SideRight, grid.SideBottom} {
				e := tree.EdgeInDirection(c, side)
				if e.Resizable && e.Child == c {
					fmt.Fprintf(&buf, "  %q -> %q [style=dotted, color=steelblue, constraint=false, label=%q];\n",
						c.ID(), e.Neighbor.ID(), string(side))
				}
			}
			return true
		})
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(tree *grid.Tree, c grid.Child, detailed bool) string {
	var name string
	switch v := c.(type) {
	case *grid.Grid:
		name = "grid " + string(v.Direction())
	case *grid.Tile:
		name = v.ComponentID()
		if name == "" {
			name = v.Title()
		}
		if name == "" {
			name = "tabs"
		}
	}
	if !detailed {
		return name
	}
	cons := tree.Constraints(c)
	parts := []string{
		c.ID(),
		fmt.Sprintf("min w: %gpx / %g%%", cons.Width.MinPx, cons.Width.MinPct),
		fmt.Sprintf("min h: %gpx / %g%%", cons.Height.MinPx, cons.Height.MinPct),
	}
	return name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(tree *grid.Tree, c grid.Child, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(tree, c, detailed))}
	switch v := c.(type) {
	case *grid.Grid:
		attrs = append(attrs, "fillcolor=lightgrey")
	case *grid.Tile:
		if len(v.Tabs()) > 0 {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"")
		}
	}
	return attrs
}

func fmtLink(parent, c grid.Child) string {
	if t, ok := parent.(*grid.Tile); ok {
		style := "dashed"
		if t.Active() == c {
			style = "bold"
		}
		return fmt.Sprintf("  %q -> %q [style=%s];\n", parent.ID(), c.ID(), style)
	}
	return fmt.Sprintf("  %q -> %q [label=%q];\n", parent.ID(), c.ID(), strconv.FormatFloat(c.Weight(), 'f', -1, 64)+"%")
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// zero-origin viewBox so the SVG scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion at the given scale.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
