// Package dot renders a live layout tree as a Graphviz node-link diagram.
//
// # Overview
//
// Grids and tiles become boxes; each parent links to its children with the
// child's weight as the edge label. Tabs hang off their holding tile with
// dashed links. With [Options.Edges], resizable boundaries are drawn as
// dotted arrows from the node that owns the boundary to its neighbor.
//
// # Usage
//
//	src := dot.ToDOT(tree, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(src)
//
// PDF and PNG output go through [render.ToPDF] and [render.ToPNG]:
//
//	pdf, err := dot.RenderPDF(src)
//	png, err := dot.RenderPNG(src, 2.0)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
//
// [render.ToPDF]: github.com/matzehuels/tilegrid/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/tilegrid/pkg/render.ToPNG
package dot
