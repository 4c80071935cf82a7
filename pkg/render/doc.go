// Package render turns layout trees into pictures.
//
// # Overview
//
// Two renderers live in subpackages:
//
//   - [boxes] computes the pixel box of every node from the weights and draws
//     the layout as nested rectangles, the way a user would see it
//   - [dot] draws the tree structure as a Graphviz node-link diagram
//
// Both produce SVG. The [ToPDF] and [ToPNG] functions convert any SVG to other
// formats using the external rsvg-convert tool (from librsvg).
//
//	frame := boxes.Arrange(tree, grid.Box{Width: 1200, Height: 800})
//	svg := boxes.RenderSVG(tree, frame, boxes.Options{})
//	png, err := render.ToPNG(svg, 2.0)
//
// [boxes]: github.com/matzehuels/tilegrid/pkg/render/boxes
// [dot]: github.com/matzehuels/tilegrid/pkg/render/dot
package render
