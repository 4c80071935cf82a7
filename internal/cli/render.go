package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/render"
	"github.com/matzehuels/tilegrid/pkg/render/boxes"
	"github.com/matzehuels/tilegrid/pkg/render/dot"
)

const (
	vizBoxes = "boxes" // nested rectangles at their pixel positions
	vizDot   = "dot"   // Graphviz node-link diagram of the tree

	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	layout   layoutOpts
	output   string   // output file (single type/format) or base path
	vizTypes []string // boxes, dot
	formats  []string // svg, pdf, png, dot
	width    float64  // frame width for boxes
	height   float64  // frame height for boxes
	scale    float64  // PNG scale factor
	detailed bool     // constraints in dot labels
	edges    bool     // resizable boundaries in both views
	weights  bool     // weights on box labels
}

// renderCommand creates the render command for generating pictures of a layout.
func (c *CLI) renderCommand() *cobra.Command {
	var vizTypesStr, formatsStr string
	opts := renderOpts{
		width:   defaultWidth,
		height:  defaultHeight,
		scale:   2,
		weights: true,
	}

	cmd := &cobra.Command{
		Use:   "render [layout]",
		Short: "Render a layout to SVG, PDF, PNG or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.vizTypes = parseVizTypes(vizTypesStr)
			opts.formats = parseFormats(formatsStr)
			if err := validateVizTypes(opts.vizTypes); err != nil {
				return err
			}
			if err := validateFormats(opts.formats, opts.vizTypes); err != nil {
				return err
			}
			return c.runRender(args[0], opts)
		},
	}

	opts.layout.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single type/format) or base path (multiple)")
	cmd.Flags().StringVarP(&vizTypesStr, "type", "t", "", "visualization type(s): boxes (default), dot (comma-separated)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, png, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "frame height")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show ids and constraints (dot)")
	cmd.Flags().BoolVar(&opts.edges, "edges", false, "mark resizable boundaries")
	cmd.Flags().BoolVar(&opts.weights, "weights", opts.weights, "show weights on tiles (boxes)")

	return cmd
}

// parseVizTypes parses the --type flag into a slice of visualization types.
// If empty, defaults to ["boxes"].
func parseVizTypes(s string) []string {
	if s == "" {
		return []string{vizBoxes}
	}
	return strings.Split(s, ",")
}

func validateVizTypes(types []string) error {
	for _, t := range types {
		if t != vizBoxes && t != vizDot {
			return fmt.Errorf("invalid type: %s (must be 'boxes' or 'dot')", t)
		}
	}
	return nil
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatPDF: true, formatPNG: true, formatDOT: true}

// validateFormats checks that all requested formats are valid. DOT source
// only exists for the dot type.
func validateFormats(formats, types []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'pdf', 'png', or 'dot')", f)
		}
		if f == formatDOT && !slices.Contains(types, vizDot) {
			return fmt.Errorf("format dot requires --type dot")
		}
	}
	return nil
}

func (c *CLI) runRender(path string, opts renderOpts) error {
	tree, err := c.loadTree(path, opts.layout, nil)
	if err != nil {
		return err
	}

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	single := len(opts.vizTypes) == 1 && len(opts.formats) == 1 && opts.output != ""

	for _, viz := range opts.vizTypes {
		for _, format := range opts.formats {
			if format == formatDOT && viz != vizDot {
				continue
			}
			out := outputPath(base, viz, format, single)
			prog := newProgress(c.Logger)
			data, err := c.renderOne(tree, viz, format, opts)
			if err != nil {
				return fmt.Errorf("%s %s: %w", viz, format, err)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			prog.done("Rendered " + out)
			printFile(out)
		}
	}
	return nil
}

// outputPath names the file for one type/format pair. A single requested
// output uses the -o path verbatim.
func outputPath(base, viz, format string, single bool) string {
	if single {
		return base
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s.%s.%s", base, viz, format)
}

func (c *CLI) renderOne(tree *grid.Tree, viz, format string, opts renderOpts) ([]byte, error) {
	var svg []byte
	switch viz {
	case vizBoxes:
		frame := boxes.Arrange(tree, grid.Box{Width: opts.width, Height: opts.height})
		svg = boxes.RenderSVG(tree, frame, boxes.Options{Handles: opts.edges, Weights: opts.weights})
	case vizDot:
		src := dot.ToDOT(tree, dot.Options{Detailed: opts.detailed, Edges: opts.edges})
		if format == formatDOT {
			return []byte(src), nil
		}
		var err error
		if svg, err = dot.RenderSVG(src); err != nil {
			return nil, err
		}
	}

	switch format {
	case formatPDF, formatPNG:
		spinner := newSpinner("Converting to " + format + "...")
		spinner.Start()
		var (
			data []byte
			err  error
		)
		if format == formatPDF {
			data, err = render.ToPDF(svg)
		} else {
			data, err = render.ToPNG(svg, opts.scale)
		}
		if err != nil {
			spinner.StopWithError(format + " conversion failed")
			return nil, err
		}
		spinner.Stop()
		return data, nil
	}
	return svg, nil
}
