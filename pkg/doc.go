// Package pkg holds the tilegrid libraries.
//
// # Overview
//
// Tilegrid lays out resizable, nestable panels. A layout is a tree of grids
// that split their space along one direction, with tiles as leaves. The pkg
// directory is organized into these areas:
//
//  1. [grid] - The engine: identities, node factory, constraints, edges,
//     resize policies and commit batching
//  2. [layoutfile] - Declarative layouts and configs as JSON, TOML or YAML
//  3. [render] - Pictures of a layout: nested boxes, Graphviz diagrams,
//     PDF and PNG conversion
//  4. [observability] - Hooks for commit flushes and drags, with a
//     Prometheus implementation
//  5. [errors] - Structured error codes shared by every package
//
// # Architecture
//
// The typical data flow through tilegrid:
//
//	layout file (.toml, .yaml, .json)
//	         ↓
//	    [layoutfile] package (decode + validate)
//	         ↓
//	    [grid] package (live tree, drags, commits)
//	         ↓
//	    [render] packages (boxes, dot) or an observer
//	         ↓
//	    SVG/PDF/PNG/DOT output, terminal view, HTTP
//
// # Quick Start
//
// Load a layout, drag an edge and read the new weights:
//
//	import (
//	    "github.com/matzehuels/tilegrid/pkg/grid"
//	    "github.com/matzehuels/tilegrid/pkg/layoutfile"
//	)
//
//	cfg, _ := layoutfile.LoadConfig("ide.toml")
//	tree, _ := grid.New(cfg, grid.Options{})
//	drag, _ := tree.BeginDrag(tree.Root().Child(0), grid.SideRight)
//	drag.Resize(grid.RegionNeighbor, 10)
//	drag.End()
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/grid
// [layoutfile]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/layoutfile
// [render]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/render
// [observability]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/errors
package pkg
