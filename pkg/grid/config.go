package grid

import (
	errs "github.com/matzehuels/tilegrid/pkg/errors"
)

// Defaults are the values applied to nodes that do not declare their own.
type Defaults struct {
	// Direction is used by grids whose description has none. Defaults to h.
	Direction Direction

	// Constraints is the resolved default tile constraint set. NewConfig
	// computes it from DefaultConstraints and Config.Constraints.
	Constraints Constraints
}

// Config configures a Tree.
type Config struct {
	// InitialGrid is materialized into the root grid when the tree is built.
	InitialGrid *Description

	// Constraints overrides DefaultConstraints for every tile.
	Constraints *ConstraintSpec

	Defaults Defaults

	// ResizeStyle selects the drag policy. Defaults to Stateful.
	ResizeStyle ResizeStyle

	// Tabbed and Widgets are presentation toggles; the engine only consults
	// Widgets when rendering tile content. Tabbed implies Widgets.
	Tabbed  bool
	Widgets bool

	Debug bool

	// RenderTile renders tile content once its box is known.
	// Defaults to the tile's component id.
	RenderTile func(t *Tile, box Box) string

	// RenderTitle renders a tab title. Defaults to the title, then the
	// component id, then the node id.
	RenderTitle func(c Child, active bool, index int) string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (Config, error) {
	if err := errs.ValidateResizeStyle(string(cfg.ResizeStyle)); err != nil {
		return cfg, err
	}
	if err := errs.ValidateDirection(string(cfg.Defaults.Direction)); err != nil {
		return cfg, err
	}
	if err := validateSpec("constraints", cfg.Constraints); err != nil {
		return cfg, err
	}
	if cfg.InitialGrid != nil {
		if !cfg.InitialGrid.IsGrid() {
			return cfg, errs.New(errs.ErrCodeInvalidDescription, "initial grid must be a grid, not a tile")
		}
		if err := cfg.InitialGrid.Validate(); err != nil {
			return cfg, err
		}
	}

	if cfg.ResizeStyle == "" {
		cfg.ResizeStyle = Stateful
	}
	if cfg.Defaults.Direction == "" {
		cfg.Defaults.Direction = Horizontal
	}
	cfg.Defaults.Constraints = MergeConstraints(DefaultConstraints, cfg.Constraints)
	cfg.Widgets = cfg.Widgets || cfg.Tabbed
	if cfg.RenderTile == nil {
		cfg.RenderTile = func(t *Tile, _ Box) string { return t.ComponentID() }
	}
	if cfg.RenderTitle == nil {
		cfg.RenderTitle = defaultTitle
	}
	return cfg, nil
}

func defaultTitle(c Child, _ bool, _ int) string {
	if c.Title() != "" {
		return c.Title()
	}
	if t, ok := c.(*Tile); ok && t.ComponentID() != "" {
		return t.ComponentID()
	}
	return c.ID()
}
