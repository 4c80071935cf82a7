package grid

// AxisConstraint is the minimum size of a node along one axis.
type AxisConstraint struct {
	MinPx  float64 `json:"min_px"`
	MinPct float64 `json:"min_pct"`
}

// Counts describe the shape of a subtree. Tiles count as one node wide and one
// node high; grids sum along their direction and take the max across it.
type Counts struct {
	Grids     int `json:"grids"`
	NodesWide int `json:"nodes_wide"`
	NodesHigh int `json:"nodes_high"`
}

var tileCounts = Counts{Grids: 0, NodesWide: 1, NodesHigh: 1}

// Constraints are the effective minimums of a node.
type Constraints struct {
	Width  AxisConstraint `json:"width"`
	Height AxisConstraint `json:"height"`
	Counts Counts         `json:"counts"`
}

// Axis returns the constraint along a.
func (c Constraints) Axis(a Axis) AxisConstraint {
	if a == AxisHeight {
		return c.Height
	}
	return c.Width
}

// DefaultConstraints apply to every tile that does not declare its own.
var DefaultConstraints = Constraints{
	Width:  AxisConstraint{MinPx: 200, MinPct: 20},
	Height: AxisConstraint{MinPx: 200, MinPct: 20},
}

// AxisSpec is a user-declared minimum along one axis. Nil fields inherit the
// default for that field.
type AxisSpec struct {
	MinPx  *float64 `json:"min_px,omitempty" toml:"min_px,omitempty" yaml:"min_px,omitempty"`
	MinPct *float64 `json:"min_pct,omitempty" toml:"min_pct,omitempty" yaml:"min_pct,omitempty"`
}

// ConstraintSpec is a user-declared set of minimums. A present axis replaces the
// default axis object; an absent one keeps the default.
type ConstraintSpec struct {
	Width  *AxisSpec `json:"width,omitempty" toml:"width,omitempty" yaml:"width,omitempty"`
	Height *AxisSpec `json:"height,omitempty" toml:"height,omitempty" yaml:"height,omitempty"`
}

// Float returns a pointer to v, for building specs in code.
func Float(v float64) *float64 { return &v }

func (s *ConstraintSpec) clone() *ConstraintSpec {
	if s == nil {
		return nil
	}
	return &ConstraintSpec{Width: s.Width.clone(), Height: s.Height.clone()}
}

func (a *AxisSpec) clone() *AxisSpec {
	if a == nil {
		return nil
	}
	out := &AxisSpec{}
	if a.MinPx != nil {
		out.MinPx = Float(*a.MinPx)
	}
	if a.MinPct != nil {
		out.MinPct = Float(*a.MinPct)
	}
	return out
}

func mergeAxis(def AxisConstraint, spec *AxisSpec) AxisConstraint {
	if spec == nil {
		return def
	}
	out := def
	if spec.MinPx != nil {
		out.MinPx = *spec.MinPx
	}
	if spec.MinPct != nil {
		out.MinPct = *spec.MinPct
	}
	return out
}

// MergeConstraints resolves spec against defaults. The axes merge
// independently. Counts are left zero.
func MergeConstraints(defaults Constraints, spec *ConstraintSpec) Constraints {
	if spec == nil {
		return Constraints{Width: defaults.Width, Height: defaults.Height}
	}
	return Constraints{
		Width:  mergeAxis(defaults.Width, spec.Width),
		Height: mergeAxis(defaults.Height, spec.Height),
	}
}

func tileConstraints(defaults Constraints, spec *ConstraintSpec) Constraints {
	c := MergeConstraints(defaults, spec)
	c.Counts = tileCounts
	return c
}

// Aggregate derives the constraints of a grid of direction dir from its
// children. Pixel minimums and node counts sum along the main axis and take
// the maximum across it; percent minimums come from defaults. The result does
// not depend on the order of children.
func Aggregate(dir Direction, defaults Constraints, children []Constraints) Constraints {
	out := Constraints{
		Width:  AxisConstraint{MinPct: defaults.Width.MinPct},
		Height: AxisConstraint{MinPct: defaults.Height.MinPct},
		Counts: Counts{Grids: 1},
	}
	for _, c := range children {
		if dir == Vertical {
			out.Height.MinPx += c.Height.MinPx
			out.Width.MinPx = max(out.Width.MinPx, c.Width.MinPx)
			out.Counts.NodesHigh += c.Counts.NodesHigh
			out.Counts.NodesWide = max(out.Counts.NodesWide, c.Counts.NodesWide)
		} else {
			out.Width.MinPx += c.Width.MinPx
			out.Height.MinPx = max(out.Height.MinPx, c.Height.MinPx)
			out.Counts.NodesWide += c.Counts.NodesWide
			out.Counts.NodesHigh = max(out.Counts.NodesHigh, c.Counts.NodesHigh)
		}
		out.Counts.Grids += c.Counts.Grids
	}
	return out
}
