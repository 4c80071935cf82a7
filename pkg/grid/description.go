package grid

import (
	"fmt"
	"math"

	errs "github.com/matzehuels/tilegrid/pkg/errors"
)

// Description is the declarative form of a subtree. An entry with Children or
// a Direction is a grid; anything else is a tile. Weights may be omitted, in which case the
// unweighted siblings share what the weighted ones leave of 100.
type Description struct {
	Direction   Direction       `json:"direction,omitempty" toml:"direction,omitempty" yaml:"direction,omitempty"`
	Weight      float64         `json:"weight,omitempty" toml:"weight,omitempty" yaml:"weight,omitempty"`
	Children    []Description   `json:"children,omitempty" toml:"children,omitempty" yaml:"children,omitempty"`
	ComponentID string          `json:"component_id,omitempty" toml:"component_id,omitempty" yaml:"component_id,omitempty"`
	Title       string          `json:"title,omitempty" toml:"title,omitempty" yaml:"title,omitempty"`
	Constraints *ConstraintSpec `json:"constraints,omitempty" toml:"constraints,omitempty" yaml:"constraints,omitempty"`
	Tabs        []Description   `json:"tabs,omitempty" toml:"tabs,omitempty" yaml:"tabs,omitempty"`
	ActiveTab   int             `json:"active_tab,omitempty" toml:"active_tab,omitempty" yaml:"active_tab,omitempty"`
}

// IsGrid reports whether d describes a grid.
func (d Description) IsGrid() bool { return d.Children != nil || d.Direction != "" }

// Kind returns the node kind d describes.
func (d Description) Kind() Kind {
	if d.IsGrid() {
		return KindGrid
	}
	return KindTile
}

// Validate checks d and every nested entry.
func (d Description) Validate() error {
	return d.validate("root")
}

func (d Description) validate(path string) error {
	if err := errs.ValidateWeight(d.Weight); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidDescription, err, "%s", path)
	}
	if d.IsGrid() {
		if err := errs.ValidateDirection(string(d.Direction)); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidDescription, err, "%s", path)
		}
		if len(d.Tabs) > 0 || d.ComponentID != "" {
			return errs.New(errs.ErrCodeInvalidDescription, "%s: a grid cannot hold tabs or a component", path)
		}
		for i, c := range d.Children {
			if err := c.validate(fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := errs.ValidateComponentID(d.ComponentID); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidDescription, err, "%s", path)
	}
	if err := validateSpec(path, d.Constraints); err != nil {
		return err
	}
	if d.ActiveTab < 0 || (len(d.Tabs) > 0 && d.ActiveTab >= len(d.Tabs)) {
		return errs.New(errs.ErrCodeInvalidDescription, "%s: active tab %d out of range", path, d.ActiveTab)
	}
	for i, tab := range d.Tabs {
		p := fmt.Sprintf("%s.tabs[%d]", path, i)
		if tab.IsGrid() || len(tab.Tabs) > 0 {
			return errs.New(errs.ErrCodeInvalidDescription, "%s: tabs must be plain tiles", p)
		}
		if err := tab.validate(p); err != nil {
			return err
		}
	}
	return nil
}

func validateSpec(path string, spec *ConstraintSpec) error {
	if spec == nil {
		return nil
	}
	check := func(axis string, a *AxisSpec) error {
		if a == nil {
			return nil
		}
		if a.MinPx != nil {
			if err := errs.ValidateMinimum(axis+".min_px", *a.MinPx); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidDescription, err, "%s", path)
			}
		}
		if a.MinPct != nil {
			if err := errs.ValidateMinimum(axis+".min_pct", *a.MinPct); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidDescription, err, "%s", path)
			}
		}
		return nil
	}
	if err := check("width", spec.Width); err != nil {
		return err
	}
	return check("height", spec.Height)
}

// distributeWeights returns the weights to give descs. Declared weights are
// kept; undeclared ones split the remainder of 100 evenly.
func distributeWeights(descs []Description) []float64 {
	out := make([]float64, len(descs))
	var declared float64
	missing := 0
	for i, d := range descs {
		out[i] = d.Weight
		if d.Weight > 0 {
			declared += d.Weight
		} else {
			missing++
		}
	}
	if missing == 0 {
		return out
	}
	share := round2(math.Max(100-declared, 0) / float64(missing))
	last := -1
	for i, d := range descs {
		if d.Weight == 0 {
			out[i] = share
			last = i
		}
	}
	if declared < 100 {
		out[last] = round2(100 - declared - share*float64(missing-1))
	}
	return out
}

// round2 rounds to two decimal places, the precision weights are kept at.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
