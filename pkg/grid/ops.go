package grid

import (
	"slices"
	"strings"

	errs "github.com/matzehuels/tilegrid/pkg/errors"
)

// =============================================================================
// Structure
// =============================================================================

// PushChild materializes desc and appends it to parent. Under a grid the new
// child takes desc.Weight (or an even share when unset) and the existing
// children shrink proportionally to make room. Under a tile the new node
// becomes a tab with weight 100.
func (t *Tree) PushChild(parent Child, desc Description, commit *Commit) (Child, *Commit, error) {
	if err := t.checkAttached(parent); err != nil {
		return nil, nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, nil, err
	}

	switch p := parent.(type) {
	case *Grid:
		weight := pushWeight(desc.Weight, len(p.children))
		commit = t.NewCommit(commit)
		desc.Weight = weight
		child, err := t.createNode(desc.Kind(), p, desc, commit)
		if err != nil {
			return nil, commit, err
		}
		rebalance(p.children, 100-weight)
		p.children = append(p.children, child)
		commit.Changed(p)
		return child, commit, nil

	case *Tile:
		if desc.IsGrid() || len(desc.Tabs) > 0 {
			return nil, nil, errs.New(errs.ErrCodeInvalidInput, "tabs of %s must be plain tiles", p.id)
		}
		if p.componentID != "" {
			return nil, nil, errs.New(errs.ErrCodeInvalidInput, "tile %s hosts %s and cannot hold tabs", p.id, p.componentID)
		}
		if _, ok := t.Parent(p).(*Tile); ok {
			return nil, nil, errs.New(errs.ErrCodeInvalidInput, "tab %s cannot hold tabs", p.id)
		}
		commit = t.NewCommit(commit)
		tab, err := t.createNode(KindTile, p, desc, commit)
		if err != nil {
			return nil, commit, err
		}
		p.tabs = append(p.tabs, tab.(*Tile))
		commit.Changed(p)
		return tab, commit, nil
	}
	return nil, nil, errs.New(errs.ErrCodeInternal, "unknown node type %T", parent)
}

// PushGrid appends an empty grid of direction dir to parent.
func (t *Tree) PushGrid(parent *Grid, dir Direction, commit *Commit) (*Grid, *Commit, error) {
	if dir == "" {
		dir = t.cfg.Defaults.Direction
	}
	c, commit, err := t.PushChild(parent, Description{Direction: dir, Children: []Description{}}, commit)
	if err != nil {
		return nil, commit, err
	}
	return c.(*Grid), commit, nil
}

// PushTile appends a tile hosting componentID to parent, which may be a grid
// or a tab-holding tile.
func (t *Tree) PushTile(parent Child, componentID string, commit *Commit) (*Tile, *Commit, error) {
	c, commit, err := t.PushChild(parent, Description{ComponentID: componentID}, commit)
	if err != nil {
		return nil, commit, err
	}
	return c.(*Tile), commit, nil
}

// RemoveChild detaches c from parent. The remaining siblings grow
// proportionally back to 100. The detached subtree keeps its state and can be
// attached again with Reattach.
func (t *Tree) RemoveChild(parent Child, c Child, commit *Commit) (*Commit, error) {
	if err := t.checkAttached(parent); err != nil {
		return nil, err
	}
	if c == nil || c.base().parentID != parent.ID() {
		return nil, errs.New(errs.ErrCodeNotFound, "%s is not a child of %s", nodeID(c), parent.ID())
	}
	commit = t.NewCommit(commit)

	switch p := parent.(type) {
	case *Grid:
		i := slices.Index(p.children, c)
		p.children = slices.Delete(p.children, i, i+1)
		rebalance(p.children, 100)
	case *Tile:
		i := slices.Index(p.tabs, c.(*Tile))
		p.tabs = slices.Delete(p.tabs, i, i+1)
		if i < p.activeTab {
			p.activeTab--
		}
		p.activeTab = clampTab(p.activeTab, len(p.tabs))
	}

	n := c.base()
	n.parentID = ""
	n.weight = 0
	t.setDetached(c, true)
	commit.Changed(parent)
	commit.Changed(c)

	t.logger.Debug("node detached", "node", c.ID(), "parent", parent.ID())
	return commit, nil
}

// Detach removes c from its parent. The root cannot be detached.
func (t *Tree) Detach(c Child, commit *Commit) (*Commit, error) {
	if err := t.checkAttached(c); err != nil {
		return nil, err
	}
	parent := t.Parent(c)
	if parent == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "the root grid cannot be detached")
	}
	return t.RemoveChild(parent, c, commit)
}

// Reattach appends c to parent with weight, following the rules of
// PushChild. An attached c is moved: it is detached from its current parent
// first.
func (t *Tree) Reattach(parent Child, c Child, weight float64, commit *Commit) (*Commit, error) {
	if err := t.checkAttached(parent); err != nil {
		return nil, err
	}
	if c == nil || c.base().tree != t {
		return nil, errs.New(errs.ErrCodeNotFound, "node %s does not belong to this tree", nodeID(c))
	}
	if c == Child(t.root) {
		return nil, errs.New(errs.ErrCodeInvalidInput, "the root grid cannot be moved")
	}
	if c == parent || t.IsAncestor(c, parent) {
		return nil, errs.New(errs.ErrCodeInvalidInput, "cannot attach %s inside itself", c.ID())
	}
	if err := errs.ValidateWeight(weight); err != nil {
		return nil, err
	}
	if p, ok := parent.(*Tile); ok {
		tab, isTile := c.(*Tile)
		if !isTile || len(tab.tabs) > 0 || p.componentID != "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "%s cannot become a tab of %s", c.ID(), p.id)
		}
	}

	commit = t.NewCommit(commit)
	if !c.Detached() {
		var err error
		if commit, err = t.Detach(c, commit); err != nil {
			return commit, err
		}
	}

	switch p := parent.(type) {
	case *Grid:
		weight = pushWeight(weight, len(p.children))
		rebalance(p.children, 100-weight)
		p.children = append(p.children, c)
	case *Tile:
		weight = 100
		p.tabs = append(p.tabs, c.(*Tile))
	}

	n := c.base()
	n.parentID = parent.ID()
	n.weight = weight
	t.setDetached(c, false)
	commit.Changed(parent)
	commit.Changed(c)

	t.logger.Debug("node attached", "node", c.ID(), "parent", parent.ID(), "weight", weight)
	return commit, nil
}

// setDetached flags c and its subtree and moves them out of (or back into)
// the identity map. Parent handles stay resolvable either way.
func (t *Tree) setDetached(c Child, detached bool) {
	c.base().detached = detached
	var walk func(Child)
	walk = func(n Child) {
		if detached {
			t.unregister(n)
		} else {
			t.registry[n.ID()] = n
		}
		t.eachChild(n, func(_ int, ch Child) {
			ch.base().detached = detached
			walk(ch)
		})
	}
	walk(c)
}

// pushWeight is the weight a child appended after n siblings receives. An
// only child always fills its parent.
func pushWeight(requested float64, n int) float64 {
	switch {
	case n == 0:
		return 100
	case requested == 0:
		return round2(100 / float64(n+1))
	}
	return requested
}

// rebalance scales children so their weights sum to total, the last child
// absorbing the rounding.
func rebalance(children []Child, total float64) {
	if len(children) == 0 {
		return
	}
	var sum float64
	for _, c := range children {
		sum += c.Weight()
	}
	var assigned float64
	for i, c := range children {
		n := c.base()
		switch {
		case i == len(children)-1:
			n.weight = round2(total - assigned)
		case sum > 0:
			n.weight = round2(n.weight * total / sum)
		default:
			n.weight = round2(total / float64(len(children)))
		}
		assigned += n.weight
	}
}

// =============================================================================
// State
// =============================================================================

// Patch lists the fields SetState changes. Nil fields are left alone.
type Patch struct {
	Title       *string         `json:"title,omitempty"`
	Weight      *float64        `json:"weight,omitempty"`
	Direction   *Direction      `json:"direction,omitempty"`
	Constraints *ConstraintSpec `json:"constraints,omitempty"`
	ActiveTab   *int            `json:"active_tab,omitempty"`
}

// SetState applies p to c. The node is marked changed only when a value
// actually differs.
func (t *Tree) SetState(c Child, p Patch, commit *Commit) (*Commit, error) {
	if err := t.checkAttached(c); err != nil {
		return nil, err
	}
	if err := t.validatePatch(c, p); err != nil {
		return nil, err
	}

	commit = t.NewCommit(commit)
	n := c.base()
	changed := false

	if p.Title != nil && *p.Title != n.title {
		n.title = *p.Title
		changed = true
	}
	if p.Weight != nil && *p.Weight != n.weight {
		n.weight = round2(*p.Weight)
		changed = true
	}
	switch v := c.(type) {
	case *Grid:
		if p.Direction != nil && *p.Direction != v.direction {
			v.direction = *p.Direction
			changed = true
		}
	case *Tile:
		if p.Constraints != nil {
			v.declared = p.Constraints.clone()
			v.constraints = tileConstraints(t.cfg.Defaults.Constraints, v.declared)
			changed = true
		}
		if p.ActiveTab != nil && *p.ActiveTab != v.activeTab {
			v.activeTab = *p.ActiveTab
			changed = true
		}
	}

	if changed {
		commit.Changed(c)
	}
	return commit, nil
}

func (t *Tree) validatePatch(c Child, p Patch) error {
	if p.Weight != nil {
		if err := errs.ValidateWeight(*p.Weight); err != nil {
			return err
		}
	}
	switch v := c.(type) {
	case *Grid:
		if p.Constraints != nil || p.ActiveTab != nil {
			return errs.New(errs.ErrCodeInvalidInput, "grid %s has no declared constraints or tabs", v.id)
		}
		if p.Direction != nil {
			if err := errs.ValidateDirection(string(*p.Direction)); err != nil {
				return err
			}
		}
	case *Tile:
		if p.Direction != nil {
			return errs.New(errs.ErrCodeInvalidInput, "tile %s has no direction", v.id)
		}
		if err := validateSpec(v.id, p.Constraints); err != nil {
			return err
		}
		if p.ActiveTab != nil && (*p.ActiveTab < 0 || *p.ActiveTab >= max(len(v.Tabs()), 1)) {
			return errs.New(errs.ErrCodeInvalidInput, "active tab %d out of range for %s", *p.ActiveTab, v.id)
		}
	}
	return nil
}

// SetActiveTab selects the tab at i of tile.
func (t *Tree) SetActiveTab(tile *Tile, i int, commit *Commit) (*Commit, error) {
	return t.SetState(tile, Patch{ActiveTab: &i}, commit)
}

// SetRef attaches the geometry handle of c. Refs are supplied by the
// presentation layer after layout and do not change tree state, so no
// commit is involved.
func (t *Tree) SetRef(c Child, ref Ref) error {
	if c == nil || c.base().tree != t {
		return errs.New(errs.ErrCodeNotFound, "node %s does not belong to this tree", nodeID(c))
	}
	c.base().ref = ref
	return nil
}

// SetObserver attaches the observer refreshed when c changes.
func (t *Tree) SetObserver(c Child, o Observer) error {
	if c == nil || c.base().tree != t {
		return errs.New(errs.ErrCodeNotFound, "node %s does not belong to this tree", nodeID(c))
	}
	c.base().observer = o
	return nil
}

// =============================================================================
// Rendering
// =============================================================================

// RenderTile renders the content of tile with the configured callbacks. It
// reports false while the tile has no geometry yet; the caller should retry
// once a Ref is attached.
func (t *Tree) RenderTile(tile *Tile) (string, bool) {
	box, ok := boxOf(tile)
	if !ok {
		return "", false
	}
	if !t.cfg.Widgets {
		return t.cfg.RenderTile(tile, box), true
	}
	return t.renderWidget(tile, box), true
}

// renderWidget prefixes the content with a title bar listing the tabs, or
// the tile's own title when it has none.
func (t *Tree) renderWidget(tile *Tile, box Box) string {
	tabs := tile.Tabs()
	if len(tabs) == 0 {
		return t.cfg.RenderTitle(tile, true, 0) + "\n" + t.cfg.RenderTile(tile, box)
	}
	titles := make([]string, len(tabs))
	for i, tab := range tabs {
		titles[i] = t.cfg.RenderTitle(tab, i == tile.activeTab, i)
	}
	return strings.Join(titles, " | ") + "\n" + t.cfg.RenderTile(tile.Active(), box)
}

// =============================================================================
// Helpers
// =============================================================================

// checkAttached rejects nodes of other trees and detached nodes.
func (t *Tree) checkAttached(c Child) error {
	if c == nil {
		return errs.New(errs.ErrCodeInvalidInput, "node is nil")
	}
	if c.base().tree != t {
		return errs.New(errs.ErrCodeNotFound, "node %s does not belong to this tree", c.ID())
	}
	if c.Detached() {
		return errs.New(errs.ErrCodeDetachedNode, "node %s is detached", c.ID())
	}
	return nil
}

func nodeID(c Child) string {
	if c == nil {
		return "<nil>"
	}
	return c.ID()
}
