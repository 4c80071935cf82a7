package grid

import "slices"

// Child is a node of the layout tree: either a *Grid or a *Tile. The set of
// implementations is closed; switch on the concrete type or on Kind.
type Child interface {
	ID() string
	Index() int
	Kind() Kind
	Weight() float64
	Title() string
	Ref() Ref
	Observer() Observer
	Detached() bool

	base() *node
}

// node holds the state shared by both variants. The parent is a handle
// resolved through the owning tree, never a pointer.
type node struct {
	tree     *Tree
	id       string
	index    int
	kind     Kind
	parentID string
	detached bool

	weight   float64
	title    string
	ref      Ref
	observer Observer

	cache nodeCache
}

// nodeCache holds derived values. It is valid only while epoch matches the
// tree's epoch. Invalidation is tree-wide, not per node: Commit.Changed on any
// node advances the one epoch, so every node's cache goes stale and is
// rebuilt lazily on its next read.
type nodeCache struct {
	epoch      uint64
	depth      int
	hasDepth   bool
	ancestors  map[string]struct{}
	childIndex map[string]int
	neighbors  map[Side]*Edge
}

func (n *node) ID() string         { return n.id }
func (n *node) Index() int         { return n.index }
func (n *node) Kind() Kind         { return n.kind }
func (n *node) Weight() float64    { return n.weight }
func (n *node) Title() string      { return n.title }
func (n *node) Ref() Ref           { return n.ref }
func (n *node) Observer() Observer { return n.observer }
func (n *node) base() *node        { return n }

// Detached reports whether the node has been removed from its parent.
func (n *node) Detached() bool { return n.detached }

// invalidate drops every cached derived value of n.
func (n *node) invalidate() {
	n.cache = nodeCache{}
}

// fresh returns n's cache, resetting it first if it predates the last change.
func (n *node) fresh() *nodeCache {
	if n.cache.epoch != n.tree.epoch {
		n.cache = nodeCache{epoch: n.tree.epoch}
	}
	return &n.cache
}

// Grid is a container splitting its space among ordered children along one
// direction.
type Grid struct {
	node
	direction Direction
	children  []Child

	constraints      Constraints
	constraintsEpoch uint64
}

// Direction returns the grid's split direction, falling back to the tree's
// configured default.
func (g *Grid) Direction() Direction {
	if g.direction == "" {
		return g.tree.cfg.Defaults.Direction
	}
	return g.direction
}

// Children returns a copy of the ordered children.
func (g *Grid) Children() []Child { return slices.Clone(g.children) }

// Len returns the number of children.
func (g *Grid) Len() int { return len(g.children) }

// Child returns the child at i, or nil when i is out of range.
func (g *Grid) Child(i int) Child {
	if i < 0 || i >= len(g.children) {
		return nil
	}
	return g.children[i]
}

// Tile is a leaf hosting content. A tile without a component id may hold tabs,
// of which one is active.
type Tile struct {
	node
	componentID string
	tabs        []*Tile
	activeTab   int

	declared    *ConstraintSpec
	constraints Constraints
}

// ComponentID returns the id of the content the tile hosts.
func (t *Tile) ComponentID() string { return t.componentID }

// Tabs returns the tile's tabs. Tiles that host content directly have none.
func (t *Tile) Tabs() []*Tile {
	if t.componentID != "" || len(t.tabs) == 0 {
		return nil
	}
	return slices.Clone(t.tabs)
}

// ActiveTab returns the index of the active tab.
func (t *Tile) ActiveTab() int { return t.activeTab }

// Active returns the active tab, or the tile itself when it has no tabs.
func (t *Tile) Active() *Tile {
	tabs := t.Tabs()
	if t.activeTab >= 0 && t.activeTab < len(tabs) {
		return tabs[t.activeTab]
	}
	return t
}

// Declared returns the constraints the tile was declared with, if any.
func (t *Tile) Declared() *ConstraintSpec { return t.declared.clone() }

// Constraints returns the tile's effective constraints.
func (t *Tile) Constraints() Constraints { return t.constraints }
