package grid

import (
	"io"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/tilegrid/pkg/errors"
)

// Options configures the runtime collaborators of a Tree.
type Options struct {
	// Scheduler defers commit flushes. Defaults to a ManualScheduler that is
	// never run, so commits complete only through Commit or Tree.Flush.
	Scheduler Scheduler

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger
}

// Tree is one layout instance: the root grid, the id map of its live nodes,
// and the batcher its commits flush through. A Tree is not safe for
// concurrent use.
type Tree struct {
	cfg     Config
	ids     *Allocator
	logger  *log.Logger
	batcher *Batcher

	// nodes resolves parent handles, including those inside detached
	// subtrees; registry is the identity map of attached nodes.
	nodes    map[string]Child
	registry map[string]Child

	root  *Grid
	epoch uint64
}

// New builds a tree from cfg, materializing cfg.InitialGrid into the root.
func New(cfg Config, opts Options) (*Tree, error) {
	cfg, err := NewConfig(cfg)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	t := &Tree{
		cfg:      cfg,
		ids:      NewAllocator(NextInstanceID().ID),
		logger:   logger,
		batcher:  NewBatcher(opts.Scheduler),
		nodes:    make(map[string]Child),
		registry: make(map[string]Child),
		epoch:    1,
	}

	desc := Description{Direction: cfg.Defaults.Direction, Children: []Description{}}
	if cfg.InitialGrid != nil {
		desc = *cfg.InitialGrid
	}
	root, err := t.createNode(KindGrid, nil, desc, nil)
	if err != nil {
		return nil, err
	}
	t.root = root.(*Grid)

	t.logger.Debug("grid created", "instance", t.Instance(), "nodes", len(t.registry))
	return t, nil
}

// Instance returns the id namespace of this tree ("dg-N").
func (t *Tree) Instance() string { return t.ids.Instance() }

// Config returns the normalized configuration.
func (t *Tree) Config() Config { return t.cfg }

// Root returns the root grid.
func (t *Tree) Root() *Grid { return t.root }

// Batcher returns the batcher commits of this tree flush through.
func (t *Tree) Batcher() *Batcher { return t.batcher }

// Flush completes every pending commit now.
func (t *Tree) Flush() int { return t.batcher.Flush() }

// Node returns the attached node with the given id.
func (t *Tree) Node(id string) (Child, bool) {
	c, ok := t.registry[id]
	return c, ok
}

// Len returns the number of attached nodes, tabs included.
func (t *Tree) Len() int { return len(t.registry) }

// NewCommit returns existing if it belongs to t and is still open; otherwise
// it creates a commit and queues it for the next flush.
func (t *Tree) NewCommit(existing *Commit) *Commit {
	if existing != nil && existing.tree == t && !existing.Complete() {
		return existing
	}
	c := &Commit{
		id:      t.ids.NextCommitID(),
		tree:    t,
		gridSet: make(map[string]struct{}),
		tileSet: make(map[string]struct{}),
	}
	t.batcher.enqueue(c)
	return c
}

// invalidate drops n's caches and advances the epoch, which stales the
// caches of every other node as well.
func (t *Tree) invalidate(n Child) {
	n.base().invalidate()
	t.epoch++
}

func (t *Tree) register(c Child) error {
	if existing, ok := t.registry[c.ID()]; ok && existing != c {
		return errs.New(errs.ErrCodeDuplicateID, "node id %s is already registered", c.ID())
	}
	t.registry[c.ID()] = c
	t.nodes[c.ID()] = c
	return nil
}

func (t *Tree) unregister(c Child) {
	delete(t.registry, c.ID())
}

// Parent returns the node that holds c: a grid for grid children, a tile for
// tabs, nil for the root and detached nodes.
func (t *Tree) Parent(c Child) Child {
	id := c.base().parentID
	if id == "" {
		return nil
	}
	return t.nodes[id]
}

// Depth returns the distance from c to the root of its subtree.
func (t *Tree) Depth(c Child) int {
	cache := c.base().fresh()
	if cache.hasDepth {
		return cache.depth
	}
	depth := 0
	for p := t.Parent(c); p != nil; p = t.Parent(p) {
		depth++
	}
	cache.depth, cache.hasDepth = depth, true
	return depth
}

// ChildIndex returns c's position in its parent, or -1 without a parent.
// The parent memoizes positions for all of its children on first lookup.
func (t *Tree) ChildIndex(c Child) int {
	parent := t.Parent(c)
	if parent == nil {
		return -1
	}
	cache := parent.base().fresh()
	if i, ok := cache.childIndex[c.ID()]; ok {
		return i
	}
	if cache.childIndex == nil {
		cache.childIndex = make(map[string]int)
	}
	found := -1
	t.eachChild(parent, func(i int, sib Child) {
		cache.childIndex[sib.ID()] = i
		if sib == c {
			found = i
		}
	})
	return found
}

// Ancestors returns c's ancestors, nearest first.
func (t *Tree) Ancestors(c Child) []Child {
	var out []Child
	for p := t.Parent(c); p != nil; p = t.Parent(p) {
		out = append(out, p)
	}
	return out
}

// IsAncestor reports whether ancestor contains c at any depth.
func (t *Tree) IsAncestor(ancestor, c Child) bool {
	cache := c.base().fresh()
	if cache.ancestors == nil {
		cache.ancestors = make(map[string]struct{})
		for p := t.Parent(c); p != nil; p = t.Parent(p) {
			cache.ancestors[p.ID()] = struct{}{}
		}
	}
	_, ok := cache.ancestors[ancestor.ID()]
	return ok
}

// Constraints returns c's effective constraints. Grid constraints are
// aggregated from the children on the first read after a change.
func (t *Tree) Constraints(c Child) Constraints {
	switch v := c.(type) {
	case *Tile:
		return v.constraints
	case *Grid:
		if v.constraintsEpoch == t.epoch {
			return v.constraints
		}
		children := make([]Constraints, len(v.children))
		for i, ch := range v.children {
			children[i] = t.Constraints(ch)
		}
		v.constraints = Aggregate(v.Direction(), t.cfg.Defaults.Constraints, children)
		v.constraintsEpoch = t.epoch
		return v.constraints
	}
	return Constraints{}
}

// Walk visits every attached node depth first, parents before children and
// tiles before their tabs. Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(c Child, depth int) bool) {
	var walk func(c Child, depth int)
	walk = func(c Child, depth int) {
		if !fn(c, depth) {
			return
		}
		t.eachChild(c, func(_ int, ch Child) { walk(ch, depth+1) })
	}
	walk(t.root, 0)
}

func (t *Tree) eachChild(c Child, fn func(int, Child)) {
	switch v := c.(type) {
	case *Grid:
		for i, ch := range v.children {
			fn(i, ch)
		}
	case *Tile:
		for i, tab := range v.tabs {
			fn(i, tab)
		}
	}
}
