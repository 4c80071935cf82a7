package boxes

import (
	"math"

	"github.com/matzehuels/tilegrid/pkg/grid"
)

// Boxes maps node ids to their pixel boxes.
type Boxes map[string]grid.Box

// Arrange splits frame among the attached nodes of tree by weight. Each grid
// divides its box along its direction in child order; tabs share the box of
// the tile holding them.
func Arrange(tree *grid.Tree, frame grid.Box) Boxes {
	return arrange(tree, frame, false)
}

// ArrangeCells is Arrange with every boundary rounded to a whole unit, for
// character-cell displays. Rounding boundaries rather than sizes keeps
// siblings flush with no gaps.
func ArrangeCells(tree *grid.Tree, frame grid.Box) Boxes {
	return arrange(tree, frame, true)
}

func arrange(tree *grid.Tree, frame grid.Box, snap bool) Boxes {
	out := make(Boxes, tree.Len())
	var place func(c grid.Child, box grid.Box)
	place = func(c grid.Child, box grid.Box) {
		out[c.ID()] = box
		switch v := c.(type) {
		case *grid.Grid:
			split(v, box, snap, place)
		case *grid.Tile:
			for _, tab := range v.Tabs() {
				place(tab, box)
			}
		}
	}
	place(tree.Root(), frame)
	return out
}

func split(g *grid.Grid, box grid.Box, snap bool, place func(grid.Child, grid.Box)) {
	children := g.Children()
	var total float64
	for _, c := range children {
		total += c.Weight()
	}
	if total <= 0 {
		return
	}

	axis := g.Direction().Axis()
	start := box.Left
	if axis == grid.AxisHeight {
		start = box.Top
	}
	size := box.Size(axis)

	var acc float64
	for i, c := range children {
		from := start + size*acc/total
		acc += c.Weight()
		to := start + size*acc/total
		if i == len(children)-1 {
			to = start + size
		}
		if snap {
			from, to = math.Round(from), math.Round(to)
		}

		sub := box
		if axis == grid.AxisHeight {
			sub.Top, sub.Height = from, to-from
		} else {
			sub.Left, sub.Width = from, to-from
		}
		place(c, sub)
	}
}

// Layout keeps the boxes of a tree current and serves them to the tree as
// refs, so drags measured in pixels see the geometry last arranged.
type Layout struct {
	tree  *grid.Tree
	frame grid.Box
	cells bool
	boxes Boxes
}

// Attach arranges tree inside frame and installs a ref on every node.
// With cells set, boundaries are rounded as in [ArrangeCells].
func Attach(tree *grid.Tree, frame grid.Box, cells bool) *Layout {
	l := &Layout{tree: tree, frame: frame, cells: cells}
	l.Arrange()
	return l
}

// Arrange recomputes every box from the current weights. Nodes added since
// the last call get refs too.
func (l *Layout) Arrange() {
	l.boxes = arrange(l.tree, l.frame, l.cells)
	l.tree.Walk(func(c grid.Child, _ int) bool {
		if c.Ref() == nil {
			_ = l.tree.SetRef(c, l.ref(c.ID()))
		}
		return true
	})
}

// Resize changes the frame and re-arranges.
func (l *Layout) Resize(frame grid.Box) {
	l.frame = frame
	l.Arrange()
}

// Frame returns the outer box.
func (l *Layout) Frame() grid.Box { return l.frame }

// Boxes returns the boxes from the last Arrange.
func (l *Layout) Boxes() Boxes { return l.boxes }

// Box returns the box of the node with id.
func (l *Layout) Box(id string) (grid.Box, bool) {
	b, ok := l.boxes[id]
	return b, ok
}

func (l *Layout) ref(id string) grid.Ref {
	return grid.RefFunc(func() (grid.Box, bool) { return l.Box(id) })
}
