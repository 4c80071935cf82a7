package grid

// Edge is the resolved resize relationship on one side of a node. Child is
// the node itself or the ancestor at the level where a partner was found;
// Neighbor sits next to it in Parent, NextIndexOp positions further along.
type Edge struct {
	Side      Side
	Resizable bool
	Axis      Axis

	Child    Child
	Neighbor Child
	Parent   *Grid

	ChildIndex    int
	NeighborIndex int
	NextIndexOp   int
}

// Edges holds the edges of a node on all four sides.
type Edges struct {
	Top    *Edge
	Bottom *Edge
	Left   *Edge
	Right  *Edge
}

// Side returns the edge on s.
func (e Edges) Side(s Side) *Edge {
	switch s {
	case SideTop:
		return e.Top
	case SideBottom:
		return e.Bottom
	case SideLeft:
		return e.Left
	case SideRight:
		return e.Right
	}
	return nil
}

// Edges resolves all four edges of c.
func (t *Tree) Edges(c Child) Edges {
	return Edges{
		Top:    t.EdgeInDirection(c, SideTop),
		Bottom: t.EdgeInDirection(c, SideBottom),
		Left:   t.EdgeInDirection(c, SideLeft),
		Right:  t.EdgeInDirection(c, SideRight),
	}
}

// EdgeInDirection finds the sibling that gives or takes space when the side
// of c is dragged. It climbs from c until it reaches a grid split along the
// side's axis in which the current node is not already the outermost child
// toward side. Without such a grid the edge is not resizable.
//
// An edge is resizable only when the neighbor is at least as deep as c and
// was created after the node found at that level, so each boundary is owned
// by exactly one node. Results are memoized until the next change.
func (t *Tree) EdgeInDirection(c Child, side Side) *Edge {
	cache := c.base().fresh()
	if e, ok := cache.neighbors[side]; ok {
		return e
	}

	edge := t.resolveEdge(c, side)
	if cache.neighbors == nil {
		cache.neighbors = make(map[Side]*Edge, len(Sides))
	}
	cache.neighbors[side] = edge
	return edge
}

func (t *Tree) resolveEdge(target Child, side Side) *Edge {
	dir := side.Direction()
	step := side.step()
	none := &Edge{Side: side, Axis: dir.Axis(), ChildIndex: -1, NeighborIndex: -1}

	child := target
	parent := t.Parent(child)
	for parent != nil {
		if g, ok := parent.(*Grid); ok && g.Direction() == dir {
			boundary := 0
			if step > 0 {
				boundary = len(g.children) - 1
			}
			if t.ChildIndex(child) != boundary {
				break
			}
		}
		child = parent
		parent = t.Parent(parent)
	}
	if parent == nil {
		return none
	}

	g := parent.(*Grid)
	childIndex := t.ChildIndex(child)
	neighborIndex := childIndex + step
	neighbor := g.children[neighborIndex]

	return &Edge{
		Side:          side,
		Resizable:     t.Depth(neighbor) >= t.Depth(target) && neighbor.Index() > child.Index(),
		Axis:          dir.Axis(),
		Child:         child,
		Neighbor:      neighbor,
		Parent:        g,
		ChildIndex:    childIndex,
		NeighborIndex: neighborIndex,
		NextIndexOp:   step,
	}
}

// Region returns the node on r's half of the edge.
func (e *Edge) Region(r Region) Child {
	if r == RegionNeighbor {
		return e.Neighbor
	}
	return e.Child
}
