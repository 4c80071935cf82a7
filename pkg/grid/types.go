package grid

// Kind discriminates the two node variants.
type Kind uint8

const (
	KindGrid Kind = iota + 1
	KindTile
)

func (k Kind) String() string {
	switch k {
	case KindGrid:
		return "grid"
	case KindTile:
		return "tile"
	}
	return "unknown"
}

// Direction is the axis along which a grid lays out its children.
type Direction string

const (
	Horizontal Direction = "h"
	Vertical   Direction = "v"
)

// Axis names the box dimension measured along a direction.
type Axis string

const (
	AxisWidth  Axis = "width"
	AxisHeight Axis = "height"
)

// Axis returns the box dimension a grid of direction d splits.
func (d Direction) Axis() Axis {
	if d == Vertical {
		return AxisHeight
	}
	return AxisWidth
}

// Side names one of the four edges of a node.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Sides lists every side in the order edges are reported.
var Sides = []Side{SideTop, SideBottom, SideLeft, SideRight}

// Direction returns the split direction a parent must have for this side to
// be resizable within it.
func (s Side) Direction() Direction {
	if s == SideTop || s == SideBottom {
		return Vertical
	}
	return Horizontal
}

// Axis returns the dimension that changes when this side is dragged.
func (s Side) Axis() Axis { return s.Direction().Axis() }

// step is the child index increment that moves toward this side.
func (s Side) step() int {
	if s == SideTop || s == SideLeft {
		return -1
	}
	return 1
}

// Region selects one half of an edge: the node that owns the edge (child)
// or the sibling across it (neighbor).
type Region string

const (
	RegionChild    Region = "child"
	RegionNeighbor Region = "neighbor"
)

func (r Region) opposite() Region {
	if r == RegionChild {
		return RegionNeighbor
	}
	return RegionChild
}

// ResizeStyle selects how space is taken from siblings during a drag.
type ResizeStyle string

const (
	// Stateful remembers the weights it borrows so that reversing a drag
	// restores them in reverse order.
	Stateful ResizeStyle = "stateful"

	// Passive only ever resizes the immediate pair and stops when either
	// side reaches its constraints.
	Passive ResizeStyle = "passive"

	// Push moves on to further siblings like Stateful but never restores.
	Push ResizeStyle = "push"
)
