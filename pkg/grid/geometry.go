package grid

// Box is an axis-aligned bounding box in device pixels.
type Box struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size returns the box extent along a.
func (b Box) Size(a Axis) float64 {
	if a == AxisHeight {
		return b.Height
	}
	return b.Width
}

// Ref is the handle to a node's rendered box. The presentation layer attaches
// one after the node is first laid out; until then the node's pixel geometry is
// unknown and Box reports false.
type Ref interface {
	Box() (Box, bool)
}

// StaticRef is a Ref with a fixed box.
type StaticRef Box

// Box implements Ref.
func (r StaticRef) Box() (Box, bool) { return Box(r), true }

// RefFunc adapts a function to Ref.
type RefFunc func() (Box, bool)

// Box implements Ref.
func (f RefFunc) Box() (Box, bool) { return f() }

// Observer is notified when a node it renders has changed. The engine calls
// Refresh at most once per commit per node.
type Observer interface {
	Refresh()
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func()

// Refresh implements Observer.
func (f ObserverFunc) Refresh() { f() }

func boxOf(c Child) (Box, bool) {
	ref := c.Ref()
	if ref == nil {
		return Box{}, false
	}
	return ref.Box()
}
