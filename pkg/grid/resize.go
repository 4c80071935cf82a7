package grid

import (
	"github.com/google/uuid"

	errs "github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/observability"
)

// pxTolerance absorbs sub-pixel rounding when comparing a rendered box with
// its pixel minimum.
const pxTolerance = 0.5

// DragSession carries the state of one continuous drag of an edge. Create one
// with BeginDrag, feed it every movement, and End it on release.
type DragSession struct {
	ID string

	tree *Tree
	edge *Edge

	// originalType is the region the gesture first shrank; empty until the
	// first step and again after every borrowed weight was given back.
	originalType Region

	// indexToCompare is the position of the sibling borrowed from most
	// recently, which a reversal gives space back to first.
	indexToCompare int
	hasIndex       bool

	// weights records the weight each sibling had when first borrowed from.
	weights map[string]float64

	commit *Commit
	steps  int
	ended  bool
}

// BeginDrag starts a drag of the side of c. The edge must be resizable.
func (t *Tree) BeginDrag(c Child, side Side) (*DragSession, error) {
	if err := errs.ValidateSide(string(side)); err != nil {
		return nil, err
	}
	if err := t.checkAttached(c); err != nil {
		return nil, err
	}
	edge := t.EdgeInDirection(c, side)
	if !edge.Resizable {
		return nil, errs.New(errs.ErrCodeNotResizable, "%s edge of %s is not resizable", side, c.ID())
	}

	s := &DragSession{
		ID:      uuid.NewString(),
		tree:    t,
		edge:    edge,
		weights: make(map[string]float64),
	}
	t.logger.Debug("drag started", "session", s.ID, "node", c.ID(), "side", side,
		"child", edge.Child.ID(), "neighbor", edge.Neighbor.ID())
	observability.Resizes().OnDragStart(t.Instance(), s.ID, c.ID(), string(side))
	return s, nil
}

// Edge returns the edge being dragged.
func (s *DragSession) Edge() *Edge { return s.edge }

// Commit returns the commit collecting the session's changes, if any.
func (s *DragSession) Commit() *Commit { return s.commit }

// Steps returns the number of movements that changed weights.
func (s *DragSession) Steps() int { return s.steps }

// Move applies a pointer movement of px device pixels along the edge's axis.
// Positive values move right or down, shrinking the neighbor; negative values
// shrink the child. The weight moved is the hovered node's weight scaled by
// the share of its box the pointer crossed. Without geometry for the hovered
// node the movement is ignored.
func (s *DragSession) Move(px float64) (*Commit, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if px == 0 {
		return s.commit, nil
	}
	hovered := RegionChild
	if px > 0 {
		hovered = RegionNeighbor
	}
	node := s.edge.Region(hovered)
	box, ok := boxOf(node)
	size := box.Size(s.edge.Axis)
	if !ok || size <= 0 {
		s.tree.logger.Debug("drag step skipped, no geometry", "session", s.ID, "node", node.ID())
		return s.commit, nil
	}
	if px < 0 {
		px = -px
	}
	return s.Resize(hovered, node.Weight()*px/size)
}

// Resize shrinks the shrink region of the edge by amount weight and grows the
// other. A negative amount shrinks the opposite region instead.
func (s *DragSession) Resize(shrink Region, amount float64) (*Commit, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	c, err := s.tree.ResizeFromSplit(s.edge, shrink, amount, s, s.commit)
	if err != nil {
		return nil, err
	}
	s.commit = c
	return c, nil
}

// End finishes the gesture and flushes its commit. The session cannot be
// used afterwards.
func (s *DragSession) End() {
	if s.ended {
		return
	}
	s.ended = true
	if s.commit != nil {
		s.commit.Commit()
	}
	s.tree.logger.Debug("drag ended", "session", s.ID, "steps", s.steps)
	observability.Resizes().OnDragEnd(s.tree.Instance(), s.ID, s.steps)
}

func (s *DragSession) check() error {
	if s.ended {
		return errs.New(errs.ErrCodeInvalidInput, "drag session %s has ended", s.ID)
	}
	return nil
}

// ResizeFromSplit moves amount weight across edge: the shrink region gives
// up space and the opposite region grows. When the immediate sibling cannot
// give the space without breaking a minimum, siblings further along are
// tried in turn. If none can give all of it, the first one with room to
// spare gives what it can, down to its minimum. Passive resizing never looks
// past the immediate sibling and never gives part of the amount.
//
// Every node the edge names must still be attached; a drag whose child or
// neighbor was detached fails with DETACHED_NODE.
//
// session may be nil for one-off resizes; a drag must pass the same session
// to every step. The returned commit is commit if it was still open, or a new
// one. Running out of room is not an error: the commit simply stays clean.
func (t *Tree) ResizeFromSplit(edge *Edge, shrink Region, amount float64, session *DragSession, commit *Commit) (*Commit, error) {
	if edge == nil || !edge.Resizable || edge.Parent == nil {
		return nil, errs.New(errs.ErrCodeNotResizable, "edge is not resizable")
	}
	for _, c := range []Child{edge.Parent, edge.Child, edge.Neighbor} {
		if err := t.checkAttached(c); err != nil {
			return nil, err
		}
	}
	commit = t.NewCommit(commit)
	if amount == 0 {
		return commit, nil
	}
	if amount < 0 {
		shrink, amount = shrink.opposite(), -amount
	}
	if session == nil {
		session = &DragSession{tree: t, edge: edge, weights: make(map[string]float64)}
	}
	if session.originalType == "" {
		session.originalType = shrink
	}

	style := t.cfg.ResizeStyle
	parent := edge.Parent
	isInverse := shrink != session.originalType

	self := edge.Region(shrink.opposite())
	if style == Stateful && isInverse && session.hasIndex {
		if c := parent.Child(session.indexToCompare); c != nil {
			self = c
		}
	}

	idx, step := edge.NeighborIndex, edge.NextIndexOp
	if shrink == RegionChild {
		idx, step = edge.ChildIndex, -edge.NextIndexOp
	}

	selfMin := t.Constraints(self).Axis(edge.Axis).MinPct
	nextSelf := round2(self.Weight() + amount)
	fallback := -1

	for ; idx >= 0 && idx < len(parent.children); idx += step {
		sib := parent.children[idx]
		if sib == self {
			continue
		}
		sibMin := t.Constraints(sib).Axis(edge.Axis)
		nextSib := round2(sib.Weight() - amount)
		locked := t.atMinPx(sib, sibMin.MinPx, edge.Axis)

		if sibMin.MinPct > nextSib || selfMin > nextSelf || locked {
			if fallback < 0 && !locked && sib.Weight() > sibMin.MinPct && selfMin <= nextSelf {
				fallback = idx
			}
			t.logger.Debug("resize candidate rejected", "sibling", sib.ID(), "weight", sib.Weight(),
				"min_pct", sibMin.MinPct, "locked", locked)
			if style == Passive {
				break
			}
			continue
		}
		t.applyResize(session, edge, shrink, isInverse, self, idx, nextSelf, nextSib, commit)
		observability.Resizes().OnResize(t.Instance(), string(style), amount, true)
		return commit, nil
	}

	if fallback >= 0 && style != Passive {
		sib := parent.children[fallback]
		give := round2(sib.Weight() - t.Constraints(sib).Axis(edge.Axis).MinPct)
		t.applyResize(session, edge, shrink, isInverse, self, fallback,
			round2(self.Weight()+give), round2(sib.Weight()-give), commit)
		observability.Resizes().OnResize(t.Instance(), string(style), give, true)
		return commit, nil
	}

	observability.Resizes().OnResize(t.Instance(), string(style), amount, false)
	return commit, nil
}

// applyResize writes the new weights of self and the sibling at idx, keeping
// the session's borrow records current for the stateful style.
func (t *Tree) applyResize(s *DragSession, edge *Edge, shrink Region, isInverse bool,
	self Child, idx int, nextSelf, nextSib float64, commit *Commit) {
	sib := edge.Parent.children[idx]

	if t.cfg.ResizeStyle == Stateful {
		if !isInverse {
			if _, ok := s.weights[sib.ID()]; !ok {
				s.weights[sib.ID()] = sib.Weight()
				s.indexToCompare, s.hasIndex = idx, true
			}
		} else if recorded, ok := s.weights[self.ID()]; ok && nextSelf >= recorded {
			nextSib = round2(nextSib + (nextSelf - recorded))
			nextSelf = recorded
			delete(s.weights, self.ID())

			if len(s.weights) == 0 {
				s.originalType = ""
				s.hasIndex = false
			} else if shrink == RegionChild {
				s.indexToCompare = t.ChildIndex(self) - edge.NextIndexOp
			} else {
				s.indexToCompare = t.ChildIndex(self) + edge.NextIndexOp
			}
		}
	}

	self.base().weight = nextSelf
	sib.base().weight = nextSib
	s.steps++
	commit.Changed(edge.Parent)

	t.logger.Debug("resized", "session", s.ID, "grow", self.ID(), "weight", nextSelf,
		"shrink", sib.ID(), "sibling_weight", nextSib)
}

// atMinPx reports whether c's rendered box has already shrunk to minPx along
// axis. Nodes without geometry are never considered at their minimum.
func (t *Tree) atMinPx(c Child, minPx float64, axis Axis) bool {
	box, ok := boxOf(c)
	if !ok {
		return false
	}
	return box.Size(axis) <= minPx+pxTolerance
}
