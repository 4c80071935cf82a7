package grid

import (
	"math"
	"testing"

	errs "github.com/matzehuels/tilegrid/pkg/errors"
)

func pct(v float64) *ConstraintSpec {
	return &ConstraintSpec{Width: &AxisSpec{MinPct: Float(v)}}
}

func constrained(id string, weight, minPct float64) Description {
	return Description{ComponentID: id, Weight: weight, Constraints: pct(minPct)}
}

func resizeTree(t *testing.T, style ResizeStyle, children ...Description) *Tree {
	t.Helper()
	tree, _ := newTestTree(t, Config{ResizeStyle: style, InitialGrid: hgrid(children...)})
	return tree
}

func TestResizeCapsAtMinPct(t *testing.T) {
	tests := []struct {
		style ResizeStyle
		want  []float64
	}{
		{Stateful, []float64{20, 80}},
		{Push, []float64{20, 80}},
		// Passive gives all of the amount or nothing.
		{Passive, []float64{50, 50}},
	}
	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			tree := resizeTree(t, tt.style, constrained("left", 50, 20), constrained("right", 50, 20))
			left := tree.Root().Child(0)

			s, err := tree.BeginDrag(left, SideRight)
			if err != nil {
				t.Fatalf("BeginDrag() error: %v", err)
			}
			// Asking for 35 would leave the left tile at 15%.
			c, err := s.Resize(RegionChild, 35)
			if err != nil {
				t.Fatalf("Resize() error: %v", err)
			}
			if got := weightsOf(tree.Root()); !equalWeights(got, tt.want) {
				t.Errorf("weights = %v, want %v", got, tt.want)
			}
			if dirty := c.Dirty(); dirty != (tt.style != Passive) {
				t.Errorf("commit dirty = %v", dirty)
			}

			// Exhausted or rejected: shrinking further changes nothing.
			c, err = s.Resize(RegionChild, 35)
			if err != nil {
				t.Fatalf("Resize() error: %v", err)
			}
			if got := weightsOf(tree.Root()); !equalWeights(got, tt.want) {
				t.Errorf("weights after second resize = %v, want %v", got, tt.want)
			}
			if c == nil {
				t.Error("Resize() returned nil commit")
			}
		})
	}
}

func TestResizeAfterDetachFails(t *testing.T) {
	tree := resizeTree(t, Stateful, tile("a", 0), tile("b", 0), tile("c", 0))
	a := tree.Root().Child(0)

	s, err := tree.BeginDrag(a, SideRight)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Detach(a, nil); err != nil {
		t.Fatalf("Detach() error: %v", err)
	}
	tree.Flush()

	_, err = s.Resize(RegionNeighbor, 30)
	if !errs.Is(err, errs.ErrCodeDetachedNode) {
		t.Errorf("Resize() error = %v, want DETACHED_NODE", err)
	}
	if sum := sumWeights(tree.Root()); math.Abs(sum-100) > 0.011 {
		t.Errorf("sibling weights sum to %g, want 100", sum)
	}
}

func TestStatefulRestoresWeights(t *testing.T) {
	tree := resizeTree(t, Stateful, constrained("a", 50, 20), constrained("b", 50, 20))
	a := tree.Root().Child(0)

	s, err := tree.BeginDrag(a, SideRight)
	if err != nil {
		t.Fatal(err)
	}
	mustResize(t, s, RegionNeighbor, 10)
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{60, 40}) {
		t.Fatalf("after right drag weights = %v, want [60 40]", got)
	}
	mustResize(t, s, RegionChild, 10)
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{50, 50}) {
		t.Errorf("after reversal weights = %v, want exactly [50 50]", got)
	}
}

func TestStatefulBorrowsAndReturnsAcrossSiblings(t *testing.T) {
	// a | b c d: dragging a's right edge takes from b until its minimum,
	// then from c. Reversing gives c back first, then b.
	tree := resizeTree(t, Stateful,
		constrained("a", 25, 10), constrained("b", 25, 20),
		constrained("c", 25, 10), constrained("d", 25, 10))
	a := tree.Root().Child(0)

	s, err := tree.BeginDrag(a, SideRight)
	if err != nil {
		t.Fatal(err)
	}
	mustResize(t, s, RegionNeighbor, 5) // b 25 -> 20
	mustResize(t, s, RegionNeighbor, 5) // b would hit 15, c 25 -> 20
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{35, 20, 20, 25}) {
		t.Fatalf("after forward drag weights = %v, want [35 20 20 25]", got)
	}

	mustResize(t, s, RegionChild, 5) // c gets its 5 back
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{30, 20, 25, 25}) {
		t.Fatalf("after first reversal weights = %v, want [30 20 25 25]", got)
	}
	mustResize(t, s, RegionChild, 5) // then b
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{25, 25, 25, 25}) {
		t.Errorf("after full reversal weights = %v, want [25 25 25 25]", got)
	}
}

func TestPushDoesNotRestore(t *testing.T) {
	tree := resizeTree(t, Push,
		constrained("a", 25, 10), constrained("b", 25, 20),
		constrained("c", 25, 10), constrained("d", 25, 10))
	a := tree.Root().Child(0)

	s, err := tree.BeginDrag(a, SideRight)
	if err != nil {
		t.Fatal(err)
	}
	mustResize(t, s, RegionNeighbor, 5)
	mustResize(t, s, RegionNeighbor, 5)
	mustResize(t, s, RegionChild, 5)
	// The reversal shrinks a and grows the immediate neighbor b.
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{30, 25, 20, 25}) {
		t.Errorf("weights = %v, want [30 25 20 25]", got)
	}
}

func TestPassiveStopsAtImmediateSibling(t *testing.T) {
	tree := resizeTree(t, Passive,
		constrained("a", 25, 10), constrained("b", 25, 20),
		constrained("c", 25, 10), constrained("d", 25, 10))
	a := tree.Root().Child(0)

	s, err := tree.BeginDrag(a, SideRight)
	if err != nil {
		t.Fatal(err)
	}
	mustResize(t, s, RegionNeighbor, 5)
	mustResize(t, s, RegionNeighbor, 5)
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{30, 20, 25, 25}) {
		t.Errorf("weights = %v, want [30 20 25 25]", got)
	}
}

func TestResizeRespectsSelfMinimum(t *testing.T) {
	// b starts under its own minimum and growing it by 5 still leaves it
	// there, so no sibling is asked to give.
	tree := resizeTree(t, Stateful, constrained("a", 90, 10), constrained("b", 10, 30))
	a := tree.Root().Child(0)

	s, err := tree.BeginDrag(a, SideRight)
	if err != nil {
		t.Fatal(err)
	}
	mustResize(t, s, RegionChild, 5)
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{90, 10}) {
		t.Errorf("weights = %v, want [90 10]", got)
	}
}

func TestResizeNegativeAmountFlipsRegion(t *testing.T) {
	tree := resizeTree(t, Stateful, constrained("a", 50, 10), constrained("b", 50, 10))
	e := tree.EdgeInDirection(tree.Root().Child(0), SideRight)

	if _, err := tree.ResizeFromSplit(e, RegionChild, -10, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{60, 40}) {
		t.Errorf("weights = %v, want [60 40]", got)
	}
}

func TestResizeWeightsSumTo100(t *testing.T) {
	styles := []ResizeStyle{Stateful, Passive, Push}
	deltas := []float64{3.333, -7.77, 12.5, 1.01, -20, 4.2, -0.33, 9.99, -15.5, 30}
	for _, style := range styles {
		t.Run(string(style), func(t *testing.T) {
			tree := resizeTree(t, style,
				constrained("a", 0, 5), constrained("b", 0, 5), constrained("c", 0, 5))
			b := tree.Root().Child(1)
			s, err := tree.BeginDrag(b, SideRight)
			if err != nil {
				t.Fatal(err)
			}
			for _, d := range deltas {
				mustResize(t, s, RegionNeighbor, d)
				if sum := sumWeights(tree.Root()); math.Abs(sum-100) > 0.011 {
					t.Fatalf("after delta %v weights %v sum to %v", d, weightsOf(tree.Root()), sum)
				}
				for _, w := range weightsOf(tree.Root()) {
					if w < 5-1e-9 {
						t.Fatalf("weight %v below minimum 5", w)
					}
				}
			}
		})
	}
}

func TestResizeHonorsMinPx(t *testing.T) {
	tree := resizeTree(t, Passive, constrained("a", 50, 10), constrained("b", 50, 10))
	a, b := tree.Root().Child(0), tree.Root().Child(1)
	// b is rendered at its 200px default minimum.
	_ = tree.SetRef(a, StaticRef{Width: 600, Height: 400})
	_ = tree.SetRef(b, StaticRef{Left: 600, Width: 200.3, Height: 400})

	s, err := tree.BeginDrag(a, SideRight)
	if err != nil {
		t.Fatal(err)
	}
	mustResize(t, s, RegionNeighbor, 5)
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{50, 50}) {
		t.Errorf("weights = %v, want unchanged [50 50]", got)
	}
}

func TestMoveConvertsPixels(t *testing.T) {
	tree := resizeTree(t, Stateful, constrained("a", 50, 10), constrained("b", 50, 10))
	a, b := tree.Root().Child(0), tree.Root().Child(1)
	_ = tree.SetRef(a, StaticRef{Width: 500, Height: 300})
	_ = tree.SetRef(b, StaticRef{Left: 500, Width: 500, Height: 300})

	s, err := tree.BeginDrag(a, SideRight)
	if err != nil {
		t.Fatal(err)
	}
	// 100px of b's 500px box is a fifth of its weight of 50.
	if _, err := s.Move(100); err != nil {
		t.Fatal(err)
	}
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{60, 40}) {
		t.Errorf("weights = %v, want [60 40]", got)
	}
	if _, err := s.Move(-100); err != nil {
		t.Fatal(err)
	}
	// 100px of a's 500px box at weight 60 is 12, but the reversal stops at
	// the recorded 50 and hands the excess back.
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{50, 50}) {
		t.Errorf("weights = %v, want [50 50]", got)
	}
	if s.Steps() != 2 {
		t.Errorf("Steps() = %d, want 2", s.Steps())
	}
}

func TestMoveWithoutGeometryIsNoop(t *testing.T) {
	tree := resizeTree(t, Stateful, constrained("a", 50, 10), constrained("b", 50, 10))
	s, err := tree.BeginDrag(tree.Root().Child(0), SideRight)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Move(40); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if got := weightsOf(tree.Root()); !equalWeights(got, []float64{50, 50}) {
		t.Errorf("weights = %v, want [50 50]", got)
	}
}

func TestBeginDragErrors(t *testing.T) {
	tree, n := nestedTree(t)

	tests := []struct {
		name string
		node Child
		side Side
		code errs.Code
	}{
		{"NotResizable", n["c"], SideRight, errs.ErrCodeNotResizable},
		{"Root", n["root"], SideLeft, errs.ErrCodeNotResizable},
		{"BadSide", n["b"], Side("diagonal"), errs.ErrCodeInvalidSide},
		{"Nil", nil, SideRight, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tree.BeginDrag(tt.node, tt.side)
			if !errs.Is(err, tt.code) {
				t.Errorf("BeginDrag() error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := tree.ResizeFromSplit(tree.EdgeInDirection(n["c"], SideRight), RegionChild, 5, nil, nil); !errs.Is(err, errs.ErrCodeNotResizable) {
		t.Errorf("ResizeFromSplit() on non-resizable edge error = %v", err)
	}
}

func TestDragSessionEnd(t *testing.T) {
	tree, sched := newTestTree(t, Config{InitialGrid: hgrid(constrained("a", 50, 10), constrained("b", 50, 10))})
	var refreshed int
	_ = tree.SetObserver(tree.Root(), ObserverFunc(func() { refreshed++ }))

	s, err := tree.BeginDrag(tree.Root().Child(0), SideRight)
	if err != nil {
		t.Fatal(err)
	}
	mustResize(t, s, RegionNeighbor, 5)
	mustResize(t, s, RegionNeighbor, 5)
	if refreshed != 0 {
		t.Errorf("refreshed = %d before End, want 0", refreshed)
	}
	s.End()
	if refreshed != 1 {
		t.Errorf("refreshed = %d after End, want 1", refreshed)
	}
	if sched.Run() != 0 {
		t.Error("ended drag should leave nothing scheduled")
	}
	if _, err := s.Resize(RegionNeighbor, 5); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Resize() after End error = %v, want INVALID_INPUT", err)
	}
	if s.ID == "" {
		t.Error("session should have an id")
	}
}

func mustResize(t *testing.T, s *DragSession, shrink Region, amount float64) {
	t.Helper()
	if _, err := s.Resize(shrink, amount); err != nil {
		t.Fatalf("Resize(%s, %v) error: %v", shrink, amount, err)
	}
}
