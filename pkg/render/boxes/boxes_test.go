package boxes

import (
	"strings"
	"testing"

	"github.com/matzehuels/tilegrid/pkg/grid"
)

func newTree(t *testing.T, desc grid.Description) *grid.Tree {
	t.Helper()
	tree, err := grid.New(grid.Config{InitialGrid: &desc}, grid.Options{Scheduler: &grid.ManualScheduler{}})
	if err != nil {
		t.Fatalf("grid.New() error: %v", err)
	}
	return tree
}

// h [ a 70, v [ b, c ] 30 ]
func sampleTree(t *testing.T) *grid.Tree {
	return newTree(t, grid.Description{
		Direction: grid.Horizontal,
		Children: []grid.Description{
			{ComponentID: "a", Weight: 70},
			{Direction: grid.Vertical, Weight: 30, Children: []grid.Description{
				{ComponentID: "b"},
				{ComponentID: "c"},
			}},
		},
	})
}

func TestArrange(t *testing.T) {
	tree := sampleTree(t)
	root := tree.Root()
	col := root.Child(1).(*grid.Grid)

	got := Arrange(tree, grid.Box{Width: 1000, Height: 500})
	tests := []struct {
		name string
		id   string
		want grid.Box
	}{
		{"Root", root.ID(), grid.Box{Width: 1000, Height: 500}},
		{"A", root.Child(0).ID(), grid.Box{Width: 700, Height: 500}},
		{"Column", col.ID(), grid.Box{Left: 700, Width: 300, Height: 500}},
		{"B", col.Child(0).ID(), grid.Box{Left: 700, Width: 300, Height: 250}},
		{"C", col.Child(1).ID(), grid.Box{Top: 250, Left: 700, Width: 300, Height: 250}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got[tt.id] != tt.want {
				t.Errorf("box = %+v, want %+v", got[tt.id], tt.want)
			}
		})
	}
	if len(got) != tree.Len() {
		t.Errorf("len(Arrange()) = %d, want %d", len(got), tree.Len())
	}
}

func TestArrangeCellsIsFlush(t *testing.T) {
	tree := newTree(t, grid.Description{
		Direction: grid.Horizontal,
		Children:  []grid.Description{{ComponentID: "a"}, {ComponentID: "b"}, {ComponentID: "c"}},
	})
	got := ArrangeCells(tree, grid.Box{Width: 100, Height: 20})

	var right float64
	for i, c := range tree.Root().Children() {
		b := got[c.ID()]
		if b.Left != right {
			t.Errorf("child %d starts at %v, want %v", i, b.Left, right)
		}
		if b.Width != float64(int(b.Width)) {
			t.Errorf("child %d width %v is not whole", i, b.Width)
		}
		right = b.Left + b.Width
	}
	if right != 100 {
		t.Errorf("children end at %v, want 100", right)
	}
}

func TestArrangeTabsShareHolder(t *testing.T) {
	tree := newTree(t, grid.Description{
		Direction: grid.Horizontal,
		Children: []grid.Description{
			{ComponentID: "main"},
			{Tabs: []grid.Description{{ComponentID: "logs"}, {ComponentID: "metrics"}}},
		},
	})
	holder := tree.Root().Child(1).(*grid.Tile)
	got := Arrange(tree, grid.Box{Width: 400, Height: 300})
	for _, tab := range holder.Tabs() {
		if got[tab.ID()] != got[holder.ID()] {
			t.Errorf("tab %s box = %+v, want holder box %+v", tab.ComponentID(), got[tab.ID()], got[holder.ID()])
		}
	}
}

func TestLayoutDrivesPixelDrags(t *testing.T) {
	tree := newTree(t, grid.Description{
		Direction: grid.Horizontal,
		Children:  []grid.Description{{ComponentID: "a"}, {ComponentID: "b"}},
	})
	l := Attach(tree, grid.Box{Width: 1000, Height: 400}, false)
	a := tree.Root().Child(0)

	s, err := tree.BeginDrag(a, grid.SideRight)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Move(100); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	s.End()

	if a.Weight() != 60 {
		t.Errorf("a weight = %v, want 60", a.Weight())
	}
	l.Arrange()
	if b, _ := l.Box(a.ID()); b.Width != 600 {
		t.Errorf("a width = %v, want 600", b.Width)
	}

	pushed, _, err := tree.PushTile(tree.Root(), "c", nil)
	if err != nil {
		t.Fatal(err)
	}
	l.Resize(grid.Box{Width: 500, Height: 400})
	if pushed.Ref() == nil {
		t.Fatal("Arrange() should attach refs to new nodes")
	}
	if box, ok := pushed.Ref().Box(); !ok || box.Width <= 0 || box.Left+box.Width != 500 {
		t.Errorf("pushed box = %+v, %v", box, ok)
	}
}

func TestRenderSVG(t *testing.T) {
	tree := sampleTree(t)
	b := Arrange(tree, grid.Box{Width: 1000, Height: 500})
	svg := string(RenderSVG(tree, b, Options{Handles: true, Weights: true}))

	for _, want := range []string{
		`viewBox="0.0 0.0 1000.0 500.0"`,
		`>a (70%)</text>`,
		`>b (50%)</text>`,
		`class="handle"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	// a|column and b/c are the only resizable boundaries.
	if n := strings.Count(svg, `class="handle"`); n != 2 {
		t.Errorf("handles = %d, want 2", n)
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("SVG not closed")
	}
}

func TestEscapeXML(t *testing.T) {
	if got := escapeXML(`a<b & "c"`); got != "a&lt;b &amp; &#34;c&#34;" {
		t.Errorf("escapeXML() = %q", got)
	}
}
