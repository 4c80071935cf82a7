package grid

import (
	"strings"
	"sync"
	"testing"
)

func TestAllocator(t *testing.T) {
	a := NewAllocator("dg-test")

	g1 := a.NextGridID()
	t1 := a.NextTileID()
	g2 := a.NextGridID()
	t2 := a.NextTileID()

	want := []string{"dg-test-grid-1", "dg-test-tile-1", "dg-test-grid-2", "dg-test-tile-2"}
	for i, id := range []ID{g1, t1, g2, t2} {
		if id.ID != want[i] {
			t.Errorf("id %d = %s, want %s", i, id.ID, want[i])
		}
	}
	if !(g1.Index < t1.Index && t1.Index < g2.Index && g2.Index < t2.Index) {
		t.Errorf("indexes not increasing: %d %d %d %d", g1.Index, t1.Index, g2.Index, t2.Index)
	}
	if a.NextCommitID() != 1 || a.NextCommitID() != 2 {
		t.Error("commit ids should count from 1")
	}
	if a.Instance() != "dg-test" {
		t.Errorf("Instance() = %s", a.Instance())
	}
}

func TestIndexSharedAcrossAllocators(t *testing.T) {
	a := NewAllocator("dg-a")
	b := NewAllocator("dg-b")

	first := a.NextTileID()
	second := b.NextTileID()
	if first.ID == second.ID {
		t.Errorf("ids collide: %s", first.ID)
	}
	if second.Index <= first.Index {
		t.Errorf("index %d should follow %d", second.Index, first.Index)
	}
}

func TestNextInstanceIDConcurrent(t *testing.T) {
	const n = 64
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = NextInstanceID().ID
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, id := range ids {
		if !strings.HasPrefix(id, "dg-") {
			t.Errorf("instance id %q lacks dg- prefix", id)
		}
		if seen[id] {
			t.Errorf("duplicate instance id %s", id)
		}
		seen[id] = true
	}
}

func TestKindOfID(t *testing.T) {
	tests := []struct {
		id   string
		want Kind
	}{
		{"dg-1-grid-3", KindGrid},
		{"dg-1-tile-3", KindTile},
		{"dg-12-tile-1", KindTile},
	}
	for _, tt := range tests {
		if got := KindOfID(tt.id); got != tt.want {
			t.Errorf("KindOfID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
