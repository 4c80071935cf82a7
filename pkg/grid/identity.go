package grid

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Process-wide counters. Node indexes are shared by every tree so creation
// order can be compared across kinds and instances.
var (
	instanceCounter atomic.Int64
	indexCounter    atomic.Int64
)

// ID is an allocated node identity.
type ID struct {
	ID    string
	Index int
}

func nextIndex() int {
	n := indexCounter.Add(1)
	if n <= 0 {
		panic("grid: node index counter exhausted")
	}
	return int(n)
}

// NextInstanceID allocates the identity of a new tree instance ("dg-N").
func NextInstanceID() ID {
	n := instanceCounter.Add(1)
	return ID{ID: fmt.Sprintf("dg-%d", n), Index: nextIndex()}
}

// Allocator issues ids scoped to one tree instance. It is not safe for
// concurrent use; each tree owns its own.
type Allocator struct {
	instance string
	grids    int
	tiles    int
	commits  int
}

// NewAllocator returns an allocator namespaced by instance.
func NewAllocator(instance string) *Allocator {
	return &Allocator{instance: instance}
}

// Instance returns the namespace of every id this allocator issues.
func (a *Allocator) Instance() string { return a.instance }

// NextGridID allocates "<instance>-grid-N".
func (a *Allocator) NextGridID() ID {
	a.grids++
	return ID{ID: fmt.Sprintf("%s-grid-%d", a.instance, a.grids), Index: nextIndex()}
}

// NextTileID allocates "<instance>-tile-N".
func (a *Allocator) NextTileID() ID {
	a.tiles++
	return ID{ID: fmt.Sprintf("%s-tile-%d", a.instance, a.tiles), Index: nextIndex()}
}

// NextCommitID allocates a commit sequence number.
func (a *Allocator) NextCommitID() int {
	a.commits++
	return a.commits
}

// KindOfID reports the node kind encoded in an id issued by an Allocator.
func KindOfID(id string) Kind {
	if strings.Contains(id, "-grid-") {
		return KindGrid
	}
	return KindTile
}
