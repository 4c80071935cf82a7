package grid

import (
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/tilegrid/pkg/observability"
)

// Scheduler defers a flush to the host's next tick. Schedule returns a
// function that cancels the pending call.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

// TimerScheduler runs flushes on a timer goroutine after Delay (zero by
// default). A flush must not interleave with tree mutation, so hosts that
// touch the tree from more than one goroutine set Locker to the lock they
// hold while mutating; the flush, and the observers it calls, then run under
// it.
type TimerScheduler struct {
	Delay  time.Duration
	Locker sync.Locker
}

// Schedule implements Scheduler.
func (s TimerScheduler) Schedule(fn func()) func() {
	t := time.AfterFunc(s.Delay, func() {
		if s.Locker != nil {
			s.Locker.Lock()
			defer s.Locker.Unlock()
		}
		fn()
	})
	return func() { t.Stop() }
}

// ManualScheduler queues flushes until Run is called. Use it in tests and in
// hosts that own an event loop.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []*scheduled
}

type scheduled struct {
	fn       func()
	canceled bool
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := &scheduled{fn: fn}
	s.queue = append(s.queue, item)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		item.canceled = true
		if i := slices.Index(s.queue, item); i >= 0 {
			s.queue = slices.Delete(s.queue, i, i+1)
		}
	}
}

// Pending returns the number of scheduled, uncanceled calls.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.queue {
		if !item.canceled {
			n++
		}
	}
	return n
}

// Run executes every scheduled call and reports how many ran.
func (s *ManualScheduler) Run() int {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	n := 0
	for _, item := range queue {
		s.mu.Lock()
		canceled := item.canceled
		s.mu.Unlock()
		if !canceled {
			item.fn()
			n++
		}
	}
	return n
}

// Batcher holds the commits of one tree that have not been flushed yet.
type Batcher struct {
	mu      sync.Mutex
	sched   Scheduler
	pending []*Commit
	cancel  func()
}

// NewBatcher returns a batcher that defers flushes through s. Without a
// scheduler, commits wait for an explicit Flush or Commit on the caller's
// goroutine.
func NewBatcher(s Scheduler) *Batcher {
	if s == nil {
		s = &ManualScheduler{}
	}
	return &Batcher{sched: s}
}

// Pending returns the number of commits waiting to be flushed.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Flush completes every pending commit in the order it was created and
// reports how many were flushed.
func (b *Batcher) Flush() int {
	b.mu.Lock()
	queue := b.pending
	b.pending = nil
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.mu.Unlock()

	for _, c := range queue {
		c.finish(false)
	}
	return len(queue)
}

func (b *Batcher) enqueue(c *Commit) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, c)
	if b.cancel == nil {
		b.cancel = b.sched.Schedule(func() { b.Flush() })
	}
}

func (b *Batcher) remove(c *Commit) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := slices.Index(b.pending, c); i >= 0 {
		b.pending = slices.Delete(b.pending, i, i+1)
	}
	if len(b.pending) == 0 && b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// Commit collects the nodes changed by one logical operation so their
// observers are notified once, when the commit completes. Commits complete
// either explicitly through Commit or on the batcher's next flush.
type Commit struct {
	id   int
	tree *Tree

	// complete, dirty and the sets are guarded by tree.batcher.mu. The sets
	// are frozen once complete is set.
	complete bool
	dirty    bool

	grids   []*Grid
	gridSet map[string]struct{}
	tiles   []*Tile
	tileSet map[string]struct{}
}

// ID returns the commit's sequence number within its tree.
func (c *Commit) ID() int { return c.id }

// Dirty reports whether any node has been marked changed.
func (c *Commit) Dirty() bool {
	c.tree.batcher.mu.Lock()
	defer c.tree.batcher.mu.Unlock()
	return c.dirty
}

// Complete reports whether the commit has been flushed.
func (c *Commit) Complete() bool {
	c.tree.batcher.mu.Lock()
	defer c.tree.batcher.mu.Unlock()
	return c.complete
}

// Changed records n as modified and invalidates its cached values so reads
// later in the same operation see fresh state. Recording the same node twice
// has no further effect. Nodes marked after the commit completed are
// invalidated but not notified.
func (c *Commit) Changed(n Child) *Commit {
	b := c.tree.batcher
	b.mu.Lock()
	if !c.complete {
		c.record(n)
	}
	b.mu.Unlock()
	c.tree.invalidate(n)
	return c
}

func (c *Commit) record(n Child) {
	switch v := n.(type) {
	case *Grid:
		if _, ok := c.gridSet[v.id]; !ok {
			c.gridSet[v.id] = struct{}{}
			c.grids = append(c.grids, v)
		}
	case *Tile:
		if _, ok := c.tileSet[v.id]; !ok {
			c.tileSet[v.id] = struct{}{}
			c.tiles = append(c.tiles, v)
		}
	}
	c.dirty = true
}

// Commit completes c now and removes it from the pending queue. Calling it
// again, or letting the batcher reach it later, does nothing.
func (c *Commit) Commit() *Commit {
	return c.finish(true)
}

func (c *Commit) finish(removeFromQueue bool) *Commit {
	b := c.tree.batcher
	b.mu.Lock()
	if c.complete {
		b.mu.Unlock()
		return c
	}
	c.complete = true
	dirty := c.dirty
	b.mu.Unlock()

	if dirty {
		c.render()
	}
	if removeFromQueue {
		b.remove(c)
	}
	return c
}

// render notifies grids first, then tiles whose parent grid was not
// notified, each in the order they were marked.
func (c *Commit) render() {
	notified := 0
	for _, g := range c.grids {
		if g.observer != nil {
			g.observer.Refresh()
			notified++
		}
	}
	for _, t := range c.tiles {
		if _, ok := c.gridSet[t.parentID]; ok {
			continue
		}
		if t.observer != nil {
			t.observer.Refresh()
			notified++
		}
	}
	c.tree.logger.Debug("commit flushed",
		"commit", c.id, "grids", len(c.grids), "tiles", len(c.tiles), "notified", notified)
	observability.Commits().OnCommitFlush(c.tree.Instance(), c.id, len(c.grids), len(c.tiles), notified)
}
