// Package grid implements a resizable, nestable panel layout: a tree of
// grids that split their space along one direction among ordered children,
// whose leaves are tiles hosting content.
//
// # Overview
//
// A [Tree] is built from a [Config], usually with an initial [Description]:
//
//	tree, err := grid.New(grid.Config{
//	    InitialGrid: &grid.Description{
//	        Direction: grid.Horizontal,
//	        Children: []grid.Description{
//	            {ComponentID: "editor", Weight: 70},
//	            {ComponentID: "preview"},
//	        },
//	    },
//	}, grid.Options{})
//
// Every child of a grid carries a weight, its percentage of the grid's main
// axis. Siblings always sum to 100; children without a declared weight share
// what the others leave.
//
// # Constraints
//
// Tiles declare per-axis minimums ([AxisConstraint]) merged over the
// configured defaults. Grid constraints are derived with [Aggregate]: pixel
// minimums sum along the grid's direction and take the maximum across it.
// They are recomputed on the first read after a change.
//
// # Edges and Resizing
//
// [Tree.EdgeInDirection] resolves which sibling gives or takes space when one
// side of a node is dragged, climbing ancestors until a grid split along that
// axis is found. A drag is a [DragSession]: start it with [Tree.BeginDrag],
// feed it pointer deltas with [DragSession.Move], and [DragSession.End] it.
// The [ResizeStyle] decides what happens when the immediate sibling hits its
// minimum:
//
//   - [Stateful] borrows from further siblings and returns the space when the
//     drag reverses
//   - [Push] borrows from further siblings but never returns it
//   - [Passive] stops at the immediate sibling
//
// # Commits
//
// Every mutation goes through a [Commit], which records the changed nodes and
// notifies their [Observer]s once when it completes. Commits complete when
// [Commit.Commit] is called or when the tree's [Batcher] flushes. Pass an
// open commit into further operations to fold them into one notification.
//
// Flushes are driven by the [Scheduler] given in [Options]. The default never
// fires on its own: the host calls [Tree.Flush] at the end of its event-loop
// turn. Event-loop hosts inject a [ManualScheduler] and run it there; a
// [TimerScheduler] flushes after a delay.
//
// # Concurrency
//
// A Tree is meant for one goroutine. A flush must never run in the middle of
// a mutation, so a [TimerScheduler] is given the host's lock as its Locker
// whenever the tree is touched from more than one goroutine. Nodes marked on
// a commit that has already completed are invalidated but not notified.
package grid
