// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mainops implements the Main-Thread Op Queue: a coalescing
// scheduler that batches bursty placement intents within a short budget,
// collapses them to last-writer per target, and cross-drops focused-pid
// ops superseded by id-specific ops. It generalizes a "run this closure on
// the main thread" queue into "drain this batch of window-manager intents
// on the main thread."
package mainops

import (
	"sync"
	"time"

	"github.com/cortesi/hotki-sub000/atomicx"
	"github.com/cortesi/hotki-sub000/place"
)

// OpKind discriminates the payload carried by an Op.
type OpKind int

const (
	OpFullscreenNative OpKind = iota
	OpFullscreenNonNative
	OpPlaceGrid
	OpPlaceMoveGrid
	OpPlaceGridFocused
	OpActivatePid
	OpRaiseWindow
	OpFocusDir
)

// Op is one heterogeneous entry in the queue.
type Op struct {
	Kind OpKind

	ID    uint32 // PlaceGrid, PlaceMoveGrid, FullscreenNative/NonNative
	PID   int32  // PlaceGridFocused, ActivatePid, RaiseWindow
	Title string // RaiseWindow

	Cols, Rows, Col, Row int
	Dir                  place.MoveDir // PlaceMoveGrid
	FocusDir             Direction     // FocusDir

	Opts place.PlaceAttemptOptions

	// Seq records arrival order, assigned at enqueue. Drain does not read
	// it; last-writer-wins follows the order of ops within the batch.
	Seq uint64
}

// Direction is the Focus-Dir Resolver's input; mirrored here rather than
// imported from focusdir so that mainops stays a pure scheduler with no
// dependency on the resolver package. The composition root converts it.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// Executor is supplied by the composition root and actually performs
// ops; Queue only schedules.
type Executor interface {
	// ResolvePID maps a window id to its owning pid, used by the
	// cross-type stale-drop step.
	ResolvePID(id uint32) (int32, bool)
	// ExecuteNonPlace runs a non-placement op (Fullscreen*, ActivatePid,
	// RaiseWindow, FocusDir) in arrival order.
	ExecuteNonPlace(op Op)
	// ExecutePlacement runs PlaceGrid/PlaceMoveGrid/PlaceGridFocused.
	ExecutePlacement(op Op)
}

// Queue is the FIFO-with-coalescing scheduler. Producers call the
// Request* methods from any goroutine; Drain must only be invoked from
// the application's main goroutine.
type Queue struct {
	mu   sync.Mutex
	ops  []Op
	seq  atomicx.Counter
	wake chan struct{}
}

// NewQueue constructs an empty Queue.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Wake returns the channel signaled whenever a new op is enqueued; the
// main thread should select on it and call Drain in response. The
// channel has capacity 1 so bursts of enqueues collapse to a single wake,
// the same coalescing idea the drain itself applies at a larger scale.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

func (q *Queue) enqueue(op Op) {
	op.Seq = uint64(q.seq.Inc())
	q.mu.Lock()
	q.ops = append(q.ops, op)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) RequestFullscreenNative(id uint32) {
	q.enqueue(Op{Kind: OpFullscreenNative, ID: id})
}

func (q *Queue) RequestFullscreenNonNative(id uint32) {
	q.enqueue(Op{Kind: OpFullscreenNonNative, ID: id})
}

func (q *Queue) RequestPlaceGrid(id uint32, cols, rows, col, row int) {
	q.RequestPlaceGridOpts(id, cols, rows, col, row, place.DefaultOptions())
}

func (q *Queue) RequestPlaceGridOpts(id uint32, cols, rows, col, row int, opts place.PlaceAttemptOptions) {
	q.enqueue(Op{Kind: OpPlaceGrid, ID: id, Cols: cols, Rows: rows, Col: col, Row: row, Opts: opts})
}

func (q *Queue) RequestPlaceGridFocused(pid int32, cols, rows, col, row int) {
	q.RequestPlaceGridFocusedOpts(pid, cols, rows, col, row, place.DefaultOptions())
}

func (q *Queue) RequestPlaceGridFocusedOpts(pid int32, cols, rows, col, row int, opts place.PlaceAttemptOptions) {
	q.enqueue(Op{Kind: OpPlaceGridFocused, PID: pid, Cols: cols, Rows: rows, Col: col, Row: row, Opts: opts})
}

func (q *Queue) RequestPlaceMoveGrid(id uint32, cols, rows int, dir place.MoveDir) {
	q.RequestPlaceMoveGridOpts(id, cols, rows, dir, place.DefaultOptions())
}

func (q *Queue) RequestPlaceMoveGridOpts(id uint32, cols, rows int, dir place.MoveDir, opts place.PlaceAttemptOptions) {
	q.enqueue(Op{Kind: OpPlaceMoveGrid, ID: id, Cols: cols, Rows: rows, Dir: dir, Opts: opts})
}

func (q *Queue) RequestActivatePid(pid int32) {
	q.enqueue(Op{Kind: OpActivatePid, PID: pid})
}

func (q *Queue) RequestRaiseWindow(pid int32, title string) {
	q.enqueue(Op{Kind: OpRaiseWindow, PID: pid, Title: title})
}

func (q *Queue) RequestFocusDir(dir Direction) {
	q.enqueue(Op{Kind: OpFocusDir, FocusDir: dir})
}

// placeKey identifies a coalescing target: either a specific window id or
// a pid whose focused window should be placed.
type placeKey struct {
	byID bool
	id   uint32
	pid  int32
}

func keyFor(op Op) (placeKey, bool) {
	switch op.Kind {
	case OpPlaceGrid, OpPlaceMoveGrid:
		return placeKey{byID: true, id: op.ID}, true
	case OpPlaceGridFocused:
		return placeKey{byID: false, pid: op.PID}, true
	default:
		return placeKey{}, false
	}
}

// Drain collects ops until
// the queue is empty or budget elapses, execute non-placement ops in
// arrival order, drop stale focused-pid placements superseded by an
// id-specific placement for the same pid in this batch, then execute the
// remaining placements in last-writer order. It must only be called from
// the main goroutine.
func (q *Queue) Drain(budget time.Duration, exec Executor) {
	deadline := time.Now().Add(budget)
	var batch []Op
	for time.Now().Before(deadline) {
		q.mu.Lock()
		if len(q.ops) == 0 {
			q.mu.Unlock()
			break
		}
		batch = append(batch, q.ops...)
		q.ops = q.ops[:0]
		q.mu.Unlock()
	}
	if len(batch) == 0 {
		return
	}

	var nonPlace []Op
	latestByID := map[uint32]Op{}
	latestByPID := map[int32]Op{}
	var order []placeKey
	seenKey := map[placeKey]bool{}

	for _, op := range batch {
		if k, ok := keyFor(op); ok {
			if k.byID {
				latestByID[k.id] = op
			} else {
				latestByPID[k.pid] = op
			}
			if seenKey[k] {
				for i, ok := range order {
					if ok == k {
						order = append(order[:i], order[i+1:]...)
						break
					}
				}
			}
			order = append(order, k)
			seenKey[k] = true
			continue
		}
		nonPlace = append(nonPlace, op)
	}

	for _, op := range nonPlace {
		exec.ExecuteNonPlace(op)
	}

	for id := range latestByID {
		pid, ok := exec.ResolvePID(id)
		if !ok {
			continue
		}
		delete(latestByPID, pid)
	}

	for _, k := range order {
		if k.byID {
			if op, ok := latestByID[k.id]; ok {
				exec.ExecutePlacement(op)
			}
			continue
		}
		if op, ok := latestByPID[k.pid]; ok {
			exec.ExecutePlacement(op)
		}
	}
}

// Len reports how many ops are currently queued, for diagnostics/tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}
