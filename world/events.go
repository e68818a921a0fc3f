// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"context"
	"sync"
)

// EventKind discriminates the payload carried by a WorldEvent.
type EventKind int

const (
	EventAdded EventKind = iota
	EventRemoved
	EventUpdated
	EventFocusChanged
	// EventDropped is a synthetic marker delivered to a subscriber whose
	// cursor fell outside the hub's retained window, so a slow consumer
	// can detect loss instead of silently missing events.
	EventDropped
)

// WorldEvent is one item in the World's event stream. Only the fields
// relevant to Kind are meaningful.
type WorldEvent struct {
	Kind EventKind
	Key  WindowKey

	Window WorldWindow // EventAdded, EventUpdated
	Delta  WindowDelta // EventUpdated

	Focus FocusChange // EventFocusChanged

	DroppedCount int // EventDropped

	// Seq is the reconcile pass seen_seq that produced this event; events
	// from the same pass share a Seq, and Seq is strictly increasing
	// across passes, giving subscribers a causal-consistency handle.
	Seq uint64
}

// EventCursor is an opaque position in a hub's event log, returned by
// Subscribe and advanced by Next.
type EventCursor struct {
	pos uint64
}

// EventFilter narrows a subscription to events matching Match; a nil
// filter (or one whose Match is nil) passes every event.
type EventFilter struct {
	Match func(WorldEvent) bool
}

func (f EventFilter) allows(ev WorldEvent) bool {
	return f.Match == nil || f.Match(ev)
}

// eventHub is a bounded ring buffer of WorldEvents with snapshot-consistent
// replay: a subscriber created via subscribeWithSnapshot sees every event
// whose pass is strictly after the snapshot it was handed, with no event
// ever delivered without its logically preceding Added having already
// been retained or replayed.
type eventHub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []WorldEvent
	start    uint64 // global position of buf[0]
	end      uint64 // global position the next Publish will occupy
	capacity int
	closed   bool
}

func newEventHub(capacity int) *eventHub {
	if capacity <= 0 {
		capacity = 4096
	}
	h := &eventHub{capacity: capacity}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// publish appends ev to the log, evicting the oldest entry if the hub is
// at capacity.
func (h *eventHub) publish(ev WorldEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buf) >= h.capacity {
		h.buf = h.buf[1:]
		h.start++
	}
	h.buf = append(h.buf, ev)
	h.end++
	h.cond.Broadcast()
}

func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.cond.Broadcast()
}

// cursorAtHead returns a cursor positioned after every event currently in
// the log, i.e. "subscribe from now".
func (h *eventHub) cursorAtHead() EventCursor {
	h.mu.Lock()
	defer h.mu.Unlock()
	return EventCursor{pos: h.end}
}

// next blocks until an event at or after cursor is available (or ctx is
// done), and returns it along with the cursor to use for the following
// call. If the requested position has already been evicted, an
// EventDropped marker is returned instead and the cursor is fast-forwarded
// to the oldest retained position.
func (h *eventHub) next(ctx context.Context, cursor EventCursor) (WorldEvent, EventCursor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		if cursor.pos < h.start {
			dropped := int(h.start - cursor.pos)
			next := EventCursor{pos: h.start}
			return WorldEvent{Kind: EventDropped, DroppedCount: dropped}, next, nil
		}
		if cursor.pos < h.end {
			idx := cursor.pos - h.start
			ev := h.buf[idx]
			return ev, EventCursor{pos: cursor.pos + 1}, nil
		}
		if h.closed {
			return WorldEvent{}, cursor, context.Canceled
		}
		if ctx.Err() != nil {
			return WorldEvent{}, cursor, ctx.Err()
		}
		// Wake on cond.Broadcast or a context cancellation watched via a
		// helper goroutine; since sync.Cond has no context-aware Wait, we
		// spin a tiny waiter that rebroadcasts on ctx.Done().
		done := make(chan struct{})
		stop := context.AfterFunc(ctx, func() {
			h.mu.Lock()
			h.cond.Broadcast()
			h.mu.Unlock()
			close(done)
		})
		h.cond.Wait()
		stop()
		select {
		case <-done:
		default:
		}
	}
}

// drainAvailable returns the retained events that match filter, starting
// from the given cursor (or the oldest retained position if the cursor
// has been evicted), without blocking, along with the cursor positioned
// after the last retained event. No caller in this package uses it.
func (h *eventHub) drainAvailable(cursor EventCursor, filter EventFilter) ([]WorldEvent, EventCursor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []WorldEvent
	pos := cursor.pos
	if pos < h.start {
		pos = h.start
	}
	for pos < h.end {
		ev := h.buf[pos-h.start]
		if filter.allows(ev) {
			out = append(out, ev)
		}
		pos++
	}
	return out, EventCursor{pos: pos}
}
