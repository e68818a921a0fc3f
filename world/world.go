// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/cortesi/hotki-sub000/geom"
)

// command is a closure-based mailbox entry: the actor applies it to its
// private state with exclusive access, the same shape as an Erlang-style
// "cast a function" actor. This avoids a per-operation command struct and
// reply-channel pair for every one of World's dozen query methods.
type command func(s *state)

// state is the World actor's private, single-goroutine-owned state. No
// other goroutine may touch it directly.
type state struct {
	cfg  Cfg
	enum Enumerator

	windows map[WindowKey]*WorldWindow
	order   []WindowKey // z order, frontmost first

	focusKey WindowKey
	hasFocus bool

	seenSeq uint64

	caps     Capabilities
	deniedAX bool // latch so the Denied transition is logged once

	displays []DisplayBounds

	pollMs     int
	lastTickAt time.Time

	// pending holds changed-but-not-yet-emitted deltas, keyed by window,
	// to implement the coalesce window described below.
	pending      map[WindowKey]WindowDelta
	lastEmitted  map[WindowKey]time.Time

	frames map[WindowKey]geom.Rect

	hub *eventHub
}

// World is the handle consumers hold: a thin facade over a background
// actor goroutine wrapping a channel-driven command loop.
type World struct {
	cmds      chan command
	hub       *eventHub
	focus     atomic.Pointer[FocusSnapshot]
	closeOnce int32
	done      chan struct{}
	now       func() time.Time
}

// Spawn starts the World actor and returns a handle to it. The actor runs
// until ctx is cancelled.
func Spawn(ctx context.Context, enum Enumerator, cfg Cfg) *World {
	hub := newEventHub(4096)
	w := &World{
		cmds: make(chan command, 4096),
		hub:  hub,
		done: make(chan struct{}),
		now:  time.Now,
	}
	w.focus.Store(&FocusSnapshot{})

	s := &state{
		cfg:         cfg,
		enum:        enum,
		windows:     map[WindowKey]*WorldWindow{},
		pending:     map[WindowKey]WindowDelta{},
		lastEmitted: map[WindowKey]time.Time{},
		frames:      map[WindowKey]geom.Rect{},
		pollMs:      cfg.PollMsMin,
		hub:         hub,
	}

	go w.run(ctx, s)
	return w
}

// SpawnNoop starts a World actor backed by an enumerator that always
// reports zero windows — useful as a safe default when no real adapter is
// available yet.
func SpawnNoop(ctx context.Context) *World {
	return Spawn(ctx, NewFakeEnumerator(), DefaultCfg())
}

func (w *World) run(ctx context.Context, s *state) {
	defer close(w.done)
	defer w.hub.close()

	timer := time.NewTimer(time.Duration(s.pollMs) * time.Millisecond)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-w.cmds:
			prevPollMs := s.pollMs
			cmd(s)
			w.publishFocusSnapshot(s)
			if s.pollMs != prevPollMs {
				timer.Reset(time.Duration(s.pollMs) * time.Millisecond)
			}
		case <-timer.C:
			changed := w.reconcile(ctx, s)
			w.publishFocusSnapshot(s)
			if changed {
				s.pollMs = s.cfg.PollMsMin
			} else {
				s.pollMs += s.cfg.PollStepMs
				if s.pollMs > s.cfg.PollMsMax {
					s.pollMs = s.cfg.PollMsMax
				}
			}
			timer.Reset(time.Duration(s.pollMs) * time.Millisecond)
		}
	}
}

func (w *World) publishFocusSnapshot(s *state) {
	if !s.hasFocus {
		w.focus.Store(&FocusSnapshot{})
		return
	}
	win, ok := s.windows[s.focusKey]
	if !ok {
		w.focus.Store(&FocusSnapshot{})
		return
	}
	w.focus.Store(&FocusSnapshot{App: win.App, Title: win.Title, PID: win.PID, Valid: true})
}

// send runs fn on the actor goroutine and blocks until it completes.
func (w *World) send(fn func(s *state)) {
	done := make(chan struct{})
	w.cmds <- func(s *state) {
		fn(s)
		close(done)
	}
	<-done
}

// HintRefresh resets the poll timer to PollMsMin immediately, as if
// something just changed.
func (w *World) HintRefresh() {
	w.send(func(s *state) {
		s.pollMs = s.cfg.PollMsMin
	})
}

// Snapshot returns every currently tracked window, frontmost first.
func (w *World) Snapshot() []WorldWindow {
	var out []WorldWindow
	w.send(func(s *state) {
		out = make([]WorldWindow, 0, len(s.order))
		for _, k := range s.order {
			if win, ok := s.windows[k]; ok {
				out = append(out, *win)
			}
		}
	})
	return out
}

// Get returns the tracked window for key, if any.
func (w *World) Get(key WindowKey) (WorldWindow, bool) {
	var out WorldWindow
	var ok bool
	w.send(func(s *state) {
		win, found := s.windows[key]
		if found {
			out, ok = *win, true
		}
	})
	return out, ok
}

// Focused returns the currently focused window's key, if any.
func (w *World) Focused() (WindowKey, bool) {
	var key WindowKey
	var ok bool
	w.send(func(s *state) {
		key, ok = s.focusKey, s.hasFocus
	})
	return key, ok
}

// FocusedContext is a cheap, lock-free read of the cached focus snapshot;
// it is safe to call from any goroutine without round-tripping through
// the actor.
func (w *World) FocusedContext() (app, title string, pid int32, ok bool) {
	fs := w.focus.Load()
	return fs.App, fs.Title, fs.PID, fs.Valid
}

// Capabilities returns the last-observed permission state.
func (w *World) Capabilities() Capabilities {
	var caps Capabilities
	w.send(func(s *state) { caps = s.caps })
	return caps
}

// Status returns cheap diagnostics about the actor's recent activity.
func (w *World) Status() WorldStatus {
	var st WorldStatus
	w.send(func(s *state) {
		st = WorldStatus{
			WindowsCount:  len(s.windows),
			Focused:       s.focusKey,
			HasFocused:    s.hasFocus,
			LastTickMs:    s.lastTickAt.UnixMilli(),
			SeenSeq:       s.seenSeq,
			CurrentPollMs: s.pollMs,
			DebounceCache: len(s.pending),
			Capabilities:  s.caps,
		}
	})
	return st
}

// FramesSnapshot returns the last-verified placement frame recorded for
// every window key with one, for diagnostics.
func (w *World) FramesSnapshot() map[WindowKey]geom.Rect {
	out := map[WindowKey]geom.Rect{}
	w.send(func(s *state) {
		for k, r := range s.frames {
			out[k] = r
		}
	})
	return out
}

// Frames returns the last-verified placement frame for key, if any.
func (w *World) Frames(key WindowKey) (geom.Rect, bool) {
	var r geom.Rect
	var ok bool
	w.send(func(s *state) {
		r, ok = s.frames[key]
	})
	return r, ok
}

// RecordFrame stores the final frame of a verified placement for key so
// World can serve FramesSnapshot/Frames diagnostics. The Placement Engine
// does not call it; the composition root's op executor does.
func (w *World) RecordFrame(key WindowKey, r geom.Rect) {
	w.send(func(s *state) {
		s.frames[key] = r
	})
}

// DisplayScale returns the display scale factor used to derive the
// authoritative epsilon for a display; this module tracks scale at 1.0
// per display unless told otherwise (HiDPI scale factors arrive from the
// OS display enumerator, out of this module's test-friendly scope).
func (w *World) DisplayScale(id DisplayID) float64 {
	return 1.0
}

// AuthoritativeEPS returns geom.DefaultEPS for the display's tracked
// scale.
func (w *World) AuthoritativeEPS(id DisplayID) float64 {
	return geom.DefaultEPS(w.DisplayScale(id))
}

// Subscribe returns a cursor positioned at "now": the subscriber will see
// every event published after this call.
func (w *World) Subscribe() EventCursor {
	return w.hub.cursorAtHead()
}

// SubscribeWithSnapshot atomically returns a cursor, the current window
// snapshot, and the current focus key, such that every Updated event the
// cursor later yields has a corresponding Added already reflected in the
// returned snapshot.
func (w *World) SubscribeWithSnapshot() (EventCursor, []WorldWindow, WindowKey, bool) {
	var cursor EventCursor
	var snap []WorldWindow
	var key WindowKey
	var ok bool
	w.send(func(s *state) {
		cursor = w.hub.cursorAtHead()
		snap = make([]WorldWindow, 0, len(s.order))
		for _, k := range s.order {
			if win, found := s.windows[k]; found {
				snap = append(snap, *win)
			}
		}
		key, ok = s.focusKey, s.hasFocus
	})
	return cursor, snap, key, ok
}

// SubscribeFiltered returns a cursor like Subscribe, paired with a filter
// to apply in Next, reducing churn for consumers that only care about one
// pid or one event kind.
func (w *World) SubscribeFiltered(filter EventFilter) (EventCursor, EventFilter) {
	return w.hub.cursorAtHead(), filter
}

// Next blocks until the next event at or after cursor is available (or ctx
// is done) and returns it along with the cursor for the following call.
func (w *World) Next(ctx context.Context, cursor EventCursor) (WorldEvent, EventCursor, error) {
	return w.hub.next(ctx, cursor)
}

// NextFiltered is like Next but skips events filter rejects, blocking
// until a matching event arrives.
func (w *World) NextFiltered(ctx context.Context, cursor EventCursor, filter EventFilter) (WorldEvent, EventCursor, error) {
	for {
		ev, next, err := w.hub.next(ctx, cursor)
		if err != nil {
			return ev, next, err
		}
		cursor = next
		if ev.Kind == EventDropped || filter.allows(ev) {
			return ev, next, nil
		}
	}
}

// reconcile performs one pass of a seven-step diff against the enumerator
// and reports whether anything changed.
func (w *World) reconcile(ctx context.Context, s *state) bool {
	s.seenSeq++
	seq := s.seenSeq
	s.lastTickAt = w.now()

	caps, err := s.enum.Capabilities(ctx)
	if err == nil {
		if caps.Accessibility == PermissionDenied && s.caps.Accessibility != PermissionDenied {
			slog.Warn("accessibility permission denied")
			s.deniedAX = true
		}
		s.caps = caps
	}

	if displays, err := s.enum.Displays(ctx); err == nil && len(displays) > 0 {
		s.displays = displays
	}

	infos, err := s.enum.ListWindows(ctx)
	if err != nil {
		slog.Error("enumerator ListWindows failed", "err", err)
		return false
	}

	focusKey, focusApp, focusTitle, focusPID, hasFocus := w.resolveFocus(ctx, s, infos)

	changed := false
	seen := map[WindowKey]bool{}

	for i, info := range infos {
		key := WindowKey{PID: info.PID, ID: info.ID}
		seen[key] = true

		displayID, hasDisplay := w.displayForPos(s, info.Pos, info.HasPos)

		focused := hasFocus && key == focusKey
		title := info.Title
		if focused && focusTitle != "" {
			title = focusTitle
		}
		_ = focusApp
		_ = focusPID

		existing, existed := s.windows[key]
		if !existed {
			nw := &WorldWindow{
				App: info.App, Title: title, PID: info.PID, ID: info.ID,
				Pos: info.Pos, HasPos: info.HasPos,
				Layer: info.Layer, Z: uint32(i),
				Space: info.Space, HasSpace: info.HasSpace,
				OnActiveSpace: info.OnActiveSpace, IsOnScreen: info.IsOnScreen,
				DisplayID: displayID, HasDisplayID: hasDisplay,
				Focused: focused,
				LastSeen: s.lastTickAt, SeenSeq: seq,
			}
			s.windows[key] = nw
			w2 := *nw
			w.hub.publish(WorldEvent{Kind: EventAdded, Key: key, Window: w2, Seq: seq})
			changed = true
			continue
		}

		delta := WindowDelta{
			Title:         existing.Title != title,
			Layer:         existing.Layer != info.Layer,
			Pos:           existing.Pos != info.Pos || existing.HasPos != info.HasPos,
			Z:             existing.Z != uint32(i),
			DisplayID:     existing.DisplayID != displayID || existing.HasDisplayID != hasDisplay,
			OnActiveSpace: existing.OnActiveSpace != info.OnActiveSpace,
			Focused:       existing.Focused != focused,
		}

		existing.Title = title
		existing.Layer = info.Layer
		existing.Pos = info.Pos
		existing.HasPos = info.HasPos
		existing.Z = uint32(i)
		existing.DisplayID = displayID
		existing.HasDisplayID = hasDisplay
		existing.OnActiveSpace = info.OnActiveSpace
		existing.IsOnScreen = info.IsOnScreen
		existing.Space = info.Space
		existing.HasSpace = info.HasSpace
		existing.Focused = focused
		existing.LastSeen = s.lastTickAt
		existing.SeenSeq = seq

		if delta.Any() {
			changed = true
			w.emitUpdated(s, key, delta, *existing, seq)
		}
	}

	var removed []WindowKey
	for key := range s.windows {
		if !seen[key] {
			removed = append(removed, key)
		}
	}
	sort.Slice(removed, func(i, j int) bool {
		if removed[i].PID != removed[j].PID {
			return removed[i].PID < removed[j].PID
		}
		return removed[i].ID < removed[j].ID
	})
	for _, key := range removed {
		delete(s.windows, key)
		delete(s.pending, key)
		delete(s.lastEmitted, key)
		w.hub.publish(WorldEvent{Kind: EventRemoved, Key: key, Seq: seq})
		changed = true
	}

	// Flush coalesced deltas whose window has elapsed, even for windows
	// that did not change again in this pass.
	coalesce := time.Duration(s.cfg.CoalesceMs) * time.Millisecond
	for key := range s.pending {
		if s.lastTickAt.Sub(s.lastEmitted[key]) < coalesce {
			continue
		}
		if win, ok := s.windows[key]; ok {
			w.emitUpdated(s, key, WindowDelta{}, *win, seq)
		}
	}

	s.order = s.order[:0]
	for _, info := range infos {
		key := WindowKey{PID: info.PID, ID: info.ID}
		if _, ok := s.windows[key]; ok {
			s.order = append(s.order, key)
		}
	}

	focusChanged := hasFocus != s.hasFocus || (hasFocus && focusKey != s.focusKey)
	if focusChanged {
		s.hasFocus = hasFocus
		s.focusKey = focusKey
		fc := FocusChange{HasKey: hasFocus}
		if hasFocus {
			fc.Key, fc.App, fc.Title, fc.PID = focusKey, focusApp, focusTitle, focusPID
		}
		w.hub.publish(WorldEvent{Kind: EventFocusChanged, Focus: fc, Seq: seq})
		changed = true
	}

	return changed
}

// emitUpdated applies the coalesce-window debounce: an Updated event for
// key is suppressed if
// the last emission for that key was within CoalesceMs; the change is
// retained in s.pending and flushed on the next pass that occurs after
// the window elapses.
func (w *World) emitUpdated(s *state, key WindowKey, delta WindowDelta, win WorldWindow, seq uint64) {
	last, hasLast := s.lastEmitted[key]
	coalesce := time.Duration(s.cfg.CoalesceMs) * time.Millisecond
	if hasLast && s.lastTickAt.Sub(last) < coalesce {
		merged := s.pending[key]
		merged.Title = merged.Title || delta.Title
		merged.Layer = merged.Layer || delta.Layer
		merged.Pos = merged.Pos || delta.Pos
		merged.Z = merged.Z || delta.Z
		merged.DisplayID = merged.DisplayID || delta.DisplayID
		merged.OnActiveSpace = merged.OnActiveSpace || delta.OnActiveSpace
		merged.Focused = merged.Focused || delta.Focused
		s.pending[key] = merged
		return
	}
	if pending, ok := s.pending[key]; ok {
		delta.Title = delta.Title || pending.Title
		delta.Layer = delta.Layer || pending.Layer
		delta.Pos = delta.Pos || pending.Pos
		delta.Z = delta.Z || pending.Z
		delta.DisplayID = delta.DisplayID || pending.DisplayID
		delta.OnActiveSpace = delta.OnActiveSpace || pending.OnActiveSpace
		delta.Focused = delta.Focused || pending.Focused
		delete(s.pending, key)
	}
	s.lastEmitted[key] = s.lastTickAt
	w.hub.publish(WorldEvent{Kind: EventUpdated, Key: key, Window: win, Delta: delta, Seq: seq})
}

// resolveFocus prefers
// Accessibility's frontmost-app AXFocusedWindow/AXMain when Accessibility
// is granted, falling back to the CG window with layer==0 && focused==true,
// else the first window in z order.
func (w *World) resolveFocus(ctx context.Context, s *state, infos []WindowInfo) (key WindowKey, app, title string, pid int32, ok bool) {
	if s.caps.Accessibility == PermissionGranted {
		if fpid, hasFront, _ := s.enum.FrontmostPID(ctx); hasFront {
			if id, axTitle, found, _ := s.enum.FocusedWindowID(ctx, fpid); found {
				for _, info := range infos {
					if info.PID == fpid && info.ID == id {
						return WindowKey{PID: fpid, ID: id}, info.App, axTitle, fpid, true
					}
				}
			}
		}
	}
	for _, info := range infos {
		if info.Layer == 0 && info.Focused {
			return WindowKey{PID: info.PID, ID: info.ID}, info.App, info.Title, info.PID, true
		}
	}
	if len(infos) > 0 {
		info := infos[0]
		return WindowKey{PID: info.PID, ID: info.ID}, info.App, info.Title, info.PID, true
	}
	return WindowKey{}, "", "", 0, false
}

// displayForPos computes the display with the largest pixel overlap with
// pos, breaking ties by lowest display id.
func (w *World) displayForPos(s *state, pos geom.Rect, hasPos bool) (DisplayID, bool) {
	if !hasPos || len(s.displays) == 0 {
		return 0, false
	}
	var best DisplayID
	var bestArea float64 = -1
	var found bool
	for _, d := range s.displays {
		area := overlapArea(pos, d.Rect)
		if area > bestArea || (area == bestArea && found && d.ID < best) {
			bestArea = area
			best = d.ID
			found = true
		}
	}
	if !found || bestArea <= 0 {
		return 0, false
	}
	return best, true
}

func overlapArea(a, b geom.Rect) float64 {
	left := a.X
	if b.X > left {
		left = b.X
	}
	top := a.Y
	if b.Y > top {
		top = b.Y
	}
	right := a.X + a.W
	if b.X+b.W < right {
		right = b.X + b.W
	}
	bottom := a.Y + a.H
	if b.Y+b.H < bottom {
		bottom = b.Y + b.H
	}
	if right <= left || bottom <= top {
		return 0
	}
	return (right - left) * (bottom - top)
}
