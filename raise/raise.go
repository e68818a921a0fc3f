// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package raise implements the Raise/Frontmost Stabilizer: a debounced
// raise-then-verify loop that confirms a window has actually become
// frontmost and focused before reporting success, nudging with a
// synthetic click when the platform's CG-level frontmost state lags
// behind what Accessibility already reports.
package raise

import (
	"context"
	"time"

	"github.com/cortesi/hotki-sub000/atomicx"
	"github.com/cortesi/hotki-sub000/geom"
	"github.com/cortesi/hotki-sub000/settle"
)

// FrontmostSnapshot is the CG-level "what app/window is frontmost" read.
type FrontmostSnapshot struct {
	PID   int32
	Title string
	Valid bool
}

// FocusSnapshot is the Accessibility/World-level focus read; mirrored here
// rather than imported from world so this package has no dependency on
// it (World depends on nothing upstream of it, and raise is a peer, not
// a consumer, of World's internals).
type FocusSnapshot struct {
	PID   int32
	Title string
	Valid bool
}

// Deps are the Stabilizer's platform seams, all function-valued so the
// algorithm can be driven deterministically in tests.
type Deps struct {
	Frontmost        func() FrontmostSnapshot
	Focus            func() FocusSnapshot
	AXHasWindowTitle func(pid int32, title string) bool

	// ResolveCGID looks up the CG window id for (pid,title), waiting up to
	// timeout for it to appear.
	ResolveCGID func(ctx context.Context, pid int32, title string, timeout time.Duration) (id uint32, ok bool)

	RaiseByID   func(pid int32, id uint32) error
	ActivatePID func(pid int32) error

	// WindowCenter resolves the screen point a synthetic click should
	// target for (pid,title).
	WindowCenter func(pid int32, title string) (geom.Point, bool)

	// Click performs the MouseMoved -> LeftMouseDown -> LeftMouseUp
	// sequence at center; an error means the nudge is abandoned for this
	// tick.
	Click func(center geom.Point) error

	Clock settle.Clock
}

func (d Deps) clock() settle.Clock {
	if d.Clock.Now == nil {
		return settle.RealClock()
	}
	return d.Clock
}

// Stabilizer runs the debounced raise loop. It is grounded on the
// a monotonic nonce: each call to Begin
// bumps a shared counter, and Stabilize aborts as soon as it observes a
// token other than the one it was given, letting a newer raise intent
// cancel an older in-flight one without a per-call cancellation channel.
type Stabilizer struct {
	Deps
	nonce atomicx.Counter
}

// Begin bumps the nonce and returns the token this call owns. A later
// Begin call invalidates every token issued before it.
func (s *Stabilizer) Begin() int64 {
	return s.nonce.Inc()
}

func (s *Stabilizer) aborted(token int64) bool {
	return s.nonce.Value() != token
}

// clampStep bounds a requested poll delay into a [10,40] ms
// window.
func clampStep(delayMs int) int {
	switch {
	case delayMs < 10:
		return 10
	case delayMs > 40:
		return 40
	default:
		return delayMs
	}
}

// Stabilize confirms (pid,title) becomes the frontmost and focused window,
// raising/activating once per attempt for up to attempts iterations. On
// each tick where CG does not match, it nudges with a synthetic click when
// Accessibility already agrees (at most every 120ms) and otherwise
// re-issues the raise. It returns true once cg_match has held for
// hold_target (max(delayMs, 400)) milliseconds (focus_match accumulates
// only on ticks where cg_match also holds), or false if attempts are
// exhausted or a newer Begin call supersedes token.
func (s *Stabilizer) Stabilize(ctx context.Context, pid int32, title string, attempts int, delayMs int, token int64) (bool, error) {
	clock := s.clock()
	step := clampStep(delayMs)
	holdTarget := delayMs
	if holdTarget < 400 {
		holdTarget = 400
	}

	var lastNudge time.Time
	var hasLastNudge bool

	for attempt := 0; attempt < attempts; attempt++ {
		if s.aborted(token) {
			return false, nil
		}

		s.raiseOrActivate(ctx, pid, title, delayMs)

		cgHold, focusHold := 0, 0
		deadline := clock.Now().Add(time.Duration(holdTarget) * time.Millisecond)
		for clock.Now().Before(deadline) {
			if s.aborted(token) {
				return false, nil
			}

			front := s.Frontmost()
			cgMatch := front.Valid && front.PID == pid && front.Title == title
			axMatch := s.AXHasWindowTitle(pid, title)
			focus := s.Focus()
			focusMatch := focus.Valid && focus.PID == pid && (focus.Title == title || axMatch)

			if cgMatch {
				cgHold += step
				if focusMatch {
					focusHold += step
				}
				if cgHold >= holdTarget {
					s.nudge(pid, title, clock, &lastNudge, &hasLastNudge)
					return true, nil
				}
				if focusHold >= holdTarget {
					return true, nil
				}
			} else {
				cgHold, focusHold = 0, 0
				if axMatch && (!hasLastNudge || clock.Now().Sub(lastNudge) > 120*time.Millisecond) {
					s.nudge(pid, title, clock, &lastNudge, &hasLastNudge)
				} else {
					s.raiseOrActivate(ctx, pid, title, delayMs)
				}
			}

			clock.Sleep(time.Duration(step) * time.Millisecond)
		}
	}
	return false, nil
}

func (s *Stabilizer) raiseOrActivate(ctx context.Context, pid int32, title string, delayMs int) {
	if id, ok := s.ResolveCGID(ctx, pid, title, time.Duration(delayMs)*time.Millisecond); ok {
		_ = s.RaiseByID(pid, id)
		return
	}
	_ = s.ActivatePID(pid)
}

func (s *Stabilizer) nudge(pid int32, title string, clock settle.Clock, lastNudge *time.Time, hasLastNudge *bool) {
	center, ok := s.WindowCenter(pid, title)
	if !ok {
		return
	}
	if err := s.Click(center); err == nil {
		*lastNudge = clock.Now()
		*hasLastNudge = true
	}
}
