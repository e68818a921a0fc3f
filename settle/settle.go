// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package settle implements the bounded busy-wait used after every AX
// write: poll the element's frame at a short cadence until it approaches
// a target or a deadline elapses, returning the best frame observed so
// the caller can decide verification.
package settle

import (
	"time"

	"github.com/cortesi/hotki-sub000/ax"
	"github.com/cortesi/hotki-sub000/geom"
)

// PollInterval is the busy-wait cadence used by WaitForAXFrame.
const PollInterval = 2 * time.Millisecond

// Clock abstracts time so tests can run the wait loop without real
// sleeping.
type Clock struct {
	Now   func() time.Time
	Sleep func(time.Duration)
}

// RealClock returns a Clock backed by the standard library.
func RealClock() Clock {
	return Clock{Now: time.Now, Sleep: time.Sleep}
}

// Result is what WaitForAXFrame observed.
type Result struct {
	Best    geom.Rect
	Elapsed time.Duration
	Reached bool
}

// WaitForAXFrame polls h's position and size at PollInterval, tracking the
// best (closest-to-target) frame observed, until either the frame
// approx-equals target within eps or maxSettle elapses. It never itself
// declares verification failure — callers compare Result.Best against
// their own acceptance target, since stage 5 of the attempt ladder
// verifies against an anchored target rather than the literal one passed
// here.
func WaitForAXFrame(adapter ax.Adapter, h ax.Handle, posAttr, sizeAttr string, target geom.Rect, eps float64, maxSettle time.Duration, clock Clock) Result {
	start := clock.Now()
	var best geom.Rect
	haveBest := false
	bestDist := 0.0

	for {
		pos, err := adapter.GetPoint(h, posAttr)
		if err == nil {
			if sz, err2 := adapter.GetSize(h, sizeAttr); err2 == nil {
				cur := geom.Rect{X: pos.X, Y: pos.Y, W: sz.W, H: sz.H}
				d := dist(cur, target)
				if !haveBest || d < bestDist {
					best, bestDist, haveBest = cur, d, true
				}
				if geom.ApproxEq(cur, target, eps) {
					return Result{Best: cur, Elapsed: clock.Now().Sub(start), Reached: true}
				}
			}
		}
		elapsed := clock.Now().Sub(start)
		if elapsed >= maxSettle {
			return Result{Best: best, Elapsed: elapsed, Reached: false}
		}
		clock.Sleep(PollInterval)
	}
}

func dist(a, b geom.Rect) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dw := a.W - b.W
	dh := a.H - b.H
	return abs(dx) + abs(dy) + abs(dw) + abs(dh)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
