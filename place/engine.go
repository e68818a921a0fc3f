// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package place

import (
	"fmt"
	"math"
	"time"

	"github.com/cortesi/hotki-sub000/ax"
	hkerrors "github.com/cortesi/hotki-sub000/errors"
	"github.com/cortesi/hotki-sub000/geom"
	"github.com/cortesi/hotki-sub000/settle"
	"github.com/cortesi/hotki-sub000/world"
)

// VerificationError is returned when the attempt ladder is exhausted
// without reaching eps. It always carries the full timeline for
// postmortem.
type VerificationError struct {
	Op       string
	Expected geom.Rect
	Got      geom.Rect
	EPS      float64
	Clamped  geom.ClampFlags
	Timeline AttemptTimeline
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: placement verification failed: expected %+v got %+v eps=%.1f clamped=%s",
		e.Op, e.Expected, e.Got, e.EPS, e.Clamped)
}

// Kind reports KindVerificationFailed. hkerrors.Is matches only *Error
// values and does not consult this method.
func (e *VerificationError) Kind() hkerrors.Kind { return hkerrors.KindVerificationFailed }

// Engine runs the placement attempt ladder against a live AX handle. Its
// dependencies are small function-valued seams rather than a direct
// dependency on *world.World, so it can be driven by fakes in tests.
type Engine struct {
	Adapter ax.Adapter

	// Displays returns the current display layout; used to select the
	// visible frame containing a window's position. Nil means "treat the
	// window's own rect as its frame" (fine for single-display tests).
	Displays func() []world.DisplayBounds

	// ResolvePID maps a window id to its owning pid, as the World would.
	ResolvePID func(id uint32) (int32, bool)

	// OnActiveSpace reports whether (pid,id) is on the active space; nil
	// or a false "known" skips the check (used by fakes with no space
	// model).
	OnActiveSpace func(pid int32, id uint32) (onActive bool, known bool)

	Clock    settle.Clock
	Counters *Counters
}

func (e *Engine) clock() settle.Clock {
	if e.Clock.Now == nil {
		return settle.RealClock()
	}
	return e.Clock
}

// PlaceGridFocusedOpts places the focused window of pid into cell
// (col,row) of a cols x rows grid.
func (e *Engine) PlaceGridFocusedOpts(pid int32, cols, rows, col, row int, opts PlaceAttemptOptions) (PlacementOutcome, error) {
	h, ok, err := e.Adapter.FocusedWindow(pid)
	if err != nil {
		return PlacementOutcome{}, hkerrors.Wrap(hkerrors.KindAxCall, "PlaceGridFocused", err)
	}
	if !ok {
		return PlacementOutcome{}, hkerrors.New(hkerrors.KindNotFound, "PlaceGridFocused")
	}
	defer h.Release()
	id, _, _ := e.Adapter.WindowID(h)
	return e.placeAtCell(h, pid, id, cols, rows, col, row, opts)
}

// PlaceGridOpts places the window identified by id into cell (col,row).
func (e *Engine) PlaceGridOpts(id uint32, cols, rows, col, row int, opts PlaceAttemptOptions) (PlacementOutcome, error) {
	h, pid, err := e.resolveByID(id)
	if err != nil {
		return PlacementOutcome{}, err
	}
	defer h.Release()
	return e.placeAtCell(h, pid, id, cols, rows, col, row, opts)
}

// PlaceMoveGridOpts infers the window's current (col,row) via nearest-cell
// centroid and steps one cell toward dir, clamping to the grid edges, per
// the grid edges.
func (e *Engine) PlaceMoveGridOpts(id uint32, cols, rows int, dir MoveDir, opts PlaceAttemptOptions) (PlacementOutcome, error) {
	h, pid, err := e.resolveByID(id)
	if err != nil {
		return PlacementOutcome{}, err
	}
	defer h.Release()

	cur, vf, skip, err := e.prepare(h, pid, id, opts)
	if err != nil {
		return PlacementOutcome{}, err
	}
	if skip != nil {
		return *skip, nil
	}

	col, row := nearestCell(cur, vf, cols, rows)
	col, row = step(col, row, dir, cols, rows)

	target := geom.GridCell(vf, cols, rows, col, row)
	return e.place(h, cur, vf, target, opts)
}

func (e *Engine) resolveByID(id uint32) (ax.Handle, int32, error) {
	if e.ResolvePID == nil {
		return nil, 0, hkerrors.New(hkerrors.KindNotFound, "resolveByID")
	}
	pid, ok := e.ResolvePID(id)
	if !ok {
		return nil, 0, hkerrors.New(hkerrors.KindNotFound, "resolveByID")
	}
	app, err := e.Adapter.CreateAppElement(pid)
	if err != nil {
		return nil, 0, hkerrors.Wrap(hkerrors.KindAxCall, "resolveByID", err)
	}
	defer app.Release()
	wins, err := e.Adapter.ListWindows(app)
	if err != nil {
		return nil, 0, hkerrors.Wrap(hkerrors.KindAxCall, "resolveByID", err)
	}
	for _, w := range wins {
		wid, ok, _ := e.Adapter.WindowID(w)
		if ok && wid == id {
			return w, pid, nil
		}
		w.Release()
	}
	return nil, 0, hkerrors.New(hkerrors.KindNotFound, "resolveByID")
}

// placeAtCell implements preconditions (§4.4.1), computes the grid-cell
// target, and runs the attempt ladder.
func (e *Engine) placeAtCell(h ax.Handle, pid int32, id uint32, cols, rows, col, row int, opts PlaceAttemptOptions) (PlacementOutcome, error) {
	cur, vf, skip, err := e.prepare(h, pid, id, opts)
	if err != nil {
		return PlacementOutcome{}, err
	}
	if skip != nil {
		return *skip, nil
	}
	target := geom.GridCell(vf, cols, rows, col, row)
	return e.place(h, cur, vf, target, opts)
}

// prepare runs the shared preconditions: off-active-space refusal,
// role/subrole skip, and un-minimize. It returns the current rect and the
// visible frame it should be placed within, or a non-nil outcome for the
// role-skip no-op path.
func (e *Engine) prepare(h ax.Handle, pid int32, id uint32, opts PlaceAttemptOptions) (geom.Rect, geom.Rect, *PlacementOutcome, error) {
	if e.OnActiveSpace != nil {
		onActive, known := e.OnActiveSpace(pid, id)
		if known && !onActive {
			return geom.Rect{}, geom.Rect{}, nil, hkerrors.New(hkerrors.KindOffActiveSpace, "place")
		}
	}

	role, _, _ := e.Adapter.ReadString(h, ax.AXRole)
	sub, _, _ := e.Adapter.ReadString(h, ax.AXSubrole)
	fullscreen, _, _ := e.Adapter.ReadBool(h, ax.AXFullScreen)
	if skip, reason := isSkipRole(role, sub); skip || fullscreen {
		if fullscreen && !skip {
			reason = "fullscreen"
		}
		return geom.Rect{}, geom.Rect{}, &PlacementOutcome{Verified: true, Skipped: true, SkipReason: reason}, nil
	}

	minimized, _, _ := e.Adapter.ReadBool(h, ax.AXMinimized)
	if minimized && !opts.IgnoreMoveIfMinimized {
		_ = e.Adapter.SetBool(h, ax.AXMinimized, false)
	}

	pos, err := e.Adapter.GetPoint(h, ax.AXPosition)
	if err != nil {
		return geom.Rect{}, geom.Rect{}, nil, hkerrors.Wrap(hkerrors.KindAxCall, "GetPoint", err)
	}
	size, err := e.Adapter.GetSize(h, ax.AXSize)
	if err != nil {
		return geom.Rect{}, geom.Rect{}, nil, hkerrors.Wrap(hkerrors.KindAxCall, "GetSize", err)
	}
	cur := geom.Rect{X: pos.X, Y: pos.Y, W: size.W, H: size.H}
	vf := e.visibleFrameFor(cur)
	return cur, vf, nil, nil
}

func isSkipRole(role, sub string) (bool, string) {
	if role != "" && role != "AXWindow" {
		return true, "non-window role: " + role
	}
	switch sub {
	case "AXSystemDialog", "AXSheet", "AXDialog":
		return true, "skipped subrole: " + sub
	}
	return false, ""
}

// place runs the attempt ladder against target.
func (e *Engine) place(h ax.Handle, cur, vf, target geom.Rect, opts PlaceAttemptOptions) (PlacementOutcome, error) {
	clock := e.clock()

	eps := opts.VerifyEPS
	if eps == 0 {
		eps = geom.DefaultEPS(1.0)
	}
	maxSettle := time.Duration(opts.Retry.MaxSettleMs) * time.Millisecond
	if maxSettle <= 0 {
		maxSettle = time.Duration(DefaultRetryLimits().MaxSettleMs) * time.Millisecond
	}

	var timeline AttemptTimeline

	if opts.AllowSafePark && needsSafePark(cur, target, vf) {
		e.safePark(h, cur, vf, clock)
	}

	if opts.ForceShrinkMoveGrow {
		return e.shrinkMoveGrow(h, target, eps, maxSettle, &timeline, clock)
	}

	posSettable, _, _ := e.Adapter.Settable(h, ax.AXPosition)
	sizeSettable, _, _ := e.Adapter.Settable(h, ax.AXSize)
	order := OrderPosSize
	if posSettable != sizeSettable && sizeSettable {
		order = OrderSizePos
	}

	kind1 := PosThenSize
	if order == OrderSizePos {
		kind1 = SizeThenPos
	}
	got1, clamp1, elapsed1 := e.applyAndWait(h, target, order, eps, maxSettle, clock)
	verified1 := geom.ApproxEq(got1, target, eps)
	timeline.add(AttemptRecord{Kind: kind1, Order: order, Target: target, Got: got1, ElapsedMs: elapsed1.Milliseconds(), EPS: eps, Clamped: clamp1, Verified: verified1})

	if verified1 && !opts.ForceSecondAttempt {
		return PlacementOutcome{FinalRect: got1, Verified: true, Timeline: timeline}, nil
	}
	if opts.PosFirstOnly {
		return PlacementOutcome{FinalRect: got1, Verified: false, Timeline: timeline},
			&VerificationError{Op: "PlaceGrid", Expected: target, Got: got1, EPS: eps, Clamped: clamp1, Timeline: timeline}
	}

	latest, latestClamp := got1, clamp1

	if axis, _, ok := geom.OneAxisOff(got1, target, eps); ok {
		e.Counters.record(TriggerAxisNudge)
		got2, clamp2, elapsed2 := e.axisNudge(h, got1, target, axis, eps, maxSettle, clock)
		verified2 := geom.ApproxEq(got2, target, eps)
		timeline.add(AttemptRecord{Kind: AxisNudge, Order: order, Target: target, Got: got2, ElapsedMs: elapsed2.Milliseconds(), EPS: eps, Clamped: clamp2, Verified: verified2})
		if verified2 {
			return PlacementOutcome{FinalRect: got2, Verified: true, Timeline: timeline}, nil
		}
		latest, latestClamp = got2, clamp2
	}

	opposite := OrderSizePos
	if order == OrderSizePos {
		opposite = OrderPosSize
	}
	e.Counters.record(TriggerOppositeOrder)
	got3, clamp3, elapsed3 := e.applyAndWait(h, target, opposite, eps, maxSettle, clock)
	verified3 := geom.ApproxEq(got3, target, eps)
	timeline.add(AttemptRecord{Kind: OppositeOrder, Order: opposite, Target: target, Got: got3, ElapsedMs: elapsed3.Milliseconds(), EPS: eps, Clamped: clamp3, Verified: verified3})
	if verified3 {
		return PlacementOutcome{FinalRect: got3, Verified: true, Timeline: timeline}, nil
	}
	latest, latestClamp = got3, clamp3

	if geom.ApproxEqPos(latest, target, eps) {
		e.Counters.record(TriggerSizeOnlyLatched)
		got4, clamp4, elapsed4 := e.sizeOnly(h, target, eps, maxSettle, clock)
		verified4 := geom.ApproxEq(got4, target, eps)
		timeline.add(AttemptRecord{Kind: SizeOnlyLatched, Order: order, Target: target, Got: got4, ElapsedMs: elapsed4.Milliseconds(), EPS: eps, Clamped: clamp4, Verified: verified4})
		if verified4 {
			return PlacementOutcome{FinalRect: got4, Verified: true, Timeline: timeline}, nil
		}
		latest, latestClamp = got4, clamp4
	}

	e.Counters.record(TriggerAnchorLegalSize)
	anchor := geom.ComponentMax(latest, target)
	got5, clamp5, elapsed5 := e.applyAndWait(h, anchor, order, eps, maxSettle, clock)
	verified5 := geom.ApproxEq(got5, anchor, eps)
	timeline.add(AttemptRecord{Kind: AnchorLegalSize, Order: order, Target: anchor, Got: got5, ElapsedMs: elapsed5.Milliseconds(), EPS: eps, Clamped: clamp5, Verified: verified5})
	if verified5 {
		anchorCopy := anchor
		return PlacementOutcome{FinalRect: got5, Verified: true, Timeline: timeline, FallbackUsed: true, Anchored: &anchorCopy}, nil
	}
	latest, latestClamp = got5, clamp5

	e.Counters.record(TriggerShrinkMoveGrow)
	outcome, fallbackErr := e.shrinkMoveGrow(h, target, eps, maxSettle, &timeline, clock)
	if fallbackErr == nil {
		return outcome, nil
	}
	_ = latest
	_ = latestClamp
	return outcome, fallbackErr
}

func (e *Engine) applyAndWait(h ax.Handle, target geom.Rect, order AttemptOrder, eps float64, maxSettle time.Duration, clock settle.Clock) (geom.Rect, geom.ClampFlags, time.Duration) {
	if order == OrderPosSize {
		_ = e.Adapter.SetPoint(h, ax.AXPosition, target.Pos())
		_ = e.Adapter.SetSize(h, ax.AXSize, target.Dims())
	} else {
		_ = e.Adapter.SetSize(h, ax.AXSize, target.Dims())
		_ = e.Adapter.SetPoint(h, ax.AXPosition, target.Pos())
	}
	res := settle.WaitForAXFrame(e.Adapter, h, ax.AXPosition, ax.AXSize, target, eps, maxSettle, clock)
	_, clamp := geom.ClampToBounds(res.Best, e.visibleFrameFor(res.Best))
	return res.Best, clamp, res.Elapsed
}

func (e *Engine) axisNudge(h ax.Handle, cur, target geom.Rect, axis string, eps float64, maxSettle time.Duration, clock settle.Clock) (geom.Rect, geom.ClampFlags, time.Duration) {
	next := cur
	switch axis {
	case "x":
		next.X = target.X
	case "y":
		next.Y = target.Y
	}
	_ = e.Adapter.SetPoint(h, ax.AXPosition, next.Pos())
	res := settle.WaitForAXFrame(e.Adapter, h, ax.AXPosition, ax.AXSize, target, eps, maxSettle, clock)
	_, clamp := geom.ClampToBounds(res.Best, e.visibleFrameFor(res.Best))
	return res.Best, clamp, res.Elapsed
}

func (e *Engine) sizeOnly(h ax.Handle, target geom.Rect, eps float64, maxSettle time.Duration, clock settle.Clock) (geom.Rect, geom.ClampFlags, time.Duration) {
	_ = e.Adapter.SetSize(h, ax.AXSize, target.Dims())
	res := settle.WaitForAXFrame(e.Adapter, h, ax.AXPosition, ax.AXSize, target, eps, maxSettle, clock)
	_, clamp := geom.ClampToBounds(res.Best, e.visibleFrameFor(res.Best))
	return res.Best, clamp, res.Elapsed
}

// canonicalParkSize is the small rect used by the shrink->move->grow
// fallback before growing to the real target.
var canonicalParkSize = geom.Size{W: 200, H: 150}

func (e *Engine) shrinkMoveGrow(h ax.Handle, target geom.Rect, eps float64, maxSettle time.Duration, timeline *AttemptTimeline, clock settle.Clock) (PlacementOutcome, error) {
	_ = e.Adapter.SetSize(h, ax.AXSize, canonicalParkSize)
	_ = e.Adapter.SetPoint(h, ax.AXPosition, target.Pos())
	settle.WaitForAXFrame(e.Adapter, h, ax.AXPosition, ax.AXSize,
		geom.Rect{X: target.X, Y: target.Y, W: canonicalParkSize.W, H: canonicalParkSize.H}, eps, maxSettle, clock)

	_ = e.Adapter.SetPoint(h, ax.AXPosition, target.Pos())
	_ = e.Adapter.SetSize(h, ax.AXSize, target.Dims())
	res := settle.WaitForAXFrame(e.Adapter, h, ax.AXPosition, ax.AXSize, target, eps, maxSettle, clock)
	_, clamp := geom.ClampToBounds(res.Best, e.visibleFrameFor(res.Best))
	verified := geom.ApproxEq(res.Best, target, eps)
	timeline.add(AttemptRecord{Kind: ShrinkMoveGrow, Order: OrderSizePos, Target: target, Got: res.Best, ElapsedMs: res.Elapsed.Milliseconds(), EPS: eps, Clamped: clamp, Verified: verified})

	outcome := PlacementOutcome{FinalRect: res.Best, Verified: verified, Timeline: *timeline, FallbackUsed: true}
	if verified {
		return outcome, nil
	}
	return outcome, &VerificationError{Op: "PlaceGrid", Expected: target, Got: res.Best, EPS: eps, Clamped: clamp, Timeline: *timeline}
}

func needsSafePark(cur, target, vf geom.Rect) bool {
	return math.Abs(target.X-cur.X) > vf.W || math.Abs(target.Y-cur.Y) > vf.H
}

func (e *Engine) safePark(h ax.Handle, cur, vf geom.Rect, clock settle.Clock) {
	safe := geom.Point{X: vf.X + 10, Y: vf.Y + 10}
	_ = e.Adapter.SetPoint(h, ax.AXPosition, safe)
	settle.WaitForAXFrame(e.Adapter, h, ax.AXPosition, ax.AXSize,
		geom.Rect{X: safe.X, Y: safe.Y, W: cur.W, H: cur.H}, 4.0, 50*time.Millisecond, clock)
}

func (e *Engine) visibleFrameFor(r geom.Rect) geom.Rect {
	if e.Displays == nil {
		return r
	}
	displays := e.Displays()
	if len(displays) == 0 {
		return r
	}
	cx, cy := r.X+r.W/2, r.Y+r.H/2
	for _, d := range displays {
		if cx >= d.X && cx <= d.X+d.W && cy >= d.Y && cy <= d.Y+d.H {
			return d.Rect
		}
	}
	return displays[0].Rect
}

func nearestCell(cur, vf geom.Rect, cols, rows int) (int, int) {
	curCenter := geom.Point{X: cur.X + cur.W/2, Y: cur.Y + cur.H/2}
	bestCol, bestRow := 0, 0
	bestDist := math.MaxFloat64
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			cell := geom.GridCell(vf, cols, rows, c, r)
			cc := geom.Point{X: cell.X + cell.W/2, Y: cell.Y + cell.H/2}
			d := math.Hypot(cc.X-curCenter.X, cc.Y-curCenter.Y)
			if d < bestDist {
				bestDist, bestCol, bestRow = d, c, r
			}
		}
	}
	return bestCol, bestRow
}

func step(col, row int, dir MoveDir, cols, rows int) (int, int) {
	switch dir {
	case MoveLeft:
		if col > 0 {
			col--
		}
	case MoveRight:
		if col < cols-1 {
			col++
		}
	case MoveUp:
		if row > 0 {
			row--
		}
	case MoveDown:
		if row < rows-1 {
			row++
		}
	}
	return col, row
}
