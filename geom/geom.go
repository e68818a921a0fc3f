// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom implements the rectangle and grid-cell math shared by the
// World and the Placement Engine: approximate equality with an epsilon
// tolerance, grid-cell partitioning with remainder absorbed into the last
// row/column, and clamp-flag diagnostics for why a requested target had to
// be adjusted to fit a display.
package geom

import (
	"math"
	"strings"
)

// Point is a 2D point in the global (top-left origin, y-down) screen
// coordinate space shared by every display.
type Point struct {
	X, Y float64
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle in global screen coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Pos returns the rect's origin as a Point.
func (r Rect) Pos() Point { return Point{X: r.X, Y: r.Y} }

// Dims returns the rect's dimensions as a Size.
func (r Rect) Dims() Size { return Size{W: r.W, H: r.H} }

// Diffs is the per-component signed difference between two rects, used by
// the attempt ladder to decide whether a failed attempt is "one axis off"
// and to log how far a result missed its target.
type Diffs struct {
	DX, DY, DW, DH float64
}

// Diffs returns the signed component-wise difference other - r.
func (r Rect) Diffs(other Rect) Diffs {
	return Diffs{
		DX: other.X - r.X,
		DY: other.Y - r.Y,
		DW: other.W - r.W,
		DH: other.H - r.H,
	}
}

// ApproxEq reports whether a and b are equal within eps on every
// component.
func ApproxEq(a, b Rect, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps &&
		math.Abs(a.Y-b.Y) <= eps &&
		math.Abs(a.W-b.W) <= eps &&
		math.Abs(a.H-b.H) <= eps
}

// ApproxEqPos reports whether the origins of a and b are equal within eps,
// ignoring size.
func ApproxEqPos(a, b Rect, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

// OneAxisOff reports whether exactly one of the X or Y components of got
// differs from want by more than eps while W and H already match within
// eps, and if so which axis and by how much. The Placement Engine uses
// this to decide whether an axis-nudge retry (rather than a full
// opposite-order retry) is the right next step.
func OneAxisOff(got, want Rect, eps float64) (axis string, delta float64, ok bool) {
	if math.Abs(got.W-want.W) > eps || math.Abs(got.H-want.H) > eps {
		return "", 0, false
	}
	xOff := math.Abs(got.X-want.X) > eps
	yOff := math.Abs(got.Y-want.Y) > eps
	switch {
	case xOff && !yOff:
		return "x", want.X - got.X, true
	case yOff && !xOff:
		return "y", want.Y - got.Y, true
	default:
		return "", 0, false
	}
}

// ComponentMax returns a Rect with the same origin as target and, on each
// size dimension, the larger of observed and target. It is used to build
// an "anchored legal size" target: the platform may refuse to shrink a
// window below some minimum, so the anchor must not demand a size smaller
// than what was actually observed.
func ComponentMax(observed, target Rect) Rect {
	return Rect{
		X: target.X,
		Y: target.Y,
		W: math.Max(observed.W, target.W),
		H: math.Max(observed.H, target.H),
	}
}

// ClampFlags records which edges of a requested target had to be clamped
// to keep the result within a display's visible bounds.
type ClampFlags struct {
	Left, Right, Top, Bottom bool
}

// Any reports whether any edge was clamped.
func (c ClampFlags) Any() bool {
	return c.Left || c.Right || c.Top || c.Bottom
}

// String renders the clamp flags as a short token list suitable for
// interpolation into a log line, e.g. "left,bottom" or "none".
func (c ClampFlags) String() string {
	if !c.Any() {
		return "none"
	}
	var parts []string
	if c.Left {
		parts = append(parts, "left")
	}
	if c.Right {
		parts = append(parts, "right")
	}
	if c.Top {
		parts = append(parts, "top")
	}
	if c.Bottom {
		parts = append(parts, "bottom")
	}
	return strings.Join(parts, ",")
}

// ClampToBounds clamps r to fit within bounds, shrinking dimensions only
// as a last resort, and reports which edges were adjusted.
func ClampToBounds(r, bounds Rect) (Rect, ClampFlags) {
	var flags ClampFlags
	out := r
	if out.W > bounds.W {
		out.W = bounds.W
	}
	if out.H > bounds.H {
		out.H = bounds.H
	}
	if out.X < bounds.X {
		out.X = bounds.X
		flags.Left = true
	}
	if out.Y < bounds.Y {
		out.Y = bounds.Y
		flags.Top = true
	}
	if out.X+out.W > bounds.X+bounds.W {
		out.X = bounds.X + bounds.W - out.W
		flags.Right = true
	}
	if out.Y+out.H > bounds.Y+bounds.H {
		out.Y = bounds.Y + bounds.H - out.H
		flags.Bottom = true
	}
	return out, flags
}

// GridCell computes the target rect for cell (col, row) of a cols x rows
// grid partition of bounds. Division remainders are absorbed into the
// last row and column so the partition always exactly tiles bounds with
// no gap or overlap. col and row are clamped into [0,cols-1]/[0,rows-1]
// so an out-of-range request resolves to the nearest edge cell instead of
// a rect outside bounds.
func GridCell(bounds Rect, cols, rows, col, row int) Rect {
	col = clampIndex(col, cols)
	row = clampIndex(row, rows)

	cellW := math.Floor(bounds.W / float64(cols))
	cellH := math.Floor(bounds.H / float64(rows))

	w := cellW
	if col == cols-1 {
		w = bounds.W - cellW*float64(cols-1)
	}
	h := cellH
	if row == rows-1 {
		h = bounds.H - cellH*float64(rows-1)
	}

	return Rect{
		X: bounds.X + cellW*float64(col),
		Y: bounds.Y + cellH*float64(row),
		W: w,
		H: h,
	}
}

// clampIndex bounds i into [0,n-1].
func clampIndex(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i > n-1:
		return n - 1
	default:
		return i
	}
}

// DefaultEPS returns the authoritative verification epsilon for a display
// of the given scale factor: ceil(2*scale), floored at 2.0 logical points.
func DefaultEPS(scale float64) float64 {
	eps := math.Ceil(2 * scale)
	if eps < 2.0 {
		return 2.0
	}
	return eps
}
