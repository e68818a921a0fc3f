// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package focusdir implements the Focus-Dir Resolver: given a direction
// and the currently focused window, it picks the best directional
// neighbor by projecting candidate centers onto the direction's primary
// axis and scoring by a weighted distance that favors axis-aligned
// neighbors over diagonal ones.
package focusdir

import (
	"math"

	hkerrors "github.com/cortesi/hotki-sub000/errors"
	"github.com/cortesi/hotki-sub000/geom"
)

// Direction is one of the four cardinal directions a focus-dir intent can
// name.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	default:
		return "unknown"
	}
}

// Candidate is one window eligible for consideration, carrying just what
// the resolver needs: identity, z order, geometry, and the predicates the
// eligibility filter checks.
type Candidate struct {
	PID           int32
	ID            uint32
	Title         string
	Z             uint32
	Rect          geom.Rect
	OnActiveSpace bool
	Layer         int32
	Focused       bool
}

// orthWeight is the weight applied to the orthogonal-axis delta in the
// distance score, favoring neighbors that are roughly axis-aligned with
// the focused window over ones that are mostly off to the side.
const orthWeight = 2.0

func center(r geom.Rect) geom.Point {
	return geom.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// axisProject returns (primary, orthogonal) coordinates of p for dir:
// X is primary for Left/Right, Y is primary for Up/Down.
func axisProject(dir Direction, p geom.Point) (primary, orth float64) {
	switch dir {
	case DirLeft, DirRight:
		return p.X, p.Y
	default:
		return p.Y, p.X
	}
}

// orthExtent returns the [min,max] extent of r along dir's orthogonal
// axis, used for the overlap tie-break.
func orthExtent(dir Direction, r geom.Rect) (min, max float64) {
	switch dir {
	case DirLeft, DirRight:
		return r.Y, r.Y + r.H
	default:
		return r.X, r.X + r.W
	}
}

func ahead(dir Direction, focusPrimary, candPrimary float64) bool {
	switch dir {
	case DirRight, DirDown:
		return candPrimary > focusPrimary
	default:
		return candPrimary < focusPrimary
	}
}

func overlapLen(aMin, aMax, bMin, bMax float64) float64 {
	lo := math.Max(aMin, bMin)
	hi := math.Min(aMax, bMax)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

type scored struct {
	c       Candidate
	score   float64
	overlap float64
}

// better reports whether a should be preferred over b: lower score wins;
// ties break by lower z, then by higher orthogonal overlap, then by lower
// (pid,id).
func better(a, b scored) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	if a.c.Z != b.c.Z {
		return a.c.Z < b.c.Z
	}
	if a.overlap != b.overlap {
		return a.overlap > b.overlap
	}
	if a.c.PID != b.c.PID {
		return a.c.PID < b.c.PID
	}
	return a.c.ID < b.c.ID
}

// Resolve picks the best neighbor of focusRect among candidates in dir,
// It reports false if no eligible
// candidate lies strictly ahead in dir.
func Resolve(dir Direction, focusRect geom.Rect, candidates []Candidate) (Candidate, bool) {
	fc := center(focusRect)
	fp, fo := axisProject(dir, fc)
	fMin, fMax := orthExtent(dir, focusRect)

	var best *scored
	for _, c := range candidates {
		if !c.OnActiveSpace || c.Layer != 0 || c.Focused {
			continue
		}
		cc := center(c.Rect)
		cp, co := axisProject(dir, cc)
		if !ahead(dir, fp, cp) {
			continue
		}

		primaryDelta := math.Abs(cp - fp)
		orthDelta := math.Abs(co - fo)
		score := math.Hypot(primaryDelta, orthDelta*orthWeight)

		cMin, cMax := orthExtent(dir, c.Rect)
		cand := scored{c: c, score: score, overlap: overlapLen(fMin, fMax, cMin, cMax)}
		if best == nil || better(cand, *best) {
			b := cand
			best = &b
		}
	}
	if best == nil {
		return Candidate{}, false
	}
	return best.c, true
}

// ResolveOrError is Resolve with the non-fatal NoNeighbor diagnostic
// for the no-candidate case.
func ResolveOrError(dir Direction, focusRect geom.Rect, candidates []Candidate) (Candidate, error) {
	c, ok := Resolve(dir, focusRect, candidates)
	if !ok {
		return Candidate{}, hkerrors.New(hkerrors.KindNoNeighbor, "FocusDir:"+dir.String())
	}
	return c, nil
}
