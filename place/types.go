// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package place implements the Placement Engine: a main-thread state
// machine that applies grid placements and directional moves to a single
// window through the Accessibility API, with an ordered attempt ladder,
// axis nudges, anchored-legal-size acceptance, a shrink-move-grow
// fallback, safe-park preflight, and final verification against an
// epsilon.
package place

import "github.com/cortesi/hotki-sub000/geom"

// AttemptKind is the closed set of attempt strategies the ladder can
// record, kept as an enumerable value type rather than a polymorphic
// strategy interface.
type AttemptKind int

const (
	PosThenSize AttemptKind = iota
	SizeThenPos
	AxisNudge
	OppositeOrder
	SizeOnlyLatched
	AnchorLegalSize
	ShrinkMoveGrow
)

func (k AttemptKind) String() string {
	switch k {
	case PosThenSize:
		return "pos->size"
	case SizeThenPos:
		return "size->pos"
	case AxisNudge:
		return "axis-nudge"
	case OppositeOrder:
		return "opposite-order"
	case SizeOnlyLatched:
		return "size-only-latched"
	case AnchorLegalSize:
		return "anchor-legal"
	case ShrinkMoveGrow:
		return "shrink->move->grow"
	default:
		return "unknown"
	}
}

// AttemptOrder records which of position/size was written first.
type AttemptOrder int

const (
	OrderPosSize AttemptOrder = iota
	OrderSizePos
)

func (o AttemptOrder) String() string {
	if o == OrderSizePos {
		return "size->pos"
	}
	return "pos->size"
}

// MoveDir is a directional step for PlaceMoveGrid.
type MoveDir int

const (
	MoveLeft MoveDir = iota
	MoveRight
	MoveUp
	MoveDown
)

// RetryLimits carries the ladder's retry settings. MaxSettleMs bounds each
// settle wait; the ladder does not count its stages against MaxAttempts,
// so every enabled stage runs until one verifies.
type RetryLimits struct {
	MaxAttempts int
	MaxSettleMs int64
}

// DefaultRetryLimits returns the default retry settings: MaxAttempts 8 and
// a 250ms per-attempt settle budget.
func DefaultRetryLimits() RetryLimits {
	return RetryLimits{MaxAttempts: 8, MaxSettleMs: 250}
}

// PlaceAttemptOptions controls how far the attempt ladder may go and how
// strict verification is.
type PlaceAttemptOptions struct {
	// VerifyEPS is the tolerance used by every verification compare. Zero
	// means geom.DefaultEPS(1.0), i.e. 2.0 points; the display's actual
	// scale is not consulted.
	VerifyEPS float64

	// ForceSecondAttempt skips the early-accept after attempt 1 even if it
	// verified, exercising the rest of the ladder (used by tests).
	ForceSecondAttempt bool

	// PosFirstOnly fails fast after attempt 1 if unverified, skipping the
	// rest of the ladder.
	PosFirstOnly bool

	// ForceShrinkMoveGrow skips straight to stage 6.
	ForceShrinkMoveGrow bool

	Retry RetryLimits

	// AllowSafePark enables the safe-park preflight of §4.4.2.
	AllowSafePark bool

	// IgnoreMoveIfMinimized keeps a minimized window minimized instead of
	// un-minimizing it first; exists to exercise the opposite of the
	// default policy in tests.
	IgnoreMoveIfMinimized bool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() PlaceAttemptOptions {
	return PlaceAttemptOptions{
		VerifyEPS:     2.0,
		Retry:         DefaultRetryLimits(),
		AllowSafePark: true,
	}
}

// AttemptRecord is one entry in an AttemptTimeline.
type AttemptRecord struct {
	Kind      AttemptKind
	Order     AttemptOrder
	Target    geom.Rect
	Got       geom.Rect
	ElapsedMs int64
	EPS       float64
	Clamped   geom.ClampFlags
	Verified  bool
}

// AttemptTimeline accumulates AttemptRecords for one placement run, for
// diagnostics and postmortem on verification failure.
type AttemptTimeline struct {
	Records []AttemptRecord
}

func (t *AttemptTimeline) add(r AttemptRecord) {
	t.Records = append(t.Records, r)
}

// PlacementOutcome is the result of one placement run.
type PlacementOutcome struct {
	FinalRect    geom.Rect
	Verified     bool
	Timeline     AttemptTimeline
	FallbackUsed bool
	// Anchored is set when stage 5 (AnchorLegalSize) produced the
	// accepted outcome; it carries the anchored target rather than the
	// literal grid-cell target.
	Anchored *geom.Rect
	// Skipped is true for the role/subrole no-op path (§4.4.1 step 3);
	// such an outcome is always Verified with an empty timeline and is
	// never an error.
	Skipped     bool
	SkipReason  string
}
