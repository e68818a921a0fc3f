// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package place

import "github.com/cortesi/hotki-sub000/atomicx"

// FallbackTrigger names why the ladder fell through to a later stage,
// for the diagnostics counters below. It enriches the engine's
// observability without adding any new placement behavior.
type FallbackTrigger int

const (
	TriggerNone FallbackTrigger = iota
	TriggerAxisNudge
	TriggerOppositeOrder
	TriggerSizeOnlyLatched
	TriggerAnchorLegalSize
	TriggerShrinkMoveGrow
)

// FallbackInvocation records one ladder stage beyond the first attempt
// firing, for the counters snapshot.
type FallbackInvocation struct {
	Trigger FallbackTrigger
	Count   int64
}

// Counters accumulates how often each ladder stage beyond the first
// attempt fires. Each value is independent and shared by every placement
// run of the Engine that holds it; it is diagnostic state, not part of
// any single PlacementOutcome.
type Counters struct {
	axisNudge       atomicx.Counter
	oppositeOrder   atomicx.Counter
	sizeOnlyLatched atomicx.Counter
	anchorLegal     atomicx.Counter
	shrinkMoveGrow  atomicx.Counter
}

func (c *Counters) record(trigger FallbackTrigger) {
	if c == nil {
		return
	}
	switch trigger {
	case TriggerAxisNudge:
		c.axisNudge.Inc()
	case TriggerOppositeOrder:
		c.oppositeOrder.Inc()
	case TriggerSizeOnlyLatched:
		c.sizeOnlyLatched.Inc()
	case TriggerAnchorLegalSize:
		c.anchorLegal.Inc()
	case TriggerShrinkMoveGrow:
		c.shrinkMoveGrow.Inc()
	}
}

// CountersSnapshot is a point-in-time read of Counters.
type CountersSnapshot struct {
	Invocations []FallbackInvocation
}

// Snapshot returns the current counter values.
func (c *Counters) Snapshot() CountersSnapshot {
	if c == nil {
		return CountersSnapshot{}
	}
	return CountersSnapshot{Invocations: []FallbackInvocation{
		{Trigger: TriggerAxisNudge, Count: c.axisNudge.Value()},
		{Trigger: TriggerOppositeOrder, Count: c.oppositeOrder.Value()},
		{Trigger: TriggerSizeOnlyLatched, Count: c.sizeOnlyLatched.Value()},
		{Trigger: TriggerAnchorLegalSize, Count: c.anchorLegal.Value()},
		{Trigger: TriggerShrinkMoveGrow, Count: c.shrinkMoveGrow.Value()},
	}}
}

// Reset zeroes every counter.
func (c *Counters) Reset() {
	if c == nil {
		return
	}
	c.axisNudge.Set(0)
	c.oppositeOrder.Set(0)
	c.sizeOnlyLatched.Set(0)
	c.anchorLegal.Set(0)
	c.shrinkMoveGrow.Set(0)
}
