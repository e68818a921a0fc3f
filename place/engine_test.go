// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package place

import (
	"testing"
	"time"

	"github.com/cortesi/hotki-sub000/ax"
	"github.com/cortesi/hotki-sub000/geom"
	"github.com/cortesi/hotki-sub000/settle"
	"github.com/cortesi/hotki-sub000/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instantClock() settle.Clock {
	var now time.Time
	return settle.Clock{
		Now:   func() time.Time { return now },
		Sleep: func(d time.Duration) { now = now.Add(d) },
	}
}

// testEngine wires pid == id for every window, which is all these tests
// need from ResolvePID. display is the single screen's visible frame;
// callers whose scenario doesn't care about display bounds may pass the
// window's own starting rect.
func testEngine(f *ax.Fake, display geom.Rect) *Engine {
	return &Engine{
		Adapter:    f,
		Clock:      instantClock(),
		ResolvePID: func(id uint32) (int32, bool) { return int32(id), true },
		Displays: func() []world.DisplayBounds {
			return []world.DisplayBounds{{ID: 0, Rect: display}}
		},
	}
}

func TestPlaceTopLeft2x2(t *testing.T) {
	f := ax.NewFake()
	f.AddWindow(ax.FakeWindowConfig{
		PID: 1, ID: 1,
		Pos:          geom.Rect{X: 200, Y: 200, W: 600, H: 500},
		SettablePos:  true,
		SettableSize: true,
	})
	e := testEngine(f, geom.Rect{X: 0, Y: 0, W: 1440, H: 900})

	outcome, err := e.PlaceGridOpts(1, 2, 2, 0, 0, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, outcome.Verified)
	assert.Equal(t, geom.Rect{X: 0, Y: 0, W: 720, H: 450}, outcome.FinalRect)
	assert.Len(t, outcome.Timeline.Records, 1)
	assert.Equal(t, PosThenSize, outcome.Timeline.Records[0].Kind)
}

func TestPlaceBottomRight3x2Remainder(t *testing.T) {
	f := ax.NewFake()
	f.AddWindow(ax.FakeWindowConfig{
		PID: 1, ID: 1,
		Pos:          geom.Rect{X: 0, Y: 0, W: 1441, H: 901},
		SettablePos:  true,
		SettableSize: true,
	})
	e := testEngine(f, geom.Rect{X: 0, Y: 0, W: 1441, H: 901})

	outcome, err := e.PlaceGridOpts(1, 3, 2, 2, 1, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, outcome.Verified)
	assert.Equal(t, geom.Rect{X: 960, Y: 450, W: 481, H: 451}, outcome.FinalRect)
	assert.False(t, outcome.Timeline.Records[0].Clamped.Any())
}

func TestPlaceMinimumSizeAcceptsAnchoredTarget(t *testing.T) {
	f := ax.NewFake()
	f.AddWindow(ax.FakeWindowConfig{
		PID: 1, ID: 1,
		Pos:          geom.Rect{X: 0, Y: 0, W: 500, H: 500},
		Min:          geom.Size{W: 500, H: 500},
		SettablePos:  true,
		SettableSize: true,
	})
	e := testEngine(f, geom.Rect{X: 0, Y: 0, W: 500, H: 500})

	// A 2x2 grid cell is 250x250, below the window's configured minimum,
	// so the ladder must fall through to the anchored-legal-size stage.
	outcome, err := e.PlaceGridOpts(1, 2, 2, 0, 0, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, outcome.Verified)
	require.NotNil(t, outcome.Anchored)
	assert.Equal(t, geom.Rect{X: 0, Y: 0, W: 500, H: 500}, *outcome.Anchored)
}

func TestPlaceOffActiveSpaceRefuses(t *testing.T) {
	f := ax.NewFake()
	f.AddWindow(ax.FakeWindowConfig{PID: 1, ID: 1, Pos: geom.Rect{X: 0, Y: 0, W: 400, H: 300}, SettablePos: true, SettableSize: true})
	e := testEngine(f, geom.Rect{X: 0, Y: 0, W: 400, H: 300})
	e.OnActiveSpace = func(pid int32, id uint32) (bool, bool) { return false, true }

	_, err := e.PlaceGridOpts(1, 2, 2, 0, 0, DefaultOptions())
	require.Error(t, err)
	assert.Empty(t, f.Ops())
}

func TestPlaceIdempotence(t *testing.T) {
	f := ax.NewFake()
	f.AddWindow(ax.FakeWindowConfig{PID: 1, ID: 1, Pos: geom.Rect{X: 0, Y: 0, W: 1000, H: 800}, SettablePos: true, SettableSize: true})
	e := testEngine(f, geom.Rect{X: 0, Y: 0, W: 1000, H: 800})

	o1, err := e.PlaceGridOpts(1, 2, 2, 1, 1, DefaultOptions())
	require.NoError(t, err)
	require.True(t, o1.Verified)

	o2, err := e.PlaceGridOpts(1, 2, 2, 1, 1, DefaultOptions())
	require.NoError(t, err)
	require.True(t, o2.Verified)
	assert.Equal(t, o1.FinalRect, o2.FinalRect)
	assert.Len(t, o2.Timeline.Records, 1)
}

func TestRoleSkip(t *testing.T) {
	f := ax.NewFake()
	f.AddWindow(ax.FakeWindowConfig{PID: 1, ID: 1, Role: "AXSheet", Pos: geom.Rect{X: 0, Y: 0, W: 400, H: 300}})
	e := testEngine(f, geom.Rect{X: 0, Y: 0, W: 400, H: 300})

	outcome, err := e.PlaceGridOpts(1, 2, 2, 0, 0, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, outcome.Skipped)
	assert.True(t, outcome.Verified)
}

func TestPlaceMoveGridRoundTrip(t *testing.T) {
	f := ax.NewFake()
	f.AddWindow(ax.FakeWindowConfig{PID: 1, ID: 1, Pos: geom.Rect{X: 0, Y: 0, W: 1200, H: 900}, SettablePos: true, SettableSize: true})
	e := testEngine(f, geom.Rect{X: 0, Y: 0, W: 1200, H: 900})

	start, err := e.PlaceGridOpts(1, 3, 1, 1, 0, DefaultOptions())
	require.NoError(t, err)
	require.True(t, start.Verified)

	afterLeft, err := e.PlaceMoveGridOpts(1, 3, 1, MoveLeft, DefaultOptions())
	require.NoError(t, err)
	require.True(t, afterLeft.Verified)

	afterRight, err := e.PlaceMoveGridOpts(1, 3, 1, MoveRight, DefaultOptions())
	require.NoError(t, err)
	require.True(t, afterRight.Verified)
	assert.Equal(t, start.FinalRect, afterRight.FinalRect)
}
