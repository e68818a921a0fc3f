// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raise

import (
	"context"
	"testing"
	"time"

	"github.com/cortesi/hotki-sub000/geom"
	"github.com/cortesi/hotki-sub000/settle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHarness struct {
	frontmost FrontmostSnapshot
	focus     FocusSnapshot
	axPresent bool
	raises    int
	activates int
	clicks    int
}

func newStabilizer(h *fakeHarness) *Stabilizer {
	var now time.Time
	clock := settle.Clock{
		Now:   func() time.Time { return now },
		Sleep: func(d time.Duration) { now = now.Add(d) },
	}
	return &Stabilizer{Deps: Deps{
		Frontmost: func() FrontmostSnapshot { return h.frontmost },
		Focus:     func() FocusSnapshot { return h.focus },
		AXHasWindowTitle: func(pid int32, title string) bool {
			return h.axPresent
		},
		ResolveCGID: func(ctx context.Context, pid int32, title string, timeout time.Duration) (uint32, bool) {
			return 1, true
		},
		RaiseByID: func(pid int32, id uint32) error {
			h.raises++
			h.frontmost = FrontmostSnapshot{PID: pid, Title: "target", Valid: true}
			h.focus = FocusSnapshot{PID: pid, Title: "target", Valid: true}
			h.axPresent = true
			return nil
		},
		ActivatePID: func(pid int32) error {
			h.activates++
			return nil
		},
		WindowCenter: func(pid int32, title string) (geom.Point, bool) {
			return geom.Point{X: 100, Y: 100}, true
		},
		Click: func(center geom.Point) error {
			h.clicks++
			return nil
		},
		Clock: clock,
	}}
}

func TestStabilizeConvergesWithinHoldWindow(t *testing.T) {
	h := &fakeHarness{
		frontmost: FrontmostSnapshot{PID: 99, Title: "other", Valid: true},
		focus:     FocusSnapshot{PID: 99, Title: "other", Valid: true},
	}
	s := newStabilizer(h)
	token := s.Begin()

	ok, err := s.Stabilize(context.Background(), 42, "target", 6, 50, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, h.raises)
	assert.LessOrEqual(t, h.clicks, 2)
}

func TestStabilizeAbortsOnNewerNonce(t *testing.T) {
	h := &fakeHarness{
		frontmost: FrontmostSnapshot{PID: 99, Title: "other", Valid: true},
		focus:     FocusSnapshot{PID: 99, Title: "other", Valid: true},
	}
	s := newStabilizer(h)
	token := s.Begin()
	s.Begin() // supersedes token

	ok, err := s.Stabilize(context.Background(), 42, "target", 6, 50, token)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, h.raises)
}

func TestStabilizeFailsWhenNeverConverges(t *testing.T) {
	h := &fakeHarness{
		frontmost: FrontmostSnapshot{PID: 99, Title: "other", Valid: true},
		focus:     FocusSnapshot{PID: 99, Title: "other", Valid: true},
	}
	s := newStabilizer(h)
	// Override RaiseByID so the window never actually becomes frontmost.
	s.Deps.RaiseByID = func(pid int32, id uint32) error {
		h.raises++
		return nil
	}
	token := s.Begin()

	ok, err := s.Stabilize(context.Background(), 42, "target", 3, 50, token)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, h.raises)
}
