// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"context"
	"testing"
	"time"

	"github.com/cortesi/hotki-sub000/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T, enum *FakeEnumerator) (*World, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cfg := DefaultCfg()
	cfg.PollMsMin = 5
	cfg.PollMsMax = 20
	cfg.CoalesceMs = 0
	w := Spawn(ctx, enum, cfg)
	return w, cancel
}

func TestAddedThenSnapshot(t *testing.T) {
	enum := NewFakeEnumerator()
	enum.SetWindows([]WindowInfo{
		{App: "Term", Title: "zsh", PID: 1, ID: 1, Pos: geom.Rect{X: 0, Y: 0, W: 800, H: 600}, HasPos: true, OnActiveSpace: true, IsOnScreen: true, Focused: true},
	})
	w, cancel := newTestWorld(t, enum)
	defer cancel()
	w.HintRefresh()

	require.Eventually(t, func() bool {
		return len(w.Snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	snap := w.Snapshot()
	assert.Equal(t, "zsh", snap[0].Title)
	assert.Equal(t, int32(1), snap[0].PID)
}

func TestFocusUniqueness(t *testing.T) {
	enum := NewFakeEnumerator()
	enum.SetWindows([]WindowInfo{
		{App: "A", Title: "a", PID: 1, ID: 1, OnActiveSpace: true, IsOnScreen: true, Focused: true, Layer: 0},
		{App: "B", Title: "b", PID: 2, ID: 2, OnActiveSpace: true, IsOnScreen: true, Focused: false, Layer: 0},
	})
	w, cancel := newTestWorld(t, enum)
	defer cancel()
	w.HintRefresh()

	require.Eventually(t, func() bool { return len(w.Snapshot()) == 2 }, time.Second, 5*time.Millisecond)

	focusedCount := 0
	for _, win := range w.Snapshot() {
		if win.Focused {
			focusedCount++
		}
	}
	assert.Equal(t, 1, focusedCount)
}

func TestSubscribeWithSnapshotNoDanglingUpdates(t *testing.T) {
	enum := NewFakeEnumerator()
	w, cancel := newTestWorld(t, enum)
	defer cancel()

	cursor, snap, _, _ := w.SubscribeWithSnapshot()
	assert.Empty(t, snap)

	enum.SetWindows([]WindowInfo{
		{App: "Term", Title: "zsh", PID: 1, ID: 1, OnActiveSpace: true, IsOnScreen: true},
	})
	w.HintRefresh()

	ctx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	ev, cursor, err := w.Next(ctx, cursor)
	require.NoError(t, err)
	require.Equal(t, EventAdded, ev.Kind)

	// The only window becomes the focus fallback in the same pass.
	evFocus, cursor, err := w.Next(ctx, cursor)
	require.NoError(t, err)
	require.Equal(t, EventFocusChanged, evFocus.Kind)

	enum.SetWindows([]WindowInfo{
		{App: "Term", Title: "bash", PID: 1, ID: 1, OnActiveSpace: true, IsOnScreen: true},
	})
	w.HintRefresh()

	ev2, _, err := w.Next(ctx, cursor)
	require.NoError(t, err)
	assert.Equal(t, EventUpdated, ev2.Kind)
	assert.True(t, ev2.Delta.Title)
}

func TestSeenSeqMonotonic(t *testing.T) {
	enum := NewFakeEnumerator()
	w, cancel := newTestWorld(t, enum)
	defer cancel()

	w.HintRefresh()
	require.Eventually(t, func() bool { return w.Status().SeenSeq > 0 }, time.Second, 5*time.Millisecond)
	first := w.Status()

	time.Sleep(30 * time.Millisecond)
	w.HintRefresh()
	require.Eventually(t, func() bool { return w.Status().SeenSeq > first.SeenSeq }, time.Second, 5*time.Millisecond)
}
