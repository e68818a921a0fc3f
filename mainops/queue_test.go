// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mainops

import (
	"testing"
	"time"

	"github.com/cortesi/hotki-sub000/place"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	pidByID    map[uint32]int32
	nonPlace   []Op
	placements []Op
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{pidByID: map[uint32]int32{}}
}

func (r *recordingExecutor) ResolvePID(id uint32) (int32, bool) {
	pid, ok := r.pidByID[id]
	return pid, ok
}

func (r *recordingExecutor) ExecuteNonPlace(op Op) {
	r.nonPlace = append(r.nonPlace, op)
}

func (r *recordingExecutor) ExecutePlacement(op Op) {
	r.placements = append(r.placements, op)
}

func TestDrainEmptyIsNoop(t *testing.T) {
	q := NewQueue()
	exec := newRecordingExecutor()
	q.Drain(10*time.Millisecond, exec)
	assert.Empty(t, exec.nonPlace)
	assert.Empty(t, exec.placements)
}

func TestDrainCoalescesLatestByID(t *testing.T) {
	q := NewQueue()
	q.RequestPlaceGrid(7, 2, 2, 0, 0)
	q.RequestPlaceGrid(7, 2, 2, 1, 1)
	q.RequestPlaceGrid(7, 2, 2, 0, 1)

	exec := newRecordingExecutor()
	q.Drain(10*time.Millisecond, exec)

	require.Len(t, exec.placements, 1)
	assert.Equal(t, 0, exec.placements[0].Col)
	assert.Equal(t, 1, exec.placements[0].Row)
}

func TestDrainPreservesNonPlaceOrder(t *testing.T) {
	q := NewQueue()
	q.RequestActivatePid(1)
	q.RequestRaiseWindow(2, "term")
	q.RequestFullscreenNative(9)

	exec := newRecordingExecutor()
	q.Drain(10*time.Millisecond, exec)

	require.Len(t, exec.nonPlace, 3)
	assert.Equal(t, OpActivatePid, exec.nonPlace[0].Kind)
	assert.Equal(t, OpRaiseWindow, exec.nonPlace[1].Kind)
	assert.Equal(t, OpFullscreenNative, exec.nonPlace[2].Kind)
}

func TestDrainCrossTypeStaleDrop(t *testing.T) {
	q := NewQueue()
	// Focused-pid placement arrives first, then an id-specific placement
	// for the window that pid owns; the focused-pid intent is now stale
	// and must be dropped, not executed twice.
	q.RequestPlaceGridFocused(100, 2, 2, 0, 0)
	q.RequestPlaceGrid(55, 3, 3, 2, 2)

	exec := newRecordingExecutor()
	exec.pidByID[55] = 100

	q.Drain(10*time.Millisecond, exec)

	require.Len(t, exec.placements, 1)
	assert.Equal(t, OpPlaceGrid, exec.placements[0].Kind)
	assert.Equal(t, uint32(55), exec.placements[0].ID)
}

func TestDrainKeepsFocusedPidWhenIDUnresolved(t *testing.T) {
	q := NewQueue()
	q.RequestPlaceGridFocused(100, 2, 2, 0, 0)
	q.RequestPlaceGrid(55, 3, 3, 2, 2)

	exec := newRecordingExecutor()
	// 55 doesn't resolve to any pid in this run, so the cross-type drop
	// cannot fire and both placements should execute.
	q.Drain(10*time.Millisecond, exec)

	assert.Len(t, exec.placements, 2)
}

func TestDrainDistinctTargetsAllExecute(t *testing.T) {
	q := NewQueue()
	q.RequestPlaceGrid(1, 2, 2, 0, 0)
	q.RequestPlaceGrid(2, 2, 2, 1, 1)
	q.RequestPlaceGridFocused(3, 2, 2, 0, 1)

	exec := newRecordingExecutor()
	q.Drain(10*time.Millisecond, exec)

	assert.Len(t, exec.placements, 3)
}

func TestRequestPlaceMoveGridOptsCarriesDir(t *testing.T) {
	q := NewQueue()
	q.RequestPlaceMoveGrid(1, 2, 2, place.MoveRight)

	exec := newRecordingExecutor()
	q.Drain(10*time.Millisecond, exec)

	require.Len(t, exec.placements, 1)
	assert.Equal(t, place.MoveRight, exec.placements[0].Dir)
}

func TestWakeSignalsOnEnqueue(t *testing.T) {
	q := NewQueue()
	q.RequestActivatePid(1)
	select {
	case <-q.Wake():
	default:
		t.Fatal("expected a wake signal after enqueue")
	}
}
