// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settle

import (
	"testing"
	"time"

	"github.com/cortesi/hotki-sub000/ax"
	"github.com/cortesi/hotki-sub000/geom"
	"github.com/stretchr/testify/assert"
)

func fakeClock(tick *time.Duration) Clock {
	var now time.Time
	return Clock{
		Now: func() time.Time { return now },
		Sleep: func(d time.Duration) {
			now = now.Add(d)
			*tick += d
		},
	}
}

func TestWaitForAXFrameReachesTarget(t *testing.T) {
	f := ax.NewFake()
	f.AddWindow(ax.FakeWindowConfig{
		PID: 1, ID: 1,
		Pos:          geom.Rect{X: 0, Y: 0, W: 400, H: 300},
		SettablePos:  true,
		SettableSize: true,
	})
	app, _ := f.CreateAppElement(1)
	defer app.Release()
	wins, _ := f.ListWindows(app)
	h := wins[0]
	defer h.Release()

	target := geom.Rect{X: 10, Y: 10, W: 400, H: 300}
	require := f.SetPoint(h, ax.AXPosition, target.Pos())
	assert.NoError(t, require)

	var tick time.Duration
	res := WaitForAXFrame(f, h, ax.AXPosition, ax.AXSize, target, 2.0, 100*time.Millisecond, fakeClock(&tick))
	assert.True(t, res.Reached)
	assert.Equal(t, target, res.Best)
}

func TestWaitForAXFrameTimesOut(t *testing.T) {
	f := ax.NewFake()
	f.AddWindow(ax.FakeWindowConfig{
		PID: 1, ID: 1,
		Pos:          geom.Rect{X: 0, Y: 0, W: 400, H: 300},
		SettablePos:  true,
		SettableSize: true,
	})
	app, _ := f.CreateAppElement(1)
	defer app.Release()
	wins, _ := f.ListWindows(app)
	h := wins[0]
	defer h.Release()

	target := geom.Rect{X: 500, Y: 500, W: 400, H: 300}
	var tick time.Duration
	res := WaitForAXFrame(f, h, ax.AXPosition, ax.AXSize, target, 2.0, 10*time.Millisecond, fakeClock(&tick))
	assert.False(t, res.Reached)
	assert.Equal(t, geom.Rect{X: 0, Y: 0, W: 400, H: 300}, res.Best)
}
