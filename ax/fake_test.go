// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ax

import (
	"testing"

	"github.com/cortesi/hotki-sub000/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeSetPointAndSize(t *testing.T) {
	f := NewFake()
	f.AddWindow(FakeWindowConfig{
		PID: 100, ID: 1, App: "Term", Title: "zsh",
		Pos:          geom.Rect{X: 0, Y: 0, W: 400, H: 300},
		SettablePos:  true,
		SettableSize: true,
	})

	app, err := f.CreateAppElement(100)
	require.NoError(t, err)
	defer app.Release()

	wins, err := f.ListWindows(app)
	require.NoError(t, err)
	require.Len(t, wins, 1)
	w := wins[0]
	defer w.Release()

	require.NoError(t, f.SetPoint(w, AXPosition, geom.Point{X: 10, Y: 20}))
	require.NoError(t, f.SetSize(w, AXSize, geom.Size{W: 200, H: 150}))

	cur, ok := f.CurrentRect(100, 1)
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X: 10, Y: 20, W: 200, H: 150}, cur)

	ops := f.Ops()
	require.Len(t, ops, 2)
	assert.Equal(t, "set_point", ops[0].Kind)
	assert.Equal(t, "set_size", ops[1].Kind)
	w.Release()
	app.Release()
	assert.Equal(t, 2, f.Released())
}

func TestFakeMinimumSizeRefusesShrink(t *testing.T) {
	f := NewFake()
	f.AddWindow(FakeWindowConfig{
		PID: 1, ID: 1,
		Pos:          geom.Rect{X: 0, Y: 0, W: 400, H: 300},
		Min:          geom.Size{W: 400, H: 300},
		SettablePos:  true,
		SettableSize: true,
	})
	app, _ := f.CreateAppElement(1)
	defer app.Release()
	wins, _ := f.ListWindows(app)
	w := wins[0]
	defer w.Release()

	require.NoError(t, f.SetSize(w, AXSize, geom.Size{W: 300, H: 200}))
	cur, _ := f.CurrentRect(1, 1)
	assert.Equal(t, 400.0, cur.W)
	assert.Equal(t, 300.0, cur.H)
}

func TestFakeIgnoredWhenMinimized(t *testing.T) {
	f := NewFake()
	f.AddWindow(FakeWindowConfig{
		PID: 1, ID: 1,
		Pos:          geom.Rect{X: 0, Y: 0, W: 400, H: 300},
		Minimized:    true,
		Response:     ApplyIgnoredWhenMinimized,
		SettablePos:  true,
		SettableSize: true,
	})
	app, _ := f.CreateAppElement(1)
	defer app.Release()
	wins, _ := f.ListWindows(app)
	w := wins[0]
	defer w.Release()

	require.NoError(t, f.SetPoint(w, AXPosition, geom.Point{X: 999, Y: 999}))
	cur, _ := f.CurrentRect(1, 1)
	assert.Equal(t, 0.0, cur.X)
}
