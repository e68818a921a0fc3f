// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApproxEq(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 100, H: 100}
	b := Rect{X: 0.5, Y: -0.5, W: 100.4, H: 99.6}
	assert.True(t, ApproxEq(a, b, 1.0))
	assert.False(t, ApproxEq(a, b, 0.1))
}

func TestOneAxisOff(t *testing.T) {
	want := Rect{X: 0, Y: 0, W: 400, H: 300}
	got := Rect{X: 40, Y: 0, W: 400, H: 300}
	axis, delta, ok := OneAxisOff(got, want, 1.0)
	assert.True(t, ok)
	assert.Equal(t, "x", axis)
	assert.Equal(t, -40.0, delta)

	got2 := Rect{X: 40, Y: 40, W: 400, H: 300}
	_, _, ok2 := OneAxisOff(got2, want, 1.0)
	assert.False(t, ok2)
}

func TestGridCellPartitionLaw(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, W: 1920, H: 1007}
	for _, dims := range [][2]int{{2, 2}, {3, 2}, {4, 3}, {7, 5}} {
		cols, rows := dims[0], dims[1]
		var totalArea float64
		for col := 0; col < cols; col++ {
			for row := 0; row < rows; row++ {
				cell := GridCell(bounds, cols, rows, col, row)
				assert.GreaterOrEqual(t, cell.X, bounds.X)
				assert.GreaterOrEqual(t, cell.Y, bounds.Y)
				assert.LessOrEqual(t, cell.X+cell.W, bounds.X+bounds.W+1e-9)
				assert.LessOrEqual(t, cell.Y+cell.H, bounds.Y+bounds.H+1e-9)
				totalArea += cell.W * cell.H
			}
		}
		assert.InDelta(t, bounds.W*bounds.H, totalArea, 1e-6)
	}
}

func TestGridCellClampsOutOfRangeIndices(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, W: 1000, H: 800}
	want := GridCell(bounds, 3, 2, 2, 1)

	assert.Equal(t, want, GridCell(bounds, 3, 2, 5, 1))
	assert.Equal(t, want, GridCell(bounds, 3, 2, 2, 9))
	assert.Equal(t, GridCell(bounds, 3, 2, 0, 0), GridCell(bounds, 3, 2, -1, -4))
}

func TestClampToBounds(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, W: 1000, H: 800}
	r := Rect{X: -10, Y: 790, W: 200, H: 200}
	out, flags := ClampToBounds(r, bounds)
	assert.True(t, flags.Left)
	assert.True(t, flags.Bottom)
	assert.Equal(t, "left,bottom", flags.String())
	assert.Equal(t, 0.0, out.X)
	assert.Equal(t, bounds.H-out.H, out.Y)
}

func TestDefaultEPS(t *testing.T) {
	assert.Equal(t, 2.0, DefaultEPS(1.0))
	assert.Equal(t, 4.0, DefaultEPS(2.0))
	assert.Equal(t, 2.0, DefaultEPS(0.1))
}

func TestComponentMax(t *testing.T) {
	observed := Rect{X: 10, Y: 10, W: 300, H: 50}
	target := Rect{X: 10, Y: 10, W: 200, H: 200}
	anchor := ComponentMax(observed, target)
	assert.Equal(t, 300.0, anchor.W)
	assert.Equal(t, 200.0, anchor.H)
}
