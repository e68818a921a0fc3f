// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package focusdir

import (
	"testing"

	"github.com/cortesi/hotki-sub000/errors"
	"github.com/cortesi/hotki-sub000/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrefersAxisAlignedNeighbor(t *testing.T) {
	focus := geom.Rect{X: 0, Y: 0, W: 400, H: 400}
	candidates := []Candidate{
		{PID: 1, ID: 1, Z: 0, OnActiveSpace: true, Rect: geom.Rect{X: 400, Y: 0, W: 400, H: 400}},   // directly right
		{PID: 2, ID: 2, Z: 0, OnActiveSpace: true, Rect: geom.Rect{X: 400, Y: 600, W: 400, H: 400}}, // right but offset down
	}

	winner, ok := Resolve(DirRight, focus, candidates)
	require.True(t, ok)
	assert.Equal(t, uint32(1), winner.ID)
}

func TestResolveFiltersIneligibleCandidates(t *testing.T) {
	focus := geom.Rect{X: 0, Y: 0, W: 400, H: 400}
	candidates := []Candidate{
		{PID: 1, ID: 1, OnActiveSpace: false, Rect: geom.Rect{X: 400, Y: 0, W: 400, H: 400}},
		{PID: 2, ID: 2, OnActiveSpace: true, Layer: 1, Rect: geom.Rect{X: 400, Y: 0, W: 400, H: 400}},
		{PID: 3, ID: 3, OnActiveSpace: true, Focused: true, Rect: geom.Rect{X: 400, Y: 0, W: 400, H: 400}},
	}

	_, ok := Resolve(DirRight, focus, candidates)
	assert.False(t, ok)
}

func TestResolveOnlyConsidersAheadCandidates(t *testing.T) {
	focus := geom.Rect{X: 400, Y: 0, W: 400, H: 400}
	candidates := []Candidate{
		{PID: 1, ID: 1, OnActiveSpace: true, Rect: geom.Rect{X: 0, Y: 0, W: 400, H: 400}}, // to the left
	}

	_, ok := Resolve(DirRight, focus, candidates)
	assert.False(t, ok)
}

func TestResolveTieBreaksByLowerZ(t *testing.T) {
	focus := geom.Rect{X: 0, Y: 0, W: 200, H: 200}
	// Both candidates at the same score (same center offset); z breaks it.
	candidates := []Candidate{
		{PID: 5, ID: 5, Z: 2, OnActiveSpace: true, Rect: geom.Rect{X: 200, Y: 0, W: 200, H: 200}},
		{PID: 6, ID: 6, Z: 1, OnActiveSpace: true, Rect: geom.Rect{X: 200, Y: 0, W: 200, H: 200}},
	}

	winner, ok := Resolve(DirRight, focus, candidates)
	require.True(t, ok)
	assert.Equal(t, uint32(6), winner.ID)
}

func TestResolveOrErrorReturnsNoNeighbor(t *testing.T) {
	focus := geom.Rect{X: 0, Y: 0, W: 200, H: 200}
	_, err := ResolveOrError(DirUp, focus, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNoNeighbor))
}
