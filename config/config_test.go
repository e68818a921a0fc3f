// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoundTripsThroughTOML(t *testing.T) {
	want := Default()
	data, err := WriteBytes(want)
	require.NoError(t, err)

	got, err := ReadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPartialFileOverridesOnlyNamedFields(t *testing.T) {
	data := []byte("[world]\npoll_ms_min = 20\n")
	s, err := ReadBytes(data)
	require.NoError(t, err)

	assert.Equal(t, 20, s.World.PollMsMin)
	assert.Equal(t, Default().World.PollMsMax, s.World.PollMsMax)
	assert.Equal(t, Default().Place, s.Place)
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hotki.toml")

	want := Default()
	want.Raise.Attempts = 9
	require.NoError(t, Save(want, path))

	got, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWorldCfgAndPlaceOptionsProjection(t *testing.T) {
	s := Default()
	wc := s.WorldCfg()
	assert.Equal(t, s.World.PollMsMin, wc.PollMsMin)
	assert.Equal(t, s.World.CoalesceMs, wc.CoalesceMs)

	po := s.PlaceOptions()
	assert.Equal(t, s.Place.VerifyEPS, po.VerifyEPS)
	assert.Equal(t, s.Place.MaxAttempts, po.Retry.MaxAttempts)
}
