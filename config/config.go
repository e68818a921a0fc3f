// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the TOML-encoded tunables that parameterize the
// World's polling/debounce behavior, the Placement Engine's verification
// tolerance and retry budget, the Raise Stabilizer's timing, and the
// Main-Thread Op Queue's drain budget, decoded directly with the TOML
// codec this module needs rather than through a generic multi-format
// Decoder/Encoder layer this module has no second format to justify.
package config

import (
	"fmt"
	"os"

	"github.com/cortesi/hotki-sub000/place"
	"github.com/cortesi/hotki-sub000/world"
	"github.com/pelletier/go-toml/v2"
)

// World holds the on-disk shape of world.Cfg.
type World struct {
	PollMsMin        int  `toml:"poll_ms_min"`
	PollMsMax        int  `toml:"poll_ms_max"`
	PollStepMs       int  `toml:"poll_step_ms"`
	CoalesceMs       int  `toml:"coalesce_ms"`
	IncludeOffscreen bool `toml:"include_offscreen"`
	AXWatchFrontmost bool `toml:"ax_watch_frontmost"`
}

// Place holds the on-disk shape of the Placement Engine's tunables.
type Place struct {
	VerifyEPS     float64 `toml:"verify_eps"`
	MaxAttempts   int     `toml:"max_attempts"`
	MaxSettleMs   int64   `toml:"max_settle_ms"`
	AllowSafePark bool    `toml:"allow_safe_park"`
}

// Raise holds the on-disk shape of the Raise Stabilizer's tunables.
type Raise struct {
	Attempts int `toml:"attempts"`
	DelayMs  int `toml:"delay_ms"`
}

// MainOps holds the on-disk shape of the Main-Thread Op Queue's tunables.
type MainOps struct {
	DrainBudgetMs int `toml:"drain_budget_ms"`
}

// Settings is the root TOML document: every tunable this module exposes,
// grouped by the component it configures.
type Settings struct {
	World   World   `toml:"world"`
	Place   Place   `toml:"place"`
	Raise   Raise   `toml:"raise"`
	MainOps MainOps `toml:"main_ops"`
}

// Default returns the documented defaults. The World and Place sections
// come from world.DefaultCfg and place's DefaultOptions/DefaultRetryLimits;
// the Raise and MainOps sections are literals in this function.
func Default() Settings {
	wc := world.DefaultCfg()
	rl := place.DefaultRetryLimits()
	po := place.DefaultOptions()
	return Settings{
		World: World{
			PollMsMin:        wc.PollMsMin,
			PollMsMax:        wc.PollMsMax,
			PollStepMs:       wc.PollStepMs,
			CoalesceMs:       wc.CoalesceMs,
			IncludeOffscreen: wc.IncludeOffscreen,
			AXWatchFrontmost: wc.AXWatchFrontmost,
		},
		Place: Place{
			VerifyEPS:     po.VerifyEPS,
			MaxAttempts:   rl.MaxAttempts,
			MaxSettleMs:   rl.MaxSettleMs,
			AllowSafePark: po.AllowSafePark,
		},
		Raise:   Raise{Attempts: 6, DelayMs: 50},
		MainOps: MainOps{DrainBudgetMs: 30},
	}
}

// WorldCfg projects Settings onto a world.Cfg.
func (s Settings) WorldCfg() world.Cfg {
	return world.Cfg{
		PollMsMin:        s.World.PollMsMin,
		PollMsMax:        s.World.PollMsMax,
		PollStepMs:       s.World.PollStepMs,
		CoalesceMs:       s.World.CoalesceMs,
		IncludeOffscreen: s.World.IncludeOffscreen,
		AXWatchFrontmost: s.World.AXWatchFrontmost,
	}
}

// PlaceOptions projects Settings onto a place.PlaceAttemptOptions, keeping
// every field DefaultOptions doesn't expose as a tunable (ForceSecondAttempt,
// PosFirstOnly, ForceShrinkMoveGrow, IgnoreMoveIfMinimized) at its zero
// value — those are per-call test/diagnostic knobs, not user settings.
func (s Settings) PlaceOptions() place.PlaceAttemptOptions {
	opts := place.DefaultOptions()
	opts.VerifyEPS = s.Place.VerifyEPS
	opts.Retry = place.RetryLimits{MaxAttempts: s.Place.MaxAttempts, MaxSettleMs: s.Place.MaxSettleMs}
	opts.AllowSafePark = s.Place.AllowSafePark
	return opts
}

// ReadBytes decodes Settings from TOML-encoded data.
func ReadBytes(data []byte) (Settings, error) {
	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: decode: %w", err)
	}
	return s, nil
}

// Open reads Settings from filename, starting from Default so a partial
// file only overrides the fields it names.
func Open(filename string) (Settings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Settings{}, fmt.Errorf("config: open %s: %w", filename, err)
	}
	return ReadBytes(data)
}

// WriteBytes encodes s as TOML.
func WriteBytes(s Settings) ([]byte, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return data, nil
}

// Save writes s to filename as TOML.
func Save(s Settings, filename string) error {
	data, err := WriteBytes(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("config: save %s: %w", filename, err)
	}
	return nil
}
