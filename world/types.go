// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package world implements the authoritative, poll-and-debounce
// window-state service: it reconciles window enumeration with
// Accessibility-derived focus and titles, maintains z-order and display
// mapping, and streams Added/Updated/Removed/FocusChanged events to any
// number of subscribers.
package world

import (
	"time"

	"github.com/cortesi/hotki-sub000/geom"
)

// WindowKey is the stable identity of a window for the lifetime of its
// process: pid plus the CoreGraphics window number.
type WindowKey struct {
	PID int32
	ID  uint32
}

// SpaceID identifies a macOS Space (virtual desktop).
type SpaceID uint64

// DisplayID identifies a physical display.
type DisplayID uint32

// WorldWindow is a snapshot of one window as of the most recent reconcile
// pass that observed it.
type WorldWindow struct {
	App   string
	Title string
	PID   int32
	ID    uint32

	Pos   geom.Rect
	HasPos bool

	Layer int32
	Z     uint32

	Space         SpaceID
	HasSpace      bool
	OnActiveSpace bool
	IsOnScreen    bool

	DisplayID    DisplayID
	HasDisplayID bool

	Focused bool

	LastSeen time.Time
	SeenSeq  uint64
}

// Key returns w's WindowKey.
func (w WorldWindow) Key() WindowKey {
	return WindowKey{PID: w.PID, ID: w.ID}
}

// PermissionState is the tri-state result of a permission check.
type PermissionState int

const (
	PermissionUnknown PermissionState = iota
	PermissionGranted
	PermissionDenied
)

func (p PermissionState) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Capabilities reports which OS permissions this process currently holds.
type Capabilities struct {
	Accessibility   PermissionState
	ScreenRecording PermissionState
}

// Cfg configures the World actor's polling and debouncing behavior.
type Cfg struct {
	PollMsMin        int
	PollMsMax        int
	PollStepMs       int
	CoalesceMs       int
	IncludeOffscreen bool
	AXWatchFrontmost bool
}

// DefaultCfg returns the World's documented default configuration.
func DefaultCfg() Cfg {
	return Cfg{
		PollMsMin:        100,
		PollMsMax:        1000,
		PollStepMs:       50,
		CoalesceMs:       50,
		IncludeOffscreen: false,
		AXWatchFrontmost: false,
	}
}

// FocusSnapshot is a cheap, lock-free-readable cache of the current focus
// context for non-main-thread callers.
type FocusSnapshot struct {
	App   string
	Title string
	PID   int32
	Valid bool
}

// DisplayBounds is one display's bounds in global screen coordinates.
type DisplayBounds struct {
	ID DisplayID
	geom.Rect
}

// WorldStatus carries cheap diagnostics about the actor's recent activity.
type WorldStatus struct {
	WindowsCount  int
	Focused       WindowKey
	HasFocused    bool
	LastTickMs    int64
	SeenSeq       uint64
	CurrentPollMs int
	DebounceCache int
	Capabilities  Capabilities
}

// WindowDelta records which fields changed between two observations of the
// same window, for diagnostics attached to an Updated event.
type WindowDelta struct {
	Title, Layer, Pos, Z, DisplayID, OnActiveSpace, Focused bool
}

// Any reports whether any field changed.
func (d WindowDelta) Any() bool {
	return d.Title || d.Layer || d.Pos || d.Z || d.DisplayID || d.OnActiveSpace || d.Focused
}

// FocusChange describes a focus transition, carried by a FocusChanged
// event. HasKey is false when focus was lost entirely.
type FocusChange struct {
	Key     WindowKey
	HasKey  bool
	App     string
	Title   string
	PID     int32
}
