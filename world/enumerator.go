// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"context"
	"sync"

	"github.com/cortesi/hotki-sub000/geom"
)

// WindowInfo is one entry from the window enumerator: the raw,
// pre-reconciliation facts the OS reports about a window.
type WindowInfo struct {
	App   string
	Title string
	PID   int32
	ID    uint32

	Pos    geom.Rect
	HasPos bool

	Layer int32

	Space    SpaceID
	HasSpace bool

	Focused       bool
	IsOnScreen    bool
	OnActiveSpace bool
}

// Enumerator is the window-enumeration contract consumed from the OS: a
// lazy, finite, non-restartable sequence of WindowInfo that MUST be
// consumed in full within one reconcile pass. In Go this is expressed as
// a single returned slice rather than a generator/iterator, since the
// World always wants the entire pass anyway.
type Enumerator interface {
	// ListWindows returns windows ordered frontmost-first.
	ListWindows(ctx context.Context) ([]WindowInfo, error)
	// Displays returns the current display layout.
	Displays(ctx context.Context) ([]DisplayBounds, error)
	// Capabilities reports the process's current permission state.
	Capabilities(ctx context.Context) (Capabilities, error)
	// FrontmostPID returns the pid of the frontmost application, if any.
	FrontmostPID(ctx context.Context) (int32, bool, error)
	// FocusedWindowID returns the window id the given pid's application
	// reports as focused via Accessibility (AXFocusedWindow/AXMain), used
	// only when Capabilities().Accessibility == PermissionGranted.
	FocusedWindowID(ctx context.Context, pid int32) (id uint32, title string, ok bool, err error)
}

// FakeEnumerator is an in-memory Enumerator for tests.
type FakeEnumerator struct {
	mu sync.Mutex

	windows      []WindowInfo
	displays     []DisplayBounds
	caps         Capabilities
	frontmostPID int32
	hasFrontmost bool
	focusedIDs   map[int32]uint32
	focusedTitle map[int32]string
}

// NewFakeEnumerator constructs an empty FakeEnumerator with Accessibility
// and screen-recording capabilities granted by default.
func NewFakeEnumerator() *FakeEnumerator {
	return &FakeEnumerator{
		caps: Capabilities{
			Accessibility:   PermissionGranted,
			ScreenRecording: PermissionGranted,
		},
		focusedIDs:   map[int32]uint32{},
		focusedTitle: map[int32]string{},
	}
}

func (f *FakeEnumerator) SetWindows(windows []WindowInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append([]WindowInfo(nil), windows...)
}

func (f *FakeEnumerator) SetDisplays(displays []DisplayBounds) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.displays = append([]DisplayBounds(nil), displays...)
}

func (f *FakeEnumerator) SetCapabilities(c Capabilities) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.caps = c
}

func (f *FakeEnumerator) SetFrontmostPID(pid int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frontmostPID = pid
	f.hasFrontmost = true
}

func (f *FakeEnumerator) SetFocusedWindow(pid int32, id uint32, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focusedIDs[pid] = id
	f.focusedTitle[pid] = title
}

func (f *FakeEnumerator) ListWindows(ctx context.Context) ([]WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]WindowInfo(nil), f.windows...), nil
}

func (f *FakeEnumerator) Displays(ctx context.Context) ([]DisplayBounds, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DisplayBounds(nil), f.displays...), nil
}

func (f *FakeEnumerator) Capabilities(ctx context.Context) (Capabilities, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.caps, nil
}

func (f *FakeEnumerator) FrontmostPID(ctx context.Context) (int32, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frontmostPID, f.hasFrontmost, nil
}

func (f *FakeEnumerator) FocusedWindowID(ctx context.Context, pid int32) (uint32, string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.focusedIDs[pid]
	if !ok {
		return 0, "", false, nil
	}
	return id, f.focusedTitle[pid], true, nil
}

var _ Enumerator = (*FakeEnumerator)(nil)
