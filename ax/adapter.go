// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ax defines the narrow Accessibility capability the Placement
// Engine, World, and Raise Stabilizer write and read through. It is
// deliberately a closed, two-variant interface (real darwin, fake) rather
// than an open plugin surface.
package ax

import "github.com/cortesi/hotki-sub000/geom"

// Attribute names, mirroring the Accessibility API's own attribute
// constants. They are plain strings (not a closed Go enum) because the
// real adapter passes them straight through to AXUIElementCopyAttributeValue.
const (
	AXPosition     = "AXPosition"
	AXSize         = "AXSize"
	AXMinimized    = "AXMinimized"
	AXFullScreen   = "AXFullScreen"
	AXZoomed       = "AXZoomed"
	AXRole         = "AXRole"
	AXSubrole      = "AXSubrole"
	AXTitle        = "AXTitle"
	AXFocused      = "AXFocused"
	AXMain         = "AXMain"
	AXWindowNumber = "AXWindowNumber"
)

// Handle is an opaque reference to one AX element (an application or a
// window). It is exclusively owned by whoever acquired it; Release MUST
// be called exactly once on every exit path, including error and
// role-skip paths. The unexported marker method confines valid
// implementations to this package and its platform variants.
type Handle interface {
	Release()
	isAXHandle()
}

// Adapter is the capability interface over the Accessibility API. Real
// and fake implementations both satisfy it; callers never branch on which
// variant they hold.
type Adapter interface {
	// CreateAppElement returns the top-level AX element for the
	// application with the given pid.
	CreateAppElement(pid int32) (Handle, error)

	// ListWindows returns the AX windows owned by app, in the order the
	// platform reports them.
	ListWindows(app Handle) ([]Handle, error)

	// FocusedWindow returns the focused window for pid, preferring
	// AXFocused, then AXMain, then the first window the platform lists
	// for pid; no CG-frontmost read is made. ok is false if no window
	// could be resolved.
	FocusedWindow(pid int32) (h Handle, ok bool, err error)

	// GetPoint reads a point-valued attribute (AXPosition).
	GetPoint(h Handle, attr string) (geom.Point, error)

	// GetSize reads a size-valued attribute (AXSize).
	GetSize(h Handle, attr string) (geom.Size, error)

	// Settable reports whether attr can be written on h. ok is false if
	// the settability could not be determined.
	Settable(h Handle, attr string) (settable bool, ok bool, err error)

	// SetPoint writes a point-valued attribute.
	SetPoint(h Handle, attr string, p geom.Point) error

	// SetSize writes a size-valued attribute.
	SetSize(h Handle, attr string, s geom.Size) error

	// ReadString reads a string-valued attribute (AXRole, AXSubrole,
	// AXTitle). ok is false if the attribute is absent.
	ReadString(h Handle, attr string) (val string, ok bool, err error)

	// ReadBool reads a bool-valued attribute (AXMinimized, AXFullScreen,
	// AXZoomed).
	ReadBool(h Handle, attr string) (val bool, ok bool, err error)

	// SetBool writes a bool-valued attribute.
	SetBool(h Handle, attr string, v bool) error

	// WindowID returns the CoreGraphics window number for h, preferring
	// a private path when available and falling back to AXWindowNumber.
	WindowID(h Handle) (id uint32, ok bool, err error)
}
