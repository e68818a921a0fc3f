// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !darwin

package ax

import (
	"github.com/cortesi/hotki-sub000/geom"
	hkerrors "github.com/cortesi/hotki-sub000/errors"
)

// Real is the non-darwin stand-in for the real Accessibility adapter. It
// is kept so the module type-checks and its fake-backed test suite still
// builds on non-darwin hosts; every method fails with
// KindUnsupportedPlatform. The darwin build tag selects the cgo-backed
// implementation in real_darwin.go instead.
type Real struct{}

// NewReal constructs the non-darwin stub adapter.
func NewReal() *Real { return &Real{} }

func (r *Real) unsupported(op string) error {
	return hkerrors.New(hkerrors.KindUnsupportedPlatform, op)
}

func (r *Real) CreateAppElement(pid int32) (Handle, error) { return nil, r.unsupported("CreateAppElement") }
func (r *Real) ListWindows(app Handle) ([]Handle, error)   { return nil, r.unsupported("ListWindows") }
func (r *Real) FocusedWindow(pid int32) (Handle, bool, error) {
	return nil, false, r.unsupported("FocusedWindow")
}
func (r *Real) GetPoint(h Handle, attr string) (geom.Point, error) {
	return geom.Point{}, r.unsupported("GetPoint")
}
func (r *Real) GetSize(h Handle, attr string) (geom.Size, error) {
	return geom.Size{}, r.unsupported("GetSize")
}
func (r *Real) Settable(h Handle, attr string) (bool, bool, error) {
	return false, false, r.unsupported("Settable")
}
func (r *Real) SetPoint(h Handle, attr string, p geom.Point) error { return r.unsupported("SetPoint") }
func (r *Real) SetSize(h Handle, attr string, s geom.Size) error   { return r.unsupported("SetSize") }
func (r *Real) ReadString(h Handle, attr string) (string, bool, error) {
	return "", false, r.unsupported("ReadString")
}
func (r *Real) ReadBool(h Handle, attr string) (bool, bool, error) {
	return false, false, r.unsupported("ReadBool")
}
func (r *Real) SetBool(h Handle, attr string, v bool) error { return r.unsupported("SetBool") }
func (r *Real) WindowID(h Handle) (uint32, bool, error)     { return 0, false, r.unsupported("WindowID") }

var _ Adapter = (*Real)(nil)
