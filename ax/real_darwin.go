// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin

package ax

/*
#cgo CFLAGS: -x objective-c -Wno-deprecated-declarations
#cgo LDFLAGS: -framework ApplicationServices -framework Cocoa
#import <ApplicationServices/ApplicationServices.h>
#import <Cocoa/Cocoa.h>

AXUIElementRef hk_app_element(pid_t pid);
uintptr_t hk_copy_windows(AXUIElementRef app, uintptr_t *outLen);
AXUIElementRef hk_window_at(uintptr_t arr, uintptr_t idx);
void hk_release_array(uintptr_t arr, uintptr_t len);
int hk_get_point(AXUIElementRef el, const char *attr, double *x, double *y);
int hk_get_size(AXUIElementRef el, const char *attr, double *w, double *h);
int hk_settable(AXUIElementRef el, const char *attr, bool *out);
int hk_set_point(AXUIElementRef el, const char *attr, double x, double y);
int hk_set_size(AXUIElementRef el, const char *attr, double w, double h);
int hk_get_string(AXUIElementRef el, const char *attr, char *buf, int buflen);
int hk_get_bool(AXUIElementRef el, const char *attr, bool *out);
int hk_set_bool(AXUIElementRef el, const char *attr, bool v);
int hk_window_number(AXUIElementRef el, uint32_t *out);
void hk_release_element(AXUIElementRef el);
*/
import "C"

import (
	"unsafe"

	hkerrors "github.com/cortesi/hotki-sub000/errors"
	"github.com/cortesi/hotki-sub000/geom"
)

// Real is the darwin Accessibility adapter. It wraps the AXUIElementRef
// API through the cgo helpers declared above; every Handle it hands out
// owns exactly one retained AXUIElementRef, released by Release.
type Real struct{}

// NewReal constructs the darwin Accessibility adapter.
func NewReal() *Real { return &Real{} }

type realHandle struct {
	ref      C.AXUIElementRef
	released bool
}

func (h *realHandle) isAXHandle() {}

func (h *realHandle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	C.hk_release_element(h.ref)
}

func cAttr(attr string) *C.char {
	return C.CString(attr)
}

func axErr(op string, code C.int) error {
	if code == 0 {
		return nil
	}
	return hkerrors.Wrap(hkerrors.KindAxCall, op, &axCallError{code: int(code)})
}

type axCallError struct{ code int }

func (e *axCallError) Error() string { return "ax call failed" }

func (r *Real) CreateAppElement(pid int32) (Handle, error) {
	ref := C.hk_app_element(C.pid_t(pid))
	if ref == 0 {
		return nil, hkerrors.New(hkerrors.KindNotFound, "CreateAppElement")
	}
	return &realHandle{ref: ref}, nil
}

func (r *Real) ListWindows(app Handle) ([]Handle, error) {
	h, ok := app.(*realHandle)
	if !ok {
		return nil, hkerrors.New(hkerrors.KindInvalidArgument, "ListWindows")
	}
	var n C.uintptr_t
	arr := C.hk_copy_windows(h.ref, &n)
	defer C.hk_release_array(arr, n)
	out := make([]Handle, 0, int(n))
	for i := C.uintptr_t(0); i < n; i++ {
		ref := C.hk_window_at(arr, i)
		out = append(out, &realHandle{ref: ref})
	}
	return out, nil
}

// boolAttr reads a bool-valued attribute on a realHandle directly (rather
// than through ReadBool's Handle-interface indirection), returning false
// if the attribute is absent or the call fails.
func (r *Real) boolAttr(h *realHandle, attr string) bool {
	cattr := cAttr(attr)
	defer C.free(unsafe.Pointer(cattr))
	var out C.bool
	if code := C.hk_get_bool(h.ref, cattr, &out); code != 0 {
		return false
	}
	return bool(out)
}

// findWindowWithBoolAttr returns the first window in wins with attr set,
// releasing every other window's handle since only one handle survives to
// the caller.
func (r *Real) findWindowWithBoolAttr(wins []Handle, attr string) (Handle, bool) {
	for i, w := range wins {
		rh := w.(*realHandle)
		if r.boolAttr(rh, attr) {
			for j, other := range wins {
				if j != i {
					other.Release()
				}
			}
			return w, true
		}
	}
	return nil, false
}

// FocusedWindow resolves pid's focused window, preferring AXFocused, then
// AXMain, then the platform's own window order as a last resort.
func (r *Real) FocusedWindow(pid int32) (Handle, bool, error) {
	app, err := r.CreateAppElement(pid)
	if err != nil {
		return nil, false, err
	}
	defer app.Release()

	wins, err := r.ListWindows(app)
	if err != nil {
		return nil, false, err
	}
	if len(wins) == 0 {
		return nil, false, nil
	}
	if h, ok := r.findWindowWithBoolAttr(wins, AXFocused); ok {
		return h, true, nil
	}
	if h, ok := r.findWindowWithBoolAttr(wins, AXMain); ok {
		return h, true, nil
	}
	for _, w := range wins[1:] {
		w.Release()
	}
	return wins[0], true, nil
}

func (r *Real) GetPoint(h Handle, attr string) (geom.Point, error) {
	rh, ok := h.(*realHandle)
	if !ok {
		return geom.Point{}, hkerrors.New(hkerrors.KindInvalidArgument, "GetPoint")
	}
	cattr := cAttr(attr)
	defer C.free(unsafe.Pointer(cattr))
	var x, y C.double
	if code := C.hk_get_point(rh.ref, cattr, &x, &y); code != 0 {
		return geom.Point{}, axErr("GetPoint", code)
	}
	return geom.Point{X: float64(x), Y: float64(y)}, nil
}

func (r *Real) GetSize(h Handle, attr string) (geom.Size, error) {
	rh, ok := h.(*realHandle)
	if !ok {
		return geom.Size{}, hkerrors.New(hkerrors.KindInvalidArgument, "GetSize")
	}
	cattr := cAttr(attr)
	defer C.free(unsafe.Pointer(cattr))
	var w, ht C.double
	if code := C.hk_get_size(rh.ref, cattr, &w, &ht); code != 0 {
		return geom.Size{}, axErr("GetSize", code)
	}
	return geom.Size{W: float64(w), H: float64(ht)}, nil
}

func (r *Real) Settable(h Handle, attr string) (bool, bool, error) {
	rh, ok := h.(*realHandle)
	if !ok {
		return false, false, hkerrors.New(hkerrors.KindInvalidArgument, "Settable")
	}
	cattr := cAttr(attr)
	defer C.free(unsafe.Pointer(cattr))
	var out C.bool
	if code := C.hk_settable(rh.ref, cattr, &out); code != 0 {
		return false, false, axErr("Settable", code)
	}
	return bool(out), true, nil
}

func (r *Real) SetPoint(h Handle, attr string, p geom.Point) error {
	rh, ok := h.(*realHandle)
	if !ok {
		return hkerrors.New(hkerrors.KindInvalidArgument, "SetPoint")
	}
	cattr := cAttr(attr)
	defer C.free(unsafe.Pointer(cattr))
	return axErr("SetPoint", C.hk_set_point(rh.ref, cattr, C.double(p.X), C.double(p.Y)))
}

func (r *Real) SetSize(h Handle, attr string, s geom.Size) error {
	rh, ok := h.(*realHandle)
	if !ok {
		return hkerrors.New(hkerrors.KindInvalidArgument, "SetSize")
	}
	cattr := cAttr(attr)
	defer C.free(unsafe.Pointer(cattr))
	return axErr("SetSize", C.hk_set_size(rh.ref, cattr, C.double(s.W), C.double(s.H)))
}

func (r *Real) ReadString(h Handle, attr string) (string, bool, error) {
	rh, ok := h.(*realHandle)
	if !ok {
		return "", false, hkerrors.New(hkerrors.KindInvalidArgument, "ReadString")
	}
	cattr := cAttr(attr)
	defer C.free(unsafe.Pointer(cattr))
	buf := make([]C.char, 1024)
	code := C.hk_get_string(rh.ref, cattr, &buf[0], C.int(len(buf)))
	if code != 0 {
		return "", false, nil
	}
	return C.GoString(&buf[0]), true, nil
}

func (r *Real) ReadBool(h Handle, attr string) (bool, bool, error) {
	rh, ok := h.(*realHandle)
	if !ok {
		return false, false, hkerrors.New(hkerrors.KindInvalidArgument, "ReadBool")
	}
	cattr := cAttr(attr)
	defer C.free(unsafe.Pointer(cattr))
	var out C.bool
	if code := C.hk_get_bool(rh.ref, cattr, &out); code != 0 {
		return false, false, nil
	}
	return bool(out), true, nil
}

func (r *Real) SetBool(h Handle, attr string, v bool) error {
	rh, ok := h.(*realHandle)
	if !ok {
		return hkerrors.New(hkerrors.KindInvalidArgument, "SetBool")
	}
	cattr := cAttr(attr)
	defer C.free(unsafe.Pointer(cattr))
	return axErr("SetBool", C.hk_set_bool(rh.ref, cattr, C.bool(v)))
}

func (r *Real) WindowID(h Handle) (uint32, bool, error) {
	rh, ok := h.(*realHandle)
	if !ok {
		return 0, false, hkerrors.New(hkerrors.KindInvalidArgument, "WindowID")
	}
	var out C.uint32_t
	if code := C.hk_window_number(rh.ref, &out); code != 0 {
		return 0, false, nil
	}
	return uint32(out), true, nil
}

var _ Adapter = (*Real)(nil)
