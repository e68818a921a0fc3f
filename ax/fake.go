// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ax

import (
	"fmt"
	"sync"

	"github.com/cortesi/hotki-sub000/geom"
	hkerrors "github.com/cortesi/hotki-sub000/errors"
)

// FakeApplyResponse programs how the Fake adapter reacts to a write,
// simulating the platform behaviors the Placement Engine must tolerate.
type FakeApplyResponse int

const (
	// ApplyOK applies the write exactly as requested.
	ApplyOK FakeApplyResponse = iota
	// ApplyClampedToVisibleFrame clamps the written rect into the
	// window's configured visible frame before storing it.
	ApplyClampedToVisibleFrame
	// ApplyIgnoredWhenMinimized silently drops writes while the window's
	// AXMinimized bit is set.
	ApplyIgnoredWhenMinimized
	// ApplyRoundedToStep rounds every written component to the nearest
	// multiple of RoundStep.
	ApplyRoundedToStep
	// ApplyPartialAxisOnly applies only the PartialAxis component of a
	// combined position+size write, dropping the rest.
	ApplyPartialAxisOnly
)

// PartialAxis names which axis ApplyPartialAxisOnly retains.
type PartialAxis int

const (
	AxisNone PartialAxis = iota
	AxisX
	AxisY
	AxisW
	AxisH
)

// FakeOp records one call made against the Fake adapter, for test
// assertions about call order and arguments.
type FakeOp struct {
	Kind string // "set_point", "set_size", "set_bool", ...
	PID  int32
	ID   uint32
	Attr string
	X, Y float64
	W, H float64
	Bool bool
}

// FakeWindowConfig seeds one window's initial state and quirks in a Fake
// adapter.
type FakeWindowConfig struct {
	PID   int32
	ID    uint32
	App   string
	Title string
	Role  string
	Sub   string

	Pos  geom.Rect
	Min  geom.Size // platform minimum size; writes never verify smaller
	Max  geom.Size // zero means unbounded

	Minimized bool
	FullScreen bool
	Zoomed    bool

	SettablePos  bool
	SettableSize bool

	Response  FakeApplyResponse
	RoundStep float64
	Partial   PartialAxis

	// VisibleFrame bounds ApplyClampedToVisibleFrame; if zero, Pos is
	// used as an approximation.
	VisibleFrame geom.Rect
}

type fakeWindowState struct {
	cfg FakeWindowConfig
	cur geom.Rect
}

type fakeHandle struct {
	a         *Fake
	pid       int32
	id        uint32
	released  bool
	isAppRoot bool
}

func (h *fakeHandle) isAXHandle() {}

func (h *fakeHandle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	h.a.mu.Lock()
	h.a.released++
	h.a.mu.Unlock()
}

// Fake is an in-memory Adapter used by this module's own tests and by any
// downstream consumer that wants to exercise the Placement Engine or
// World without a live Accessibility session.
type Fake struct {
	mu sync.Mutex

	windows  map[windowKey]*fakeWindowState
	byPID    map[int32][]windowKey
	ops      []FakeOp
	released int

	// FocusedByPID optionally overrides which window id is reported as
	// focused for a pid; if absent, the first window configured for that
	// pid is treated as focused.
	FocusedByPID map[int32]uint32
}

type windowKey struct {
	pid int32
	id  uint32
}

// NewFake constructs an empty Fake adapter.
func NewFake() *Fake {
	return &Fake{
		windows:      map[windowKey]*fakeWindowState{},
		byPID:        map[int32][]windowKey{},
		FocusedByPID: map[int32]uint32{},
	}
}

// AddWindow registers a window with the given configuration.
func (f *Fake) AddWindow(cfg FakeWindowConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := windowKey{pid: cfg.PID, id: cfg.ID}
	f.windows[k] = &fakeWindowState{cfg: cfg, cur: cfg.Pos}
	f.byPID[cfg.PID] = append(f.byPID[cfg.PID], k)
}

// Ops returns a copy of the recorded op log.
func (f *Fake) Ops() []FakeOp {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeOp, len(f.ops))
	copy(out, f.ops)
	return out
}

// Released returns how many handles have been released so far, for
// leak-detection assertions.
func (f *Fake) Released() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

// CurrentRect returns the current applied rect for (pid, id).
func (f *Fake) CurrentRect(pid int32, id uint32) (geom.Rect, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[windowKey{pid: pid, id: id}]
	if !ok {
		return geom.Rect{}, false
	}
	return w.cur, true
}

func (f *Fake) recordOp(op FakeOp) {
	f.ops = append(f.ops, op)
}

func (f *Fake) CreateAppElement(pid int32) (Handle, error) {
	return &fakeHandle{a: f, pid: pid, isAppRoot: true}, nil
}

func (f *Fake) ListWindows(app Handle) ([]Handle, error) {
	h, ok := app.(*fakeHandle)
	if !ok {
		return nil, hkerrors.New(hkerrors.KindInvalidArgument, "ListWindows")
	}
	f.mu.Lock()
	keys := append([]windowKey(nil), f.byPID[h.pid]...)
	f.mu.Unlock()
	out := make([]Handle, 0, len(keys))
	for _, k := range keys {
		out = append(out, &fakeHandle{a: f, pid: k.pid, id: k.id})
	}
	return out, nil
}

func (f *Fake) FocusedWindow(pid int32) (Handle, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.FocusedByPID[pid]; ok {
		if _, exists := f.windows[windowKey{pid: pid, id: id}]; exists {
			return &fakeHandle{a: f, pid: pid, id: id}, true, nil
		}
	}
	keys := f.byPID[pid]
	if len(keys) == 0 {
		return nil, false, nil
	}
	return &fakeHandle{a: f, pid: keys[0].pid, id: keys[0].id}, true, nil
}

func (f *Fake) window(h Handle) (*fakeWindowState, *fakeHandle, error) {
	fh, ok := h.(*fakeHandle)
	if !ok {
		return nil, nil, hkerrors.New(hkerrors.KindInvalidArgument, "window")
	}
	w, ok := f.windows[windowKey{pid: fh.pid, id: fh.id}]
	if !ok {
		return nil, fh, hkerrors.New(hkerrors.KindElementGone, "window")
	}
	return w, fh, nil
}

func (f *Fake) GetPoint(h Handle, attr string) (geom.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, _, err := f.window(h)
	if err != nil {
		return geom.Point{}, err
	}
	return w.cur.Pos(), nil
}

func (f *Fake) GetSize(h Handle, attr string) (geom.Size, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, _, err := f.window(h)
	if err != nil {
		return geom.Size{}, err
	}
	return w.cur.Dims(), nil
}

func (f *Fake) Settable(h Handle, attr string) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, _, err := f.window(h)
	if err != nil {
		return false, false, err
	}
	switch attr {
	case AXPosition:
		return w.cfg.SettablePos, true, nil
	case AXSize:
		return w.cfg.SettableSize, true, nil
	default:
		return true, true, nil
	}
}

func (f *Fake) applyRect(w *fakeWindowState, next geom.Rect, writingPos, writingSize bool) geom.Rect {
	cfg := w.cfg
	if cfg.Response == ApplyIgnoredWhenMinimized && w.cfg.Minimized {
		return w.cur
	}
	if cfg.Response == ApplyPartialAxisOnly {
		out := w.cur
		switch cfg.Partial {
		case AxisX:
			out.X = next.X
		case AxisY:
			out.Y = next.Y
		case AxisW:
			out.W = next.W
		case AxisH:
			out.H = next.H
		}
		return out
	}
	if cfg.Min.W > 0 && next.W < cfg.Min.W {
		next.W = cfg.Min.W
	}
	if cfg.Min.H > 0 && next.H < cfg.Min.H {
		next.H = cfg.Min.H
	}
	if cfg.Max.W > 0 && next.W > cfg.Max.W {
		next.W = cfg.Max.W
	}
	if cfg.Max.H > 0 && next.H > cfg.Max.H {
		next.H = cfg.Max.H
	}
	if cfg.Response == ApplyClampedToVisibleFrame {
		vf := cfg.VisibleFrame
		if vf.W == 0 && vf.H == 0 {
			vf = cfg.Pos
		}
		next, _ = geom.ClampToBounds(next, vf)
	}
	if cfg.Response == ApplyRoundedToStep && cfg.RoundStep > 0 {
		round := func(v float64) float64 {
			return cfg.RoundStep * roundDiv(v, cfg.RoundStep)
		}
		next = geom.Rect{X: round(next.X), Y: round(next.Y), W: round(next.W), H: round(next.H)}
	}
	return next
}

func roundDiv(v, step float64) float64 {
	q := v / step
	f := int64(q)
	if q-float64(f) >= 0.5 {
		f++
	}
	return float64(f)
}

func (f *Fake) SetPoint(h Handle, attr string, p geom.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, fh, err := f.window(h)
	if err != nil {
		return err
	}
	f.recordOp(FakeOp{Kind: "set_point", PID: fh.pid, ID: fh.id, Attr: attr, X: p.X, Y: p.Y})
	next := w.cur
	next.X, next.Y = p.X, p.Y
	w.cur = f.applyRect(w, next, true, false)
	return nil
}

func (f *Fake) SetSize(h Handle, attr string, s geom.Size) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, fh, err := f.window(h)
	if err != nil {
		return err
	}
	f.recordOp(FakeOp{Kind: "set_size", PID: fh.pid, ID: fh.id, Attr: attr, W: s.W, H: s.H})
	next := w.cur
	next.W, next.H = s.W, s.H
	w.cur = f.applyRect(w, next, false, true)
	return nil
}

func (f *Fake) ReadString(h Handle, attr string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, _, err := f.window(h)
	if err != nil {
		return "", false, err
	}
	switch attr {
	case AXRole:
		if w.cfg.Role == "" {
			return "AXWindow", true, nil
		}
		return w.cfg.Role, true, nil
	case AXSubrole:
		return w.cfg.Sub, w.cfg.Sub != "", nil
	case AXTitle:
		return w.cfg.Title, true, nil
	default:
		return "", false, nil
	}
}

func (f *Fake) ReadBool(h Handle, attr string) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, _, err := f.window(h)
	if err != nil {
		return false, false, err
	}
	switch attr {
	case AXMinimized:
		return w.cfg.Minimized, true, nil
	case AXFullScreen:
		return w.cfg.FullScreen, true, nil
	case AXZoomed:
		return w.cfg.Zoomed, true, nil
	default:
		return false, false, nil
	}
}

func (f *Fake) SetBool(h Handle, attr string, v bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, fh, err := f.window(h)
	if err != nil {
		return err
	}
	f.recordOp(FakeOp{Kind: "set_bool", PID: fh.pid, ID: fh.id, Attr: attr, Bool: v})
	switch attr {
	case AXMinimized:
		w.cfg.Minimized = v
	case AXFullScreen:
		w.cfg.FullScreen = v
	case AXZoomed:
		w.cfg.Zoomed = v
	}
	return nil
}

func (f *Fake) WindowID(h Handle) (uint32, bool, error) {
	fh, ok := h.(*fakeHandle)
	if !ok {
		return 0, false, hkerrors.New(hkerrors.KindInvalidArgument, "WindowID")
	}
	return fh.id, true, nil
}

var _ Adapter = (*Fake)(nil)

func (k windowKey) String() string {
	return fmt.Sprintf("(%d,%d)", k.pid, k.id)
}
