// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hotkid is the composition root wiring the World, the
// Main-Thread Op Queue, the Placement Engine, the Raise Stabilizer, and
// the Focus-Dir Resolver into a running process. A single goroutine owns
// the main loop and is the only caller allowed to touch AX writes or
// drain the op queue.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cortesi/hotki-sub000/ax"
	"github.com/cortesi/hotki-sub000/config"
	"github.com/cortesi/hotki-sub000/focusdir"
	"github.com/cortesi/hotki-sub000/geom"
	"github.com/cortesi/hotki-sub000/mainops"
	"github.com/cortesi/hotki-sub000/place"
	"github.com/cortesi/hotki-sub000/raise"
	"github.com/cortesi/hotki-sub000/settle"
	"github.com/cortesi/hotki-sub000/world"
	"github.com/fsnotify/fsnotify"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (optional; defaults are used if omitted)")
	flag.Parse()

	settings := config.Default()
	if *configPath != "" {
		loaded, err := config.Open(*configPath)
		if err != nil {
			slog.Error("failed to load config, using defaults", "path", *configPath, "err", err)
		} else {
			settings = loaded
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// TODO: replace with a real CoreGraphics-backed Enumerator
	// (CGWindowListCopyWindowInfo) once that adapter exists; the World's
	// reconcile loop and every downstream component are already
	// enumerator-agnostic.
	enum := world.NewFakeEnumerator()
	w := world.Spawn(ctx, enum, settings.WorldCfg())

	adapter := &ax.Real{}
	counters := &place.Counters{}
	engine := &place.Engine{
		Adapter:  adapter,
		Clock:    settle.RealClock(),
		Counters: counters,
		Displays: func() []world.DisplayBounds {
			// World exposes no live display list; returning nil makes the
			// Placement Engine use each window's own current rect as the
			// visible frame its grid is computed in.
			return nil
		},
		ResolvePID: resolvePID(w),
	}

	queue := mainops.NewQueue()
	stabilizer := &raise.Stabilizer{Deps: raiseDeps(w, adapter)}
	exec := &executor{world: w, engine: engine, resolver: stabilizer}

	drainBudget := time.Duration(settings.MainOps.DrainBudgetMs) * time.Millisecond
	ticker := time.NewTicker(drainBudget)
	defer ticker.Stop()

	var reload <-chan time.Duration
	if *configPath != "" {
		reload = watchConfigDrainBudget(ctx, *configPath)
	}

	slog.Info("hotkid started", "drain_budget_ms", settings.MainOps.DrainBudgetMs)
	for {
		select {
		case <-ctx.Done():
			slog.Info("hotkid shutting down")
			return
		case <-queue.Wake():
			queue.Drain(drainBudget, exec)
		case <-ticker.C:
			queue.Drain(drainBudget, exec)
		case d := <-reload:
			drainBudget = d
			ticker.Reset(drainBudget)
			slog.Info("config reloaded", "drain_budget_ms", d.Milliseconds())
		}
	}
}

// watchConfigDrainBudget watches path for writes and re-reads its
// main_ops.drain_budget_ms on every change, the one Settings field that
// is safe to apply to an already-running loop without restarting the
// components it was used to construct. The world section is read once at
// startup to build the World; the place and raise sections are not applied
// by this process (placements use place.DefaultOptions and raises use
// fixed attempts and delay).
func watchConfigDrainBudget(ctx context.Context, path string) <-chan time.Duration {
	out := make(chan time.Duration)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("config watch disabled", "err", err)
		return out
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		slog.Warn("config watch disabled", "err", err)
		watcher.Close()
		return out
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				s, err := config.Open(path)
				if err != nil {
					slog.Warn("config reload failed, keeping prior settings", "err", err)
					continue
				}
				select {
				case out <- time.Duration(s.MainOps.DrainBudgetMs) * time.Millisecond:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("config watch error", "err", err)
			}
		}
	}()
	return out
}

// raiseDeps wires the Raise Stabilizer's platform seams against what this
// process actually has: the World's cached focus snapshot and the AX
// adapter's own window/title reads. A true CG-level frontmost read
// distinct from AX's notion of focus, and NSRunningApplication.activate,
// have no equivalent in the Accessibility-only adapter surface this
// module exposes; they fall back to the AX-derived approximation below
// until a dedicated AppKit adapter exists, which is sufficient for the
// stabilizer loop to still converge, just without an independent CG
// cross-check catching a narrower class of lag.
func raiseDeps(w *world.World, adapter ax.Adapter) raise.Deps {
	axHasTitle := func(pid int32, title string) bool {
		app, err := adapter.CreateAppElement(pid)
		if err != nil {
			return false
		}
		defer app.Release()
		wins, err := adapter.ListWindows(app)
		if err != nil {
			return false
		}
		for _, win := range wins {
			defer win.Release()
			if t, ok, _ := adapter.ReadString(win, ax.AXTitle); ok && t == title {
				return true
			}
		}
		return false
	}

	return raise.Deps{
		Frontmost: func() raise.FrontmostSnapshot {
			app, title, pid, ok := w.FocusedContext()
			_ = app
			return raise.FrontmostSnapshot{PID: pid, Title: title, Valid: ok}
		},
		Focus: func() raise.FocusSnapshot {
			app, title, pid, ok := w.FocusedContext()
			_ = app
			return raise.FocusSnapshot{PID: pid, Title: title, Valid: ok}
		},
		AXHasWindowTitle: axHasTitle,
		ResolveCGID: func(ctx context.Context, pid int32, title string, timeout time.Duration) (uint32, bool) {
			deadline := time.Now().Add(timeout)
			for {
				for _, win := range w.Snapshot() {
					if win.PID == pid && win.Title == title {
						return win.ID, true
					}
				}
				if time.Now().After(deadline) {
					return 0, false
				}
				time.Sleep(5 * time.Millisecond)
			}
		},
		RaiseByID: func(pid int32, id uint32) error {
			app, err := adapter.CreateAppElement(pid)
			if err != nil {
				return err
			}
			defer app.Release()
			wins, err := adapter.ListWindows(app)
			if err != nil {
				return err
			}
			for _, win := range wins {
				defer win.Release()
				if wid, ok, _ := adapter.WindowID(win); ok && wid == id {
					return adapter.SetBool(win, ax.AXMain, true)
				}
			}
			return nil
		},
		ActivatePID: func(pid int32) error {
			// TODO: NSRunningApplication.activate via an AppKit adapter;
			// the Accessibility API has no direct process-activation call.
			slog.Debug("activate (AX-only fallback, no-op)", "pid", pid)
			return nil
		},
		WindowCenter: func(pid int32, title string) (geom.Point, bool) {
			for _, win := range w.Snapshot() {
				if win.PID == pid && win.Title == title && win.HasPos {
					return geom.Point{X: win.Pos.X + win.Pos.W/2, Y: win.Pos.Y + win.Pos.H/2}, true
				}
			}
			return geom.Point{}, false
		},
		Click: func(center geom.Point) error {
			// TODO: CGEventPost-based MouseMoved/LeftMouseDown/LeftMouseUp
			// sequence; needs a HID event-source adapter this module
			// doesn't yet have.
			return nil
		},
		Clock: settle.RealClock(),
	}
}

// resolvePID answers mainops' and the Placement Engine's "which pid owns
// this window id" queries by scanning the current World snapshot.
func resolvePID(w *world.World) func(id uint32) (int32, bool) {
	return func(id uint32) (int32, bool) {
		for _, win := range w.Snapshot() {
			if win.ID == id {
				return win.PID, true
			}
		}
		return 0, false
	}
}

// executor implements mainops.Executor, turning queue ops into calls
// against the Placement Engine, the Raise Stabilizer, and the Focus-Dir
// Resolver. It is the only place in the process that needs to know about
// all four components at once.
type executor struct {
	world    *world.World
	engine   *place.Engine
	resolver *raise.Stabilizer
}

func (e *executor) ResolvePID(id uint32) (int32, bool) {
	return resolvePID(e.world)(id)
}

func (e *executor) ExecuteNonPlace(op mainops.Op) {
	switch op.Kind {
	case mainops.OpActivatePid:
		slog.Debug("activate", "pid", op.PID)
	case mainops.OpRaiseWindow:
		token := e.resolver.Begin()
		ok, err := e.resolver.Stabilize(context.Background(), op.PID, op.Title, 6, 50, token)
		if err != nil {
			slog.Error("raise failed", "pid", op.PID, "title", op.Title, "err", err)
			return
		}
		if !ok {
			slog.Warn("raise did not stabilize", "pid", op.PID, "title", op.Title)
		}
	case mainops.OpFocusDir:
		e.executeFocusDir(op)
	case mainops.OpFullscreenNative, mainops.OpFullscreenNonNative:
		slog.Debug("fullscreen", "id", op.ID, "native", op.Kind == mainops.OpFullscreenNative)
	}
}

func (e *executor) executeFocusDir(op mainops.Op) {
	key, ok := e.world.Focused()
	if !ok {
		slog.Warn("focus-dir: no focused window")
		return
	}
	focused, ok := e.world.Get(key)
	if !ok {
		return
	}
	var candidates []focusdir.Candidate
	for _, win := range e.world.Snapshot() {
		if win.Key() == key {
			continue
		}
		candidates = append(candidates, focusdir.Candidate{
			PID: win.PID, ID: win.ID, Title: win.Title, Z: win.Z, Rect: win.Pos,
			OnActiveSpace: win.OnActiveSpace, Layer: win.Layer, Focused: win.Focused,
		})
	}
	winner, err := focusdir.ResolveOrError(focusdir.Direction(op.FocusDir), focused.Pos, candidates)
	if err != nil {
		slog.Debug("focus-dir: no neighbor", "dir", op.FocusDir, "err", err)
		return
	}
	token := e.resolver.Begin()
	_, _ = e.resolver.Stabilize(context.Background(), winner.PID, winner.Title, 6, 50, token)
}

func (e *executor) ExecutePlacement(op mainops.Op) {
	var outcome place.PlacementOutcome
	var err error
	switch op.Kind {
	case mainops.OpPlaceGrid:
		outcome, err = e.engine.PlaceGridOpts(op.ID, op.Cols, op.Rows, op.Col, op.Row, op.Opts)
	case mainops.OpPlaceMoveGrid:
		outcome, err = e.engine.PlaceMoveGridOpts(op.ID, op.Cols, op.Rows, op.Dir, op.Opts)
	case mainops.OpPlaceGridFocused:
		outcome, err = e.engine.PlaceGridFocusedOpts(op.PID, op.Cols, op.Rows, op.Col, op.Row, op.Opts)
	default:
		return
	}
	if err != nil {
		slog.Error("placement failed", "op", op.Kind, "id", op.ID, "pid", op.PID, "err", err)
		return
	}
	if outcome.Verified && !outcome.Skipped {
		key, ok := e.world.Focused()
		if op.Kind == mainops.OpPlaceGridFocused {
			ok = ok && key.PID == op.PID
		} else {
			var pid int32
			pid, ok = e.ResolvePID(op.ID)
			key = world.WindowKey{PID: pid, ID: op.ID}
		}
		if ok {
			e.world.RecordFrame(key, outcome.FinalRect)
		}
	}
}
