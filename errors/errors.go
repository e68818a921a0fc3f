// Copyright (c) 2026, Hotki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors provides the error handling helpers used throughout
// this module, plus the shared Kind taxonomy that every component's
// errors are classified under.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
)

// Log takes the given error and logs it if it is non-nil.
// The intended usage is:
//
//	errors.Log(MyFunc(v))
//	// or
//	return errors.Log(MyFunc(v))
func Log(err error) error {
	if err != nil {
		slog.Error(err.Error() + " | " + CallerInfo())
	}
	return err
}

// Log1 takes the given value and error and returns the value if
// the error is nil, and logs the error and returns a zero value
// if the error is non-nil. The intended usage is:
//
//	a := errors.Log1(MyFunc(v))
func Log1[T any](v T, err error) T {
	if err != nil {
		slog.Error(err.Error() + " | " + CallerInfo())
		var zero T
		return zero
	}
	return v
}

// Must takes the given error and panics if it is non-nil.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 takes the given value and error and returns the value if
// the error is nil, and panics if the error is non-nil.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// CallerInfo returns string information about the caller
// of the function that called CallerInfo.
func CallerInfo() string {
	pc, file, line, _ := runtime.Caller(2)
	return runtime.FuncForPC(pc).Name() + " " + file + ":" + strconv.Itoa(line)
}

// Kind classifies an *Error by what kind of failure it represents,
// rather than by which package raised it. Callers should generally
// switch on Kind, not on the concrete error type.
type Kind int

const (
	// KindUnknown is the zero value; it should not be produced deliberately.
	KindUnknown Kind = iota
	// KindPermissionDenied means the process lacks Accessibility or
	// Screen Recording permission for the requested operation.
	KindPermissionDenied
	// KindElementGone means an AX element reference is stale; the window
	// or element it referred to has been destroyed or reparented.
	KindElementGone
	// KindTimeout means an operation did not complete within its deadline
	// (a settle wait, a debounce window, a retry budget).
	KindTimeout
	// KindUnsupportedPlatform means the calling build does not have a real
	// platform adapter (e.g. the darwin-only AX adapter on a non-darwin
	// build).
	KindUnsupportedPlatform
	// KindVerificationFailed means a placement or focus change was applied
	// but did not verify against the expected post-condition.
	KindVerificationFailed
	// KindInvalidArgument means the caller supplied an out-of-range or
	// otherwise invalid argument (e.g. a zero-sized grid).
	KindInvalidArgument
	// KindNotFound means a window, display, or key lookup found nothing.
	KindNotFound
	// KindMainThread means an operation that must run on the main
	// goroutine was invoked off it.
	KindMainThread
	// KindOffActiveSpace means the target window is not on the active
	// space; placement and raise refuse to proceed.
	KindOffActiveSpace
	// KindAxCall means an underlying Accessibility call failed; the
	// wrapped cause carries the platform's numeric code for diagnostics.
	KindAxCall
	// KindNoNeighbor means the Focus-Dir Resolver found no candidate in
	// the requested direction; a non-fatal diagnostic.
	KindNoNeighbor
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission_denied"
	case KindElementGone:
		return "element_gone"
	case KindTimeout:
		return "timeout"
	case KindUnsupportedPlatform:
		return "unsupported_platform"
	case KindVerificationFailed:
		return "verification_failed"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindMainThread:
		return "main_thread"
	case KindOffActiveSpace:
		return "off_active_space"
	case KindAxCall:
		return "ax_call"
	case KindNoNeighbor:
		return "no_neighbor"
	default:
		return "unknown"
	}
}

// Error is the shared error representation used across every package in
// this module. It carries a Kind for programmatic dispatch, an Op naming
// the failing operation, and an optional wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an *Error with the given Kind and Op and no wrapped cause.
func New(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op}
}

// Wrap constructs an *Error with the given Kind, Op, and wrapped cause.
// If err is nil, Wrap returns nil.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is an *Error of the given Kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
