// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoGPU is returned when no GPU adapter is available.
	ErrNoGPU = errors.New("native: no GPU adapter available")

	// ErrNoHALProvider is returned when a device provider does not expose
	// its HAL device and queue.
	ErrNoHALProvider = errors.New("native: provider does not expose HAL types")

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("native: backend closed")

	// ErrUnknownResource is returned when an ID does not name a live resource.
	ErrUnknownResource = errors.New("native: unknown resource")

	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrNoEntryPoint is returned when a program has neither a compute entry
	// nor a vertex and fragment pair.
	ErrNoEntryPoint = errors.New("native: program has no usable entry point")

	// ErrModeUnsupported is returned when a dispatch mode has no pipeline
	// in the program.
	ErrModeUnsupported = errors.New("native: program cannot run in this mode")

	// ErrGPUTimeout is returned when submitted work does not finish in time.
	ErrGPUTimeout = errors.New("native: timed out waiting for GPU")
)
