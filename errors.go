// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shadergraph

import "errors"

// Editor errors.
var (
	// ErrClosed is returned by operations on a closed Editor.
	ErrClosed = errors.New("shadergraph: editor closed")

	// ErrDuplicateName is returned when a library entry name is taken.
	ErrDuplicateName = errors.New("shadergraph: duplicate name")

	// ErrNotInLibrary is returned for a program, render target or texture
	// the editor does not own.
	ErrNotInLibrary = errors.New("shadergraph: not in library")

	// ErrScreenTarget is returned when the screen target would be deleted
	// or resized in attachments.
	ErrScreenTarget = errors.New("shadergraph: screen target is fixed")

	// ErrInvalidAttachments is returned for a render target with fewer than
	// one attachment.
	ErrInvalidAttachments = errors.New("shadergraph: render target needs at least one attachment")

	// ErrNoSources is returned when a program has no shader source.
	ErrNoSources = errors.New("shadergraph: program has no sources")
)
