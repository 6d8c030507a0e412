// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import "errors"

var (
	// ErrNodeNotFound is returned when a NodeID does not name a live node.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrPinNotFound is returned when a PinID does not name a live pin.
	ErrPinNotFound = errors.New("graph: pin not found")

	// ErrWrongNodeKind is returned when an operation targets a node of
	// another variant.
	ErrWrongNodeKind = errors.New("graph: wrong node kind")

	// ErrWrongPinKind is returned when an operation targets a pin of an
	// unsuitable kind.
	ErrWrongPinKind = errors.New("graph: wrong pin kind")

	// ErrInvariant is wrapped by every error reported by Check.
	ErrInvariant = errors.New("graph: invariant violated")
)
