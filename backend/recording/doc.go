// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package recording provides an in-memory gpucore.Backend that records every
// call as a typed [Command] instead of touching a GPU.
//
// It backs dry runs of the command line tool and the tests of the packages
// above gpucore. Programs are reflected from their WGSL sources, so a
// recorded graph gets the same pins it would get on a real device:
//
//	b := recording.New()
//	ed, err := shadergraph.New(shadergraph.WithBackend(b))
//	...
//	for _, cmd := range b.Commands() {
//		if ex, ok := cmd.(recording.ExecuteCommand); ok {
//			fmt.Println(ex.Dispatch.Program)
//		}
//	}
//
// Importing the package registers it with gpucore under the name
// "recording".
package recording
