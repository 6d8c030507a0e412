// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a bounded LRU cache.
//
// The native backend keeps compiled shader modules in it, keyed by a hash of
// their WGSL source, so that reloading an unchanged program skips the
// compiler:
//
//	c := cache.New[[32]byte, []uint32](64)
//	words, err := c.GetOrCreate(sha256.Sum256([]byte(src)), func() ([]uint32, error) {
//	    return compile(src)
//	})
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
