// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"encoding/binary"
	"math"
)

// Value is the literal of an unlinked scalar input pin. It holds up to four
// float and four int components; the pin kind decides which are used.
type Value struct {
	f [4]float32
	i [4]int32
}

// Floats returns a Value with the given float components.
func Floats(v ...float32) Value {
	var out Value
	copy(out.f[:], v)
	return out
}

// Ints returns a Value with the given int components.
func Ints(v ...int32) Value {
	var out Value
	copy(out.i[:], v)
	return out
}

// Float returns float component i.
func (v Value) Float(i int) float32 { return v.f[i] }

// Int returns int component i.
func (v Value) Int(i int) int32 { return v.i[i] }

// AppendBytes appends the little-endian encoding of v as kind k to b.
// Non-scalar kinds append nothing.
func (v Value) AppendBytes(b []byte, k PinKind) []byte {
	n := k.Components()
	for c := 0; c < n; c++ {
		if k.IsInt() {
			b = binary.LittleEndian.AppendUint32(b, uint32(v.i[c]))
		} else {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.f[c]))
		}
	}
	return b
}

// Bytes returns the little-endian encoding of v as kind k.
func (v Value) Bytes(k PinKind) []byte {
	return v.AppendBytes(make([]byte, 0, k.Size()), k)
}
