// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shadergraph/gpucore"
	"github.com/gogpu/shadergraph/internal/cache"
)

// defaultModuleCacheSize bounds the compiled modules kept per backend.
const defaultModuleCacheSize = 64

type moduleCache = cache.Cache[[sha256.Size]byte, []uint32]

// joinSources concatenates the files of a program into one WGSL module.
func joinSources(sources []gpucore.ShaderSource) string {
	var sb strings.Builder
	for _, s := range sources {
		sb.WriteString(s.Code)
		if !strings.HasSuffix(s.Code, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, err
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// createShaderModule compiles src, or takes the SPIR-V of an identical
// earlier source from the module cache, and creates a shader module.
func (b *Backend) createShaderModule(label, src string) (hal.ShaderModule, error) {
	words, err := b.modules.GetOrCreate(sha256.Sum256([]byte(src)), func() ([]uint32, error) {
		return compileSPIRV(src)
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", label, err)
	}
	return b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: words,
		},
	})
}
