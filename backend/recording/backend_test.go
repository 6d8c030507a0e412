// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/shadergraph/gpucore"
)

const quad = `
@group(0) @binding(0) var<uniform> time: f32;

@vertex
fn vs(@builtin(vertex_index) i: u32) -> @builtin(position) vec4f {
    return vec4f(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs() -> @location(0) vec4f {
    return vec4f(time);
}
`

func TestRegistered(t *testing.T) {
	b, err := gpucore.NewBackend(Name)
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != Name {
		t.Errorf("Name() = %q", b.Name())
	}
}

func TestCompileProgram(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"quad", quad, nil},
		{"no entry point", "@group(0) @binding(0) var<uniform> t: f32;", ErrNoEntryPoint},
		{"syntax", "struct {", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			id, info, err := b.CompileProgram(tt.name, []gpucore.ShaderSource{{Code: tt.code}})
			if tt.name == "quad" {
				if err != nil {
					t.Fatal(err)
				}
				if id == gpucore.InvalidID || len(info.Uniforms) != 1 || info.VertexEntry != "vs" {
					t.Errorf("id %d, info %+v", id, info)
				}
				return
			}
			if err == nil || id != gpucore.InvalidID {
				t.Fatalf("compile succeeded with id %d", id)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if b.Live() != 0 {
				t.Error("failed compile allocated a program")
			}
		})
	}
}

func TestResources(t *testing.T) {
	b := New()
	rt, atts, err := b.CreateRenderTarget(2, 64, 32)
	if err != nil || len(atts) != 2 {
		t.Fatalf("CreateRenderTarget: %v, %d attachments", err, len(atts))
	}
	img, err := b.CreateTexture(16, 16, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateTexture(2, 2, make([]byte, 3)); err == nil {
		t.Error("short pixel data accepted")
	}
	buf, err := b.CreateBuffer(8, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst)
	if err != nil {
		t.Fatal(err)
	}

	b.WriteBuffer(buf, 4, []byte{1, 2, 3, 4, 5})
	if got, _ := b.Buffer(buf); !bytes.Equal(got, []byte{0, 0, 0, 0, 1, 2, 3, 4}) {
		t.Errorf("buffer = %v", got)
	}
	if w, h, ok := b.TextureSize(img); !ok || w != 16 || h != 16 {
		t.Errorf("TextureSize = %d, %d, %v", w, h, ok)
	}
	if b.Live() != 3 {
		t.Errorf("Live() = %d, want 3", b.Live())
	}

	b.DestroyRenderTarget(rt)
	b.DestroyTexture(img)
	b.DestroyBuffer(buf)
	b.DestroyBuffer(gpucore.InvalidID)
	if b.Live() != 0 {
		t.Errorf("Live() = %d after destroy", b.Live())
	}
	for _, ct := range []CommandType{CmdDestroyRenderTarget, CmdDestroyTexture, CmdDestroyBuffer} {
		if n := b.Count(ct); n != 1 {
			t.Errorf("%v recorded %d times", ct, n)
		}
	}
}

func TestExecute(t *testing.T) {
	var seen []gpucore.ProgramID
	hookErr := errors.New("device lost")
	b := New(WithExecuteHook(func(d *gpucore.Dispatch) error {
		seen = append(seen, d.Program)
		if d.Count == 0 {
			return hookErr
		}
		return nil
	}))
	prog, _, err := b.CompileProgram("quad", []gpucore.ShaderSource{{Code: quad}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		d    gpucore.Dispatch
		want error
	}{
		{"ok", gpucore.Dispatch{Program: prog, Count: 6}, nil},
		{"unknown program", gpucore.Dispatch{Program: 999, Count: 6}, ErrUnknownResource},
		{"unknown target", gpucore.Dispatch{Program: prog, Target: 999, Count: 6}, ErrUnknownResource},
		{"hook error", gpucore.Dispatch{Program: prog}, hookErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Execute(&tt.d)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if got := b.Executions(); len(got) != 1 || got[0].Count != 6 {
		t.Errorf("Executions = %+v", got)
	}
	if len(seen) != 2 {
		t.Errorf("hook saw %d dispatches, want 2", len(seen))
	}

	b.Reset()
	if len(b.Commands()) != 0 || b.Live() != 1 {
		t.Errorf("Reset: %d commands, %d live", len(b.Commands()), b.Live())
	}
	b.Close()
	if b.Live() != 0 {
		t.Error("Close kept resources")
	}
}

func TestCommandTypeString(t *testing.T) {
	if CmdExecute.String() != "Execute" || CommandType(200).String() != "Unknown" {
		t.Error("unexpected command names")
	}
}
