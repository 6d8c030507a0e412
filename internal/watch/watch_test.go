// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// startWatcher runs a watcher whose batches arrive on the returned channel.
func startWatcher(t *testing.T, files ...string) (*Watcher, <-chan []string) {
	t.Helper()
	changes := make(chan []string, 16)
	w, err := New(func(paths []string) { changes <- paths }, WithDelay(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for _, f := range files {
		if err := w.Add(f); err != nil {
			t.Fatalf("Add(%s) failed: %v", f, err)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return w, changes
}

func waitChange(t *testing.T, changes <-chan []string) []string {
	t.Helper()
	select {
	case paths := <-changes:
		return paths
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return nil
	}
}

func TestWatchWrite(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.wgsl")
	b := filepath.Join(dir, "b.wgsl")
	other := filepath.Join(dir, "notes.txt")
	writeFile(t, a, "// a")
	writeFile(t, b, "// b")
	writeFile(t, other, "x")

	_, changes := startWatcher(t, a, b)

	writeFile(t, other, "ignored")
	writeFile(t, a, "// a2")
	writeFile(t, b, "// b2")
	writeFile(t, a, "// a3")

	got := waitChange(t, changes)
	for len(got) < 2 {
		got = append(got, waitChange(t, changes)...)
		slices.Sort(got)
		got = slices.Compact(got)
	}
	want := []string{a, b}
	if !slices.Equal(got, want) {
		t.Errorf("changed = %v, want %v", got, want)
	}
}

func TestWatchRename(t *testing.T) {
	dir := t.TempDir()
	shader := filepath.Join(dir, "blur.wgsl")
	writeFile(t, shader, "// v1")

	_, changes := startWatcher(t, shader)

	tmp := filepath.Join(dir, ".blur.wgsl.tmp")
	writeFile(t, tmp, "// v2")
	if err := os.Rename(tmp, shader); err != nil {
		t.Fatal(err)
	}

	got := waitChange(t, changes)
	if !slices.Contains(got, shader) {
		t.Errorf("changed = %v, want %s", got, shader)
	}
}

func TestAddRemove(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.wgsl")
	b := filepath.Join(dir, "b.wgsl")
	writeFile(t, a, "")
	writeFile(t, b, "")

	w, err := New(func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	for _, f := range []string{a, b, a} {
		if err := w.Add(f); err != nil {
			t.Fatal(err)
		}
	}
	if got := w.Files(); !slices.Equal(got, []string{a, b}) {
		t.Errorf("Files = %v", got)
	}
	if w.dirs[dir] != 2 {
		t.Errorf("dir refs = %d, want 2", w.dirs[dir])
	}

	w.Remove(a)
	w.Remove(a)
	w.Remove(filepath.Join(dir, "unknown.wgsl"))
	if got := w.Files(); !slices.Equal(got, []string{b}) {
		t.Errorf("Files after Remove = %v", got)
	}
	w.Remove(b)
	if _, ok := w.dirs[dir]; ok {
		t.Error("directory still watched after its last file was removed")
	}

	if err := w.Add(filepath.Join(dir, "missing", "x.wgsl")); err == nil {
		t.Error("Add in a missing directory: expected error")
	}
}
