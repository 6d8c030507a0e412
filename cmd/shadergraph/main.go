// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command shadergraph runs WGSL programs as a shader graph without a window.
//
// Each --program file becomes one Program node; the nodes are chained on
// the Frame event in flag order, every pass drawing into a render target
// the next one samples. The screen of the last frame can be written to a
// PNG file with --output.
//
// Usage:
//
//	shadergraph --program blur.wgsl --program tonemap.wgsl --texture photo.jpg --frames 1 --output out.png
//	shadergraph --dry-run --program plasma.wgsl --frames 10 --log-level debug
//	shadergraph --watch --frames 0 --program plasma.wgsl
//
// Configuration is read from defaults, shadergraph.toml (or --config), the
// SHADERGRAPH_* environment and flags, later sources overriding earlier ones.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/gogpu/shadergraph"
	_ "github.com/gogpu/shadergraph/backend/recording"
	"github.com/gogpu/shadergraph/gpucore"
	"github.com/gogpu/shadergraph/internal/config"
	"github.com/gogpu/shadergraph/internal/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "shadergraph:", err)
		stop()
		os.Exit(1)
	}
}

// run parses args and runs the graph until the frame count is reached or
// ctx is done.
func run(ctx context.Context, args []string, stderr io.Writer) error {
	flags := config.NewFlagSet("shadergraph")
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	cfg.Programs = append(cfg.Programs, flags.Args()...)
	if len(cfg.Programs) == 0 {
		flags.Usage()
		return errors.New("no program given")
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	shadergraph.SetLogger(logger)
	defer shadergraph.SetLogger(nil)

	ed, err := shadergraph.New(
		shadergraph.WithBackendName(cfg.BackendName()),
		shadergraph.WithRenderSize(cfg.Width, cfg.Height),
		shadergraph.WithVisitLimit(cfg.VisitLimit),
		shadergraph.WithDebug(cfg.Debug),
	)
	if err != nil {
		return err
	}
	defer ed.Close()

	programs, err := loadLibrary(ed, cfg)
	if err != nil {
		return err
	}
	if _, err := buildScene(ed, programs); err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	if cfg.Watch {
		w, err := startWatch(ctx, ed, programs, logger)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
	}

	frames := runFrames(ctx, ed, cfg, logger)
	logger.Info("run finished", "frames", frames, "backend", ed.Backend().Name())

	if cfg.Output != "" {
		return writeScreen(ed.Backend(), cfg.Output)
	}
	return nil
}

func loadLibrary(ed *shadergraph.Editor, cfg *config.Config) ([]*gpucore.Program, error) {
	for _, path := range cfg.Textures {
		if _, err := ed.AddTexture("", path); err != nil {
			return nil, err
		}
	}
	programs := make([]*gpucore.Program, 0, len(cfg.Programs))
	for _, path := range cfg.Programs {
		sources, err := shadergraph.LoadSources(path)
		if err != nil {
			return nil, err
		}
		p, err := ed.AddProgram(programName(path), sources)
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, nil
}

func programName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// runFrames displays frames at the configured rate and returns how many
// ran. A zero frame count runs until ctx is done.
func runFrames(ctx context.Context, ed *shadergraph.Editor, cfg *config.Config, logger *slog.Logger) int {
	var tick <-chan time.Time
	if cfg.FPS > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	ed.Play()
	frames := 0
	for cfg.Frames == 0 || frames < cfg.Frames {
		if tick != nil {
			select {
			case <-ctx.Done():
				return frames
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return frames
		}
		if err := ed.Display(); err != nil {
			logger.Warn("frame failed", "frame", frames, "err", err)
		}
		frames++
	}
	return frames
}

// startWatch recompiles a program on the frame thread whenever one of its
// source files changes.
func startWatch(ctx context.Context, ed *shadergraph.Editor, programs []*gpucore.Program, logger *slog.Logger) (*watch.Watcher, error) {
	byPath := make(map[string]*gpucore.Program)
	for _, p := range programs {
		for _, s := range p.Sources {
			abs, err := filepath.Abs(s.Path)
			if err != nil {
				return nil, err
			}
			byPath[filepath.Clean(abs)] = p
		}
	}

	w, err := watch.New(func(paths []string) {
		for _, path := range paths {
			p, ok := byPath[path]
			if !ok {
				continue
			}
			logger.Info("shader changed", "program", p.Name, "path", path)
			ed.Enqueue(func(e *shadergraph.Editor) { reload(e, p, logger) })
		}
	}, watch.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	for path := range byPath {
		if err := w.Add(path); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("watcher stopped", "err", err)
		}
	}()
	return w, nil
}

func reload(e *shadergraph.Editor, p *gpucore.Program, logger *slog.Logger) {
	paths := make([]string, len(p.Sources))
	for i, s := range p.Sources {
		paths[i] = s.Path
	}
	sources, err := shadergraph.LoadSources(paths...)
	if err == nil {
		err = e.ReloadProgram(p, sources)
	}
	if err != nil {
		logger.Warn("reload failed, keeping previous program", "program", p.Name, "err", err)
	}
}
