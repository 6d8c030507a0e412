// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shadergraph/gpucore"
	"github.com/gogpu/shadergraph/internal/cache"
)

// Name is the registry name of the backend.
const Name = "native"

func init() {
	gpucore.Register(Name, func() (gpucore.Backend, error) {
		return Open()
	})
}

// defaultWaitTimeout bounds the wait for one submitted dispatch.
const defaultWaitTimeout = 5 * time.Second

type texture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int

	// owner is the render target the texture is an attachment of.
	owner gpucore.RenderTargetID
}

type renderTarget struct {
	attachments []gpucore.TextureID
	width       int
	height      int
}

type buffer struct {
	buf   hal.Buffer
	size  uint64
	usage gpucore.BufferUsage
}

// Backend implements gpucore.Backend on a HAL device.
//
// Resource maps are guarded by mu so that Destroy calls from a finalizing
// owner never race a frame in flight. HAL destroy calls run outside the
// lock.
type Backend struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// external is set when the device belongs to someone else and must
	// survive Close.
	external bool
	closed   bool

	sampler     hal.Sampler
	waitTimeout time.Duration
	modules     *moduleCache

	nextID atomic.Uint64

	programs map[gpucore.ProgramID]*program
	targets  map[gpucore.RenderTargetID]*renderTarget
	textures map[gpucore.TextureID]*texture
	buffers  map[gpucore.BufferID]*buffer

	// screen stands in for the window surface.
	screen *texture
}

// Option configures a Backend.
type Option func(*Backend)

// WithModuleCacheSize bounds the compiled shader modules kept for reuse.
// Zero keeps every module.
func WithModuleCacheSize(n int) Option {
	return func(b *Backend) {
		b.modules = cache.New[[sha256.Size]byte, []uint32](n)
	}
}

// WithWaitTimeout bounds the wait for each submitted dispatch.
func WithWaitTimeout(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.waitTimeout = d
		}
	}
}

// New wraps an opened device and queue. The device is not destroyed by
// Close.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Backend, error) {
	b := newBackend(device, queue, opts)
	b.external = true
	if err := b.init(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewFromProvider shares the device of a host application. The provider
// must implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Backend, error) {
	return newFromHAL(provider, opts...)
}

func newFromHAL(provider any, opts ...Option) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	return New(device, queue, opts...)
}

func newBackend(device hal.Device, queue hal.Queue, opts []Option) *Backend {
	b := &Backend{
		device:      device,
		queue:       queue,
		waitTimeout: defaultWaitTimeout,
		modules:     cache.New[[sha256.Size]byte, []uint32](defaultModuleCacheSize),
		programs:    make(map[gpucore.ProgramID]*program),
		targets:     make(map[gpucore.RenderTargetID]*renderTarget),
		textures:    make(map[gpucore.TextureID]*texture),
		buffers:     make(map[gpucore.BufferID]*buffer),
	}
	// Start ID generation at 1 (0 is invalid)
	b.nextID.Store(1)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) init() error {
	sampler, err := b.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "shadergraph_sampler",
		AddressModeU: gputypes.AddressModeRepeat,
		AddressModeV: gputypes.AddressModeRepeat,
		AddressModeW: gputypes.AddressModeRepeat,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("native: create sampler: %w", err)
	}
	b.sampler = sampler
	return nil
}

// newID generates a unique resource ID.
func (b *Backend) newID() uint64 {
	return b.nextID.Add(1) - 1
}

// Name returns the registry name of the backend.
func (b *Backend) Name() string { return Name }

// Close releases every resource still held by the backend, and the device
// if the backend opened it.
func (b *Backend) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	programs, targets, textures, buffers := b.programs, b.targets, b.textures, b.buffers
	screen := b.screen
	b.programs = make(map[gpucore.ProgramID]*program)
	b.targets = make(map[gpucore.RenderTargetID]*renderTarget)
	b.textures = make(map[gpucore.TextureID]*texture)
	b.buffers = make(map[gpucore.BufferID]*buffer)
	b.screen = nil
	b.mu.Unlock()

	for _, p := range programs {
		p.destroy(b.device)
	}
	for _, t := range textures {
		b.destroyTexture(t)
	}
	if screen != nil {
		b.destroyTexture(screen)
	}
	for _, buf := range buffers {
		b.device.DestroyBuffer(buf.buf)
	}
	if b.sampler != nil {
		b.device.DestroySampler(b.sampler)
		b.sampler = nil
	}
	slogger().Debug("native: closed",
		"programs", len(programs), "targets", len(targets),
		"textures", len(textures), "buffers", len(buffers))

	if !b.external {
		b.device.Destroy()
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
}

// pollInterval is the sleep between completion checks of a submission.
const pollInterval = 50 * time.Microsecond

// submit ends the encoder, submits it and waits until the queue reports
// the submission complete.
func (b *Backend) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	index, err := b.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return b.waitSubmission(index)
}

// waitSubmission polls the queue until submission index has completed or
// the wait timeout passes.
func (b *Backend) waitSubmission(index uint64) error {
	deadline := time.Now().Add(b.waitTimeout)
	for b.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d", ErrGPUTimeout, index)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

var _ gpucore.Backend = (*Backend)(nil)
