// Package engine drives the per-frame pipeline: fetch a snapshot, select
// layouts, build one display list and submit it to the backend.
//
// The engine owns the active configuration. Reloads are staged from any
// goroutine and installed between frames with an atomic pointer swap, so
// a frame never observes a half-applied configuration.
package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/M1cha/periscope-viewer/pkg/config"
	"github.com/M1cha/periscope-viewer/pkg/errors"
	"github.com/M1cha/periscope-viewer/pkg/graphics"
	"github.com/M1cha/periscope-viewer/pkg/render"
	"github.com/M1cha/periscope-viewer/pkg/state"
)

// Phase is the engine's position in the frame cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseBuilding
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseBuilding:
		return "building"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "invalid"
	}
}

// Options tunes the frame loop.
type Options struct {
	// FetchTimeout bounds one state fetch. Zero means DefaultFetchTimeout.
	FetchTimeout time.Duration
	// DegradedAfter is the number of consecutive fetch failures after
	// which snapshots are marked degraded. Zero means DefaultDegradedAfter.
	DegradedAfter int
}

const (
	DefaultFetchTimeout  = 250 * time.Millisecond
	DefaultDegradedAfter = 3
)

func (o Options) withDefaults() Options {
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.DegradedAfter <= 0 {
		o.DegradedAfter = DefaultDegradedAfter
	}
	return o
}

// Engine runs the frame pipeline against one source and one backend.
//
// RunFrame and Run must be called from a single goroutine; Reload and
// Config may be called from any goroutine.
type Engine struct {
	source  state.Source
	backend graphics.Backend
	opts    Options

	active  atomic.Pointer[config.Config]
	pending atomic.Pointer[config.Config]

	phase    Phase
	last     *state.Snapshot
	failures int
}

// New returns an engine with the given initial configuration.
func New(cfg *config.Config, source state.Source, backend graphics.Backend, opts Options) *Engine {
	e := &Engine{
		source:  source,
		backend: backend,
		opts:    opts.withDefaults(),
		last:    state.Empty(),
	}
	e.active.Store(cfg)
	return e
}

// Config returns the active configuration.
func (e *Engine) Config() *config.Config {
	return e.active.Load()
}

// Phase returns the engine's current frame phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Degraded reports whether the last frame's snapshot was degraded.
func (e *Engine) Degraded() bool {
	return e.last.Degraded()
}

// Reload stages a new configuration. The raw document is validated here;
// on error the active configuration is untouched and the error returned.
// A valid configuration takes effect at the next frame boundary,
// replacing any previously staged one.
func (e *Engine) Reload(raw []byte) error {
	cfg, err := config.Load(raw)
	if err != nil {
		return err
	}
	e.pending.Store(cfg)
	return nil
}

// RunFrame executes one full frame cycle.
func (e *Engine) RunFrame(ctx context.Context) {
	// Idle boundary: staged configurations install here and only here.
	if staged := e.pending.Swap(nil); staged != nil {
		e.active.Store(staged)
	}
	cfg := e.active.Load()

	e.phase = PhaseFetching
	snap := e.fetch(ctx)

	e.phase = PhaseBuilding
	frame := buildFrame(cfg, snap)

	e.phase = PhaseSubmitting
	frame.Replay(e.backend)

	e.phase = PhaseIdle
}

// fetch polls the source, falling back to the last good snapshot on
// failure and raising the degraded flag past the failure threshold.
func (e *Engine) fetch(ctx context.Context) *state.Snapshot {
	fetchCtx, cancel := context.WithTimeout(ctx, e.opts.FetchTimeout)
	defer cancel()

	snap, err := e.source.Fetch(fetchCtx)
	if err != nil {
		e.failures++
		errors.Report(errors.E("engine.RunFrame", errors.KindTransport, err))
		snap = e.last.WithDegraded(e.failures >= e.opts.DegradedAfter)
	} else {
		e.failures = 0
	}
	e.last = snap
	return snap
}

// buildFrame assembles the complete display list for one snapshot:
// screen-level widgets first, then each placed controller's selected
// layout, in declaration order.
func buildFrame(cfg *config.Config, snap *state.Snapshot) *graphics.DisplayList {
	frame := &graphics.DisplayList{}
	frame.Extend(render.BuildScreen(cfg, snap.Global()))
	for _, c := range cfg.Controllers {
		view := snap.Slot(c.Slot)
		layout := cfg.Select(c.Slot, view)
		frame.Extend(render.Build(cfg, layout, view, c.Position))
	}
	return frame
}

// Run executes frames at the given interval until ctx is done.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.RunFrame(ctx)
		}
	}
}
