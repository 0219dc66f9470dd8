// Package supervisor runs a single worker (Crawler, Extractor, or
// Analyzer) through its lifecycle and exposes a uniform set of control
// operations over it, independent of what the worker actually does per
// tick. The shape is the teacher's internal/platform/worker ticker/loop
// idiom generalized from "fixed ticker tasks" to "one Module.Tick call
// per Thread Record".
package supervisor

import "context"

// TickOutcome classifies what happened during one Module.Tick call.
type TickOutcome int

const (
	// TickAdvanced means a unit of work was processed and the cursor
	// should move forward.
	TickAdvanced TickOutcome = iota
	// TickIdle means there was nothing to do this tick (e.g. no
	// unlocked URL available); time spent is idle, not working.
	TickIdle
	// TickRetry means the tick failed in a way that should retry the
	// same URL without advancing the cursor.
	TickRetry
	// TickSkip means the tick failed in a way that should be recorded
	// and the cursor advanced past the offending URL anyway.
	TickSkip
	// TickFatal means the tick failed in a way that cannot be
	// recovered from; the Supervisor ends its run loop and the thread
	// goes straight to Finished.
	TickFatal
)

// label returns the Prometheus label value for this outcome.
func (o TickOutcome) label() string {
	switch o {
	case TickAdvanced:
		return "advanced"
	case TickIdle:
		return "idle"
	case TickRetry:
		return "retry"
	case TickSkip:
		return "skip"
	case TickFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// TickResult is returned by Module.Tick once per call.
type TickResult struct {
	Outcome TickOutcome

	// LastURLID, if non-zero, becomes the new resume cursor.
	LastURLID int64

	// Progress, if >= 0, replaces the current progress estimate
	// (0.0-1.0). Negative means "unchanged".
	Progress float64

	// Message is a short human-readable status line persisted as the
	// thread's status message.
	Message string

	// Err carries the underlying error for TickRetry/TickSkip/TickFatal
	// outcomes; it is logged but does not itself decide the outcome.
	Err error
}

// Module is one tickable algorithm: Crawler, Extractor, or Analyzer.
// Tick performs exactly one unit of forward progress and must return
// promptly so the Supervisor can observe pause/stop requests between
// calls.
type Module interface {
	Tick(ctx context.Context) TickResult
	// Pausable reports whether this algorithm can be safely paused
	// mid-run. Some algorithms hold resources (e.g. an open streaming
	// cursor) that make pausing unsafe.
	Pausable() bool
	// Warpable reports whether this algorithm can seek to an arbitrary
	// URL id.
	Warpable() bool
}

// Warper is implemented by modules whose Warpable() is true. Warp is
// called by the Supervisor before the next Tick after a WarpTo
// request: the module must unlock any URL it currently holds and
// discard any pre-fetched URL batch.
type Warper interface {
	Warp(ctx context.Context, targetURLID int64) error
}
