package supervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/crawlserv/crawlservpp-sub000/internal/platform/metrics"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// pollInterval bounds how often the run loop re-checks pause/stop state
// and re-invokes Tick when idle, mirroring the teacher's
// internal/platform/worker pollInterval to avoid busy-waiting.
const pollInterval = 100 * time.Millisecond

var (
	// ErrAlreadyRunning is returned by Start on an already-running thread.
	ErrAlreadyRunning = errors.New("supervisor: already running")
	// ErrNotRunning is returned by pause/warp_to on a thread that never started.
	ErrNotRunning = errors.New("supervisor: not running")
	// ErrNotPausable is returned by pause when the module declares itself non-pausable.
	ErrNotPausable = errors.New("supervisor: module is not pausable")
	// ErrNotWarpable is returned by warp_to when the module cannot seek.
	ErrNotWarpable = errors.New("supervisor: module is not warpable")
)

// Supervisor runs one Module through the lifecycle of spec §4.1:
// Created -> Running -> Paused -> Running -> Stopping -> Finished.
type Supervisor struct {
	module Module
	db     recordStore
	logger *zerolog.Logger

	mu       sync.Mutex
	record   store.ThreadRecord
	state    store.ThreadStatus
	offline  bool
	warpTo   *int64
	lastWarp *int64 // last applied warp target, for idempotence

	// three clocks (spec §4.1 Timing model)
	startTime  time.Time
	pauseStart time.Time
	idleStart  time.Time

	pausedFor time.Duration
	idleFor   time.Duration
	ticks     int64

	pauseCh  chan struct{} // closed while paused; replaced on unpause
	doneCh   chan struct{}
	cancelFn context.CancelFunc
}

// recordStore is the persistence surface a Supervisor needs to survive
// restarts; satisfied by *store.DB, narrowed so tests can substitute a
// fake instead of a live connection pool.
type recordStore interface {
	UpdateThreadStatus(ctx context.Context, id int64, status store.ThreadStatus, message string, paused bool) error
	UpdateThreadCursor(ctx context.Context, id, lastURLID int64, progress float64) error
	GetThreadRecord(ctx context.Context, id int64) (store.ThreadRecord, error)
}

// New wraps module with a Supervisor bound to the given persisted
// thread record. The record's ID must already exist in the store.
func New(db recordStore, logger *zerolog.Logger, record store.ThreadRecord, module Module) *Supervisor {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Supervisor{
		module: module,
		db:     db,
		logger: logger,
		record: record,
		state:  record.Status,
	}
}

// Start begins background execution. It fails if the thread is already
// running.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == store.ThreadRunning || s.state == store.ThreadStopping {
		s.mu.Unlock()

		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancelFn = cancel
	s.doneCh = make(chan struct{})
	s.pauseCh = nil
	s.startTime = time.Now()
	s.state = store.ThreadRunning
	s.mu.Unlock()

	s.persistStatus(ctx, store.ThreadRunning, "starting")

	metrics.RunningThreads.WithLabelValues(s.record.Module).Inc()

	go s.runLoop(runCtx)

	return nil
}

// Pause transitions Running -> Paused, failing if the module declares
// itself non-pausable.
func (s *Supervisor) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != store.ThreadRunning {
		return ErrNotRunning
	}

	if !s.module.Pausable() {
		return ErrNotPausable
	}

	s.state = store.ThreadPaused
	s.pauseStart = time.Now()
	s.pauseCh = make(chan struct{})

	s.persistStatusLocked(ctx, store.ThreadPaused, "paused")

	return nil
}

// Unpause transitions Paused -> Running, resuming the run loop.
func (s *Supervisor) Unpause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != store.ThreadPaused {
		return ErrNotRunning
	}

	s.pausedFor += time.Since(s.pauseStart)
	s.state = store.ThreadRunning

	if s.pauseCh != nil {
		close(s.pauseCh)
		s.pauseCh = nil
	}

	s.persistStatusLocked(ctx, store.ThreadRunning, "resumed")

	return nil
}

// Stop requests cooperative shutdown; the worker observes cancellation
// at the next suspension point (tick boundary or pause wait).
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()

	if s.state == store.ThreadFinished || s.state == store.ThreadCreated {
		s.mu.Unlock()

		return nil
	}

	s.state = store.ThreadStopping
	wasPaused := s.pauseCh != nil

	s.persistStatusLocked(ctx, store.ThreadStopping, "stopping")

	if wasPaused {
		close(s.pauseCh)
		s.pauseCh = nil
	}

	cancel := s.cancelFn
	done := s.doneCh
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if done != nil {
		<-done
	}

	return nil
}

// Interrupt is an alias for Stop, matching spec §4.1's "stop/interrupt"
// transition pair; both are cooperative and irreversible.
func (s *Supervisor) Interrupt(ctx context.Context) error {
	return s.Stop(ctx)
}

// WarpTo resets the next-URL cursor asynchronously; the module
// discards its cached URL batch and unlocks its current URL on the
// next tick boundary. Illegal for non-warpable modules. Idempotent:
// repeated calls with the same target are no-ops once applied.
func (s *Supervisor) WarpTo(targetURLID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.module.Warpable() {
		return ErrNotWarpable
	}

	if s.state != store.ThreadRunning && s.state != store.ThreadPaused {
		return ErrNotRunning
	}

	s.warpTo = &targetURLID

	return nil
}

// Message returns the current status message.
func (s *Supervisor) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.record.StatusMessage
}

// Progress returns the current progress estimate, 0.0-1.0.
func (s *Supervisor) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.record.Progress
}

// State returns the current lifecycle state.
func (s *Supervisor) State() store.ThreadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Uptime is wall-clock time since Start, including paused/idle spans.
func (s *Supervisor) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.startTime.IsZero() {
		return 0
	}

	return time.Since(s.startTime)
}

// TicksPerSecond divides the tick count by active time: wall-clock
// uptime minus everything accounted as paused or idle (spec §4.1
// Timing model).
func (s *Supervisor) TicksPerSecond() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.startTime.IsZero() {
		return 0
	}

	active := time.Since(s.startTime) - s.pausedFor - s.idleFor
	if active <= 0 {
		return 0
	}

	return float64(s.ticks) / active.Seconds()
}

// runLoop drives Module.Tick until Stop is requested, honoring pause
// requests and warp requests at each boundary. Grounded on the
// teacher's worker.Loop poll-and-dispatch shape.
func (s *Supervisor) runLoop(ctx context.Context) {
	defer close(s.doneCh)
	defer s.finish(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if waitPause, done := s.waitWhilePaused(ctx); done {
			return
		} else if waitPause {
			continue
		}

		s.applyPendingWarp(ctx)

		tickStart := time.Now()
		result := s.module.Tick(ctx)
		metrics.TickDuration.WithLabelValues(s.record.Module).Observe(time.Since(tickStart).Seconds())

		s.handleTickResult(ctx, result)

		if result.Outcome == TickFatal {
			return
		}

		if result.Outcome == TickIdle {
			metrics.IdleThreads.WithLabelValues(s.record.Module).Inc()
			s.markIdleStart()

			if err := sleepOrDone(ctx, pollInterval); err != nil {
				metrics.IdleThreads.WithLabelValues(s.record.Module).Dec()
				return
			}

			metrics.IdleThreads.WithLabelValues(s.record.Module).Dec()
			s.accountIdle()
		}
	}
}

// sleepOrDone waits for d or ctx cancellation, whichever comes first.
func sleepOrDone(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (s *Supervisor) markIdleStart() {
	s.mu.Lock()
	s.idleStart = time.Now()
	s.mu.Unlock()
}

func (s *Supervisor) accountIdle() {
	s.mu.Lock()
	if !s.idleStart.IsZero() {
		s.idleFor += time.Since(s.idleStart)
		s.idleStart = time.Time{}
	}
	s.mu.Unlock()
}

// waitWhilePaused blocks on the pause channel, if one is set, until
// either Unpause closes it or the context is cancelled. Returns
// (true, false) if it waited (caller should re-loop to re-check
// state), or (false, true) if the context ended while waiting.
func (s *Supervisor) waitWhilePaused(ctx context.Context) (waited, done bool) {
	s.mu.Lock()
	ch := s.pauseCh
	s.mu.Unlock()

	if ch == nil {
		return false, false
	}

	select {
	case <-ch:
		return true, false
	case <-ctx.Done():
		return false, true
	}
}

func (s *Supervisor) applyPendingWarp(ctx context.Context) {
	s.mu.Lock()
	target := s.warpTo
	already := s.lastWarp != nil && target != nil && *s.lastWarp == *target
	s.mu.Unlock()

	if target == nil || already {
		return
	}

	if warper, ok := s.module.(Warper); ok {
		if err := warper.Warp(ctx, *target); err != nil {
			s.logger.Warn().Err(err).Int64("target_url_id", *target).Msg("warp failed")

			return
		}
	}

	s.mu.Lock()
	s.record.LastURLID = *target
	// clamp progress so a backward seek never reports negative progress
	if s.record.Progress < 0 {
		s.record.Progress = 0
	}
	s.lastWarp = target
	s.mu.Unlock()

	s.persistCursor(ctx)
}

func (s *Supervisor) handleTickResult(ctx context.Context, result TickResult) {
	metrics.TicksTotal.WithLabelValues(s.record.Module, result.Outcome.label()).Inc()

	s.mu.Lock()
	s.ticks++

	if result.Message != "" {
		s.record.StatusMessage = result.Message
	}

	if result.Progress >= 0 {
		s.record.Progress = result.Progress
	}

	if result.LastURLID != 0 {
		s.record.LastURLID = result.LastURLID
	}
	s.mu.Unlock()

	switch result.Outcome {
	case TickAdvanced, TickSkip:
		s.persistCursor(ctx)
	case TickRetry:
		if result.Err != nil {
			s.logger.Warn().Err(result.Err).Msg("tick retry")
		}
	case TickFatal:
		if result.Err != nil {
			s.logger.Error().Err(result.Err).Msg("tick fatal")
		}
	}
}

func (s *Supervisor) finish(ctx context.Context) {
	s.mu.Lock()
	s.state = store.ThreadFinished
	s.mu.Unlock()

	metrics.RunningThreads.WithLabelValues(s.record.Module).Dec()

	s.persistStatus(ctx, store.ThreadFinished, "finished")
}

// persistStatus probes database connectivity and writes through to the
// store, suppressing writes while offline (spec §4.1 Failure semantics).
func (s *Supervisor) persistStatus(ctx context.Context, status store.ThreadStatus, message string) {
	s.mu.Lock()
	id := s.record.ID
	paused := status == store.ThreadPaused
	s.mu.Unlock()

	if s.tryOffline(ctx) {
		return
	}

	if err := s.db.UpdateThreadStatus(ctx, id, status, message, paused); err != nil {
		s.markOffline(err)
	}
}

func (s *Supervisor) persistStatusLocked(ctx context.Context, status store.ThreadStatus, message string) {
	id := s.record.ID
	paused := status == store.ThreadPaused

	if s.offline {
		return
	}

	if err := s.db.UpdateThreadStatus(ctx, id, status, message, paused); err != nil {
		s.offline = true
		s.logger.Warn().Err(err).Msg("database offline, suppressing writes")
	}
}

func (s *Supervisor) persistCursor(ctx context.Context) {
	s.mu.Lock()
	id := s.record.ID
	lastURLID := s.record.LastURLID
	progress := s.record.Progress
	s.mu.Unlock()

	if s.tryOffline(ctx) {
		return
	}

	if err := s.db.UpdateThreadCursor(ctx, id, lastURLID, progress); err != nil {
		s.markOffline(err)
	}
}

// tryOffline reports whether writes should currently be suppressed; if
// the supervisor believes it is offline it probes reconnect by
// attempting a trivial read, per spec §4.1's "probes reconnect every
// tick until successful" rule.
func (s *Supervisor) tryOffline(ctx context.Context) bool {
	s.mu.Lock()
	offline := s.offline
	id := s.record.ID
	s.mu.Unlock()

	if !offline {
		return false
	}

	if _, err := s.db.GetThreadRecord(ctx, id); err != nil {
		return true
	}

	s.mu.Lock()
	s.offline = false
	s.mu.Unlock()

	s.logger.Info().Msg("database connection recovered")

	return false
}

func (s *Supervisor) markOffline(err error) {
	s.mu.Lock()
	s.offline = true
	s.mu.Unlock()

	s.logger.Warn().Err(err).Msg("database write failed, entering offline mode")
}

// Offline reports whether the supervisor currently believes the
// database is unreachable.
func (s *Supervisor) Offline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.offline
}
