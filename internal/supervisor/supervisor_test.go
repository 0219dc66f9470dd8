package supervisor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// fakeModule ticks a configurable number of times then reports idle
// forever, recording every call for assertions.
type fakeModule struct {
	pausable bool
	warpable bool

	mu       sync.Mutex
	ticks    int32
	advances int32
	warped   []int64
}

func (m *fakeModule) Tick(ctx context.Context) TickResult {
	n := atomic.AddInt32(&m.ticks, 1)
	if n <= 3 {
		atomic.AddInt32(&m.advances, 1)

		return TickResult{Outcome: TickAdvanced, LastURLID: int64(n), Progress: float64(n) / 10}
	}

	return TickResult{Outcome: TickIdle, Progress: -1}
}

func (m *fakeModule) Pausable() bool { return m.pausable }
func (m *fakeModule) Warpable() bool { return m.warpable }

func (m *fakeModule) Warp(ctx context.Context, target int64) error {
	m.mu.Lock()
	m.warped = append(m.warped, target)
	m.mu.Unlock()

	return nil
}

// fakeStore implements recordStore entirely in memory.
type fakeStore struct {
	mu       sync.Mutex
	statuses []store.ThreadStatus
	messages []string
	cursors  []int64
	progress []float64
}

func (f *fakeStore) UpdateThreadStatus(_ context.Context, _ int64, status store.ThreadStatus, message string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statuses = append(f.statuses, status)
	f.messages = append(f.messages, message)

	return nil
}

func (f *fakeStore) UpdateThreadCursor(_ context.Context, _ int64, lastURLID int64, progress float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cursors = append(f.cursors, lastURLID)
	f.progress = append(f.progress, progress)

	return nil
}

func (f *fakeStore) GetThreadRecord(_ context.Context, id int64) (store.ThreadRecord, error) {
	return store.ThreadRecord{ID: id}, nil
}

func newTestSupervisor(module Module) (*Supervisor, *fakeStore) {
	fs := &fakeStore{}
	rec := store.ThreadRecord{ID: 1, Module: "crawler", Status: store.ThreadCreated}

	return New(fs, nil, rec, module), fs
}

func TestStartAdvancesAndGoesIdle(t *testing.T) {
	module := &fakeModule{}
	s, fs := newTestSupervisor(module)

	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&module.advances) == 3
	}, time.Second, time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))

	require.Equal(t, store.ThreadFinished, s.State())

	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.Contains(t, fs.statuses, store.ThreadRunning)
	require.Contains(t, fs.statuses, store.ThreadFinished)
	require.NotEmpty(t, fs.cursors)
}

func TestStartTwiceFails(t *testing.T) {
	module := &fakeModule{}
	s, _ := newTestSupervisor(module)

	require.NoError(t, s.Start(context.Background()))
	require.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)

	require.NoError(t, s.Stop(context.Background()))
}

func TestPauseRejectedWhenNotPausable(t *testing.T) {
	module := &fakeModule{pausable: false}
	s, _ := newTestSupervisor(module)

	require.NoError(t, s.Start(context.Background()))
	require.ErrorIs(t, s.Pause(context.Background()), ErrNotPausable)

	require.NoError(t, s.Stop(context.Background()))
}

func TestPauseUnpauseTransitionsState(t *testing.T) {
	module := &fakeModule{pausable: true}
	s, _ := newTestSupervisor(module)

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&module.advances) == 3
	}, time.Second, time.Millisecond)

	require.NoError(t, s.Pause(context.Background()))
	require.Equal(t, store.ThreadPaused, s.State())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, s.Unpause(context.Background()))
	require.Equal(t, store.ThreadRunning, s.State())

	require.NoError(t, s.Stop(context.Background()))
}

func TestWarpToRejectedWhenNotWarpable(t *testing.T) {
	module := &fakeModule{warpable: false}
	s, _ := newTestSupervisor(module)

	require.NoError(t, s.Start(context.Background()))
	require.ErrorIs(t, s.WarpTo(42), ErrNotWarpable)

	require.NoError(t, s.Stop(context.Background()))
}

func TestWarpToIsAppliedAndIdempotent(t *testing.T) {
	module := &fakeModule{warpable: true}
	s, _ := newTestSupervisor(module)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.WarpTo(99))

	require.Eventually(t, func() bool {
		module.mu.Lock()
		defer module.mu.Unlock()

		return len(module.warped) >= 1
	}, time.Second, time.Millisecond)

	require.NoError(t, s.WarpTo(99)) // idempotent: no error, no duplicate application

	require.NoError(t, s.Stop(context.Background()))

	module.mu.Lock()
	defer module.mu.Unlock()
	require.Equal(t, []int64{99}, module.warped)
}

func TestTicksPerSecondIsZeroBeforeStart(t *testing.T) {
	module := &fakeModule{}
	s, _ := newTestSupervisor(module)

	require.Zero(t, s.TicksPerSecond())
	require.Zero(t, s.Uptime())
}
