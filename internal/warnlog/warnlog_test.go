package warnlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

type fakeSink struct {
	got []store.LogEntry
}

func (f *fakeSink) InsertLogs(_ context.Context, entries []store.LogEntry) error {
	f.got = append(f.got, entries...)

	return nil
}

func TestPushAndDrain(t *testing.T) {
	q := New(7)
	q.Push("first")
	q.PushError("second")

	require.Equal(t, 2, q.Len())

	msgs := q.Drain()
	require.Equal(t, []string{"warn: first", "error: second"}, msgs)
	require.Zero(t, q.Len())
}

func TestFlushWritesAndResets(t *testing.T) {
	q := New(3)
	q.Push("disk full")

	sink := &fakeSink{}
	require.NoError(t, q.Flush(context.Background(), sink))

	require.Len(t, sink.got, 1)
	require.Equal(t, int64(3), sink.got[0].ThreadID)
	require.Equal(t, "warn", sink.got[0].Level)
	require.Equal(t, "disk full", sink.got[0].Message)

	require.Zero(t, q.Len())
}

func TestFlushNoopWhenEmpty(t *testing.T) {
	q := New(1)
	sink := &fakeSink{}

	require.NoError(t, q.Flush(context.Background(), sink))
	require.Empty(t, sink.got)
}
