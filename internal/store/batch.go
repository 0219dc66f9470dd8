package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxBatch is a tiny wrapper over pgx.Batch so call sites read as
// "queue, then send" instead of juggling *pgx.Batch directly.
type pgxBatch struct {
	batch pgx.Batch
	n     int
}

func (b *pgxBatch) queue(sql string, args ...any) {
	b.batch.Queue(sql, args...)
	b.n++
}

func (b *pgxBatch) send(ctx context.Context, pool *pgxpool.Pool) error {
	if b.n == 0 {
		return nil
	}

	results := pool.SendBatch(ctx, &b.batch)
	defer results.Close()

	for i := 0; i < b.n; i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}

	return nil
}
