package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvisoryLock holds a session-level advisory lock pinned to one pooled
// connection. Session locks belong to the Postgres session that took them,
// so acquire and release must run on the same connection; the connection is
// held out of the pool until Release.
type AdvisoryLock struct {
	conn   *pgxpool.Conn
	lockID int64
}

// TryAcquireAdvisoryLock takes a session-level advisory lock without
// blocking. It returns nil when another session already holds the lock.
func (db *DB) TryAcquireAdvisoryLock(ctx context.Context, lockID int64) (*AdvisoryLock, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection for advisory lock: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		conn.Release()

		return nil, fmt.Errorf("try acquire advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()

		return nil, nil
	}

	return &AdvisoryLock{conn: conn, lockID: lockID}, nil
}

// Release unlocks the advisory lock on its owning connection and returns the
// connection to the pool.
func (l *AdvisoryLock) Release(ctx context.Context) error {
	defer l.conn.Release()

	if _, err := l.conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", l.lockID); err != nil {
		return fmt.Errorf("release advisory lock: %w", err)
	}

	return nil
}
