package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/maheshsv/telegram-doc-poster/internal/rotation"
)

// The rotation state lives in a single-row table. Whole-row writes keep the
// four cursors consistent with each other no matter where a run stops.
const (
	selectStateSQL = `SELECT primary_idx, secondary_idx, image_idx, track_counter
FROM rotation_state WHERE id = 1`

	upsertStateSQL = `INSERT INTO rotation_state (id, primary_idx, secondary_idx, image_idx, track_counter, updated_at)
VALUES (1, $1, $2, $3, $4, NOW())
ON CONFLICT (id) DO UPDATE SET
	primary_idx = EXCLUDED.primary_idx,
	secondary_idx = EXCLUDED.secondary_idx,
	image_idx = EXCLUDED.image_idx,
	track_counter = EXCLUDED.track_counter,
	updated_at = NOW()`
)

// LoadState reads the persisted rotation cursors. A missing row is a fresh
// deployment and yields the zero state.
func (db *DB) LoadState(ctx context.Context) (rotation.State, error) {
	var primary, secondary, image, counter int64

	err := db.Pool.QueryRow(ctx, selectStateSQL).Scan(&primary, &secondary, &image, &counter)
	if errors.Is(err, pgx.ErrNoRows) {
		return rotation.State{}, nil
	}

	if err != nil {
		return rotation.State{}, fmt.Errorf("select rotation state: %w", err)
	}

	return rotation.State{
		Primary:   uint64(primary),
		Secondary: uint64(secondary),
		Image:     uint64(image),
		Counter:   uint64(counter),
	}, nil
}

// SaveState upserts the whole cursor record.
func (db *DB) SaveState(ctx context.Context, state rotation.State) error {
	_, err := db.Pool.Exec(ctx, upsertStateSQL,
		int64(state.Primary),
		int64(state.Secondary),
		int64(state.Image),
		int64(state.Counter),
	)
	if err != nil {
		return fmt.Errorf("upsert rotation state: %w", err)
	}

	return nil
}
