// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const getSlot = `SELECT key, value, updated_at FROM kv_slots WHERE key = ?`

// GetSlot returns sql.ErrNoRows when the slot is empty.
func (q *Queries) GetSlot(ctx context.Context, key string) (Slot, error) {
	row := q.db.QueryRowContext(ctx, getSlot, key)
	var s Slot
	err := row.Scan(&s.Key, &s.Value, &s.UpdatedAt)
	return s, err
}

const putSlot = `
INSERT INTO kv_slots (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func (q *Queries) PutSlot(ctx context.Context, key string, value []byte, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, putSlot, key, value, updatedAt.UTC())
	return err
}

const deleteSlot = `DELETE FROM kv_slots WHERE key = ?`

func (q *Queries) DeleteSlot(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteSlot, key)
	return err
}
