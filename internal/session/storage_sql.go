// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/aromapure/internal/store"
)

// SQLStorage keeps slots in the kv_slots table.
type SQLStorage struct {
	queries *store.Queries
}

// NewSQLStorage creates an SQLStorage over a migrated database.
func NewSQLStorage(queries *store.Queries) *SQLStorage {
	return &SQLStorage{queries: queries}
}

func (s *SQLStorage) Get(ctx context.Context, key string) ([]byte, error) {
	slot, err := s.queries.GetSlot(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return slot.Value, nil
}

func (s *SQLStorage) Put(ctx context.Context, key string, value []byte) error {
	if err := s.queries.PutSlot(ctx, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLStorage) Delete(ctx context.Context, key string) error {
	if err := s.queries.DeleteSlot(ctx, key); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}
