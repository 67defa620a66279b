// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"fmt"

	"github.com/alexedwards/scs/v2"
)

// SCSStorage keeps the slot inside the browser's scs session. The context
// passed to each call must carry session data loaded by LoadAndSave.
type SCSStorage struct {
	sm *scs.SessionManager
}

// NewSCSStorage creates an SCSStorage bound to sm.
func NewSCSStorage(sm *scs.SessionManager) *SCSStorage {
	return &SCSStorage{sm: sm}
}

// guard converts the panic scs raises for a context without session data.
func guard(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrStorageUnavailable, r)
	}
}

func (s *SCSStorage) Get(ctx context.Context, key string) (data []byte, err error) {
	defer guard(&err)

	if !s.sm.Exists(ctx, key) {
		return nil, ErrNotFound
	}
	data = s.sm.GetBytes(ctx, key)
	if data == nil {
		return nil, fmt.Errorf("%w: slot %q does not hold bytes", ErrStorageCorrupt, key)
	}
	return data, nil
}

func (s *SCSStorage) Put(ctx context.Context, key string, value []byte) (err error) {
	defer guard(&err)
	s.sm.Put(ctx, key, append([]byte(nil), value...))
	return nil
}

func (s *SCSStorage) Delete(ctx context.Context, key string) (err error) {
	defer guard(&err)
	s.sm.Remove(ctx, key)
	return nil
}
