// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Store is the single owner of a device's Session and the only writer of
// its persisted record.
type Store struct {
	storage  Storage
	verifier CredentialVerifier
	key      string
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.RWMutex
	session  Session
	restored bool
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage slot name.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock overrides the time source used for new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for degraded storage conditions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store with an empty Session. Call Restore before
// relying on Authenticated.
func NewStore(storage Storage, verifier CredentialVerifier, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		verifier: verifier,
		key:      DefaultKey,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage slot name.
func (s *Store) Key() string {
	return s.key
}

// Restore loads the persisted record. An empty, unreadable or malformed
// slot leaves the Session logged out. It never fails.
func (s *Store) Restore(ctx context.Context) {
	sess := s.load(ctx)

	s.mu.Lock()
	s.session = sess
	s.restored = true
	s.mu.Unlock()
}

func (s *Store) load(ctx context.Context) Session {
	data, err := s.storage.Get(ctx, s.key)
	switch {
	case errors.Is(err, ErrNotFound):
		return Session{}
	case errors.Is(err, ErrStorageCorrupt):
		s.logger.Warn("session record corrupt, treating as logged out",
			"key", s.key, "error", err)
		return Session{}
	case err != nil:
		s.logger.Warn("session storage unavailable, treating as logged out",
			"key", s.key, "error", err)
		return Session{}
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		s.logger.Warn("session record corrupt, treating as logged out",
			"key", s.key, "error", err)
		return Session{}
	}

	u := rec.User
	return Session{IsAuthenticated: true, User: &u, IssuedAt: rec.IssuedAt()}
}

// Login verifies the credentials, persists a new record and switches the
// Session to authenticated. On any error the Session is left unchanged.
func (s *Store) Login(ctx context.Context, username, password, userType string) (Session, error) {
	if err := s.verifier.Verify(ctx, username, password); err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			err = fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return s.Session(), err
	}

	if userType == "" {
		userType = DefaultUserType
	}
	rec := NewRecord(User{Username: username, UserType: userType}, s.now())

	data, err := rec.Encode()
	if err != nil {
		return s.Session(), fmt.Errorf("encoding session record: %w", err)
	}
	if err := s.storage.Put(ctx, s.key, data); err != nil {
		if !errors.Is(err, ErrStorageUnavailable) {
			err = fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		return s.Session(), fmt.Errorf("writing session record: %w", err)
	}

	u := rec.User
	sess := Session{IsAuthenticated: true, User: &u, IssuedAt: rec.IssuedAt()}

	s.mu.Lock()
	s.session = sess
	s.restored = true
	s.mu.Unlock()

	return s.Session(), nil
}

// Logout removes the persisted record and clears the Session. It is safe
// to call when already logged out. A failed delete is logged and the
// in-memory state is cleared regardless.
func (s *Store) Logout(ctx context.Context) {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.logger.Warn("failed to delete session record", "key", s.key, "error", err)
	}

	s.mu.Lock()
	s.session = Session{}
	s.restored = true
	s.mu.Unlock()
}

// Session returns a copy of the current state.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.session
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

// Authenticated is false until Restore has completed.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restored && s.session.IsAuthenticated
}

// Restored reports whether Restore (or a state transition) has completed.
func (s *Store) Restored() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restored
}
