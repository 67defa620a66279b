// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session owns the authentication state of one device: who, if
// anyone, is logged in. The state is persisted to a single key-value slot
// so that it survives reloads and restarts until an explicit logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// DefaultKey is the storage slot holding the persisted record.
const DefaultKey = "aromapure_auth"

// DefaultUserType is applied when Login is called without a user type.
const DefaultUserType = "user"

var (
	// ErrInvalidCredentials is returned by Login when verification fails.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotFound is returned by Storage.Get when the slot is empty.
	ErrNotFound = errors.New("session slot is empty")

	// ErrStorageUnavailable marks a slot that could not be read or written.
	ErrStorageUnavailable = errors.New("session storage unavailable")

	// ErrStorageCorrupt marks a slot whose contents are not a valid record.
	ErrStorageCorrupt = errors.New("session record is corrupt")
)

// User identifies the logged-in account.
type User struct {
	Username string `json:"username"`
	UserType string `json:"userType"`
}

// Record is the persisted form of an authenticated session.
// Timestamp is the login time in Unix milliseconds.
type Record struct {
	User      User  `json:"user"`
	Timestamp int64 `json:"timestamp"`
}

// NewRecord builds a record for u issued at t.
func NewRecord(u User, t time.Time) Record {
	return Record{User: u, Timestamp: t.UnixMilli()}
}

// IssuedAt returns the record timestamp as a time.
func (r Record) IssuedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Valid reports whether the record carries a username and a positive timestamp.
func (r Record) Valid() bool {
	return r.User.Username != "" && r.Timestamp > 0
}

// Encode serializes the record.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRecord parses a persisted record. Any input that is not valid JSON
// or fails Valid yields ErrStorageCorrupt.
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, errors.Join(ErrStorageCorrupt, err)
	}
	if !r.Valid() {
		return Record{}, ErrStorageCorrupt
	}
	return r, nil
}

// Session is a snapshot of authentication state.
// User is non-nil exactly when IsAuthenticated is true.
type Session struct {
	IsAuthenticated bool      `json:"is_authenticated"`
	User            *User     `json:"user,omitempty"`
	IssuedAt        time.Time `json:"issued_at,omitzero"`
}

// Authenticated reports whether someone is logged in.
func (s Session) Authenticated() bool {
	return s.IsAuthenticated
}

// Username returns the logged-in username or "".
func (s Session) Username() string {
	if s.User == nil {
		return ""
	}
	return s.User.Username
}

// Storage is a key-value slot capability.
type Storage interface {
	// Get returns ErrNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete succeeds when the slot is already empty.
	Delete(ctx context.Context, key string) error
}

// CredentialVerifier checks a username and password.
type CredentialVerifier interface {
	// Verify returns nil on success and an error wrapping
	// ErrInvalidCredentials on mismatch.
	Verify(ctx context.Context, username, password string) error
}

// VerifierFunc adapts a function to CredentialVerifier.
type VerifierFunc func(ctx context.Context, username, password string) error

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, username, password string) error {
	return f(ctx, username, password)
}
