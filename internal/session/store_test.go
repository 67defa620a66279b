// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 12, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func demoVerifier() CredentialVerifier {
	return VerifierFunc(func(_ context.Context, username, password string) error {
		if username == "Yash" && password == "123" {
			return nil
		}
		return ErrInvalidCredentials
	})
}

func newTestStore(storage Storage) *Store {
	return NewStore(storage, demoVerifier(), WithClock(fixedClock), WithLogger(quietLogger()))
}

// failingStorage returns err from every operation.
type failingStorage struct {
	err error
}

func (f failingStorage) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStorage) Put(context.Context, string, []byte) error   { return f.err }
func (f failingStorage) Delete(context.Context, string) error        { return f.err }

func TestStore_InitialState(t *testing.T) {
	s := newTestStore(NewMemoryStorage())

	assert.False(t, s.Restored())
	assert.False(t, s.Authenticated())
	assert.Equal(t, Session{}, s.Session())
	assert.Equal(t, DefaultKey, s.Key())
}

func TestStore_LoginPersistsRecord(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	s := newTestStore(storage)

	sess, err := s.Login(ctx, "Yash", "123", "user")
	require.NoError(t, err)

	assert.True(t, sess.IsAuthenticated)
	require.NotNil(t, sess.User)
	assert.Equal(t, User{Username: "Yash", UserType: "user"}, *sess.User)
	assert.True(t, sess.IssuedAt.Equal(fixedNow))
	assert.True(t, s.Authenticated())

	data, err := storage.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"user":{"username":"Yash","userType":"user"},"timestamp":1734255000000}`,
		string(data))
}

func TestStore_LoginDefaultsUserType(t *testing.T) {
	s := newTestStore(NewMemoryStorage())

	sess, err := s.Login(context.Background(), "Yash", "123", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultUserType, sess.User.UserType)
}

func TestStore_LoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	s := newTestStore(storage)
	s.Restore(ctx)

	_, err := s.Login(ctx, "Yash", "wrong", "user")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	assert.False(t, s.Authenticated())
	_, err = storage.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound, "nothing must be written on failure")
}

func TestStore_LoginFailureKeepsExistingSession(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	s := newTestStore(storage)

	_, err := s.Login(ctx, "Yash", "123", "admin")
	require.NoError(t, err)
	before, _ := storage.Get(ctx, DefaultKey)

	_, err = s.Login(ctx, "Other", "nope", "user")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, "Yash", s.Session().Username())
	after, _ := storage.Get(ctx, DefaultKey)
	assert.Equal(t, before, after)
}

func TestStore_LoginWrapsVerifierErrors(t *testing.T) {
	boom := errors.New("directory offline")
	v := VerifierFunc(func(context.Context, string, string) error { return boom })
	s := NewStore(NewMemoryStorage(), v, WithLogger(quietLogger()))

	_, err := s.Login(context.Background(), "Yash", "123", "user")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.Authenticated())
}

func TestStore_LoginStorageFailureIsAtomic(t *testing.T) {
	s := newTestStore(failingStorage{err: errors.New("disk full")})

	_, err := s.Login(context.Background(), "Yash", "123", "user")
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.Session().User)
}

func TestStore_RestoreAfterLoginInFreshProcess(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	_, err := newTestStore(storage).Login(ctx, "Yash", "123", "user")
	require.NoError(t, err)

	fresh := newTestStore(storage)
	assert.False(t, fresh.Authenticated(), "not authenticated before restore")
	fresh.Restore(ctx)

	assert.True(t, fresh.Restored())
	assert.True(t, fresh.Authenticated())
	sess := fresh.Session()
	require.NotNil(t, sess.User)
	assert.Equal(t, "Yash", sess.User.Username)
	assert.Equal(t, "user", sess.User.UserType)
	assert.True(t, sess.IssuedAt.Equal(fixedNow))
}

func TestStore_LogoutThenRestore(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	s := newTestStore(storage)
	_, err := s.Login(ctx, "Yash", "123", "user")
	require.NoError(t, err)

	s.Logout(ctx)
	assert.False(t, s.Authenticated())
	assert.Equal(t, Session{}, s.Session())

	fresh := newTestStore(storage)
	fresh.Restore(ctx)
	assert.False(t, fresh.Authenticated())
}

func TestStore_LogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemoryStorage())

	s.Logout(ctx)
	s.Logout(ctx)
	assert.False(t, s.Authenticated())
}

func TestStore_LogoutClearsStateWhenDeleteFails(t *testing.T) {
	ctx := context.Background()
	storage := &flakyStorage{MemoryStorage: NewMemoryStorage()}
	s := newTestStore(storage)

	_, err := s.Login(ctx, "Yash", "123", "user")
	require.NoError(t, err)

	storage.failDelete = true
	s.Logout(ctx)
	assert.False(t, s.Authenticated())
}

type flakyStorage struct {
	*MemoryStorage
	failDelete bool
}

func (f *flakyStorage) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return ErrStorageUnavailable
	}
	return f.MemoryStorage.Delete(ctx, key)
}

func TestStore_RestoreDegradesToLoggedOut(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{not json"},
		{"empty object", "{}"},
		{"missing username", `{"user":{"userType":"user"},"timestamp":1}`},
		{"null user", `{"user":null,"timestamp":1}`},
		{"zero timestamp", `{"user":{"username":"Yash","userType":"user"},"timestamp":0}`},
		{"negative timestamp", `{"user":{"username":"Yash","userType":"user"},"timestamp":-5}`},
		{"wrong types", `{"user":"Yash","timestamp":"yesterday"}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage := NewMemoryStorage()
			require.NoError(t, storage.Put(ctx, DefaultKey, []byte(tt.data)))

			s := newTestStore(storage)
			s.Restore(ctx)

			assert.True(t, s.Restored())
			assert.False(t, s.Authenticated())
			assert.Nil(t, s.Session().User)
		})
	}
}

func TestStore_RestoreStorageUnavailable(t *testing.T) {
	s := newTestStore(failingStorage{err: errors.New("permission denied")})
	s.Restore(context.Background())

	assert.True(t, s.Restored())
	assert.False(t, s.Authenticated())
}

func TestStore_WithKey(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	s := NewStore(storage, demoVerifier(), WithKey("custom"), WithLogger(quietLogger()))

	_, err := s.Login(ctx, "Yash", "123", "user")
	require.NoError(t, err)

	_, err = storage.Get(ctx, "custom")
	require.NoError(t, err)
	_, err = storage.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SessionIsSnapshot(t *testing.T) {
	s := newTestStore(NewMemoryStorage())
	_, err := s.Login(context.Background(), "Yash", "123", "user")
	require.NoError(t, err)

	snap := s.Session()
	snap.User.Username = "mallory"
	assert.Equal(t, "Yash", s.Session().Username())
}

func TestRecord_RoundTrip(t *testing.T) {
	raw := `{"user":{"username":"Yash","userType":"admin"},"timestamp":1734255000000}`

	rec, err := DecodeRecord([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "admin", rec.User.UserType)
	assert.True(t, rec.IssuedAt().Equal(fixedNow))

	out, err := rec.Encode()
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestDecodeRecord_Corrupt(t *testing.T) {
	_, err := DecodeRecord([]byte("]"))
	assert.ErrorIs(t, err, ErrStorageCorrupt)
}

func TestSession_InvariantUserIffAuthenticated(t *testing.T) {
	var empty Session
	assert.False(t, empty.Authenticated())
	assert.Nil(t, empty.User)
	assert.Empty(t, empty.Username())
}
