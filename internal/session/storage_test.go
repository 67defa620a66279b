// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/aromapure/internal/store"
)

// exerciseStorage runs the Storage contract against s using ctx.
func exerciseStorage(t *testing.T, ctx context.Context, s Storage) {
	t.Helper()

	_, err := s.Get(ctx, "slot")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "slot", []byte("one")))
	require.NoError(t, s.Put(ctx, "slot", []byte("two")))

	got, err := s.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	require.NoError(t, s.Delete(ctx, "slot"))
	require.NoError(t, s.Delete(ctx, "slot"), "delete of an empty slot succeeds")

	_, err = s.Get(ctx, "slot")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, context.Background(), NewMemoryStorage())
}

func TestMemoryStorage_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()

	buf := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", buf))
	buf[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStorage(t *testing.T) {
	exerciseStorage(t, context.Background(), NewFileStorage(filepath.Join(t.TempDir(), "sessions")))
}

func TestFileStorage_FileLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f := NewFileStorage(dir)

	require.NoError(t, f.Put(ctx, "../aromapure auth", []byte("{}")))

	path := f.Path("../aromapure auth")
	assert.Equal(t, dir, filepath.Dir(path), "keys must not escape the directory")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestFileStorage_SurvivesNewInstance(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := newTestStore(NewFileStorage(dir))
	_, err := s.Login(ctx, "Yash", "123", "user")
	require.NoError(t, err)

	fresh := newTestStore(NewFileStorage(dir))
	fresh.Restore(ctx)
	assert.True(t, fresh.Authenticated())
}

func TestSQLStorage(t *testing.T) {
	db, err := store.NewDB(filepath.Join(t.TempDir(), "slots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	exerciseStorage(t, context.Background(), NewSQLStorage(store.New(db)))
}

func TestSQLStorage_Unavailable(t *testing.T) {
	db, err := store.NewDB(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s := NewSQLStorage(store.New(db))
	_, err = s.Get(context.Background(), "slot")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rs := NewRedisStorage(client, "aromapure:session:")
	exerciseStorage(t, context.Background(), rs)

	require.NoError(t, rs.Put(context.Background(), "k", []byte("v")))
	assert.True(t, mr.Exists("aromapure:session:k"))
	assert.Zero(t, mr.TTL("aromapure:session:k"), "records carry no expiry")
}

func TestRedisStorage_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	s := newTestStore(NewRedisStorage(client, ""))
	s.Restore(context.Background())
	assert.True(t, s.Restored())
	assert.False(t, s.Authenticated())
}

func newSCS() *scs.SessionManager {
	sm := scs.New()
	sm.Store = memstore.New()
	return sm
}

func TestSCSStorage(t *testing.T) {
	sm := newSCS()
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)

	exerciseStorage(t, ctx, NewSCSStorage(sm))
}

func TestSCSStorage_NoSessionData(t *testing.T) {
	s := NewSCSStorage(newSCS())

	_, err := s.Get(context.Background(), "slot")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, s.Put(context.Background(), "slot", nil), ErrStorageUnavailable)
	assert.ErrorIs(t, s.Delete(context.Background(), "slot"), ErrStorageUnavailable)
}

func TestSCSStorage_WrongValueType(t *testing.T) {
	sm := newSCS()
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	sm.Put(ctx, DefaultKey, "not bytes")

	s := newTestStore(NewSCSStorage(sm))
	s.Restore(ctx)
	assert.False(t, s.Authenticated())
}
