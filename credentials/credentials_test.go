package credentials

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *SQLiteCache {
	t.Helper()

	dsn := fmt.Sprintf("file:sdgrab-test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	cache, err := OpenSQLiteCache(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestHashPassword(t *testing.T) {
	// sha1("password")
	assert.Equal(t, "5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8", HashPassword("password"))
	assert.Equal(t, HashPassword("s3cret"), HashPassword("s3cret"))
	assert.NotEqual(t, HashPassword("s3cret"), HashPassword("s3cret "))
}

func TestHashPassword_StableAcrossRuns(t *testing.T) {
	ctx := context.Background()
	source := Source{Username: "viewer", Password: "hunter2"}

	var hashes []string
	for i := 0; i < 2; i++ {
		// A fresh, empty cache per run simulates a cleared cache between processes.
		provider := NewProvider(newTestCache(t), source, zerolog.Nop())
		creds, err := provider.Load(ctx)
		require.NoError(t, err)
		hashes = append(hashes, creds.PasswordHash)
	}

	assert.Equal(t, hashes[0], hashes[1])
}

func TestSQLiteCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	_, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := Credentials{Username: "viewer", PasswordHash: HashPassword("pw")}
	require.NoError(t, cache.Save(ctx, want))

	got, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	updated := Credentials{Username: "viewer", PasswordHash: HashPassword("new")}
	require.NoError(t, cache.Save(ctx, updated))

	got, ok, err = cache.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, updated, got)

	require.NoError(t, cache.Clear(ctx))
	_, ok, err = cache.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteCache_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sdgrab.db")

	first, err := OpenSQLiteCache(ctx, path)
	require.NoError(t, err)
	want := Credentials{Username: "viewer", PasswordHash: HashPassword("pw")}
	require.NoError(t, first.Save(ctx, want))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteCache(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	got, ok, err := second.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestOpenSQLiteCache_EmptyPath(t *testing.T) {
	_, err := OpenSQLiteCache(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path is required")
}

func TestProvider_Load(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		cached      *Credentials
		source      Source
		want        Credentials
		wantSetting string
		wantSaves   int
	}{
		{
			name:      "cache hit ignores source",
			cached:    &Credentials{Username: "cached", PasswordHash: "abc"},
			source:    Source{Username: "env", Password: "pw"},
			want:      Credentials{Username: "cached", PasswordHash: "abc"},
			wantSaves: 1,
		},
		{
			name:      "cache miss derives and writes through",
			source:    Source{Username: " env ", Password: "pw"},
			want:      Credentials{Username: "env", PasswordHash: HashPassword("pw")},
			wantSaves: 1,
		},
		{
			name:        "missing username",
			source:      Source{Password: "pw"},
			wantSetting: "SD_USER",
		},
		{
			name:        "missing password",
			source:      Source{Username: "env"},
			wantSetting: "SD_PWD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			if tt.cached != nil {
				require.NoError(t, store.Save(ctx, *tt.cached))
			}

			provider := NewProvider(store, tt.source, zerolog.Nop())
			got, err := provider.Load(ctx)

			if tt.wantSetting != "" {
				var storeErr *StoreError
				require.ErrorAs(t, err, &storeErr)
				assert.Equal(t, tt.wantSetting, storeErr.Setting)
				assert.ErrorIs(t, err, ErrMissingSetting)
				assert.Zero(t, store.Saves())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSaves, store.Saves())
		})
	}
}

func TestProvider_SecondLoadHitsCache(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	provider := NewProvider(store, Source{Username: "env", Password: "pw"}, zerolog.Nop())

	first, err := provider.Load(ctx)
	require.NoError(t, err)
	second, err := provider.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.Saves())
}

type failingStore struct{ err error }

func (f failingStore) Load(context.Context) (Credentials, bool, error) {
	return Credentials{}, false, f.err
}

func (f failingStore) Save(context.Context, Credentials) error { return f.err }

func TestProvider_StoreFailureIsStoreError(t *testing.T) {
	boom := errors.New("disk full")
	provider := NewProvider(failingStore{err: boom}, Source{Username: "u", Password: "p"}, zerolog.Nop())

	_, err := provider.Load(context.Background())

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "load", storeErr.Op)
	assert.ErrorIs(t, err, boom)
}

func TestProvider_NilCache(t *testing.T) {
	provider := NewProvider(nil, Source{Username: "u", Password: "p"}, zerolog.Nop())

	_, err := provider.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoCache)

	err = provider.Save(context.Background(), Credentials{Username: "u", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrNoCache)
}

func TestProvider_SaveRejectsIncomplete(t *testing.T) {
	provider := NewProvider(NewMemoryStore(), Source{}, zerolog.Nop())

	err := provider.Save(context.Background(), Credentials{Username: "u"})
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestStoreError(t *testing.T) {
	err := &StoreError{Op: "load", Setting: "SD_USER", Err: ErrMissingSetting}
	assert.Equal(t, "credential store load: SD_USER: required setting is missing", err.Error())

	err = &StoreError{Op: "save", Err: ErrNoCache}
	assert.Equal(t, "credential store save: credential cache is not configured", err.Error())
}
