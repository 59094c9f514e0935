package uistate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/phoneauth/pkg/logger"
	"github.com/dmitrymomot/phoneauth/pkg/redis"
	"github.com/dmitrymomot/phoneauth/pkg/secrets"
	"github.com/dmitrymomot/phoneauth/pkg/uistate"
)

type snapshot struct {
	VerificationID string `json:"verification_id"`
	InProgress     bool   `json:"in_progress"`
}

// exerciseBackend runs the contract every backend shares.
func exerciseBackend(t *testing.T, b uistate.Backend[snapshot]) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Load(ctx)
	require.ErrorIs(t, err, uistate.ErrNoSnapshot)

	want := snapshot{VerificationID: "vid-1", InProgress: true}
	require.NoError(t, b.Save(ctx, want))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.InProgress = false
	require.NoError(t, b.Save(ctx, want))
	got, err = b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, b.Clear(ctx))
	require.NoError(t, b.Clear(ctx))
	_, err = b.Load(ctx)
	assert.ErrorIs(t, err, uistate.ErrNoSnapshot)
}

func TestMemory(t *testing.T) {
	t.Parallel()
	m := uistate.NewMemory[snapshot]()
	exerciseBackend(t, m)

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Save(context.Background(), snapshot{}), uistate.ErrBackendClosed)
}

func TestFile(t *testing.T) {
	t.Parallel()

	t.Run("contract", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "state.json")
		f, err := uistate.NewFile[snapshot](path)
		require.NoError(t, err)
		assert.Equal(t, path, f.Path())
		exerciseBackend(t, f)
	})

	t.Run("leaves no temporary files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		f, err := uistate.NewFile[snapshot](filepath.Join(dir, "state.json"))
		require.NoError(t, err)
		require.NoError(t, f.Save(context.Background(), snapshot{VerificationID: "x"}))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "state.json", entries[0].Name())
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		f, err := uistate.NewFile[snapshot](path)
		require.NoError(t, err)

		_, err = f.Load(context.Background())
		assert.ErrorIs(t, err, uistate.ErrInvalidSnapshot)
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		_, err := uistate.NewFile[snapshot]("")
		assert.ErrorIs(t, err, uistate.ErrMissingFilePath)
	})
}

func newSealer(t *testing.T) *secrets.Sealer {
	t.Helper()
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	s, err := secrets.NewSealer(key, uistate.SealPurpose)
	require.NoError(t, err)
	return s
}

func TestFile_Encrypted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.bin")

	f, err := uistate.NewFile[snapshot](path, uistate.WithSealer(newSealer(t)))
	require.NoError(t, err)
	exerciseBackend(t, f)

	require.NoError(t, f.Save(ctx, snapshot{VerificationID: "vid-secret"}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "vid-secret")

	other, err := uistate.NewFile[snapshot](path, uistate.WithSealer(newSealer(t)))
	require.NoError(t, err)
	_, err = other.Load(ctx)
	assert.ErrorIs(t, err, uistate.ErrInvalidSnapshot, "another key cannot open it")

	plain, err := uistate.NewFile[snapshot](path)
	require.NoError(t, err)
	_, err = plain.Load(ctx)
	assert.ErrorIs(t, err, uistate.ErrInvalidSnapshot)
}

func newStorage(t *testing.T) (*miniredis.Miniredis, *redis.Storage) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := redis.NewStorage(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestRedis(t *testing.T) {
	t.Parallel()

	t.Run("contract", func(t *testing.T) {
		t.Parallel()
		_, store := newStorage(t)
		r, err := uistate.NewRedis[snapshot](store, "phoneauth:ui_state", time.Minute)
		require.NoError(t, err)
		exerciseBackend(t, r)
	})

	t.Run("snapshot expires", func(t *testing.T) {
		t.Parallel()
		mr, store := newStorage(t)
		r, err := uistate.NewRedis[snapshot](store, "k", time.Minute)
		require.NoError(t, err)

		require.NoError(t, r.Save(context.Background(), snapshot{VerificationID: "vid"}))
		mr.FastForward(2 * time.Minute)

		_, err = r.Load(context.Background())
		assert.ErrorIs(t, err, uistate.ErrNoSnapshot)
	})

	t.Run("empty key", func(t *testing.T) {
		t.Parallel()
		_, store := newStorage(t)
		_, err := uistate.NewRedis[snapshot](store, "", 0)
		assert.ErrorIs(t, err, uistate.ErrMissingRedisKey)
	})
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	quiet := uistate.WithLogger(logger.Discard())

	t.Run("memory by default", func(t *testing.T) {
		t.Parallel()
		b, err := uistate.Open[snapshot](ctx, uistate.Config{}, quiet)
		require.NoError(t, err)
		assert.IsType(t, &uistate.Memory[snapshot]{}, b)
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		b, err := uistate.Open[snapshot](ctx, uistate.Config{
			Backend:  uistate.BackendFile,
			FilePath: filepath.Join(t.TempDir(), "state.json"),
		}, quiet)
		require.NoError(t, err)
		exerciseBackend(t, b)
	})

	t.Run("redis connects from config", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		b, err := uistate.Open[snapshot](ctx, uistate.Config{
			Backend:  uistate.BackendRedis,
			RedisKey: "state",
			TTL:      time.Minute,
		}, quiet, uistate.WithRedisConfig(redis.Config{
			ConnectionURL:  "redis://" + mr.Addr() + "/0",
			RetryAttempts:  1,
			ConnectTimeout: time.Second,
		}))
		require.NoError(t, err)
		t.Cleanup(func() { _ = b.Close() })
		exerciseBackend(t, b)
	})

	t.Run("redis reuses storage", func(t *testing.T) {
		t.Parallel()
		_, store := newStorage(t)
		b, err := uistate.Open[snapshot](ctx, uistate.Config{
			Backend:  uistate.BackendRedis,
			RedisKey: "state",
		}, quiet, uistate.WithRedisStorage(store))
		require.NoError(t, err)
		require.NoError(t, b.Close())

		require.NoError(t, store.Set(ctx, "still-open", []byte("1"), 0))
	})

	t.Run("encrypted redis", func(t *testing.T) {
		t.Parallel()
		mr, store := newStorage(t)
		key, err := secrets.GenerateKey()
		require.NoError(t, err)

		b, err := uistate.Open[snapshot](ctx, uistate.Config{
			Backend:       uistate.BackendRedis,
			RedisKey:      "state",
			EncryptionKey: secrets.EncodeKey(key),
		}, quiet, uistate.WithRedisStorage(store))
		require.NoError(t, err)
		exerciseBackend(t, b)

		require.NoError(t, b.Save(ctx, snapshot{VerificationID: "vid-secret"}))
		raw, err := mr.Get("state")
		require.NoError(t, err)
		assert.NotContains(t, raw, "vid-secret")
	})

	t.Run("bad encryption key", func(t *testing.T) {
		t.Parallel()
		_, err := uistate.Open[snapshot](ctx, uistate.Config{
			Backend:       uistate.BackendFile,
			FilePath:      filepath.Join(t.TempDir(), "state.json"),
			EncryptionKey: "c2hvcnQ=",
		}, quiet)
		assert.ErrorIs(t, err, secrets.ErrInvalidKey)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Parallel()
		_, err := uistate.Open[snapshot](ctx, uistate.Config{Backend: "etcd"}, quiet)
		assert.ErrorIs(t, err, uistate.ErrUnknownBackend)
	})
}
