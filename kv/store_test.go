package kv_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-desk/config"
	"recipe-desk/kv"
)

func backends(t *testing.T) map[string]kv.Store {
	t.Helper()

	fileStore, err := kv.NewFile(filepath.Join(t.TempDir(), "slots.json"))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sqliteStore, err := kv.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "slots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]kv.Store{
		"memory": kv.NewMemory(),
		"file":   fileStore,
		"redis":  kv.NewRedis(client, "test:"),
		"sqlite": sqliteStore,
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("Should report missing key", func(t *testing.T) {
				v, ok, err := s.Get(ctx, "absent")
				require.NoError(t, err)
				assert.False(t, ok)
				assert.Empty(t, v)
			})

			t.Run("Should return what was set", func(t *testing.T) {
				require.NoError(t, s.Set(ctx, "recipeId", "7"))
				v, ok, err := s.Get(ctx, "recipeId")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "7", v)
			})

			t.Run("Should overwrite existing value", func(t *testing.T) {
				require.NoError(t, s.Set(ctx, "savedRecipes", "[]"))
				require.NoError(t, s.Set(ctx, "savedRecipes", `[{"id":1}]`))
				v, _, err := s.Get(ctx, "savedRecipes")
				require.NoError(t, err)
				assert.Equal(t, `[{"id":1}]`, v)
			})

			t.Run("Should distinguish empty value from missing", func(t *testing.T) {
				require.NoError(t, s.Set(ctx, "blank", ""))
				_, ok, err := s.Get(ctx, "blank")
				require.NoError(t, err)
				assert.True(t, ok)
			})
		})
	}
}

func TestFileReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "slots.json")
	ctx := context.Background()

	f, err := kv.NewFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "recipeId", "2"))

	reloaded, err := kv.NewFile(path)
	require.NoError(t, err)
	v, ok, err := reloaded.Get(ctx, "recipeId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestFileRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := kv.NewFile(path)
	assert.Error(t, err)
}

func TestRedisPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := kv.NewRedis(client, "desk:")
	require.NoError(t, s.Set(context.Background(), "recipeId", "4"))

	got, err := mr.Get("desk:recipeId")
	require.NoError(t, err)
	assert.Equal(t, "4", got)
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.db")
	ctx := context.Background()

	s, err := kv.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "recipeId", "9"))
	require.NoError(t, s.Close())

	s2, err := kv.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get(ctx, "recipeId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "9", v)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("Should open memory backend", func(t *testing.T) {
		s, closer, err := kv.Open(ctx, config.StorageConfig{Driver: "memory"})
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &kv.Memory{}, s)
	})

	t.Run("Should open redis backend", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, closer, err := kv.Open(ctx, config.StorageConfig{Driver: "redis", RedisAddr: mr.Addr()})
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &kv.Redis{}, s)
	})

	t.Run("Should fail on unreachable redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, _, err := kv.Open(ctx, config.StorageConfig{Driver: "redis", RedisAddr: addr})
		assert.Error(t, err)
	})

	t.Run("Should reject unknown driver", func(t *testing.T) {
		_, _, err := kv.Open(ctx, config.StorageConfig{Driver: "etcd"})
		assert.Error(t, err)
	})
}
