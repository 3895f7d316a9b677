package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, found, "empty store should not find token")

	require.NoError(t, s.Set(ctx, "token", "t1"))
	require.NoError(t, s.Set(ctx, "user", `{"email":"a@b.c"}`))

	v, found, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "t1", v)

	require.NoError(t, s.Set(ctx, "token", "t2"))
	v, _, err = s.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "t2", v, "set should overwrite")

	require.NoError(t, s.Remove(ctx, "token"))
	_, found, err = s.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Remove(ctx, "missing"), "removing a missing key is not an error")

	v, found, err = s.Get(ctx, "user")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"email":"a@b.c"}`, v)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFile(t.TempDir()))
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, NewFile(dir).Set(ctx, "token", "persisted"))

	v, found, err := NewFile(dir).Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "persisted", v)

	info, err := os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0600))

	f := NewFile(dir)
	_, _, err := f.Get(context.Background(), "token")
	assert.Error(t, err)

	// Writes recover by starting a fresh file
	require.NoError(t, f.Set(context.Background(), "token", "t1"))
	v, found, err := f.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "t1", v)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", SQLiteFileName))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("CABDESK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CABDESK_TEST_REDIS_URL not set")
	}

	s, err := OpenRedis(context.Background(), url)
	require.NoError(t, err)
	defer s.Close()

	s.prefix = "cabdesk:test:" + t.Name() + ":"
	exerciseStore(t, s)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindFile, false},
		{"FILE", KindFile, false},
		{" sqlite ", KindSQLite, false},
		{"redis", KindRedis, false},
		{"memory", KindMemory, false},
		{"etcd", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseKind(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Kind: KindFile, ConfigDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	s, err = Open(ctx, Options{Kind: KindMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open(ctx, Options{Kind: KindFile})
	assert.Error(t, err, "file store without a directory")

	_, err = Open(ctx, Options{Kind: KindRedis})
	assert.Error(t, err, "redis store without a URL")
}
