package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bookchat/internal/config"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		KeyPrefix:    "bookchat:",
	}

	rs, err := NewRedis(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rs.Close() })
	return rs, mr
}

func newStores(t *testing.T) map[string]Store {
	fs, err := NewFile(filepath.Join(t.TempDir(), "session.json"), nil)
	require.NoError(t, err)

	key, err := ParseKey(testKey)
	require.NoError(t, err)
	encrypted, err := NewFile(filepath.Join(t.TempDir(), "session.bin"), key)
	require.NoError(t, err)

	rs, _ := setupTestRedis(t)

	return map[string]Store{
		"memory":    NewMemory(),
		"file":      fs,
		"encrypted": encrypted,
		"redis":     rs,
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()

	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, KeyAccessToken, "tok"))
			require.NoError(t, s.Set(ctx, KeyRole, "admin"))

			v, ok, err := s.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "tok", v)

			require.NoError(t, s.Delete(ctx, KeyAccessToken, KeyRole, "missing"))

			_, ok, err = s.Get(ctx, KeyRole)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	first, err := NewFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyConversationID, "c1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := NewFile(path, nil)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, KeyConversationID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c1", v)
}

func TestFile_EncryptedContentIsOpaque(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.bin")
	key, err := ParseKey(testKey)
	require.NoError(t, err)

	fs, err := NewFile(path, key)
	require.NoError(t, err)
	require.NoError(t, fs.Set(ctx, KeyAccessToken, "secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "secret-token"))

	otherKey, err := ParseKey(strings.Repeat("ff", 32))
	require.NoError(t, err)
	wrong, err := NewFile(path, otherKey)
	require.NoError(t, err)

	_, _, err = wrong.Get(ctx, KeyAccessToken)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestParseKey(t *testing.T) {
	_, err := ParseKey("abc")
	assert.ErrorIs(t, err, ErrInvalidKey)

	k, err := ParseKey(testKey)
	require.NoError(t, err)
	assert.Len(t, k, 32)
}

func TestRedis_UsesPrefix(t *testing.T) {
	rs, mr := setupTestRedis(t)

	require.NoError(t, rs.Set(context.Background(), KeyRole, "user"))

	v, err := mr.Get("bookchat:role")
	require.NoError(t, err)
	assert.Equal(t, "user", v)
}

func TestNewRedis_InvalidAddr(t *testing.T) {
	rs, err := NewRedis(context.Background(), config.RedisConnection{AddressRedis: "127.0.0.1:1"})
	assert.Nil(t, rs)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.Storage.Backend = BackendMemory
	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	cfg.Storage.Backend = BackendFile
	cfg.Storage.Path = filepath.Join(t.TempDir(), "s.json")
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	cfg.Storage.EncryptionKey = "bad"
	_, err = Open(ctx, cfg)
	assert.ErrorIs(t, err, ErrInvalidKey)

	cfg.Storage.Backend = "sqlite"
	_, err = Open(ctx, cfg)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestCredentials(t *testing.T) {
	ctx := context.Background()
	creds := NewCredentials(NewMemory())

	require.NoError(t, creds.Save(ctx, "tok", "admin"))
	require.NoError(t, creds.SetConversationID(ctx, "conv"))

	token, err := creds.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	require.NoError(t, creds.Clear(ctx))

	token, err = creds.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	role, err := creds.Role(ctx)
	require.NoError(t, err)
	assert.Empty(t, role)

	conv, err := creds.ConversationID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "conv", conv)

	require.NoError(t, creds.SetConversationID(ctx, ""))
	conv, err = creds.ConversationID(ctx)
	require.NoError(t, err)
	assert.Empty(t, conv)
}
