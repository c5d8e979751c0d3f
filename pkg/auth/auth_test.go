package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator@example.com",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return signed
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := ExpiresAt(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = ExpiresAt("not-a-jwt")
	assert.False(t, ok)
	_, ok = ExpiresAt("")
	assert.False(t, ok)
}

func TestExpired(t *testing.T) {
	now := time.Now()
	fresh := signedToken(t, now.Add(10*time.Minute))
	stale := signedToken(t, now.Add(-time.Minute))
	nearly := signedToken(t, now.Add(20*time.Second))

	assert.False(t, Expired(fresh, now, 30*time.Second))
	assert.True(t, Expired(stale, now, 0))
	assert.True(t, Expired(nearly, now, 30*time.Second))
	assert.False(t, Expired("opaque-token", now, time.Hour))
}

func TestFileStore_RoundTripAndPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicedesk", "tokens.json")
	store := NewFileStore(path)

	tokens, err := store.Load()
	require.NoError(t, err)
	assert.True(t, tokens.Empty())

	require.NoError(t, store.Save(Tokens{AccessToken: "a", RefreshToken: "r"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Tokens{AccessToken: "a", RefreshToken: "r"}, loaded)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"access_token"`)
	assert.Contains(t, string(raw), `"refresh_token"`)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.True(t, loaded.Empty())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(Tokens{AccessToken: "seed"})
	tokens, _ := store.Load()
	assert.Equal(t, "seed", tokens.AccessToken)
	require.NoError(t, store.Clear())
	tokens, _ = store.Load()
	assert.True(t, tokens.Empty())
}
