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

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvToken, "")
	return home
}

func TestTokenRoundTripThroughFile(t *testing.T) {
	home := isolate(t)

	ti, err := GetToken()
	require.NoError(t, err)
	assert.Nil(t, ti)

	require.NoError(t, SetToken("Bearer abc", nil))
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".circles", "credentials.json"), p)
	fi, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	ti, err = GetToken()
	require.NoError(t, err)
	require.NotNil(t, ti)
	assert.Equal(t, "abc", ti.Token)
	assert.Equal(t, SourceFile, ti.Source)
	assert.Equal(t, "abc", Bearer())

	require.NoError(t, DeleteToken())
	require.NoError(t, DeleteToken())
	assert.Empty(t, Bearer())
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	require.NoError(t, SetToken("from-file", nil))
	t.Setenv(EnvToken, "bearer from-env")

	ti, err := GetToken()
	require.NoError(t, err)
	assert.Equal(t, "from-env", ti.Token)
	assert.Equal(t, SourceEnv, ti.Source)
}

func TestSetTokenRejectsEmpty(t *testing.T) {
	isolate(t)
	require.Error(t, SetToken("  ", nil))
	require.Error(t, SetToken("Bearer ", nil))
}

func TestSetTokenReplacesFile(t *testing.T) {
	home := isolate(t)
	require.NoError(t, SetToken("first", nil))
	require.NoError(t, SetToken("second", nil))
	assert.Equal(t, "second", Bearer())

	entries, err := os.ReadDir(filepath.Join(home, ".circles"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}

func TestJWTExpiryAndClaims(t *testing.T) {
	isolate(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	require.NoError(t, SetToken(signed, nil))
	ti, err := GetToken()
	require.NoError(t, err)
	require.NotNil(t, ti.ExpiresAt)
	assert.True(t, exp.Equal(*ti.ExpiresAt))
	assert.False(t, ti.Expired(time.Now()))
	assert.True(t, ti.Expired(exp.Add(time.Minute)))

	claims, err := Claims(signed)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["sub"])

	_, err = Claims("opaque-token")
	require.Error(t, err)
}
