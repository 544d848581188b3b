package google

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func withTempCacheDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	return dir
}

func TestHasTokenForAccount(t *testing.T) {
	withTempCacheDir(t)

	assert.False(t, HasTokenForAccount("default"))

	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}
	require.NoError(t, writeTokenFile("default", token))

	assert.True(t, HasTokenForAccount("default"))
	assert.False(t, HasTokenForAccount("other"))
}

func TestTokenFileRoundTrip(t *testing.T) {
	withTempCacheDir(t)

	want := &oauth2.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}
	require.NoError(t, writeTokenFile("work", want))

	got, err := readTokenFile("work")
	require.NoError(t, err)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.True(t, want.Expiry.Equal(got.Expiry))
}

func TestReadTokenFileErrors(t *testing.T) {
	dir := withTempCacheDir(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := readTokenFile("missing")
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		file := filepath.Join(dir, "meetsched", "google-corrupt.token")
		require.NoError(t, os.MkdirAll(filepath.Dir(file), 0700))
		require.NoError(t, os.WriteFile(file, []byte("not json"), 0600))

		_, err := readTokenFile("corrupt")
		assert.ErrorContains(t, err, "invalid token file")
	})

	t.Run("empty credentials", func(t *testing.T) {
		file := filepath.Join(dir, "meetsched", "google-empty.token")
		data, err := json.Marshal(&oauth2.Token{})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(file, data, 0600))

		_, err = readTokenFile("empty")
		assert.ErrorContains(t, err, "no credentials")
	})
}

func TestGetTokenSourceForAccountMissingToken(t *testing.T) {
	withTempCacheDir(t)

	_, err := GetTokenSourceForAccount(context.Background(), "default")
	assert.ErrorContains(t, err, "no valid Google OAuth token")
}

func TestFileTokenProvider(t *testing.T) {
	withTempCacheDir(t)

	provider := NewFileTokenProvider()
	assert.False(t, provider.HasTokenForAccount("default"))

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
	require.NoError(t, writeTokenFile("default", token))

	assert.True(t, provider.HasTokenForAccount("default"))

	got, err := provider.GetTokenForAccount(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
}

func TestGetOAuthConfigScopes(t *testing.T) {
	conf := GetOAuthConfig()
	assert.Equal(t, DefaultOAuthScopes, conf.Scopes)
	assert.Contains(t, conf.Scopes, "https://www.googleapis.com/auth/gmail.send")
	assert.Contains(t, conf.Scopes, "https://www.googleapis.com/auth/calendar.readonly")
}
