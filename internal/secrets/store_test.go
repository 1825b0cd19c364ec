package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenStoreRoundTripPerHost(t *testing.T) {
	s := &TokenStore{Dir: filepath.Join(t.TempDir(), "nested")}

	require.NoError(t, s.Save("https://api.school.test/api", "tok-1"))
	require.NoError(t, s.Save("http://localhost:8080/api", "tok-2"))

	got, err := s.Fetch("https://API.school.test/other")
	require.NoError(t, err)
	require.Equal(t, "tok-1", got)

	got, err = s.Fetch("http://localhost:8080")
	require.NoError(t, err)
	require.Equal(t, "tok-2", got)

	raw, err := os.ReadFile(filepath.Join(s.Dir, fileName))
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "tok-1"), "token must not be stored in clear text")

	info, err := os.Stat(filepath.Join(s.Dir, fileName))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestTokenStoreDelete(t *testing.T) {
	s := &TokenStore{Dir: t.TempDir()}
	require.NoError(t, s.Delete("http://localhost:8080/api"))

	require.NoError(t, s.Save("http://localhost:8080/api", "tok"))
	require.NoError(t, s.Delete("http://localhost:8080/api"))

	_, err := s.Fetch("http://localhost:8080/api")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTokenStoreRejectsBadInput(t *testing.T) {
	s := &TokenStore{Dir: t.TempDir()}
	require.Error(t, s.Save("not a url", "tok"))
	require.Error(t, s.Save("http://localhost", "  "))
	_, err := s.Fetch("")
	require.Error(t, err)
}
