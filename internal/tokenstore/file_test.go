package tokenstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ejci/tado-data-capture/internal/tado"
)

func TestFileStore_LoadAbsent(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "token.json"), nil)

	tokens, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, tokens)
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0600))

	store := NewFileStore(path, nil)

	tokens, err := store.Load()
	require.NoError(t, err, "corruption must not be fatal")
	assert.Nil(t, tokens)
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "token.json")
	store := NewFileStore(path, nil)

	saved := &tado.TokenSet{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		ExpiresIn:    599,
		Scope:        "offline_access home.user",
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	// Token files hold credentials and must not be world readable.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileStore(path, nil)

	require.NoError(t, store.Save(&tado.TokenSet{AccessToken: "old", RefreshToken: "old-refresh"}))
	require.NoError(t, store.Save(&tado.TokenSet{AccessToken: "new"}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", loaded.AccessToken)
	assert.Empty(t, loaded.RefreshToken, "token sets are replaced, not merged")
}
