package auth

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrGenerateKey_PersistsAcrossCalls(t *testing.T) {
	dataPath := t.TempDir()

	first, err := LoadOrGenerateKey(dataPath)
	require.NoError(t, err)
	require.Len(t, first, keyLen)

	second, err := LoadOrGenerateKey(dataPath)
	require.NoError(t, err)
	assert.Equal(t, first, second, "the key survives a restart")

	// The key file itself is hex encoded with owner-only permissions.
	raw, err := os.ReadFile(filepath.Join(dataPath, keyFileName))
	require.NoError(t, err)
	decoded, err := hex.DecodeString(string(raw))
	require.NoError(t, err)
	assert.Equal(t, first, decoded)
}

func TestLoadOrGenerateKey_RejectsCorruptKeyFile(t *testing.T) {
	dataPath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataPath, keyFileName), []byte("too-short"), 0o600))

	_, err := LoadOrGenerateKey(dataPath)
	assert.Error(t, err)
}
