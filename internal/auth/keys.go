// Package auth provides password hashing, PASETO token issuance, and the
// server's symmetric key management.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// keyFileName is where the token key lives under the data directory.
const keyFileName = "auth.key"

// PASETO v4.local needs a 256-bit symmetric key, stored hex encoded.
const (
	keyLen    = 32
	keyHexLen = 64
)

// LoadOrGenerateKey returns the server's token key, creating and persisting
// one under dataPath on first start. The decoded 32-byte key is returned.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, keyFileName)

	//#nosec G304 -- keyPath is built from the configured data directory
	raw, err := os.ReadFile(keyPath)
	if err == nil {
		return decodeKeyFile(raw)
	}

	key := make([]byte, keyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("persist auth key: %w", err)
	}

	return key, nil
}

// decodeKeyFile validates and decodes a persisted key file.
func decodeKeyFile(raw []byte) ([]byte, error) {
	keyHex := strings.TrimSpace(string(raw))
	if len(keyHex) != keyHexLen {
		return nil, fmt.Errorf("auth key file: expected %d hex chars, got %d", keyHexLen, len(keyHex))
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("auth key file: %w", err)
	}
	return key, nil
}
