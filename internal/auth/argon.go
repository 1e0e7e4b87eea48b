package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. These follow the OWASP baseline for interactive
// logins; hashes record their own parameters, so they can be raised later
// without invalidating existing accounts.
const (
	argonMemory      = 64 * 1024
	argonIterations  = 3
	argonParallelism = 4
	argonSaltLen     = 16
	argonKeyLen      = 32

	// Hashing cost scales with input size, so absurdly long passwords are
	// rejected outright.
	maxPasswordLen = 1024
)

var (
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password exceeds maximum length")
)

// HashPassword hashes a password with Argon2id and returns it in PHC string
// format, parameters included.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordLen {
		return "", ErrPasswordTooLong
	}

	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

// VerifyPassword checks a password against a PHC-encoded Argon2id hash.
// Malformed hashes verify as false rather than erroring, so callers cannot
// distinguish a bad password from a bad stored hash.
func VerifyPassword(encodedHash, password string) (bool, error) {
	if len(password) > maxPasswordLen {
		return false, nil
	}

	salt, want, params, err := parseHash(encodedHash)
	if err != nil {
		//nolint:nilerr // Deliberate: hash format problems must look like a failed match
		return false, nil
	}

	got := argon2.IDKey([]byte(password), salt, params.iterations, params.memory, params.parallelism, params.keyLen)

	// Constant-time comparison.
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// hashParams are the cost parameters recorded inside an encoded hash.
type hashParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	keyLen      uint32
}

// parseHash splits a PHC string of the form
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash> into its parts.
func parseHash(encoded string) (salt, hash []byte, params *hashParams, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, nil, nil, errors.New("malformed hash")
	}
	if parts[1] != "argon2id" {
		return nil, nil, nil, fmt.Errorf("unsupported algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("parse version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible argon2 version %d", version)
	}

	params = &hashParams{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.iterations, &params.parallelism); err != nil {
		return nil, nil, nil, fmt.Errorf("parse parameters: %w", err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, nil, fmt.Errorf("decode salt: %w", err)
	}
	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	//nolint:gosec // Hash length is bounded by the encoding above
	params.keyLen = uint32(len(hash))

	return salt, hash, params, nil
}
