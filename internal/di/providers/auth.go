package providers

import (
	"encoding/hex"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/linkcardapp/linkcard-server/internal/auth"
	"github.com/linkcardapp/linkcard-server/internal/config"
	"github.com/linkcardapp/linkcard-server/internal/logger"
)

// AuthKey is the PASETO symmetric key used to sign access tokens.
type AuthKey []byte

// ProvideAuthKey loads the token signing key from disk, generating one on
// first boot. The key is also written back into the config so downstream
// consumers see a fully populated AuthConfig.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load auth key: %w", err)
	}

	cfg.Auth.AccessTokenKey = key
	log.Debug("Auth key ready", "path", cfg.Data.BasePath)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(
		hex.EncodeToString(key),
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
}
