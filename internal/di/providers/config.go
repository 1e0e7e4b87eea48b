package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/linkcardapp/linkcard-server/internal/config"
	"github.com/linkcardapp/linkcard-server/internal/logger"
)

// ProvideConfig loads the application configuration.
func ProvideConfig(_ do.Injector) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// ProvideLogger creates the application logger from config.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
		AddSource:   cfg.App.Environment == "development",
	})

	log.Info("Logger initialized",
		"level", cfg.Logger.Level,
		"environment", cfg.App.Environment,
	)

	return log, nil
}
