package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the production logger when environment is "production" and the
// development one otherwise. A non-empty level overrides the default.
func New(environment, level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}
