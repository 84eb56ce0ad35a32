package logging

import (
	"go.uber.org/zap"
)

// NewLogger creates a new structured logger
func NewLogger(serviceName string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
	}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}

// WithDustbin returns a logger with a dustbin_id field
func WithDustbin(logger *zap.Logger, dustbinID string) *zap.Logger {
	return logger.With(zap.String("dustbin_id", dustbinID))
}
