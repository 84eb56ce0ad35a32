package main

import (
	"github.com/shanmuk27/smart-dustbin/internal/config"
	"github.com/shanmuk27/smart-dustbin/internal/logging"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(cfg.ServiceName)
}
