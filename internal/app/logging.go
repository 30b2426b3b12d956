package app

import "github.com/famboard/famboard/pkg/logger"

// ConfigureLogging initialises the global logger from configuration.
func ConfigureLogging(cfg LoggingConfig) error {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	return logger.InitWith(logger.Options{Level: level, Format: cfg.Format})
}
