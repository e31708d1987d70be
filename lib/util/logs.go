package util

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// SetLogLevel configures the logger level from the LOG_LEVEL env value,
// defaulting to info for unknown values.
func SetLogLevel(logger *logrus.Logger, level string) {
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
}
