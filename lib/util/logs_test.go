package util

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"info", logrus.InfoLevel},
		{"", logrus.InfoLevel},
		{"other", logrus.InfoLevel},
	}

	for _, tt := range tests {
		logger := logrus.New()
		SetLogLevel(logger, tt.level)
		assert.Equal(t, tt.want, logger.GetLevel(), "level %q", tt.level)
	}
}
