package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"", logrus.InfoLevel},
		{"debug", logrus.DebugLevel},
		{"WARN", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"trace", logrus.TraceLevel},
		{"loud", logrus.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, newLogger(tt.in, "").GetLevel(), tt.in)
	}
}

func TestNewLogger_Format(t *testing.T) {
	assert.IsType(t, &logrus.JSONFormatter{}, newLogger("", "").Formatter)
	assert.IsType(t, &logrus.JSONFormatter{}, newLogger("", "json").Formatter)
	assert.IsType(t, &logrus.TextFormatter{}, newLogger("", "Text").Formatter)
}
