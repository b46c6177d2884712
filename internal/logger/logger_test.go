package logger_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	logpkg "github.com/maxviazov/gps-performance-service/internal/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *logpkg.LoggerConfig
		expectError bool
	}{
		{
			name: "valid production environment",
			config: &logpkg.LoggerConfig{
				ServiceName:    "gps-performance-service",
				ServiceVersion: "0.1.0",
				Env:            "prod",
				Level:          "info",
			},
			expectError: false,
		},
		{
			name:        "defaults fill everything",
			config:      &logpkg.LoggerConfig{},
			expectError: false,
		},
		{
			name: "invalid environment",
			config: &logpkg.LoggerConfig{
				ServiceName: "gps-performance-service",
				Env:         "wrong-env",
				Level:       "info",
			},
			expectError: true,
		},
		{
			name: "invalid level",
			config: &logpkg.LoggerConfig{
				Env:   "prod",
				Level: "loud",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := logpkg.New(tt.config)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNew_ChildLoggersInheritLevel(t *testing.T) {
	l, err := logpkg.New(&logpkg.LoggerConfig{Env: "prod", Level: "warn"})
	assert.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	child := l.With().Str("module", "service").Logger()
	assert.NotNil(t, child)
}
