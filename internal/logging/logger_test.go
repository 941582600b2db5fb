package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"inventory/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		enabled zapcore.Level
		wantErr bool
	}{
		{name: "console info", cfg: config.LoggingConfig{Level: "info", Format: "console"}, enabled: zapcore.InfoLevel},
		{name: "json debug", cfg: config.LoggingConfig{Level: "debug", Format: "json"}, enabled: zapcore.DebugLevel},
		{name: "bad level", cfg: config.LoggingConfig{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.enabled-1))
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
