package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitializeProduction(t *testing.T) {
	Initialize("production")
	require.NotNil(t, Log)
	assert.True(t, Log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, Log.Core().Enabled(zapcore.DebugLevel), "debug is disabled in production")
}

func TestInitializeDevelopment(t *testing.T) {
	Initialize("development")
	require.NotNil(t, Log)
	assert.True(t, Log.Core().Enabled(zapcore.DebugLevel))
}
