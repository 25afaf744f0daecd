package logging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	err := InitLogger("personia-test")
	require.NoError(t, err)
	assert.NotNil(t, Logger)
	assert.Same(t, Logger, zap.L())
}

func TestInitLogger_WithLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Unsetenv("LOG_LEVEL")

	err := InitLogger("personia-test")
	require.NoError(t, err)
	assert.True(t, Logger.Core().Enabled(zap.DebugLevel))
}

func TestInitLogger_WithInvalidLogLevel(t *testing.T) {
	// Invalid levels fall back to the production default (info)
	os.Setenv("LOG_LEVEL", "invalid")
	defer os.Unsetenv("LOG_LEVEL")

	err := InitLogger("personia-test")
	require.NoError(t, err)
	assert.False(t, Logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, Logger.Core().Enabled(zap.InfoLevel))
}

func TestNamed(t *testing.T) {
	Logger = zap.NewNop()
	assert.NotNil(t, Named("person_service"))
}
