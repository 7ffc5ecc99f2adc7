package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	log, err := New("debug", true)
	require.NoError(t, err)
	assert.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))

	log, err = New("", false)
	require.NoError(t, err)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("chatty", false)
	assert.Error(t, err)
}
