package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	l, err := New(false, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))

	l, err = New(true, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}

func TestForProvider(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	ForProvider(zap.New(core), "games").Info("fetched")
	ForProvider(zap.New(core), "").Info("no provider")

	entries := observed.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "games", entries[0].ContextMap()[FieldProvider])
	assert.NotContains(t, entries[1].ContextMap(), FieldProvider)

	assert.NotPanics(t, func() { ForProvider(nil, "x").Info("nop") })
}
