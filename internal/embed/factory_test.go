package embed

import (
	"context"
	"testing"

	"github.com/legalcase/caseintel/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine_DefaultsToStaticWhenBackendEmpty(t *testing.T) {
	e, err := NewEngine(context.Background(), config.EmbedConfig{})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()
	assert.Equal(t, []Slot{SlotDense}, e.ConfiguredSlots())
}

func TestNewEngine_StaticBackendExplicit(t *testing.T) {
	e, err := NewEngine(context.Background(), config.EmbedConfig{Backend: "static"})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()
	assert.IsType(t, &CachedEngine{}, e)
}

func TestNewEngine_UnknownBackendErrors(t *testing.T) {
	_, err := NewEngine(context.Background(), config.EmbedConfig{Backend: "bogus"})
	require.Error(t, err)
}

func TestNewEngine_NativeBackendFailsWithoutModelWeights(t *testing.T) {
	_, err := NewEngine(context.Background(), config.EmbedConfig{
		Backend:        "native",
		DenseModelPath: "/nonexistent/path/to/model.so",
	})
	require.Error(t, err)
}
