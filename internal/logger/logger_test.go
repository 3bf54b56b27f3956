package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hoossayn/hottakes-backend/internal/config"
	"github.com/Hoossayn/hottakes-backend/internal/logger"
)

func TestLReturnsNonNilBeforeInit(t *testing.T) {
	require.NotNil(t, logger.L())
}

func TestInitIsRepeatable(t *testing.T) {
	logger.Init(&logger.Config{Level: "debug", Format: logger.FormatJSON, Component: "test"})
	first := logger.L()
	require.NotNil(t, first)

	logger.Init(&logger.Config{Level: "warn", Format: logger.FormatText})
	assert.NotNil(t, logger.L())
}

func TestInitFromConfig(t *testing.T) {
	cfg := config.New()
	cfg.Log.Level = "error"
	cfg.Log.Format = "json"
	cfg.Log.Component = "hottakes_test"

	logger.InitFromConfig(cfg)
	require.NotNil(t, logger.L())

	logger.InitFromConfig(nil)
	require.NotNil(t, logger.L())
}

func TestWithReturnsChild(t *testing.T) {
	child := logger.With("request_id", "abc")
	require.NotNil(t, child)
}
