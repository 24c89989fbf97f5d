package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetupLoggerJSON(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	require.NoError(t, setupLogger(&buf, slog.LevelInfo, "json"))

	LogError(context.Background(), errors.New("boom"), "save failed", Fields{"goal_id": "g1"})

	out := buf.String()
	assert.Contains(t, out, `"msg":"save failed"`)
	assert.Contains(t, out, `"goal_id":"g1"`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestSetupLoggerRejectsUnknownFormat(t *testing.T) {
	err := setupLogger(&bytes.Buffer{}, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
