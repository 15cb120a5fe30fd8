package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf, ServiceName: "pdf-tools"})

	ctx := ContextWithRequestID(context.Background(), "req-42")
	logger.WithContext(ctx).WithOperation("merge").Info().Int("pages", 6).Msg("merged")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pdf-tools", entry["service"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "merge", entry["operation"])
	assert.Equal(t, float64(6), entry["pages"])
	assert.Equal(t, "merged", entry["message"])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Output: &buf})

	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestLogEvent_ArtifactAndErrorType(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "debug", Output: &buf})

	a := domain.Artifact{Category: domain.CategorySplit, Name: "split_x.pdf", Size: 2048}
	logger.Error().
		Artifact(a).
		Err(domain.ValidationError("No valid pages specified", domain.ErrSelectionEmpty)).
		Msg("split failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "split", entry["category"])
	assert.Equal(t, "split_x.pdf", entry["artifact"])
	assert.Equal(t, float64(2048), entry["bytes"])
	assert.Equal(t, "validation", entry["error_type"])
	assert.NotContains(t, entry, "service")
}

func TestNewLogger_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "chatty", Output: &buf})

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
