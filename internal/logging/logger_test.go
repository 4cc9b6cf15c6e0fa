package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtx_IncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	ctx := WithRequestID(context.Background(), "req-123")
	Ctx(ctx).Info().Msg("hello")

	require.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Info().Msg("dropped")
	assert.Empty(t, buf.String())

	Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestRequestID_Missing(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
}
