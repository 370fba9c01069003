package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "heat-api", "warn")

	log.Info().Msg("hidden")
	assert.Equal(t, 0, buf.Len())

	log.Warn().Msg("shown")
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "heat-api", got["service"])
	assert.Equal(t, "shown", got["message"])
	assert.Contains(t, got, "time")
}

func TestNewWithWriter_BadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "heat-api", "loud")

	log.Info().Msg("x")
	assert.NotZero(t, buf.Len())
}
