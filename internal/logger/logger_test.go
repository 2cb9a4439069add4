package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/internal/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json format with service attribute", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log, err := logger.New(logger.Config{Level: "info", Format: "json", Service: "gateway"}, logger.WithOutput(&buf))
		require.NoError(t, err)

		log.Info("started", "addr", ":8080")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "started", record["msg"])
		assert.Equal(t, "gateway", record["service"])
		assert.Equal(t, ":8080", record["addr"])
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log, err := logger.New(logger.Config{Level: "warn", Format: "text"}, logger.WithOutput(&buf))
		require.NoError(t, err)

		log.Info("dropped")
		log.Warn("kept")

		out := buf.String()
		assert.NotContains(t, out, "dropped")
		assert.Contains(t, out, "kept")
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		t.Parallel()

		_, err := logger.New(logger.Config{Level: "verbose", Format: "json"})
		require.ErrorIs(t, err, logger.ErrInvalidLevel)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		_, err := logger.New(logger.Config{Level: "info", Format: "xml"})
		require.ErrorIs(t, err, logger.ErrInvalidFormat)
	})
}

func TestErrorAttr(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Error(nil).Equal(logger.Error(nil)))
	attr := logger.Error(assert.AnError)
	assert.Equal(t, "error", attr.Key)
}
