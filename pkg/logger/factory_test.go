package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablepress/fablepress/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json format with service attribute", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Level: "info", Format: logger.FormatJSON, Service: "billing-core"}, &buf)
		log.Info("hello", logger.PlanID("hobbyist"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "hello", record["msg"])
		assert.Equal(t, "billing-core", record["service"])
		assert.Equal(t, "hobbyist", record["plan_id"])
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Level: "warn", Format: logger.FormatText}, &buf)
		log.Info("dropped")
		assert.Empty(t, buf.String())

		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("invalid level panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			logger.New(logger.Config{Level: "loud"}, nil)
		})
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			logger.New(logger.Config{Level: "info", Format: "xml"}, nil)
		})
	})
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "error", logger.Error(errors.New("boom")).Key)
	assert.Empty(t, logger.Error(nil).Key, "nil error yields empty attr")
	assert.Equal(t, "component", logger.Component("webhook").Key)
	assert.Empty(t, logger.AccountID(nil).Key)
	assert.Equal(t, "account_id", logger.AccountID("acc_1").Key)
	assert.Equal(t, "retry_count", logger.RetryCount(2).Key)
}
