package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := New("debug", "json")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = New("chatty", "text")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "json")
	log.SetOutput(&buf)

	LogError(log, "services", "notifyPayment", "payment notification failed", uint(7), errors.New("gateway down"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "gateway down", entry["msg"])
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "services", entry["module"])
	assert.Equal(t, "notifyPayment", entry["funcName"])
	assert.Equal(t, float64(7), entry["data"])
}
