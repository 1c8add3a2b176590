package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "json", Output: &buf})

	WithContext(Fields{"request_id": "abc"}).Error("login failed", errors.New("boom"), Fields{"user_id": 7})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "login failed", line["message"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "abc", line["request_id"])
	assert.EqualValues(t, 7, line["user_id"])
	assert.Contains(t, line["caller"], "logger_test.go")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "warn", Format: "json", Output: &buf})

	Info("hidden")
	assert.Zero(t, buf.Len())

	Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
