package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	Setup("info", "json", &buf)

	WithComponent("dispute-service").Info("dispute resolved", "dispute_id", "DSP-1")
	Debug("hidden at info level")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "dispute resolved", record["msg"])
	assert.Equal(t, "dispute-service", record["component"])
	assert.Equal(t, "DSP-1", record["dispute_id"])
	assert.Equal(t, "marketplace-admin", record["app"])
}

func TestDatabaseResult_LogsFailuresAtError(t *testing.T) {
	var buf bytes.Buffer
	Setup("error", "text", &buf)

	DatabaseResult("save_dispute", 1, nil)
	assert.Empty(t, buf.String())

	DatabaseResult("save_dispute", 0, errors.New("connection reset"))
	assert.Contains(t, buf.String(), "connection reset")
	assert.Contains(t, buf.String(), "operation=save_dispute")
}
