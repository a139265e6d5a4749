package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	t.Setenv("LOG_TIMESTAMP", "2024-01-01T00:00:00Z")

	require.NoError(t, SetFormat(format))
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		_ = SetFormat(FormatConsole)
		_ = SetPackageLogLevels(map[string]string{})
		_ = Initialize("info")
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLogs(t, FormatConsole)
	require.NoError(t, Initialize("warn"))

	logger := GetLogger("analysis.orchestrator")
	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warn("warn %d", 3)
	logger.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "error 4")
	assert.Contains(t, out, "analysis.orchestrator")
	assert.Contains(t, out, "2024-01-01T00:00:00Z")
}

func TestPackageLevelOverrides(t *testing.T) {
	buf := captureLogs(t, FormatConsole)
	require.NoError(t, Initialize("info", map[string]string{
		"verdict.*":    "debug",
		"verdict.rest": "error",
	}))

	GetLogger("verdict.adapter").Debug("adapter debug")
	GetLogger("verdict.rest").Warn("rest warn")
	GetLogger("apiserver").Debug("server debug")

	out := buf.String()
	assert.Contains(t, out, "adapter debug")
	assert.NotContains(t, out, "rest warn", "exact override beats wildcard")
	assert.NotContains(t, out, "server debug")
}

func TestGetPackageLogLevel(t *testing.T) {
	captureLogs(t, FormatConsole)
	require.NoError(t, SetPackageLogLevels(map[string]string{
		"analysis.*":     "debug",
		"analysis.run.*": "error",
	}))

	tests := []struct {
		name     string
		expected LogLevel
	}{
		{"analysis.orchestrator", DEBUG},
		{"analysis.run.fetch", ERROR},
		{"analysis", LogLevel(-1)},
		{"apiserver", LogLevel(-1)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetPackageLogLevel(tt.name), "level for %s", tt.name)
	}
}

func TestSetPackageLogLevelsRejectsInvalid(t *testing.T) {
	captureLogs(t, FormatConsole)
	err := SetPackageLogLevels(map[string]string{"verdict": "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verdict")
}

func TestStructuredFieldsJSON(t *testing.T) {
	buf := captureLogs(t, FormatJSON)
	require.NoError(t, Initialize("debug"))

	logger := GetLogger("topology").WithField("variant", "governance")
	ctx := context.WithValue(context.Background(), TraceIDKey(), "trace-123")
	logger.WithContext(ctx).InfoWithFields("topology built",
		Field("nodes", 4),
		Field("variant", "market"),
	)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	assert.Equal(t, "topology built", record["msg"])
	assert.Equal(t, "topology", record["logger"])
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "market", record["variant"], "call-site fields win over persistent fields")
	assert.Equal(t, float64(4), record["nodes"])
	assert.Equal(t, "trace-123", record["trace_id"])
}

func TestErrorWithErr(t *testing.T) {
	buf := captureLogs(t, FormatJSON)
	require.NoError(t, Initialize("info"))

	GetLogger("verdict.adapter").ErrorWithErr("verdict for %s failed", errors.New("boom"), "Delhi")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	assert.Equal(t, "verdict for Delhi failed", record["msg"])
	assert.Equal(t, "boom", record["error"])
}

func TestFatalCallsExitFunc(t *testing.T) {
	buf := captureLogs(t, FormatConsole)
	require.NoError(t, Initialize("info"))

	var code int
	old := exitFunc
	exitFunc = func(c int) { code = c }
	defer func() { exitFunc = old }()

	GetLogger("cmd").Fatal("cannot start: %s", "port in use")
	assert.Equal(t, 1, code)
	assert.True(t, strings.Contains(buf.String(), "cannot start: port in use"))
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	parent := GetLogger("parent").WithField("a", 1)
	child := parent.WithFields(Field("b", 2))

	assert.Len(t, parent.fields, 1)
	assert.Len(t, child.fields, 2)
}

func TestSetFormatRejectsUnknown(t *testing.T) {
	captureLogs(t, FormatConsole)
	assert.Error(t, SetFormat("xml"))
}
