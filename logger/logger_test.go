package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetLevelFromEnv(t *testing.T) {
	original := os.Getenv("DUGOUT_LOG_LEVEL")
	defer os.Setenv("DUGOUT_LOG_LEVEL", original)

	os.Setenv("DUGOUT_LOG_LEVEL", "trace")
	assert.Equal(t, LevelTrace, GetLevelFromEnv())
	os.Setenv("DUGOUT_LOG_LEVEL", "ERROR")
	assert.Equal(t, LevelError, GetLevelFromEnv())
	os.Setenv("DUGOUT_LOG_LEVEL", "bogus")
	assert.Equal(t, LevelInfo, GetLevelFromEnv())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "TRACE", LevelTrace.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "NONE", LevelNone.String())
}

func TestConsoleLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := &consoleLogger{metadata: make(map[string]interface{}), sink: &buf, logLevel: LevelWarn}

	l.Debug("should not appear")
	l.Info("should not appear either")
	assert.Empty(t, buf.String())

	l.Warn("warned about %s", "something")
	assert.Contains(t, buf.String(), "warned about something")
}

func TestConsoleLoggerMetadataAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	var l Logger = &consoleLogger{metadata: make(map[string]interface{}), sink: &buf, logLevel: LevelTrace}
	l = l.WithPrefix("cache").With(map[string]interface{}{"key": "roster"})

	l.Info("hit")
	out := buf.String()
	assert.Contains(t, out, "cache")
	assert.Contains(t, out, "key=roster")

	// Same prefix twice is not repeated.
	buf.Reset()
	l.WithPrefix("cache").Info("hit")
	assert.Contains(t, buf.String(), "cache hit")
}

func TestJSONLoggerEntryShape(t *testing.T) {
	var buf bytes.Buffer
	now := time.Now()
	var l Logger = &jsonLogger{metadata: make(map[string]interface{}), sink: &buf, logLevel: LevelTrace, ts: &now}
	l = l.WithPrefix("store").With(map[string]interface{}{"table": "batting_stats"})

	l.Error("request failed: %d", 503)

	var entry JSONLogEntry
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry.Severity)
	assert.Equal(t, "request failed: 503", entry.Message)
	assert.Equal(t, "store", entry.Component)
	assert.Equal(t, "batting_stats", entry.Metadata["table"])
}

func TestJSONLoggerComponentViaMetadata(t *testing.T) {
	var buf bytes.Buffer
	var l Logger = &jsonLogger{metadata: make(map[string]interface{}), sink: &buf, logLevel: LevelTrace}
	l.With(map[string]interface{}{"component": "querycache"}).Info("ready")

	var entry JSONLogEntry
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "querycache", entry.Component)
	assert.NotContains(t, entry.Metadata, "component")
}

func TestTestLoggerCaptures(t *testing.T) {
	l := NewTestLogger()
	l.WithPrefix("x").Info("one")
	l.With(map[string]interface{}{"n": 2}).Warn("two %d", 2)

	entries := l.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0].Severity)
	assert.Equal(t, "two 2", entries[1].Message)
	assert.Equal(t, 2, entries[1].Metadata["n"])
}
