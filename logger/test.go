package logger

import "fmt"

// TestLogEntry is a single captured log call.
type TestLogEntry struct {
	Severity string
	Message  string
	Metadata map[string]interface{}
}

// TestLogger captures log entries for assertions in tests.
type TestLogger struct {
	metadata map[string]interface{}
	prefixes []string
	Logs     *[]TestLogEntry
	logLevel LogLevel
}

var _ Logger = (*TestLogger)(nil)

// NewTestLogger returns a logger that records every entry instead of writing it.
func NewTestLogger() *TestLogger {
	logs := make([]TestLogEntry, 0)
	return &TestLogger{
		metadata: make(map[string]interface{}),
		Logs:     &logs,
		logLevel: LevelTrace,
	}
}

// Entries returns everything logged so far.
func (c *TestLogger) Entries() []TestLogEntry {
	return *c.Logs
}

func (c *TestLogger) With(metadata map[string]interface{}) Logger {
	kv := make(map[string]interface{})
	for k, v := range c.metadata {
		kv[k] = v
	}
	for k, v := range metadata {
		kv[k] = v
	}
	return &TestLogger{metadata: kv, prefixes: c.prefixes, Logs: c.Logs, logLevel: c.logLevel}
}

func (c *TestLogger) WithPrefix(prefix string) Logger {
	prefixes := append(append([]string{}, c.prefixes...), prefix)
	return &TestLogger{metadata: c.metadata, prefixes: prefixes, Logs: c.Logs, logLevel: c.logLevel}
}

func (c *TestLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.logLevel
}

func (c *TestLogger) log(level LogLevel, msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	*c.Logs = append(*c.Logs, TestLogEntry{Severity: level.String(), Message: msg, Metadata: c.metadata})
}

func (c *TestLogger) Trace(msg string, args ...interface{}) { c.log(LevelTrace, msg, args...) }
func (c *TestLogger) Debug(msg string, args ...interface{}) { c.log(LevelDebug, msg, args...) }
func (c *TestLogger) Info(msg string, args ...interface{})  { c.log(LevelInfo, msg, args...) }
func (c *TestLogger) Warn(msg string, args ...interface{})  { c.log(LevelWarn, msg, args...) }
func (c *TestLogger) Error(msg string, args ...interface{}) { c.log(LevelError, msg, args...) }
