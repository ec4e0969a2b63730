package logger

import (
	"sync"
)

type TestLogEntry struct {
	Severity  string
	Message   string
	Arguments []interface{}
	Metadata  map[string]interface{}
}

// testLogSink is shared by a TestLogger and every logger derived from it.
type testLogSink struct {
	mu   sync.Mutex
	logs []TestLogEntry
}

// TestLogger records log calls in memory. It is safe for concurrent use.
type TestLogger struct {
	metadata map[string]interface{}
	prefix   string
	sink     *testLogSink
}

var _ Logger = (*TestLogger)(nil)

func (c *TestLogger) WithPrefix(prefix string) Logger {
	return &TestLogger{metadata: c.metadata, prefix: c.prefix + prefix + " ", sink: c.sink}
}

func (c *TestLogger) With(metadata map[string]interface{}) Logger {
	kv := make(map[string]interface{}, len(c.metadata)+len(metadata))
	for k, v := range c.metadata {
		kv[k] = v
	}
	for k, v := range metadata {
		kv[k] = v
	}
	return &TestLogger{metadata: kv, prefix: c.prefix, sink: c.sink}
}

func (c *TestLogger) IsLevelEnabled(level LogLevel) bool {
	return level != LevelNone
}

func (c *TestLogger) Log(level string, msg string, args ...interface{}) {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	c.sink.logs = append(c.sink.logs, TestLogEntry{level, c.prefix + msg, args, c.metadata})
}

func (c *TestLogger) Trace(msg string, args ...interface{}) {
	c.Log("TRACE", msg, args...)
}

func (c *TestLogger) Debug(msg string, args ...interface{}) {
	c.Log("DEBUG", msg, args...)
}

func (c *TestLogger) Info(msg string, args ...interface{}) {
	c.Log("INFO", msg, args...)
}

func (c *TestLogger) Warn(msg string, args ...interface{}) {
	c.Log("WARNING", msg, args...)
}

func (c *TestLogger) Error(msg string, args ...interface{}) {
	c.Log("ERROR", msg, args...)
}

// Logs returns a copy of the recorded entries.
func (c *TestLogger) Logs() []TestLogEntry {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	out := make([]TestLogEntry, len(c.sink.logs))
	copy(out, c.sink.logs)
	return out
}

// Count returns how many entries were recorded with the given severity.
func (c *TestLogger) Count(severity string) int {
	var n int
	for _, e := range c.Logs() {
		if e.Severity == severity {
			n++
		}
	}
	return n
}

// NewTestLogger returns a new Logger instance useful for testing
func NewTestLogger() *TestLogger {
	return &TestLogger{sink: &testLogSink{}}
}
