// Package testutil provides shared test fixtures used across this
// repository's package tests: a recording logger and a couple of
// canned objectmodel.Object builders.
package testutil

import (
	"sync"

	"github.com/hsn2-platform/worker-core/objectmodel"
)

// LogEntry represents a captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]any
}

// MockLogger implements logging.Logger, recording every call for
// assertion instead of writing anywhere.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{Logs: make([]LogEntry, 0)}
}

func (m *MockLogger) Debug(msg string, kv ...any) { m.log("debug", msg, kv...) }
func (m *MockLogger) Info(msg string, kv ...any)  { m.log("info", msg, kv...) }
func (m *MockLogger) Warn(msg string, kv ...any)  { m.log("warn", msg, kv...) }
func (m *MockLogger) Error(msg string, kv ...any) { m.log("error", msg, kv...) }

func (m *MockLogger) log(level, msg string, kv ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields := make(map[string]any)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			fields[key] = kv[i+1]
		}
	}
	m.Logs = append(m.Logs, LogEntry{Level: level, Message: msg, Fields: fields})
}

// GetLogs returns a copy of the captured logs.
func (m *MockLogger) GetLogs() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, len(m.Logs))
	copy(out, m.Logs)
	return out
}

// HasLog reports whether a log entry at level with message was recorded.
func (m *MockLogger) HasLog(level, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

// Clear discards captured logs.
func (m *MockLogger) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = nil
}

// NewTestObject builds an Object carrying a single string attribute,
// the shape most task-processing tests need as a stand-in object.
func NewTestObject(id uint64, attrName, attrValue string) *objectmodel.Object {
	obj := objectmodel.NewObject(id)
	obj.AddString(attrName, attrValue)
	return obj
}

// NewTestFlagObject builds an Object carrying a single empty-valued
// flag attribute, used for query-by-attribute-name fixtures.
func NewTestFlagObject(id uint64, flagName string) *objectmodel.Object {
	obj := objectmodel.NewObject(id)
	obj.AddFlag(flagName)
	return obj
}
