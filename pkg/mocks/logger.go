package mocks

import (
	"fmt"
	"sync"

	"github.com/user/framerecorder/pkg/ports"
)

// LogEntry is a message captured by Logger.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// Logger is a mock implementation of ports.Logger that keeps every message.
type Logger struct {
	component string
	shared    *logStore
}

type logStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a new capturing Logger.
func NewLogger() *Logger {
	return &Logger{shared: &logStore{}}
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.add(ports.LevelDebug, msg, args) }
func (m *Logger) Info(msg string, args ...interface{})  { m.add(ports.LevelInfo, msg, args) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.add(ports.LevelWarn, msg, args) }
func (m *Logger) Error(msg string, args ...interface{}) { m.add(ports.LevelError, msg, args) }

func (m *Logger) WithComponent(component string) ports.Logger {
	return &Logger{component: component, shared: m.shared}
}

// Entries returns captured messages at or above level.
func (m *Logger) Entries(level ports.LogLevel) []LogEntry {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	var out []LogEntry
	for _, e := range m.shared.entries {
		if e.Level >= level {
			out = append(out, e)
		}
	}
	return out
}

func (m *Logger) add(level ports.LogLevel, msg string, args []interface{}) {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	m.shared.entries = append(m.shared.entries, LogEntry{
		Level:     level,
		Component: m.component,
		Message:   fmt.Sprintf(msg, args...),
	})
}

var _ ports.Logger = (*Logger)(nil)
