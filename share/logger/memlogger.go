package logger

import (
	"fmt"
	"sync"
)

type memEntry struct {
	level LogLevel
	msg   string
}

type MemLogger struct {
	entries []memEntry
	mu      sync.Mutex
}

// NewMemLogger creates a logger that stores messages in memory
// used for early logging while the "real" file-based logger is not loaded yet.
func NewMemLogger() MemLogger {
	return MemLogger{}
}

func (ml *MemLogger) append(level LogLevel, msg string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.entries = append(ml.entries, memEntry{level: level, msg: msg})
}

func (ml *MemLogger) Debug(msg string) {
	ml.append(LogLevelDebug, msg)
}

func (ml *MemLogger) Debugf(msg string, args ...interface{}) {
	ml.Debug(fmt.Sprintf(msg, args...))
}

func (ml *MemLogger) Info(msg string) {
	ml.append(LogLevelInfo, msg)
}

func (ml *MemLogger) Infof(msg string, args ...interface{}) {
	ml.Info(fmt.Sprintf(msg, args...))
}

func (ml *MemLogger) Error(msg string) {
	ml.append(LogLevelError, msg)
}

func (ml *MemLogger) Errorf(msg string, args ...interface{}) {
	ml.Error(fmt.Sprintf(msg, args...))
}

// Flush replays the buffered messages to l in the order they were logged.
func (ml *MemLogger) Flush(l *Logger) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	for _, e := range ml.entries {
		l.Logf(e.level, "%s", e.msg)
	}
	ml.entries = nil
}
