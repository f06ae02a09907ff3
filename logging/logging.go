// Package logging defines the diagnostic sink the resolution pipeline writes
// to, plus a logrus-backed production implementation.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Logger is the leveled diagnostic sink used across the library. Recoverable
// but notable events (missing attribute, dangling membership reference,
// skipped claim) are reported here rather than failing a resolution.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// LogrusLogger adapts a logrus logger, tagging every event with a subsystem
// field so co-hosted components stay distinguishable.
type LogrusLogger struct {
	logger    *logrus.Logger
	subsystem string
}

// NewLogrusLogger wraps the given logrus logger. A nil logger uses the
// logrus standard logger.
func NewLogrusLogger(logger *logrus.Logger, subsystem string) *LogrusLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusLogger{logger: logger, subsystem: subsystem}
}

func (l *LogrusLogger) entry(fields map[string]any) *logrus.Entry {
	e := l.logger.WithField("subsystem", l.subsystem)
	if len(fields) > 0 {
		e = e.WithFields(logrus.Fields(fields))
	}
	return e
}

func (l *LogrusLogger) Debug(msg string, fields map[string]any) {
	l.entry(fields).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, fields map[string]any) {
	l.entry(fields).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, fields map[string]any) {
	l.entry(fields).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, fields map[string]any) {
	l.entry(fields).Error(msg)
}

// Nop discards all events. Useful default for library consumers and tests.
type Nop struct{}

func (Nop) Debug(string, map[string]any) {}
func (Nop) Info(string, map[string]any)  {}
func (Nop) Warn(string, map[string]any)  {}
func (Nop) Error(string, map[string]any) {}
