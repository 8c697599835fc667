// Package logger wraps logrus for console-only structured logging: a
// short-lived CLI pass has no use for a rotating log file, only the
// console stream an operator is watching.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger logs to stdout through logrus.
type Logger struct {
	console *logrus.Logger
}

// Config selects the console log level and format.
type Config struct {
	Level  string
	Format string
}

// NewLogger creates a console logger. An unparseable Level falls back to
// Info.
func NewLogger(cfg *Config) (*Logger, error) {
	console := logrus.New()

	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	console.SetLevel(lvl)

	if cfg.Format == "json" {
		console.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		console.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	console.SetOutput(os.Stdout)

	return &Logger{console: console}, nil
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.entry(fields...).Info(msg)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.entry(fields...).Warn(msg)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.entry(fields...).Error(msg)
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.entry(fields...).Debug(msg)
}

func (l *Logger) entry(fields ...interface{}) *logrus.Entry {
	if len(fields) == 0 {
		return logrus.NewEntry(l.console)
	}
	return l.console.WithFields(l.parseFields(fields...))
}

// parseFields converts variadic key/value pairs to logrus.Fields.
func (l *Logger) parseFields(fields ...interface{}) logrus.Fields {
	result := make(logrus.Fields)
	for i := 0; i < len(fields)-1; i += 2 {
		if key, ok := fields[i].(string); ok {
			result[key] = fields[i+1]
		}
	}
	return result
}
