package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is a thin key/value front for logrus. Calls take a message followed by
// alternating keys and values: log.Info("Cache hit", "pair", "USD-EUR").
type Logger struct {
	entry *logrus.Entry
}

func NewLogger(level string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return NewWithLogger(l)
}

// NewWithLogger wraps an existing logrus logger, e.g. one built by hooks/test.
func NewWithLogger(l *logrus.Logger) *Logger {
	return &Logger{entry: logrus.NewEntry(l)}
}

// With returns a child logger that always carries the given key/value pairs.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{entry: l.entry.WithFields(fields(kv))}
}

func (l *Logger) Debug(msg string, kv ...any) {
	l.entry.WithFields(fields(kv)).Debug(msg)
}

func (l *Logger) Info(msg string, kv ...any) {
	l.entry.WithFields(fields(kv)).Info(msg)
}

func (l *Logger) Warn(msg string, kv ...any) {
	l.entry.WithFields(fields(kv)).Warn(msg)
}

func (l *Logger) Error(msg string, kv ...any) {
	l.entry.WithFields(fields(kv)).Error(msg)
}

func fields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			f[key] = "(MISSING)"
			break
		}
		f[key] = kv[i+1]
	}
	return f
}
