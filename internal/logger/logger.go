package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a thin wrapper over logrus that carries the service name and
// the current action as structured fields. Loggers are values; Action and
// With return derived loggers and never mutate the receiver.
type Logger struct {
	entry *logrus.Entry
}

// New builds a JSON logger for the given service at the given level
// (DEBUG, INFO, WARN or ERROR).
func New(service, level string) (Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return Logger{}, fmt.Errorf("parse log level: %w", err)
	}

	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetLevel(lvl)
	base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})

	hostname, _ := os.Hostname()
	return Logger{entry: base.WithFields(logrus.Fields{
		"service":  service,
		"hostname": hostname,
	})}, nil
}

// Action tags subsequent log lines with a short machine-readable action
// name, e.g. "db_connected" or "graceful_shutdown_started".
func (l Logger) Action(action string) Logger {
	return Logger{entry: l.entry.WithField("action", action)}
}

// With adds alternating key/value pairs as fields.
func (l Logger) With(kv ...any) Logger {
	return Logger{entry: l.entry.WithFields(fields(kv))}
}

func (l Logger) Debug(msg string, kv ...any) {
	l.entry.WithFields(fields(kv)).Debug(msg)
}

func (l Logger) Info(msg string, kv ...any) {
	l.entry.WithFields(fields(kv)).Info(msg)
}

func (l Logger) Warn(msg string, kv ...any) {
	l.entry.WithFields(fields(kv)).Warn(msg)
}

func (l Logger) Error(msg string, err error, kv ...any) {
	e := l.entry.WithFields(fields(kv))
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}

func fields(kv []any) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		f[key] = kv[i+1]
	}
	return f
}
