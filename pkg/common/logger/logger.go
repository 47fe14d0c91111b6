package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Log = newLogger(os.Stdout, "info")

// Init reconfigures the shared logger from LOG_LEVEL. Packages may log before
// Init runs; they get the info level JSON defaults.
func Init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	Log = newLogger(os.Stdout, level)
}

// Silence discards all output, used by tests and the CLI's quiet mode.
func Silence() {
	Log.SetOutput(io.Discard)
}

func newLogger(out io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	l.SetLevel(logLevel)
	return l
}

func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}
