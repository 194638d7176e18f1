package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	log     = logrus.New()
	logFile *os.File
)

func init() {
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
}

// Init sets the log level and, when logFilePath is not empty, mirrors the
// output into that file.
func Init(level string, logFilePath string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	if logFilePath == "" {
		return nil
	}

	Cleanup()
	logFile, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	return nil
}

// SetOutput redirects log output, mostly useful in tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Cleanup closes the log file if one is open.
func Cleanup() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
		log.SetOutput(os.Stdout)
	}
}

// Info logs msg with optional key/value pairs.
func Info(msg string, keyvals ...interface{}) {
	log.WithFields(fields(keyvals)).Info(msg)
}

// Warn logs msg with optional key/value pairs.
func Warn(msg string, keyvals ...interface{}) {
	log.WithFields(fields(keyvals)).Warn(msg)
}

// Error logs msg with optional key/value pairs.
func Error(msg string, keyvals ...interface{}) {
	log.WithFields(fields(keyvals)).Error(msg)
}

// Debug logs msg with optional key/value pairs.
func Debug(msg string, keyvals ...interface{}) {
	log.WithFields(fields(keyvals)).Debug(msg)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func fields(keyvals []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if i+1 < len(keyvals) {
			f[key] = keyvals[i+1]
		} else {
			f[key] = "(missing)"
		}
	}
	return f
}
