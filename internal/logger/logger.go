package logger

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// The MCP wire protocol owns stdout, so logs default to stderr. A log
// file can be added on top for debugging client sessions.

var (
	mu         sync.Mutex
	defaultLog *logrus.Logger
	logFile    *os.File
)

func init() {
	defaultLog = logrus.New()
	defaultLog.SetOutput(os.Stderr)
	defaultLog.SetLevel(logrus.InfoLevel)
	defaultLog.SetReportCaller(true)
	defaultLog.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02T15:04:05.000Z07:00",
		CallerPrettyfier: callerPrettyfier,
	})
}

// SetDebug switches the default logger between debug and info level.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		defaultLog.SetLevel(logrus.DebugLevel)
	} else {
		defaultLog.SetLevel(logrus.InfoLevel)
	}
}

// SetLogFile mirrors log output to the given file in addition to stderr.
// Passing an empty path reverts to stderr only.
func SetLogFile(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	if path == "" {
		defaultLog.SetOutput(os.Stderr)
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	logFile = f
	defaultLog.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

// SetOutput redirects log output entirely, used by tests to silence logs.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	defaultLog.SetOutput(w)
}

// WithField returns an entry carrying a structured field.
func WithField(key string, value any) *logrus.Entry {
	return defaultLog.WithField(key, value)
}

// WithFields returns an entry carrying several structured fields.
func WithFields(fields map[string]any) *logrus.Entry {
	return defaultLog.WithFields(logrus.Fields(fields))
}

func Debug(format string, args ...any) {
	defaultLog.Debugf(format, args...)
}

func Info(format string, args ...any) {
	defaultLog.Infof(format, args...)
}

func Warn(format string, args ...any) {
	defaultLog.Warnf(format, args...)
}

func Error(format string, args ...any) {
	defaultLog.Errorf(format, args...)
}

func Fatal(format string, args ...any) {
	defaultLog.Fatalf(format, args...)
}

// callerPrettyfier trims caller info down to function name and file:line.
func callerPrettyfier(frame *runtime.Frame) (string, string) {
	funcName := frame.Function
	if idx := strings.LastIndex(funcName, "/"); idx != -1 {
		funcName = funcName[idx+1:]
	}
	return funcName, filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
}
