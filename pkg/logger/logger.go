// Package logger provides the process-wide logging facade.
//
// All packages log through the printf-style helpers below instead of holding
// a logger instance. Call sites tag their module in brackets, e.g.
//
//	logger.Info("[Orchestrator] turn finished for role %s", roleID)
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var std = logrus.New()

func init() {
	std.SetOutput(os.Stdout)
	std.SetLevel(logrus.InfoLevel)
	std.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
}

var logFile *os.File

// InitLog routes log output to both stdout and the given file, creating
// parent directories as needed. It is called once from the app run func.
func InitLog(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory for %q: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q: %w", path, err)
	}
	logFile = f
	std.SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}

// FlushLog closes the log file if one was opened by InitLog.
func FlushLog() {
	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
		std.SetOutput(os.Stdout)
	}
}

// SetLevel changes the minimum level. Accepts logrus level names
// ("debug", "info", "warn", "error"); unknown names are ignored.
func SetLevel(level string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		std.SetLevel(lvl)
	}
}

func Debug(format string, args ...interface{}) { std.Debugf(format, args...) }
func Info(format string, args ...interface{})  { std.Infof(format, args...) }
func Warn(format string, args ...interface{})  { std.Warnf(format, args...) }
func Error(format string, args ...interface{}) { std.Errorf(format, args...) }
func Fatal(format string, args ...interface{}) { std.Fatalf(format, args...) }

// WithField returns a structured entry for call sites that want key=value
// output instead of the printf helpers.
func WithField(key string, value interface{}) *logrus.Entry {
	return std.WithField(key, value)
}
