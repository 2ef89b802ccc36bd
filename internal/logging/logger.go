// Package logging provides centralized logging functionality for the application.
//
// Logs go to stderr: stdout is reserved for the MCP stdio transport.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug for detailed troubleshooting information.
	LevelDebug LogLevel = "debug"
	// LevelInfo for general operational information.
	LevelInfo LogLevel = "info"
	// LevelWarn for potentially harmful situations.
	LevelWarn LogLevel = "warn"
	// LevelError for error events that might still allow the application to continue.
	LevelError LogLevel = "error"
)

// AutoLogFile selects the default dated log file location.
const AutoLogFile = "auto"

var (
	// defaultLogger is the default logger instance.
	defaultLogger *slog.Logger
)

// init initializes the default logger.
func init() {
	// Get log level from environment variable, default to "info"
	logLevelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = string(LevelInfo)
	}

	SetupLogger(os.Stderr, LogLevel(logLevelStr))
}

// SetupLogger configures the logger with the specified output and level.
func SetupLogger(w io.Writer, level LogLevel) {
	opts := &slog.HandlerOptions{
		Level: level.slogLevel(),
	}

	handler := slog.NewTextHandler(w, opts)
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Configure sets up the logger on stderr and, when file is not empty, on an
// append-mode log file as well. The returned closer releases the file.
func Configure(level, file, appName string) (io.Closer, error) {
	lvl := LogLevel(strings.ToLower(level))
	if file == "" {
		SetupLogger(os.Stderr, lvl)
		return nopCloser{}, nil
	}

	if file == AutoLogFile {
		path, err := DefaultLogFilePath(appName, time.Now())
		if err != nil {
			return nil, err
		}
		file = path
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	logFile, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	SetupLogger(io.MultiWriter(os.Stderr, logFile), lvl)
	return logFile, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// DefaultLogFilePath returns ~/.<appName>/logs/<appName>-<date>.log.
func DefaultLogFilePath(appName string, now time.Time) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	logFileName := fmt.Sprintf("%s-%s.log", appName, now.Format("2006-01-02"))
	return filepath.Join(homeDir, "."+appName, "logs", logFileName), nil
}

// Debug logs a message at debug level.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs a message at info level.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a message at warn level.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs a message at error level.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// GetLogger returns the default logger.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// MaskSensitive masks sensitive data for logging. Only the length is kept.
func MaskSensitive(value string) string {
	if value == "" {
		return "<not set>"
	}
	return fmt.Sprintf("<set, %d chars>", len(value))
}
