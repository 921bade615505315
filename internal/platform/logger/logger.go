// Package logger configures the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"insurance_backend/internal/platform/config"
)

// New builds a logger from the settings. Console loggers write text to stdout, file loggers
// write JSON to a rotating file.
func New(s config.LoggerSettings) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(s.Level)}

	switch s.Type {
	case config.LogTypeConsole:
		return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
	case config.LogTypeFile:
		if s.FilePath == "" {
			return nil, fmt.Errorf("file path required for file logger")
		}
		return slog.New(slog.NewJSONHandler(rotatingWriter(s), opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log type: %s", s.Type)
	}
}

// Init builds the logger and installs it as the slog default.
func Init(s config.LoggerSettings) (*slog.Logger, error) {
	l, err := New(s)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	return l, nil
}

// ParseLevel maps a configured level name to a slog level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarning:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func rotatingWriter(s config.LoggerSettings) io.Writer {
	return &lumberjack.Logger{
		Filename:   s.FilePath,
		MaxSize:    s.MaxSize,
		MaxBackups: s.MaxBackups,
		MaxAge:     s.MaxAge,
		Compress:   true,
	}
}
