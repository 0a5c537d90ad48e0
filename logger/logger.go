/*
The logger package wraps zerolog with the conventions used throughout the
ferrite client library: every component gets its own child logger keyed by a
"component" field, and connections are tracked by a generated connection id so
that the frames of one connection can be traced through the logs.
*/
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	// Writers to receive human-readable console output, e.g. os.Stdout
	ConsoleWriters []io.Writer

	// If set, logs are also written to this file with rotation
	FilePath string

	// Zero value is zerolog's DebugLevel
	LogLevel zerolog.Level
}

type Logger struct {
	logger zerolog.Logger
}

const (
	maxLogFileSizeMB = 100
	maxLogFileCount  = 10
	maxLogFileAgeDay = 30
)

func New(config *Config) (*Logger, error) {
	// Let's us display stack info on errors
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		return fmt.Sprintf("%+v", err)
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	writers := []io.Writer{}

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create log directory for %s: %w", config.FilePath, err)
		}

		writers = append(writers, &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    maxLogFileSizeMB,
			MaxBackups: maxLogFileCount,
			MaxAge:     maxLogFileAgeDay,
			Compress:   true,
		})
	}

	for _, writer := range config.ConsoleWriters {
		writers = append(writers, zerolog.ConsoleWriter{Out: writer})
	}

	if len(writers) == 0 {
		return nil, fmt.Errorf("logger requires at least one file or console writer")
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(config.LogLevel).
		With().
		Timestamp().
		Logger()

	return &Logger{
		logger: logger,
	}, nil
}

func ToLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.DebugLevel
	}
}

func (l *Logger) AddClientVersion(version string) {
	l.logger = l.logger.With().Str("clientVersion", version).Logger()
}

func (l *Logger) GetComponentLogger(component string) *Logger {
	return &Logger{
		logger: l.logger.With().Str("component", component).Logger(),
	}
}

// GetConnectionLogger tags a child logger with a fresh connection id so that
// all log lines of one connection can be grepped together.
func (l *Logger) GetConnectionLogger() *Logger {
	return &Logger{
		logger: l.logger.With().Str("connectionId", uuid.New().String()).Logger(),
	}
}

func (l *Logger) Trace(msg string) {
	l.logger.Trace().Msg(msg)
}

func (l *Logger) Tracef(format string, a ...interface{}) {
	l.logger.Trace().Msgf(format, a...)
}

func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

func (l *Logger) Debugf(format string, a ...interface{}) {
	l.logger.Debug().Msgf(format, a...)
}

func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *Logger) Infof(format string, a ...interface{}) {
	l.logger.Info().Msgf(format, a...)
}

func (l *Logger) Error(err error) {
	l.logger.Error().Stack().Err(err).Msg("")
}

func (l *Logger) Errorf(format string, a ...interface{}) {
	l.logger.Error().Stack().Err(fmt.Errorf(format, a...)).Msg("")
}
