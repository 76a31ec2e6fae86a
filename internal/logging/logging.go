// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Out        io.Writer
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       false,
		FilePath:   filepath.Join(home, ".config", "bargain-hunt", "logs", "bargain-hunt.log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	// Console writer
	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File && cfg.FilePath != "" {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(writer).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ContextKey is the type for context keys.
type ContextKey string

const (
	// LoggerKey is the context key for the logger.
	LoggerKey ContextKey = "logger"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithEpisode tags the logger with an episode seed.
func WithEpisode(logger zerolog.Logger, seed int64) zerolog.Logger {
	return logger.With().Int64("seed", seed).Logger()
}

// WithTeam adds a team name to the logger context.
func WithTeam(logger zerolog.Logger, team string) zerolog.Logger {
	return logger.With().Str("team", team).Logger()
}

// WithPhase adds the current episode phase to the logger context.
func WithPhase(logger zerolog.Logger, phase string) zerolog.Logger {
	return logger.With().Str("phase", phase).Logger()
}

// WithRun adds a batch run index to the logger context.
func WithRun(logger zerolog.Logger, index int) zerolog.Logger {
	return logger.With().Int("run", index).Logger()
}

// LogPurchase logs a committed market purchase. Callers tag the team with
// WithTeam.
func LogPurchase(logger zerolog.Logger, item string, price float64, negotiated bool, budgetLeft float64) {
	logger.Debug().
		Str("event", "purchase").
		Str("item", item).
		Float64("price", price).
		Bool("negotiated", negotiated).
		Float64("budget_left", budgetLeft).
		Msg("Item bought")
}

// LogExpertPick logs the expert's leftover purchase.
func LogExpertPick(logger zerolog.Logger, expert, item string, price, estimate float64) {
	logger.Debug().
		Str("event", "expert_pick").
		Str("expert", expert).
		Str("item", item).
		Float64("price", price).
		Float64("estimate", estimate).
		Msg("Expert bought leftover pick")
}

// LogSale logs a hammer price at auction.
func LogSale(logger zerolog.Logger, item string, paid, sold float64) {
	logger.Debug().
		Str("event", "sale").
		Str("item", item).
		Float64("paid", paid).
		Float64("sold", sold).
		Float64("profit", sold-paid).
		Msg("Lot sold")
}

// LogPhase logs an episode phase transition.
func LogPhase(logger zerolog.Logger, from, to string, elapsed time.Duration) {
	logger.Info().
		Str("event", "phase").
		Str("from", from).
		Str("to", to).
		Dur("elapsed", elapsed).
		Msg("Phase advanced")
}
