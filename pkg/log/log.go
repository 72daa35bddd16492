package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// Logger is the global logger instance
	Logger zerolog.Logger
)

// Level represents log level
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init initializes the global logger
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithComponent creates a child logger with component field
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithChassis creates a child logger with chassis field
func WithChassis(chassis string) zerolog.Logger {
	return Logger.With().Str("chassis", chassis).Logger()
}

// WithDatapath creates a child logger with datapath field
func WithDatapath(datapath string) zerolog.Logger {
	return Logger.With().Str("datapath", datapath).Logger()
}

// WithPort creates a child logger with logical_port field
func WithPort(port string) zerolog.Logger {
	return Logger.With().Str("logical_port", port).Logger()
}

// Helper functions for common logging patterns
func Info(msg string) {
	Logger.Info().Msg(msg)
}

func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

func Error(msg string) {
	Logger.Error().Msg(msg)
}

func Errorf(format string, err error) {
	Logger.Error().Err(err).Msg(format)
}

func Fatal(msg string) {
	Logger.Fatal().Msg(msg)
}

// Limiter rate-limits repeated log lines emitted from inside the engine's
// main loop (spec.md §7: "rate-limited for anything emitted inside the main
// loop"). Keyed by an arbitrary caller-chosen key (e.g. node name + reason)
// so unrelated conditions don't share a budget.
type Limiter struct {
	mu       sync.Mutex
	window   time.Duration
	lastSeen map[string]time.Time
}

// NewLimiter returns a Limiter that allows at most one line per key per
// window.
func NewLimiter(window time.Duration) *Limiter {
	return &Limiter{
		window:   window,
		lastSeen: make(map[string]time.Time),
	}
}

// Allow reports whether a line keyed by key may be emitted now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if last, ok := l.lastSeen[key]; ok && now.Sub(last) < l.window {
		return false
	}
	l.lastSeen[key] = now
	return true
}
