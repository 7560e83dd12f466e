// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/thejerf/suture/v4"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// SupervisorHook returns a suture event hook that writes supervisor events
// to logger. Panics and terminations are errors, backoff is a warning and
// everything else is info.
func SupervisorHook(logger zerolog.Logger) suture.EventHook {
	return func(e suture.Event) {
		var event *zerolog.Event
		switch e.Type() {
		case suture.EventTypeServicePanic, suture.EventTypeServiceTerminate:
			event = logger.Error()
		case suture.EventTypeStopTimeout, suture.EventTypeBackoff:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		event.Fields(e.Map()).Msg(e.String())
	}
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache hits (address or coordinates, cache name)
//   - Upstream request flow (operation, query; never the access key)
//   - Classified errors and breaker decisions
//
// Info: Normal operation events
//   - Upstream lookups and their success
//   - Scheduled cache clears (entries dropped)
//   - Server startup/shutdown
//   - Batch start and completion
//
// Warn: Warning conditions that don't prevent operation
//   - No geocoding result for an address or coordinates
//   - Invalid coordinates rejected before lookup
//   - Upstream 4xx responses
//   - Circuit breaker state changes
//
// Error: Error conditions requiring attention
//   - Upstream transport failures and timeouts
//   - Unparseable upstream responses
//   - Supervised service panics or terminations
//
// Context Fields:
//   - component: geocode, upstream, cache, server, batch, supervisor
//   - address / coordinates: lookup key
//   - operation: forward or reverse
//   - status / status_code: HTTP status code
//   - kind: error kind (invalid_input, unauthorized, ...)
//   - cache: cache name (geocoding, reverse-geocoding)
//   - duration: request or batch duration
