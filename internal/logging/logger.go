package logging

import (
	"os"

	"github.com/rs/zerolog"
)

type Fields map[string]interface{}

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

func apply(ev *zerolog.Event, fields Fields) *zerolog.Event {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	return ev
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	apply(logger.Info(), fields).Msg(msg)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	apply(logger.Error().Err(err), fields).Msg(msg)
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	apply(logger.Fatal().Err(err), fields).Msg(msg)
}
