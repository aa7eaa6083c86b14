package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "posu-analytics"

func New(environment string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if environment == "development" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
		return zerolog.New(output).
			Level(zerolog.DebugLevel).
			With().
			Timestamp().
			Str("service", serviceName).
			Logger()
	}

	return zerolog.New(os.Stdout).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("env", environment).
		Logger()
}
