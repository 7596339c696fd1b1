package commands

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// zerologAdapter exposes a zerolog console logger through the civi.Logger
// interface for verbose mode.
type zerologAdapter struct {
	logger zerolog.Logger
}

func newZerologAdapter() *zerologAdapter {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	logger := zerolog.New(writer).With().Timestamp().Logger().Level(zerolog.DebugLevel)

	return &zerologAdapter{logger: logger}
}

func (z *zerologAdapter) Debug(msg string, fields map[string]interface{}) {
	z.logger.Debug().Fields(fields).Msg(msg)
}

func (z *zerologAdapter) Info(msg string, fields map[string]interface{}) {
	z.logger.Info().Fields(fields).Msg(msg)
}

func (z *zerologAdapter) Warn(msg string, fields map[string]interface{}) {
	z.logger.Warn().Fields(fields).Msg(msg)
}

func (z *zerologAdapter) Error(msg string, fields map[string]interface{}) {
	z.logger.Error().Fields(fields).Msg(msg)
}
