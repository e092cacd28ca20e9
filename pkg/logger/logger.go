package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/knowledge-market/internal/config"
)

// New builds the service logger. It starts at info level with JSON output
// until the configuration is loaded; see Configure.
func New() zerolog.Logger {
	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "knowledge-market").
		Logger()
}

// Configure applies the logging section of the configuration to log.
func Configure(log zerolog.Logger, cfg config.LoggingConfig) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			NoColor:    cfg.NoColor,
			TimeFormat: time.RFC3339,
		}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return log.Output(out).Level(level)
}
