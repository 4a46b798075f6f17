package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger. Dev gets the human console writer, prod
// gets plain JSON lines.
func New(env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stdout
	if env != "prod" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
