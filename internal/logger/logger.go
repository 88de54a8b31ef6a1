package logger

import (
	"io"
	"log/slog"
	"os"
)

// Init installs the process-wide slog handler. Development and debug runs get
// human-readable text, everything else gets JSON.
func Init(env string, debug bool) *slog.Logger {
	return InitTo(os.Stdout, env, debug)
}

func InitTo(w io.Writer, env string, debug bool) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if debug || env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// Component returns the default logger tagged with a component name.
func Component(name string) *slog.Logger {
	return slog.Default().With(slog.String("component", name))
}

// Discard is a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
