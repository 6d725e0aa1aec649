package inkwell

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
)

func logColors(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	if !isatty.IsTerminal(f.Fd()) {
		return false
	}

	return os.Getenv("TERM") != "dumb"
}

func logLevel(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func GetSlogHandler(debug bool, out io.Writer) slog.Handler {
	return tint.NewHandler(out, &tint.Options{
		AddSource: true,
		Level:     logLevel(debug),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if _, ok := attr.Value.Any().(error); attr.Key == "err" || ok {
				return tint.Attr(9, attr)
			}
			return attr
		},
		TimeFormat: time.RFC3339,
		NoColor:    !logColors(out),
	})
}

// GetFanoutHandler logs to the console handler and, if file is not nil, to file as JSON lines.
func GetFanoutHandler(debug bool, console io.Writer, file io.Writer) slog.Handler {
	if file == nil {
		return GetSlogHandler(debug, console)
	}
	return slogmulti.Fanout(
		GetSlogHandler(debug, console),
		slog.NewJSONHandler(file, &slog.HandlerOptions{AddSource: true, Level: logLevel(debug)}),
	)
}
