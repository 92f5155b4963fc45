package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

const (
	JSONFormat   = "json"
	LogfmtFormat = "logfmt"
	TextFormat   = "text"

	envLogLevel  = "LIBEXPORT_LOG_LEVEL"
	envLogFormat = "LIBEXPORT_LOG_FORMAT"
)

var (
	ErrUnknownLogLevel  = errors.New("unknown log level")
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// NewWithCurrentConfig creates a [slog.Logger] writing to stderr using the
// level and format from the environment.
func NewWithCurrentConfig() *slog.Logger {
	h, err := CreateHandlerWithStrings(os.Stderr, os.Getenv(envLogLevel), os.Getenv(envLogFormat))
	if err != nil {
		h = CreateHandler(os.Stderr, slog.LevelInfo, charmlog.TextFormatter)
	}

	return slog.New(h)
}

// CreateHandlerWithStrings creates a [slog.Handler] from level and format
// names. Empty strings select info and text.
func CreateHandlerWithStrings(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	level, err := GetLevel(logLevel)
	if err != nil {
		return nil, err
	}

	formatter, err := GetFormatter(logFormat)
	if err != nil {
		return nil, err
	}

	return CreateHandler(w, level, formatter), nil
}

// CreateHandler creates a [charmlog.Logger], which implements
// [slog.Handler]. Colors are only used when w is a terminal.
func CreateHandler(w io.Writer, level slog.Level, formatter charmlog.Formatter) *charmlog.Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level),
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	if isTerminal(w) {
		l.SetColorProfile(termenv.EnvColorProfile())
	} else {
		l.SetColorProfile(termenv.Ascii)
	}

	l.SetStyles(styles())

	return l
}

// GetLevel parses a level name.
func GetLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error", "fatal", "panic":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug", "trace":
		return slog.LevelDebug, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

// GetFormatter parses a format name.
func GetFormatter(format string) (charmlog.Formatter, error) {
	switch strings.ToLower(format) {
	case TextFormat, "":
		return charmlog.TextFormatter, nil
	case LogfmtFormat:
		return charmlog.LogfmtFormatter, nil
	case JSONFormat:
		return charmlog.JSONFormatter, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
}

// SetLogFormat sets the default log format.
func SetLogFormat(logFormat string) {
	_, err := GetFormatter(logFormat)
	if err != nil {
		panic(err)
	}

	must(os.Setenv(envLogFormat, strings.ToLower(logFormat)))
	slog.SetDefault(NewWithCurrentConfig())
}

// SetLogLevel sets the default log level.
func SetLogLevel(logLevel string) {
	level, err := GetLevel(logLevel)
	if err != nil {
		panic(err)
	}

	must(os.Setenv(envLogLevel, level.String()))
	slog.SetDefault(NewWithCurrentConfig())
}

func styles() *charmlog.Styles {
	s := charmlog.DefaultStyles()

	s.Levels[charmlog.DebugLevel] = s.Levels[charmlog.DebugLevel].Foreground(lipgloss.Color("63"))
	s.Levels[charmlog.InfoLevel] = s.Levels[charmlog.InfoLevel].Foreground(lipgloss.Color("86"))
	s.Levels[charmlog.WarnLevel] = s.Levels[charmlog.WarnLevel].Foreground(lipgloss.Color("192"))
	s.Levels[charmlog.ErrorLevel] = s.Levels[charmlog.ErrorLevel].Foreground(lipgloss.Color("204"))
	s.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	s.Keys["artifact"] = lipgloss.NewStyle().Bold(true)

	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
