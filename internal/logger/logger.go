package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger lets packages depend on portfolio/internal/logger instead of zerolog.
type Logger = zerolog.Logger

// Event is an alias for zerolog.Event.
type Event = zerolog.Event

const consoleTime = "2006-01-02 15:04:05"

// Options selects where and how logs are written. Empty fields fall back to
// LOG_OUTPUT, LOG_FORMAT and LOG_FILE_PATH, then to stdout console output.
type Options struct {
	Level    string
	Output   string // stdout, file or both
	Format   string // console or json
	FilePath string
}

func (o Options) withEnv() Options {
	if o.Output == "" {
		o.Output = os.Getenv("LOG_OUTPUT")
	}
	if o.Format == "" {
		o.Format = os.Getenv("LOG_FORMAT")
	}
	if o.FilePath == "" {
		o.FilePath = os.Getenv("LOG_FILE_PATH")
	}
	o.Output = strings.ToLower(strings.TrimSpace(o.Output))
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	o.FilePath = strings.TrimSpace(o.FilePath)
	if o.Output == "" {
		o.Output = "stdout"
	}
	if o.Format == "" {
		o.Format = "console"
	}
	return o
}

// Init configures the global logger at level using the environment.
func Init(level string) {
	Setup(Options{Level: level})
}

// Setup configures the global logger.
func Setup(opts Options) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	opts = opts.withEnv()

	var (
		writers  []io.Writer
		warnings []string
	)
	if opts.Output == "stdout" || opts.Output == "both" {
		writers = append(writers, format(os.Stdout, opts.Format))
	}
	if opts.Output == "file" || opts.Output == "both" {
		switch f, err := openFile(opts.FilePath); {
		case opts.FilePath == "":
			warnings = append(warnings, "file output requested without LOG_FILE_PATH; file logging disabled")
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("cannot open log file %q, file logging disabled: %v", opts.FilePath, err))
		default:
			writers = append(writers, format(f, opts.Format))
		}
	}
	if len(writers) == 0 {
		writers = append(writers, format(os.Stdout, "console"))
		warnings = append(warnings, "no usable log output, falling back to stdout console")
	}

	output := writers[0]
	if len(writers) > 1 {
		output = zerolog.MultiLevelWriter(writers...)
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		if opts.Level != "" {
			warnings = append(warnings, fmt.Sprintf("invalid log level %q, using info", opts.Level))
		}
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(output).Level(lvl).With().Timestamp().Logger()

	for _, w := range warnings {
		log.Warn().Msg(w)
	}
	log.Debug().
		Str("level", lvl.String()).
		Str("output", opts.Output).
		Str("format", opts.Format).
		Msg("logger ready")
}

func openFile(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func format(w io.Writer, f string) io.Writer {
	if f == "json" {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTime}
}

// Get returns the configured logger.
func Get() *zerolog.Logger {
	return &log.Logger
}

// SetOutput redirects log output, typically to a buffer in tests.
func SetOutput(w io.Writer) {
	log.Logger = log.Output(w)
}

// HTTPEvent logs a served request.
func HTTPEvent(method, path string, status int, durationMs float64) *zerolog.Event {
	return log.Info().
		Str("event_category", "http").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Float64("duration_ms", durationMs)
}

// HTTPError logs a failed request.
func HTTPError(method, path string, status int, err error) *zerolog.Event {
	return log.Error().
		Str("event_category", "http").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Err(err)
}

// PanicEvent logs a recovered panic.
func PanicEvent(err interface{}, stack string) *zerolog.Event {
	return log.Error().
		Str("event_category", "panic").
		Interface("error", err).
		Str("stack", stack)
}

// BeaconEvent logs a pixel beacon received by the development sink.
func BeaconEvent(event, path, lang string) *zerolog.Event {
	return log.Info().
		Str("event_category", "beacon").
		Str("event", event).
		Str("path", path).
		Str("lang", lang)
}

// ClientEvent logs something the simulated page did.
func ClientEvent(kind string) *zerolog.Event {
	return log.Debug().
		Str("event_category", "client").
		Str("kind", kind)
}
