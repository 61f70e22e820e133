package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Field keys carried by query log lines.
const (
	FieldRequestID = "request_id"
	FieldStrategy  = "strategy"
	FieldIntent    = "intent"
	FieldStage     = "stage"
	FieldErrorKind = "error_kind"
)

var globalLogger = newLogger(os.Stdout, zerolog.InfoLevel)

var once sync.Once

// InitLogging sends logs to stdout and, when logFilePath is set, appends them to that file.
// An unparsable level means info. Only the first call takes effect.
func InitLogging(logFilePath, level string) {
	once.Do(func() {
		lvl, err := zerolog.ParseLevel(level)
		if err != nil || level == "" {
			lvl = zerolog.InfoLevel
		}
		globalLogger = newLogger(zerolog.MultiLevelWriter(outputs(logFilePath)...), lvl)
		log.Logger = globalLogger
	})
}

func newLogger(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

func outputs(logFilePath string) []io.Writer {
	writers := []io.Writer{os.Stdout}
	if logFilePath == "" {
		return writers
	}
	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
	if err != nil {
		// The logger is not ready yet
		os.Stderr.WriteString("Failed to open log file: " + err.Error() + "\n")
		return writers
	}
	return append(writers, file)
}

// WithLogger returns ctx carrying a logger with the extra fields. Fields already attached to ctx are kept.
func WithLogger(ctx context.Context, fields map[string]interface{}) context.Context {
	l := getLogger(ctx).With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

// WithRequest tags every later line logged through ctx with the request ID and synthesis strategy.
func WithRequest(ctx context.Context, requestID, strategy string) context.Context {
	l := getLogger(ctx).With().
		Str(FieldRequestID, requestID).
		Str(FieldStrategy, strategy).
		Logger()
	return l.WithContext(ctx)
}

// WithIntent adds the classified intent.
func WithIntent(ctx context.Context, intent string) context.Context {
	l := getLogger(ctx).With().Str(FieldIntent, intent).Logger()
	return l.WithContext(ctx)
}

// WithStage adds the pipeline stage; kind is omitted when empty.
func WithStage(ctx context.Context, stage, kind string) context.Context {
	c := getLogger(ctx).With().Str(FieldStage, stage)
	if kind != "" {
		c = c.Str(FieldErrorKind, kind)
	}
	l := c.Logger()
	return l.WithContext(ctx)
}

// getLogger returns the context logger, or the global one when ctx has none.
func getLogger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &globalLogger
	}
	return l
}

func DebugLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Debug().Msgf(msg, args...)
}

func InfoLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Info().Msgf(msg, args...)
}

func WarnLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Warn().Msgf(msg, args...)
}

// ErrorLog formats msg with args like the other levels. The first error in args is also attached
// as the "error" field.
func ErrorLog(ctx context.Context, msg string, args ...interface{}) {
	e := getLogger(ctx).Error()
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			e = e.Err(err)
			break
		}
	}
	e.Msgf(msg, args...)
}
