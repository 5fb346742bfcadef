package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName service field stamped on every entry
const ServiceName = "cakeshop-backend"

var zlog = zerolog.Nop()

// Options logger setup. Empty Level means debug for development envs and
// info otherwise.
type Options struct {
	Env   string
	Level string
	Out   io.Writer
}

// InitStructured stdout logger, level from LOG_LEVEL
func InitStructured(env string) {
	Init(Options{Env: env, Level: os.Getenv("LOG_LEVEL"), Out: os.Stdout})
}

// Init replaces the global logger. Development envs get the console writer,
// everything else JSON lines.
func Init(opts Options) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	dev := isDevelopment(opts.Env)
	if dev {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zlog = zerolog.New(out).
		Level(parseLevel(opts.Level, dev)).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
}

func isDevelopment(env string) bool {
	switch strings.ToLower(env) {
	case "", "local", "dev", "development":
		return true
	}
	return false
}

func parseLevel(level string, dev bool) zerolog.Level {
	if level != "" {
		if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			return l
		}
	}
	if dev {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// WithRequestID child logger carrying request_id
func WithRequestID(requestID string) *zerolog.Logger {
	l := zlog.With().Str("request_id", requestID).Logger()
	return &l
}

// WithShopperID child logger carrying shopper_id
func WithShopperID(shopperID string) *zerolog.Logger {
	l := zlog.With().Str("shopper_id", shopperID).Logger()
	return &l
}
