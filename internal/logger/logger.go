package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var instance atomic.Pointer[zerolog.Logger]

// Init configures the process-wide logger.
// level is one of "debug", "info", "warn", "error"; anything else means info.
// file, when non-empty, receives a copy of every line in addition to stdout.
func Init(level string, file string) error {
	var logLevel zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if file != "" {
		fileWriter, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		output = io.MultiWriter(os.Stdout, fileWriter)
	}

	l := log.Output(zerolog.ConsoleWriter{Out: output, TimeFormat: "2006-01-02 15:04:05"}).
		With().Timestamp().Logger().Level(logLevel)
	instance.Store(&l)
	return nil
}

// Get returns the global logger. Before Init it returns a logger that
// discards everything, so library code can log unconditionally. Safe
// for concurrent use.
func Get() *zerolog.Logger {
	if l := instance.Load(); l != nil {
		return l
	}
	nop := zerolog.New(io.Discard)
	instance.CompareAndSwap(nil, &nop)
	return instance.Load()
}
