// Package logger is the process-wide structured logger.
//
// Calls take a message followed by alternating key/value pairs:
//
//	logger.Info("Server starting", "address", addr)
//	logger.Error("Failed to load products", "error", err)
//
// A bare error argument is logged under the "error" key.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const EnvProduction = "production"

var log = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init configures the logger for the given environment. Production writes
// JSON at info level; every other environment writes console output at debug.
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

func InitWithWriter(env string, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.DebugLevel
	out := w
	if env == EnvProduction {
		level = zerolog.InfoLevel
	} else {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: true}
	}

	log = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func Debug(msg string, args ...any) {
	write(log.Debug(), msg, args)
}

func Info(msg string, args ...any) {
	write(log.Info(), msg, args)
}

func Warn(msg string, args ...any) {
	write(log.Warn(), msg, args)
}

func Error(msg string, args ...any) {
	write(log.Error(), msg, args)
}

// Fatal logs and exits the process.
func Fatal(msg string, args ...any) {
	write(log.Fatal(), msg, args)
}

func write(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	if len(args) > 0 {
		ev = ev.Fields(fields(args))
	}
	ev.Msg(msg)
}

func fields(args []any) map[string]any {
	out := make(map[string]any, len(args))
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case error:
			out["error"] = v.Error()
		case string:
			if i+1 >= len(args) {
				out["detail"] = v
				continue
			}
			val := args[i+1]
			if err, ok := val.(error); ok && err != nil {
				val = err.Error()
			}
			out[v] = val
			i++
		default:
			out[fmt.Sprintf("arg_%d", i)] = v
		}
	}
	return out
}
