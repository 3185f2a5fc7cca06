// Package logger provides the two log streams of the build: User for short
// progress messages on stdout and Op for structured operational logs on
// stderr. Both share one logrus logger; a hook routes entries by log_type.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// LogType tags an entry with the stream it belongs to.
type LogType string

const (
	UserLog LogType = "user"
	OpLog   LogType = "op"
)

const (
	fieldLogType = "log_type"
	fieldEmoji   = "emoji"
)

var (
	User *UserLogger // Progress messages with emoji prefixes
	Op   *OpLogger   // Operational logs with fields

	mu         sync.Mutex
	base       *logrus.Logger
	userWriter io.Writer = os.Stdout
	opWriter   io.Writer = os.Stderr
)

func init() {
	Setup(false, false, false)
}

// Base returns the logrus logger shared by User and Op.
func Base() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	return base
}

// SetOutputs redirects user and operational output. Call before Setup.
func SetOutputs(user, op io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	userWriter = user
	opWriter = op
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// Setup configures both streams. LOG_MODE (quiet, verbose, debug) and
// LOG_FORMAT (json, text) override the flags.
func Setup(verbose bool, jsonLogs bool, quiet bool) {
	switch os.Getenv("LOG_MODE") {
	case "quiet":
		quiet, verbose = true, false
	case "verbose", "debug":
		quiet, verbose = false, true
	}
	switch os.Getenv("LOG_FORMAT") {
	case "json":
		jsonLogs = true
	case "text":
		jsonLogs = false
	}

	level := logrus.InfoLevel
	if quiet {
		level = logrus.ErrorLevel
	} else if verbose {
		level = logrus.DebugLevel
	}

	mu.Lock()
	defer mu.Unlock()

	l := logrus.New()
	l.SetLevel(level)
	// Output is written by the router hook.
	l.SetOutput(io.Discard)

	hook := NewOutputRouterHook(userWriter, opWriter)
	if jsonLogs {
		l.SetFormatter(&logrus.JSONFormatter{})
		hook.UserFormatter = &logrus.JSONFormatter{}
		hook.OpFormatter = &logrus.JSONFormatter{}
	} else if verbose {
		hook.OpFormatter = &logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   isTerminal(opWriter),
		}
	} else {
		hook.OpFormatter = &CLIFormatter{
			DisableTimestamp: true,
			DisableColors:    !isTerminal(opWriter),
		}
	}
	l.AddHook(hook)

	base = l
	User = &UserLogger{logger: l}
	Op = &OpLogger{logger: l}
}
