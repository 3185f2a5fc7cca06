package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// OutputRouterHook writes user entries and operational entries to separate
// writers, each with its own formatter.
type OutputRouterHook struct {
	UserFormatter logrus.Formatter
	OpFormatter   logrus.Formatter
	UserWriter    io.Writer
	OpWriter      io.Writer

	mu sync.Mutex
}

// NewOutputRouterHook creates a router with plain CLI formatting.
func NewOutputRouterHook(user, op io.Writer) *OutputRouterHook {
	return &OutputRouterHook{
		UserFormatter: &CLIFormatter{DisableTimestamp: true, DisableLevel: true},
		OpFormatter:   &CLIFormatter{DisableTimestamp: true},
		UserWriter:    user,
		OpWriter:      op,
	}
}

func (h *OutputRouterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *OutputRouterHook) Fire(entry *logrus.Entry) error {
	formatter, writer := h.OpFormatter, h.OpWriter

	// Format a copy so other hooks see the original message
	e := entry.Dup()
	e.Level = entry.Level
	e.Message = entry.Message
	if t, _ := entry.Data[fieldLogType].(string); t == string(UserLog) {
		formatter, writer = h.UserFormatter, h.UserWriter
		if emoji, _ := entry.Data[fieldEmoji].(string); emoji != "" {
			e.Message = emoji + " " + entry.Message
		}
	}

	out, err := formatter.Format(e)
	if err != nil {
		return err
	}

	// Steps log from many goroutines
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = writer.Write(out)
	return err
}
