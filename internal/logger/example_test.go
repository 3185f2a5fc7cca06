package logger_test

import (
	"github.com/maxkimambo/sitebuild/internal/logger"
)

func Example() {
	// User-facing logs with emojis
	logger.User.Startingf("Running %s", "build")
	logger.User.Copyf("Copied %d files", 12)

	// Operational logs with fields
	logger.Op.WithFields(map[string]interface{}{
		"task": "copy:misc",
		"file": "robots.txt",
	}).Debug("File written")
}
