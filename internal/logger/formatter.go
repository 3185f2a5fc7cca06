package logger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/gookit/color"
	"github.com/sirupsen/logrus"
)

var levelColors = map[logrus.Level]color.Color{
	logrus.ErrorLevel: color.FgRed,
	logrus.WarnLevel:  color.FgYellow,
	logrus.InfoLevel:  color.FgCyan,
	logrus.DebugLevel: color.FgGray,
}

// CLIFormatter renders one line per entry: optional time and level, the
// message, then the fields sorted by key.
type CLIFormatter struct {
	DisableTimestamp bool
	DisableLevel     bool
	DisableColors    bool
}

func (f *CLIFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	if !f.DisableTimestamp {
		b.WriteString(entry.Time.Format("15:04:05 "))
	}
	if !f.DisableLevel {
		level := strings.ToUpper(entry.Level.String())
		if c, ok := levelColors[entry.Level]; ok && !f.DisableColors {
			level = c.Sprint(level)
		}
		b.WriteString(level + ": ")
	}
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == fieldLogType || k == fieldEmoji {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
