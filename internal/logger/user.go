package logger

import "github.com/sirupsen/logrus"

// UserLogger writes short progress lines, each prefixed by an emoji that
// names the kind of work.
type UserLogger struct {
	logger *logrus.Logger
}

func (u *UserLogger) entry(emoji string) *logrus.Entry {
	fields := logrus.Fields{fieldLogType: string(UserLog)}
	if emoji != "" {
		fields[fieldEmoji] = emoji
	}
	return u.logger.WithFields(fields)
}

func (u *UserLogger) Info(msg string) { u.entry("").Info(msg) }

func (u *UserLogger) Infof(format string, args ...interface{}) { u.entry("").Infof(format, args...) }

func (u *UserLogger) Error(msg string) { u.entry("❌").Error(msg) }

func (u *UserLogger) Errorf(format string, args ...interface{}) {
	u.entry("❌").Errorf(format, args...)
}

func (u *UserLogger) Warnf(format string, args ...interface{}) {
	u.entry("⚠️").Warnf(format, args...)
}

// Startingf announces a run.
func (u *UserLogger) Startingf(format string, args ...interface{}) {
	u.entry("🚀").Infof(format, args...)
}

func (u *UserLogger) Success(msg string) { u.entry("✅").Info(msg) }

func (u *UserLogger) Successf(format string, args ...interface{}) {
	u.entry("✅").Infof(format, args...)
}

// Copyf reports a finished copy step.
func (u *UserLogger) Copyf(format string, args ...interface{}) {
	u.entry("📄").Infof(format, args...)
}

// Minifyf reports a finished bundle.
func (u *UserLogger) Minifyf(format string, args ...interface{}) {
	u.entry("🗜️").Infof(format, args...)
}

// Lintf reports the lint gate result.
func (u *UserLogger) Lintf(format string, args ...interface{}) {
	u.entry("🔍").Infof(format, args...)
}

// Archivef reports a written archive.
func (u *UserLogger) Archivef(format string, args ...interface{}) {
	u.entry("📦").Infof(format, args...)
}

// Cleanupf reports a removed path.
func (u *UserLogger) Cleanupf(format string, args ...interface{}) {
	u.entry("🧹").Infof(format, args...)
}

// OpLogger writes operational logs.
type OpLogger struct {
	logger *logrus.Logger
}

func (o *OpLogger) entry() *logrus.Entry {
	return o.logger.WithField(fieldLogType, string(OpLog))
}

func (o *OpLogger) Info(msg string) { o.entry().Info(msg) }

func (o *OpLogger) Infof(format string, args ...interface{}) { o.entry().Infof(format, args...) }

func (o *OpLogger) Error(msg string) { o.entry().Error(msg) }

func (o *OpLogger) Warnf(format string, args ...interface{}) { o.entry().Warnf(format, args...) }

func (o *OpLogger) Debug(msg string) { o.entry().Debug(msg) }

func (o *OpLogger) Debugf(format string, args ...interface{}) { o.entry().Debugf(format, args...) }

// WithFields returns an operational entry carrying fields.
func (o *OpLogger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return o.entry().WithFields(fields)
}
