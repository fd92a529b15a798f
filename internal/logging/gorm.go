package logging

import (
	"time"

	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

type gormWriter struct {
	entry *logrus.Entry
}

func (writer gormWriter) Printf(format string, args ...interface{}) {
	writer.entry.Warnf(format, args...)
}

// Gorm routes gorm's slow-query and error output through logrus.
func Gorm(logger *logrus.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}
	return gormlogger.New(
		gormWriter{entry: Component(logger, "gorm")},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
