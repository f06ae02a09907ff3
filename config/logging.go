package config

import (
	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus logger honouring the configured level and
// format. Unknown values fall back to info/text; Load rejects them earlier.
func (l Logging) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
