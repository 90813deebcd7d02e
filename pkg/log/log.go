// Package log configures the shared structured logger.
package log

import (
	"os"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

// Fields is re-exported so callers don't need a direct logrus import
// for the common case.
type Fields = logrus.Fields

// New builds a logger writing human-readable structured lines to stderr.
// Unknown level strings fall back to info.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	logger.SetFormatter(&formatter.Formatter{
		TimestampFormat: "2006-01-02 15:04:05",
		HideKeys:        false,
		NoColors:        false,
	})

	return logger
}
