// Package observability provides structured logging and Prometheus metrics
// for the chronicle service.
package observability

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a JSON-formatted logrus logger at the given level.
// An unparseable level falls back to info.
func NewLogger(level string, output io.Writer) *logrus.Logger {
	if output == nil {
		output = os.Stdout
	}

	log := logrus.New()
	log.SetOutput(output)
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}
