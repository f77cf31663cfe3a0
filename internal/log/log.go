// Package log configures the process-wide logrus logger for the two
// execution environments netwarden runs in: an interactive CLI session and
// an AWS Lambda function.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetupCLI prepares logging for terminal use: human-readable text on
// stderr so report output on stdout stays pipeable. The debug flag wins
// over any explicit level.
func SetupCLI(level string, debug bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	if debug {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	if level == "" {
		logrus.SetLevel(logrus.InfoLevel)
		return
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.WithField("level", level).Warn("Unknown log level, using info")
		return
	}
	logrus.SetLevel(parsed)
}

// SetupLambda prepares logging for Lambda: JSON lines on stdout so
// CloudWatch Logs ingests structured fields.
func SetupLambda() {
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)
}
