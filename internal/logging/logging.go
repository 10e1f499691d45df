// Package logging wraps github.com/sirupsen/logrus with the structured
// key/value fields every package in this module logs through: builder
// warnings (missing includes, unguarded files) at Warn, fatal builder
// failures at Error.
package logging

import "github.com/sirupsen/logrus"

// New returns a fresh *logrus.Logger configured with this module's
// default text formatter.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

// WithSource returns an entry tagged with the translation unit currently
// being processed.
func WithSource(logger *logrus.Logger, source string) *logrus.Entry {
	return logger.WithField("source", source)
}

// WithFile returns an entry tagged with a specific file identity, nested
// under an already-scoped source entry.
func WithFile(entry *logrus.Entry, file string) *logrus.Entry {
	return entry.WithField("file", file)
}

// WithAnalysis returns an entry tagged with the analysis currently
// reporting a finding.
func WithAnalysis(logger *logrus.Logger, analysis string) *logrus.Entry {
	return logger.WithField("analysis", analysis)
}
