package baq

import "github.com/grailbio/base/log"

// Logger is a destination for the occasional skip/diagnostic message. The
// facade logs at most one line per skipped read and never per-base
// detail. Implementations must be safe for concurrent use by multiple
// ProcessAll workers.
type Logger interface {
	Debugf(format string, args ...interface{})
}

// defaultLogger backs Logger with grailbio/base/log's level-gated debug
// logger.
type defaultLogger struct{}

func (defaultLogger) Debugf(format string, args ...interface{}) {
	log.Debug.Printf(format, args...)
}

// NewDefaultLogger returns the package's default Logger.
func NewDefaultLogger() Logger { return defaultLogger{} }
