// Package enginelog centralizes logging for the engine. UCI reserves
// stdout for protocol traffic, so every backend here writes to stderr;
// a GUI driving the engine over stdin/stdout never sees a log line mixed
// into a command response.
//
// It wraps github.com/op/go-logging behind package-level functions
// instead of a per-file logger variable, since call sites are scattered
// across uci, search, and cmd/corvid rather than concentrated in one
// package.
package enginelog

import (
	"os"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("corvid")

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatter := logging.MustStringFormatter(
		`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`,
	)
	formatted := logging.NewBackendFormatter(backend, formatter)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.DEBUG, "")
	logging.SetBackend(leveled)
}

// SetLevel raises or lowers the minimum level that reaches stderr. uci's
// "debug on|off" command drives this between DEBUG and WARNING.
func SetLevel(verbose bool) {
	level := logging.WARNING
	if verbose {
		level = logging.DEBUG
	}
	logging.SetLevel(level, "")
}

// Debugf logs module load, option changes, search-cancellation events,
// and book hits/misses.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Warningf logs malformed command lines received over the UCI stream.
func Warningf(format string, args ...interface{}) {
	log.Warningf(format, args...)
}

// Errorf logs conditions the engine recovers from but that a GUI
// integrator would want surfaced, such as a book file that fails to
// load after OwnBook was enabled.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}
