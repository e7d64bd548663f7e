// Package monitoring holds the process-wide diagnostic logger used by the
// command-line tools and the result store.
package monitoring

import (
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// and may be replaced with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// now is swapped in tests.
var now = time.Now

// SetLogger replaces the package logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Stage logs the start of a named processing stage and returns a function
// that logs its duration when called:
//
//	defer monitoring.Stage("locate")()
func Stage(name string) func() {
	start := now()
	Logf("[%s] started", name)
	return func() {
		Logf("[%s] finished in %s", name, now().Sub(start).Round(time.Microsecond))
	}
}
