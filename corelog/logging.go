// Package corelog provides the logging facade used throughout corex.
package corelog

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger is the logging interface consumed by every corex subsystem.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes debug/info to stdout and warn/error to stderr,
// each tagged with a prefix and level.
type DefaultLogger struct {
	prefix string
	out    *log.Logger
	errOut *log.Logger

	mu    sync.Mutex
	debug bool
}

// NewDefaultLogger creates a logger tagging every line with prefix.
func NewDefaultLogger(prefix string) *DefaultLogger {
	return &DefaultLogger{
		prefix: prefix,
		out:    log.New(os.Stdout, "", log.LstdFlags),
		errOut: log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = enabled
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Printf("[%s] DEBUG: %s", l.prefix, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Printf("[%s] INFO: %s", l.prefix, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.errOut.Printf("[%s] WARN: %s", l.prefix, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.errOut.Printf("[%s] ERROR: %s", l.prefix, fmt.Sprintf(format, args...))
}

// nopLogger discards everything; useful in tests that don't want log noise.
type nopLogger struct{}

// NewNopLogger returns a Logger that discards all output.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool           { return false }
func (nopLogger) SetDebug(bool)                {}
func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(string, ...any)        {}
