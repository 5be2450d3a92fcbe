// Package logger provides the process-wide leveled logger. It is backed by
// gommon's logger so echo and the application write through the same sink.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
)

const header = `${time_rfc3339} ${level}`

var (
	mu     sync.RWMutex
	global = newLogger(log.INFO)
)

func newLogger(level log.Lvl) *log.Logger {
	l := log.New("mdtgen")
	l.SetHeader(header)
	l.SetLevel(level)
	return l
}

// ParseLevel maps debug|info|warn|error|off onto a gommon level.
func ParseLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return log.INFO, fmt.Errorf("unknown log level: %q", s)
}

// Init sets the global level.
func Init(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	mu.Lock()
	global.SetLevel(lvl)
	mu.Unlock()
	return nil
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	global.SetOutput(w)
	mu.Unlock()
}

// Get returns the underlying logger, suitable for echo's e.Logger.
func Get() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Debug(format string, args ...interface{}) { Get().Debugf(format, args...) }
func Info(format string, args ...interface{})  { Get().Infof(format, args...) }
func Warn(format string, args ...interface{})  { Get().Warnf(format, args...) }
func Error(format string, args ...interface{}) { Get().Errorf(format, args...) }
func Fatal(format string, args ...interface{}) { Get().Fatalf(format, args...) }
