// SPDX-License-Identifier: MIT
package log

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string (case-insensitive) to a LogLevel.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

// --- Global Logger State ---

var currentLevel atomic.Uint32

// output is the shared sink for every component logger.
var output = stdlog.New(os.Stderr, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)

func init() {
	SetLevel(LevelInfo)
}

// SetLevel sets the global logging level atomically.
func SetLevel(level LogLevel) {
	currentLevel.Store(uint32(level))
}

// GetLevel gets the current global logging level atomically.
func GetLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// Enabled reports whether a message at level would currently be written.
// Hot paths use it to skip formatting arguments that would be discarded.
func Enabled(level LogLevel) bool {
	return level >= GetLevel()
}

// Logger writes messages tagged with a component name, e.g.
//
//	[INFO]  pipeline: session complete (frames=1292)
//
// The zero value logs without a component tag.
type Logger struct {
	component string
}

// New returns a Logger tagging every message with component.
func New(component string) *Logger {
	return &Logger{component: component}
}

// Component returns the tag this logger writes with.
func (l *Logger) Component() string {
	if l == nil {
		return ""
	}
	return l.component
}

func (l *Logger) write(level LogLevel, msg string) {
	tag := ""
	if l != nil && l.component != "" {
		tag = l.component + ": "
	}
	// INFO and WARN are padded so messages line up with the five-letter levels.
	pad := " "
	if level == LevelInfo || level == LevelWarn {
		pad = "  "
	}
	if level == LevelFatal {
		output.Fatalf("[%s]%s%s%s", level, pad, tag, msg)
		return
	}
	output.Printf("[%s]%s%s%s", level, pad, tag, msg)
}

// Debugf logs a formatted debug message if the level is appropriate.
func (l *Logger) Debugf(format string, v ...any) {
	if Enabled(LevelDebug) {
		l.write(LevelDebug, fmt.Sprintf(format, v...))
	}
}

// Infof logs a formatted info message if the level is appropriate.
func (l *Logger) Infof(format string, v ...any) {
	if Enabled(LevelInfo) {
		l.write(LevelInfo, fmt.Sprintf(format, v...))
	}
}

// Warnf logs a formatted warning message if the level is appropriate.
func (l *Logger) Warnf(format string, v ...any) {
	if Enabled(LevelWarn) {
		l.write(LevelWarn, fmt.Sprintf(format, v...))
	}
}

// Errorf logs a formatted error message if the level is appropriate.
func (l *Logger) Errorf(format string, v ...any) {
	if Enabled(LevelError) {
		l.write(LevelError, fmt.Sprintf(format, v...))
	}
}

// Fatalf logs a formatted fatal message and exits the application.
// Fatal messages are always logged regardless of the current level.
func (l *Logger) Fatalf(format string, v ...any) {
	l.write(LevelFatal, fmt.Sprintf(format, v...))
}

// --- Package-level functions (untagged) ---

var root = &Logger{}

func Debugf(format string, v ...any) { root.Debugf(format, v...) }
func Infof(format string, v ...any)  { root.Infof(format, v...) }
func Warnf(format string, v ...any)  { root.Warnf(format, v...) }
func Errorf(format string, v ...any) { root.Errorf(format, v...) }

// Fatalf logs and exits with status 1.
func Fatalf(format string, v ...any) { root.Fatalf(format, v...) }

// Fatal logs the values and exits with status 1.
func Fatal(v ...any) {
	root.write(LevelFatal, fmt.Sprint(v...))
}
