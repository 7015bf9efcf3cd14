// Package log provides leveled diagnostic logging for a conversion run.
package log

// API inspired by zerolog https://github.com/rs/zerolog

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Level defines log level.
type Level uint8

// Logging constants, matching ffmpeg.
const (
	LevelError   Level = 16
	LevelWarning Level = 24
	LevelInfo    Level = 32
	LevelDebug   Level = 48
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	}
	return "unknown"
}

// Event defines log event.
type Event struct {
	level Level
	src   string // Source.

	logger *Logger
}

// Src sets event source.
func (e *Event) Src(source string) *Event {
	e.src = source
	return e
}

// Msg sends the *Event with msg added as the message field.
func (e *Event) Msg(msg string) {
	if e.level > e.logger.minLevel {
		return
	}
	e.logger.write(e.level, e.src, msg)
}

// Msgf sends the event with formatted msg added as the message field.
func (e *Event) Msgf(format string, v ...interface{}) {
	e.Msg(fmt.Sprintf(format, v...))
}

// Logger writes events to a single output.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	minLevel Level
	timeNow  func() time.Time
}

// NewLogger returns a logger that discards events above minLevel.
func NewLogger(out io.Writer, minLevel Level) *Logger {
	return &Logger{
		out:      out,
		minLevel: minLevel,
		timeNow:  time.Now,
	}
}

func (l *Logger) write(level Level, src, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.timeNow().Format("15:04:05")
	if src != "" {
		fmt.Fprintf(l.out, "%v [%v] %v: %v\n", t, level, src, msg)
		return
	}
	fmt.Fprintf(l.out, "%v [%v] %v\n", t, level, msg)
}

// Error level event.
func (l *Logger) Error() *Event {
	return &Event{level: LevelError, logger: l}
}

// Warning level event.
func (l *Logger) Warning() *Event {
	return &Event{level: LevelWarning, logger: l}
}

// Info level event.
func (l *Logger) Info() *Event {
	return &Event{level: LevelInfo, logger: l}
}

// Debug level event.
func (l *Logger) Debug() *Event {
	return &Event{level: LevelDebug, logger: l}
}
