// Package logging provides the small structured-logging facade shared by
// the calendar, machine, scheduler, and sim packages.
//
// Logger is a concrete instantiation of github.com/joeycumines/logiface,
// configured per-component via functional options (see options.go) rather
// than a package-global instance: each simulation run constructs its own
// components, and there is no process-wide singleton to hang a global
// logger off. The JSON backend is stumpy, which writes logiface events
// directly without adapter glue.
package logging

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger consumed by this module: a
// logiface.Logger instantiated with stumpy's *Event as the concrete event
// type. All of its methods (inherited from *logiface.Logger) are safe to
// call on a nil receiver, and every Builder method is safe to call on a
// nil Builder, so a zero-value Logger (or one produced by NoOp) behaves
// as a true no-op sink rather than requiring callers to guard against it.
type Logger = *logiface.Logger[*stumpy.Event]

// Level is the severity of a log record, using logiface's syslog-derived
// scale. Only the four levels this module distinguishes are named below;
// the rest of logiface.Level's range remains usable.
type Level = logiface.Level

const (
	LevelDebug Level = logiface.LevelDebug
	LevelInfo  Level = logiface.LevelInformational
	LevelWarn  Level = logiface.LevelWarning
	LevelError Level = logiface.LevelError
)

// Field is a single structured key/value pair attached to a log record.
type Field struct {
	Key   string
	Value any
}

// F constructs a Field. It is a short name because call sites (inside
// hot scheduling loops) tend to carry several of these.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// NoOp returns a Logger with no writer configured, so every level is
// disabled and every call below is a no-op.
func NoOp() Logger { return logiface.New[*stumpy.Event]() }

// NewWriterLogger returns a Logger that writes one JSON record per line
// to w, for records at or above level. A nil w defaults to os.Stderr.
func NewWriterLogger(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	return logiface.New[*stumpy.Event](
		stumpy.WithStumpy(stumpy.WithWriter(w)),
		logiface.WithLevel[*stumpy.Event](level),
	)
}

func emit(l Logger, level Level, msg string, fields []Field) {
	b := l.Build(level)
	for _, f := range fields {
		b = b.Field(f.Key, f.Value)
	}
	b.Log(msg)
}

// Debug, Info, Warn, and Error are convenience wrappers so call sites
// don't need to chain Builder.Field/Log themselves.
func Debug(l Logger, msg string, fields ...Field) { emit(l, LevelDebug, msg, fields) }
func Info(l Logger, msg string, fields ...Field)  { emit(l, LevelInfo, msg, fields) }
func Warn(l Logger, msg string, fields ...Field)  { emit(l, LevelWarn, msg, fields) }
func Error(l Logger, msg string, fields ...Field) { emit(l, LevelError, msg, fields) }
