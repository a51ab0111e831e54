package logging

import (
	"log"
	"os"
	"strings"
)

// Logger is injected into every package that reports warnings instead of
// returning them.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel is case-insensitive and falls back to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Std writes leveled lines through the standard library logger.
type Std struct {
	level Level
	out   *log.Logger
}

func New(level string) *Std {
	return &Std{
		level: ParseLevel(level),
		out:   log.New(os.Stderr, "", log.LstdFlags),
	}
}

// NewWithLogger is mostly useful in tests that capture output.
func NewWithLogger(level string, out *log.Logger) *Std {
	return &Std{level: ParseLevel(level), out: out}
}

func (l *Std) Level() Level { return l.level }

func (l *Std) enabled(level Level) bool { return level >= l.level }

func (l *Std) Debugf(format string, v ...any) {
	if l.enabled(LevelDebug) {
		l.out.Printf("[DEBUG] "+format, v...)
	}
}

func (l *Std) Infof(format string, v ...any) {
	if l.enabled(LevelInfo) {
		l.out.Printf("[INFO] "+format, v...)
	}
}

func (l *Std) Warnf(format string, v ...any) {
	if l.enabled(LevelWarn) {
		l.out.Printf("[WARN] "+format, v...)
	}
}

func (l *Std) Errorf(format string, v ...any) {
	if l.enabled(LevelError) {
		l.out.Printf("[ERROR] "+format, v...)
	}
}

// NoOp discards everything.
type NoOp struct{}

func (NoOp) Debugf(format string, v ...any) {}
func (NoOp) Infof(format string, v ...any)  {}
func (NoOp) Warnf(format string, v ...any)  {}
func (NoOp) Errorf(format string, v ...any) {}

func NewNoOp() Logger { return NoOp{} }

// OrNoOp returns l, or a NoOp logger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOp{}
	}
	return l
}
