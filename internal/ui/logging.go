package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type Logger struct {
	Debug bool

	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

func NewLogger(debug bool) *Logger {
	return &Logger{Debug: debug, out: os.Stdout, err: os.Stderr}
}

// NewLoggerTo writes every level to w.
func NewLoggerTo(w io.Writer, debug bool) *Logger {
	return &Logger{Debug: debug, out: w, err: w}
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.Debug {
		l.printf(l.out, "[DEBUG] ", format, args...)
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.printf(l.out, "[INFO] ", format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.printf(l.err, "[WARN] ", format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.printf(l.err, "[ERROR] ", format, args...)
}

func (l *Logger) printf(w io.Writer, prefix, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(w, prefix+format, args...)
}
