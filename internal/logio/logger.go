// Package logio provides the host's leveled log, and an adapter from a
// line-oriented io.Writer onto any printf-style log function.
package logio

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// Logger writes "level: message" lines to an output stream, remembering
// whether any error was logged so that the process may exit non-zero.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	now      func() time.Time
	buf      bytes.Buffer
	exitCode int
}

// NewLogger creates a logger writing to out.
func NewLogger(out io.Writer) *Logger { return &Logger{out: out} }

// SetOutput changes the output stream.
func (log *Logger) SetOutput(out io.Writer) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.out = out
}

// SetClock enables a timestamp on every line; nil disables it.
func (log *Logger) SetClock(now func() time.Time) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.now = now
}

// ExitCode returns a code to pass to os.Exit: 1 if any error was logged, 2
// if the log itself could not be written, 0 otherwise.
func (log *Logger) ExitCode() int {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.exitCode
}

// Leveledf returns a printf-style function that logs at level.
func (log *Logger) Leveledf(level string) func(mess string, args ...interface{}) {
	return func(mess string, args ...interface{}) { log.Printf(level, mess, args...) }
}

// Nodef returns a printf-style function that logs at level, marking each line
// with a node number.
func (log *Logger) Nodef(level string, node int) func(mess string, args ...interface{}) {
	prefix := fmt.Sprintf("node %v: ", node)
	return func(mess string, args ...interface{}) { log.Printf(level, prefix+mess, args...) }
}

// ErrorIf logs any non-nil error through Errorf.
func (log *Logger) ErrorIf(err error) {
	if err != nil {
		log.Errorf("%+v", err)
	}
}

// Errorf is like Printf("ERROR", ...), additionally setting the exit code.
func (log *Logger) Errorf(mess string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.printf("ERROR", mess, args...)
	if log.exitCode == 0 {
		log.exitCode = 1
	}
}

// Printf writes one line like "level: message...\n".
func (log *Logger) Printf(level, mess string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.printf(level, mess, args...)
}

func (log *Logger) printf(level, mess string, args ...interface{}) {
	if log.now != nil {
		log.buf.WriteString(log.now().Format("2006-01-02 15:04:05 "))
	}
	if level != "" {
		log.buf.WriteString(level)
		log.buf.WriteString(": ")
	}
	if len(args) > 0 {
		fmt.Fprintf(&log.buf, mess, args...)
	} else {
		log.buf.WriteString(mess)
	}
	if b := log.buf.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
		log.buf.WriteByte('\n')
	}
	if log.out == nil {
		log.buf.Reset()
		return
	}
	if _, err := log.buf.WriteTo(log.out); err != nil {
		log.buf.Reset()
		log.exitCode = 2
	}
}
