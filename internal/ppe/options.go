package ppe

import (
	"io"
	"time"

	"github.com/jcorbin/ppedoor/internal/vt"
)

// Option configures an Interpreter.
type Option interface{ apply(it *Interpreter) }

// Options combines several options into one.
type Options []Option

func (opts Options) apply(it *Interpreter) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(it)
		}
	}
}

var defaultOptions = Options{
	withDiagnostics(io.Discard),
	withClock(time.Now),
}

// WithLogf sets a printf-style trace logging function.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithEventLog sets where LOG statements are written.
func WithEventLog(logfn func(mess string, args ...interface{})) Option {
	return withEventLog(logfn)
}

// WithDiagnostics sets the stream SPRINT and SPRINTLN write to.
func WithDiagnostics(w io.Writer) Option { return withDiagnostics(w) }

// WithClock sets the time source for DATE and TIME.
func WithClock(now func() time.Time) Option { return withClock(now) }

// WithOptions adapts a list of options into one.
func WithOptions(opts ...Option) Option { return Options(opts) }

type withLogfn func(mess string, args ...interface{})
type withClock func() time.Time
type withEventLog func(mess string, args ...interface{})
type diagnosticsOption struct{ io.Writer }

func withDiagnostics(w io.Writer) diagnosticsOption { return diagnosticsOption{w} }

func (logfn withLogfn) apply(it *Interpreter) { it.logfn = logfn }
func (now withClock) apply(it *Interpreter)   { it.now = now }

func (logfn withEventLog) apply(it *Interpreter) { it.eventf = logfn }

func (o diagnosticsOption) apply(it *Interpreter) {
	it.diag = vt.NewTerminal(o.Writer)
}
