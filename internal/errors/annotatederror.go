// Package errors provides error wrapping with slog annotations and source
// locations. It re-exports the standard library helpers so that callers only
// need one errors import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// AnnotatedError carries a message, optional slog attributes, and the source
// location of the call site that created it.
type AnnotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	pc    uintptr
}

// NewSentinel creates a sentinel error suitable for errors.Is comparisons.
func NewSentinel(msg string) *AnnotatedError {
	return &AnnotatedError{
		msg:   msg,
		err:   nil,
		attrs: nil,
		pc:    callerPC(2), //nolint:mnd // skip runtime.Callers and NewSentinel.
	}
}

// Wrap annotates err with a message and optional slog attributes.
func Wrap(err error, msg string, attrs ...slog.Attr) *AnnotatedError {
	return &AnnotatedError{
		msg:   msg,
		err:   err,
		attrs: attrs,
		pc:    callerPC(2), //nolint:mnd // skip runtime.Callers and Wrap.
	}
}

func (e *AnnotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *AnnotatedError) Unwrap() error {
	return e.err
}

// New, Is, As, Join, and Unwrap delegate to the standard library.

func New(text string) error { return errors.New(text) }

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func Join(errs ...error) error { return errors.Join(errs...) }

func Unwrap(err error) error { return errors.Unwrap(err) }

// SlogError converts an error into a slog.Attr with the error message, the
// annotations collected from the whole error chain, and the source location of
// the outermost annotated error.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{} //nolint:exhaustruct // empty attr is ignored by slog.
	}

	attrs := []slog.Attr{slog.String("message", err.Error())}

	var annotations []slog.Attr
	var source string
	walkChain(err, func(ae *AnnotatedError) {
		annotations = append(annotations, ae.attrs...)
		if source == "" && ae.pc != 0 {
			source = formatSource(ae.pc)
		}
	})

	if len(annotations) > 0 {
		attrs = append(attrs, slog.Attr{Key: "annotations", Value: slog.GroupValue(annotations...)})
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}

	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

// DecoratePanic converts a recovered panic value into an error annotated with
// the location of the panic. Returns nil when excp is nil.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	return &AnnotatedError{
		msg:   fmt.Sprintf("panic: %v", excp),
		err:   nil,
		attrs: nil,
		pc:    panicPC(),
	}
}

// walkChain visits every AnnotatedError in the unwrap tree of err.
func walkChain(err error, visit func(*AnnotatedError)) {
	for err != nil {
		var ae *AnnotatedError
		if errors.As(err, &ae) {
			visit(ae)
			err = ae.err
			continue
		}
		switch unwrapped := err.(type) { //nolint:errorlint // walking the tree on purpose.
		case interface{ Unwrap() error }:
			err = unwrapped.Unwrap()
		case interface{ Unwrap() []error }:
			for _, joined := range unwrapped.Unwrap() {
				walkChain(joined, visit)
			}
			return
		default:
			return
		}
	}
}

func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	if runtime.Callers(skip+1, pcs[:]) == 0 {
		return 0
	}
	return pcs[0]
}

// panicPC finds the program counter of the panic site by skipping past the
// runtime.gopanic frame.
func panicPC() uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(1, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	seenPanic := false
	for {
		frame, more := frames.Next()
		if seenPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return frame.PC
		}
		if frame.Function == "runtime.gopanic" {
			seenPanic = true
		}
		if !more {
			return 0
		}
	}
}

func formatSource(pc uintptr) string {
	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	file := frame.File
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		file = file[idx+1:]
	}
	return fmt.Sprintf("%s:%d", file, frame.Line)
}
