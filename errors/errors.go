package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the run the error occurred
type Phase string

const (
	PhaseLoad   Phase = "load"   // module loading and validation
	PhaseEntry  Phase = "entry"  // entry point lookup and invocation
	PhaseDecode Phase = "decode" // tagged-word and heap decoding
	PhasePrint  Phase = "print"  // result rendering
	PhaseRead   Phase = "read"   // input primitives
	PhaseWrite  Phase = "write"  // output primitives
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownTag      Kind = "unknown_tag"
	KindMalformedHeader Kind = "malformed_header"
	KindOutOfRange      Kind = "out_of_range"
	KindBadSignature    Kind = "bad_signature"
	KindBadInput        Kind = "bad_input"
	KindInputExhausted  Kind = "input_exhausted"
	KindGuestError      Kind = "guest_error"
	KindInvalidData     Kind = "invalid_data"
	KindNotFound        Kind = "not_found"
	KindIO              Kind = "io"
)

// Error is the structured error type used throughout the runtime.
// Every failure it describes is fatal: either a contract violation
// between compiler and runtime, or an unrecoverable I/O state.
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	Detail  string
	Path    []string
	Word    uint64
	HasWord bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.HasWord {
		fmt.Fprintf(&b, " (word %#016x)", e.Word)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// WithPath returns a copy of e with the value path set.
// The path names the decode/print step that observed the violation,
// e.g. "car", "vector[3]".
func (e *Error) WithPath(path ...string) *Error {
	dup := *e
	dup.Path = path
	return &dup
}

// Convenience constructors for the runtime's failure modes

// UnknownTag reports a word whose tag bits match no agreed variant.
func UnknownTag(phase Phase, w uint64) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindUnknownTag,
		Detail:  fmt.Sprintf("tag bits %#b outside the agreed tag space", w&0b111),
		Word:    w,
		HasWord: true,
	}
}

// MalformedHeader reports a compound header that cannot describe a
// well-formed heap block.
func MalformedHeader(w uint64, detail string) *Error {
	return &Error{
		Phase:   PhaseDecode,
		Kind:    KindMalformedHeader,
		Detail:  detail,
		Word:    w,
		HasWord: true,
	}
}

// OutOfRange reports a payload that does not fit the encoding.
func OutOfRange(phase Phase, detail string) *Error {
	return &Error{Phase: phase, Kind: KindOutOfRange, Detail: detail}
}

// BadSignature reports an entry point with an unexpected type.
func BadSignature(detail string) *Error {
	return &Error{Phase: PhaseEntry, Kind: KindBadSignature, Detail: detail}
}

// BadInput reports malformed data on the input stream.
func BadInput(detail string) *Error {
	return &Error{Phase: PhaseRead, Kind: KindBadInput, Detail: detail}
}

// InputExhausted reports a read past the end of the input stream.
func InputExhausted(what string) *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindInputExhausted,
		Detail: fmt.Sprintf("%s: input stream exhausted", what),
	}
}

// GuestError reports a fatal error signaled by generated code.
func GuestError() *Error {
	return &Error{Phase: PhaseEntry, Kind: KindGuestError, Detail: "program signaled an error"}
}

// NotFound reports a missing export.
func NotFound(what, name string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Load wraps a module loading failure.
func Load(detail string, cause error) *Error {
	return &Error{Phase: PhaseLoad, Kind: KindInvalidData, Detail: detail, Cause: cause}
}

// IO wraps a stream failure.
func IO(phase Phase, detail string, cause error) *Error {
	return &Error{Phase: phase, Kind: KindIO, Detail: detail, Cause: cause}
}

// Wrap wraps an existing error with phase and kind context.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{Phase: phase, Kind: kind, Detail: detail, Cause: cause}
}
