// Package errors provides structured error types for the runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The runtime recognizes only two failure families —
// contract violations between compiler and runtime, and fatal input
// conditions — so every Error here terminates the run; none is
// recoverable by generated code.
//
// Use the convenience constructors:
//
//	err := errors.UnknownTag(errors.PhaseDecode, w)
//	err := errors.InputExhausted("read_integer")
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
