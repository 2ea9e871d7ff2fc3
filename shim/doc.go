// Package shim drives one run of a compiled entry module: set up the
// engine and host primitives, instantiate, call the entry point, decode
// the tagged result word, and print it.
//
// The shim is the only package that sequences the others; embedders
// call Run and get either a printed result on the output stream or a
// structured error with nothing printed after the program's own output.
package shim
