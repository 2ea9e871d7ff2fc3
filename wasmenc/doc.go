// Package wasmenc encodes core WebAssembly modules in the shape the
// code generator emits: one exported entry function typed [] -> [i64],
// host imports from the "runtime" module, and optionally a linear
// memory with pre-laid-out data segments for compound results.
//
// It writes the binary format directly; there is no validation beyond
// what the structure forces. The test suites and examples use it to
// build entry modules without an external toolchain.
package wasmenc
