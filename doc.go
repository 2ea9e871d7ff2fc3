// Package hoaxrt is the runtime support layer for the Hoax compiler.
//
// The compiler's backend emits core WebAssembly modules with a single
// exported entry point that returns one tagged 64-bit word. This library
// owns the other half of that contract: it encodes and decodes tagged
// words, provides the I/O primitives generated code can call, invokes the
// entry point, and renders the returned value.
//
// # Architecture Overview
//
//	hoaxrt/          Root package with the Memory interface
//	├── word/        Tagged-word encoding (the bit-level value contract)
//	├── heap/        Reconstruction of compound values from linear memory
//	├── printer/     Textual rendering of runtime values
//	├── hostio/      I/O primitives exposed to generated code
//	├── engine/      wazero integration: load, instantiate, call entry
//	├── shim/        Single-shot entry shim: run once, print once
//	├── wasmenc/     Minimal encoder for the emitted module format
//	├── errors/      Structured error types for diagnostics
//	└── cmd/hoaxrun/ CLI for running emitted modules
//
// # Quick Start
//
// Run an emitted module against the process streams:
//
//	err := shim.Run(ctx, wasmBytes, shim.Options{
//	    Stdin:  os.Stdin,
//	    Stdout: os.Stdout,
//	})
//
// # Value Contract
//
// Every runtime value is one 64-bit word whose low bits identify the
// variant: integers, booleans, characters, eof, void, and pointers to
// heap-resident boxes, cons cells, vectors, and strings. The exact bit
// layout is defined once in the word package and must match the code
// generator bit for bit; a word outside the agreed tag space is a fatal
// contract violation, never a recoverable error.
//
// # Process Model
//
// The runtime is single-threaded and single-shot: instantiate, call the
// entry point (which may block on input primitives), print the result,
// exit. There is no re-entrancy, no cancellation, and no retry.
package hoaxrt
