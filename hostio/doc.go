// Package hostio implements the I/O primitives generated code imports
// from the "runtime" host module: byte and integer input, byte output,
// the line terminator, and the guest error escape.
//
// All primitives share one buffered input and one buffered output
// stream, consumed strictly in call order. A fatal condition (malformed
// input, an out-of-range byte, raise_error) is recorded on the Streams
// and then aborts the running entry point via a trap; generated code
// has no recovery path.
package hostio
