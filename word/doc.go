// Package word defines the tagged-word value encoding shared with the
// code generator.
//
// Every runtime value is one 64-bit word. The low bits form a tag
// identifying the variant; the remaining bits hold the payload (an
// integer, a codepoint, a single truth bit) or the address of a
// heap-resident block. The constants here are the contract: the code
// generator emits literals with these exact bit patterns, and both
// sides must agree bit for bit.
//
// All operations are pure bit manipulation with no internal state.
// Decoding never guesses: a pattern outside the agreed tag space
// classifies as TagUnknown, which callers treat as a fatal contract
// violation.
package word
