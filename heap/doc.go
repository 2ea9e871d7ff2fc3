// Package heap reconstructs compound runtime values from guest linear
// memory.
//
// A pointer-tagged word addresses a heap block the generated code
// allocated: a box holds one word, a cons holds cdr then car, and
// vectors and strings start with a raw length header followed by the
// payload slots. The Loader turns such a word into an explicit Value
// tree so the rest of the runtime never follows raw addresses.
//
// The contract guarantees acyclic, well-formed blocks; the Loader still
// bounds recursion depth and sanity-checks headers so a malformed
// header fails as a diagnosed contract violation instead of undefined
// behavior.
package heap
