// Package printer renders runtime values in the language's surface
// syntax: decimal integers, #t/#f, #\-prefixed characters, boxes as
// #&v, cons chains as parenthesized lists, vectors as #(...), and
// double-quoted strings.
//
// Rendering is deterministic: the output is purely a function of the
// value. A variant without a rendering is a contract violation.
package printer
