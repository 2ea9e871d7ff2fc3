package heap

import "github.com/hoaxlang/hoaxrt/word"

// Value is a runtime value reconstructed from a tagged word, with
// compound structure pulled out of guest memory into an explicit tree.
// Exactly one payload field is meaningful, selected by Tag:
//
//	TagInteger    Int
//	TagBoolean    Bool
//	TagCharacter  Char
//	TagBox        Items[0]
//	TagCons       Items[0] (car), Items[1] (cdr)
//	TagVector     Items
//	TagString     Str
//
// TagEof, TagVoid and TagEmpty carry no payload. TagEmptyString is
// normalized to TagString with an empty Str, so consumers see one
// string variant.
type Value struct {
	Str   string
	Items []Value
	Int   int64
	Char  rune
	Tag   word.Tag
	Bool  bool
}

// Constructors, mainly for tests and for building expected values.

func Int(n int64) Value      { return Value{Tag: word.TagInteger, Int: n} }
func Bool(b bool) Value      { return Value{Tag: word.TagBoolean, Bool: b} }
func Char(r rune) Value      { return Value{Tag: word.TagCharacter, Char: r} }
func Eof() Value             { return Value{Tag: word.TagEof} }
func Void() Value            { return Value{Tag: word.TagVoid} }
func Empty() Value           { return Value{Tag: word.TagEmpty} }
func Box(v Value) Value      { return Value{Tag: word.TagBox, Items: []Value{v}} }
func Cons(car, cdr Value) Value {
	return Value{Tag: word.TagCons, Items: []Value{car, cdr}}
}
func Vector(items ...Value) Value {
	return Value{Tag: word.TagVector, Items: items}
}
func String(s string) Value { return Value{Tag: word.TagString, Str: s} }

// List builds a proper list: conses terminated by the empty sequence.
func List(items ...Value) Value {
	v := Empty()
	for i := len(items) - 1; i >= 0; i-- {
		v = Cons(items[i], v)
	}
	return v
}

// Car returns the first cons field. Valid only for TagCons.
func (v Value) Car() Value { return v.Items[0] }

// Cdr returns the second cons field. Valid only for TagCons.
func (v Value) Cdr() Value { return v.Items[1] }
