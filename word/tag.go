package word

// Tag identifies the runtime variant a tagged word encodes.
// It is a closed enumeration: every word decodes to exactly one Tag,
// and TagUnknown marks bit patterns outside the agreed tag space.
type Tag uint8

const (
	TagInteger Tag = iota
	TagBoolean
	TagCharacter
	TagEof
	TagVoid
	TagEmpty
	TagEmptyString
	TagBox
	TagCons
	TagVector
	TagString
	TagUnknown
)

var tagNames = [...]string{
	TagInteger:     "integer",
	TagBoolean:     "boolean",
	TagCharacter:   "character",
	TagEof:         "eof",
	TagVoid:        "void",
	TagEmpty:       "empty",
	TagEmptyString: "empty-string",
	TagBox:         "box",
	TagCons:        "cons",
	TagVector:      "vector",
	TagString:      "string",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// IsImmediate reports whether the variant's payload lives entirely in
// the word itself.
func (t Tag) IsImmediate() bool {
	return t <= TagEmptyString
}

// IsPointer reports whether the variant's payload is a heap address.
func (t Tag) IsPointer() bool {
	return t >= TagBox && t <= TagString
}
