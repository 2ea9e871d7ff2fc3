package word

import (
	"fmt"
	"unicode/utf8"

	"github.com/hoaxlang/hoaxrt/errors"
)

// Word is the universal runtime value: one 64-bit machine word whose
// low-order bits identify the variant and whose remaining bits hold the
// payload or heap address.
//
// Bit layout (low bits first), agreed with the code generator:
//
//	Pointers end in a non-zero 3-bit tag; heap blocks are 8-byte
//	aligned, so the address is the word with the tag masked off.
//	  box:    xxx...001
//	  cons:   xxx...010
//	  vector: xxx...011
//	  string: xxx...100
//	Immediates end in 000:
//	  integer:   payload << 4, bit 3 clear  (...0 000)
//	  character: payload << 5              (..01 000)
//	  #t   0x18   #f    0x38
//	  eof  0x58   void  0x78
//	  ()   0x98   ""    0xB8
//
// The tag values 101, 110 and 111 are unassigned; observing one is a
// contract violation.
type Word int64

const (
	ptrTagMask = 0b111
	ptrTagBox  = 0b001
	ptrTagCons = 0b010
	ptrTagVect = 0b011
	ptrTagStr  = 0b100

	intShift  = 4
	charShift = 5
	charMask  = 0b11111
	charTag   = 0b01000

	immBit = 0b1000 // set on every non-integer immediate
)

// Immediate constants. These are compile-time constants of the
// contract, never computed.
const (
	True        Word = 0x18
	False       Word = 0x38
	Eof         Word = 0x58
	Void        Word = 0x78
	Empty       Word = 0x98 // the empty sequence: list terminator, zero-length vector
	EmptyString Word = 0xB8
)

// Representable integer range: the native word width minus the tag width.
const (
	MaxInt int64 = 1<<(63-intShift) - 1
	MinInt int64 = -(1 << (63 - intShift))
)

// FromInt encodes an integer. Values outside the representable range are
// a contract violation: the code generator is never permitted to produce
// them.
func FromInt(n int64) (Word, error) {
	if n < MinInt || n > MaxInt {
		return 0, errors.OutOfRange(errors.PhaseDecode,
			fmt.Sprintf("integer %d does not fit %d payload bits", n, 64-intShift))
	}
	return Word(n << intShift), nil
}

// Int decodes an integer payload by arithmetic right shift. The caller
// must have established Tag() == TagInteger.
func (w Word) Int() int64 {
	return int64(w) >> intShift
}

// FromBool encodes a boolean.
func FromBool(b bool) Word {
	if b {
		return True
	}
	return False
}

// Bool decodes a boolean. The caller must have established
// Tag() == TagBoolean.
func (w Word) Bool() bool {
	return w == True
}

// FromChar encodes a character. Codepoints outside the Unicode scalar
// range are a contract violation.
func FromChar(r rune) (Word, error) {
	if r < 0 || r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
		return 0, errors.OutOfRange(errors.PhaseDecode,
			fmt.Sprintf("codepoint %#x outside the Unicode scalar range", r))
	}
	return Word(int64(r)<<charShift | charTag), nil
}

// Char decodes a character payload. The caller must have established
// Tag() == TagCharacter.
func (w Word) Char() rune {
	return rune(int64(w) >> charShift)
}

// FromAddr encodes a pointer to a heap block of the given variant.
// The address must be 8-byte aligned.
func FromAddr(t Tag, addr uint32) (Word, error) {
	if addr&ptrTagMask != 0 {
		return 0, errors.OutOfRange(errors.PhaseDecode,
			fmt.Sprintf("heap address %#x is not 8-byte aligned", addr))
	}
	switch t {
	case TagBox:
		return Word(uint64(addr) | ptrTagBox), nil
	case TagCons:
		return Word(uint64(addr) | ptrTagCons), nil
	case TagVector:
		return Word(uint64(addr) | ptrTagVect), nil
	case TagString:
		return Word(uint64(addr) | ptrTagStr), nil
	}
	return 0, errors.OutOfRange(errors.PhaseDecode,
		fmt.Sprintf("%s is not a pointer variant", t))
}

// Addr returns the heap address of a pointer-tagged word. The caller
// must have established Tag().IsPointer().
func (w Word) Addr() uint32 {
	return uint32(uint64(w) &^ ptrTagMask)
}

// Tag classifies the word. Exactly one variant matches any bit pattern;
// patterns outside the agreed space classify as TagUnknown.
func (w Word) Tag() Tag {
	switch uint64(w) & ptrTagMask {
	case ptrTagBox:
		return TagBox
	case ptrTagCons:
		return TagCons
	case ptrTagVect:
		return TagVector
	case ptrTagStr:
		return TagString
	case 0:
		// immediate space
	default:
		return TagUnknown
	}

	if uint64(w)&immBit == 0 {
		return TagInteger
	}
	if uint64(w)&charMask == charTag {
		return TagCharacter
	}

	switch w {
	case True, False:
		return TagBoolean
	case Eof:
		return TagEof
	case Void:
		return TagVoid
	case Empty:
		return TagEmpty
	case EmptyString:
		return TagEmptyString
	}
	return TagUnknown
}

// String renders the word for diagnostics: the tag name and raw bits.
func (w Word) String() string {
	return fmt.Sprintf("%s(%#016x)", w.Tag(), uint64(w))
}
