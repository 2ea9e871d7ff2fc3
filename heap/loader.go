package heap

import (
	"fmt"
	"unicode/utf8"

	hoaxrt "github.com/hoaxlang/hoaxrt"
	"github.com/hoaxlang/hoaxrt/errors"
	"github.com/hoaxlang/hoaxrt/word"
)

// DefaultMaxDepth bounds recursion through compound values. The
// contract promises acyclic structures, but a malformed header must
// not take the runtime down with unbounded recursion.
const DefaultMaxDepth = 4096

// maxElems caps a single vector or string header when the memory
// cannot report its size.
const maxElems = 1 << 29

// Loader reconstructs values from tagged words, reading compound
// blocks out of the guest's linear memory.
type Loader struct {
	mem      hoaxrt.Memory
	maxDepth int
}

// NewLoader creates a Loader over the given memory.
func NewLoader(mem hoaxrt.Memory) *Loader {
	return &Loader{mem: mem, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth overrides the defensive recursion bound.
func (l *Loader) WithMaxDepth(depth int) *Loader {
	l.maxDepth = depth
	return l
}

// Load reconstructs the value a tagged word denotes. Compound headers
// are read exactly once; elements are loaded recursively. Unknown tags
// and ill-formed headers are contract violations.
func (l *Loader) Load(w word.Word) (Value, error) {
	return l.load(w, 0)
}

func (l *Loader) load(w word.Word, depth int) (Value, error) {
	if depth > l.maxDepth {
		return Value{}, errors.MalformedHeader(uint64(w),
			fmt.Sprintf("structure exceeds depth %d; header graph may be cyclic", l.maxDepth))
	}

	switch tag := w.Tag(); tag {
	case word.TagInteger:
		return Int(w.Int()), nil
	case word.TagBoolean:
		return Bool(w.Bool()), nil
	case word.TagCharacter:
		return Char(w.Char()), nil
	case word.TagEof:
		return Eof(), nil
	case word.TagVoid:
		return Void(), nil
	case word.TagEmpty:
		return Empty(), nil
	case word.TagEmptyString:
		return String(""), nil
	case word.TagBox:
		return l.loadBox(w, depth)
	case word.TagCons:
		return l.loadCons(w, depth)
	case word.TagVector:
		return l.loadVector(w, depth)
	case word.TagString:
		return l.loadString(w)
	default:
		return Value{}, errors.UnknownTag(errors.PhaseDecode, uint64(w))
	}
}

func (l *Loader) loadBox(w word.Word, depth int) (Value, error) {
	inner, err := l.word(w, w.Addr())
	if err != nil {
		return Value{}, err
	}
	v, err := l.load(inner, depth+1)
	if err != nil {
		return Value{}, pushPath(err, "box")
	}
	return Box(v), nil
}

// loadCons reads a pair. The code generator lays pairs out with the
// cdr in the first slot and the car in the second.
func (l *Loader) loadCons(w word.Word, depth int) (Value, error) {
	addr := w.Addr()
	cdrWord, err := l.word(w, addr)
	if err != nil {
		return Value{}, err
	}
	carWord, err := l.word(w, addr+8)
	if err != nil {
		return Value{}, err
	}

	car, err := l.load(carWord, depth+1)
	if err != nil {
		return Value{}, pushPath(err, "car")
	}
	cdr, err := l.load(cdrWord, depth+1)
	if err != nil {
		return Value{}, pushPath(err, "cdr")
	}
	return Cons(car, cdr), nil
}

// loadVector reads the length header once, then iterates the payload
// slots.
func (l *Loader) loadVector(w word.Word, depth int) (Value, error) {
	addr := w.Addr()
	n, err := l.header(w, addr, 8)
	if err != nil {
		return Value{}, err
	}

	items := make([]Value, 0, n)
	for i := uint32(0); i < uint32(n); i++ {
		ew, err := l.word(w, addr+8+i*8)
		if err != nil {
			return Value{}, err
		}
		item, err := l.load(ew, depth+1)
		if err != nil {
			return Value{}, pushPath(err, fmt.Sprintf("vector[%d]", i))
		}
		items = append(items, item)
	}
	return Vector(items...), nil
}

// loadString reads the length header once, then the 4-byte codepoints.
func (l *Loader) loadString(w word.Word) (Value, error) {
	addr := w.Addr()
	n, err := l.header(w, addr, 4)
	if err != nil {
		return Value{}, err
	}

	runes := make([]rune, 0, n)
	for i := uint32(0); i < uint32(n); i++ {
		cp, err := l.mem.ReadU32(addr + 8 + i*4)
		if err != nil {
			return Value{}, errors.Wrap(errors.PhaseDecode, errors.KindMalformedHeader, err,
				"string payload outside linear memory")
		}
		r := rune(cp)
		if r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
			return Value{}, errors.MalformedHeader(uint64(w),
				fmt.Sprintf("string codepoint %#x at index %d is not a Unicode scalar", cp, i))
		}
		runes = append(runes, r)
	}
	return String(string(runes)), nil
}

// header reads and validates a compound block's length word against
// the variant's element width. Empty aggregates are immediates, so a
// heap block always has at least one element; an absurd length is a
// broken header, not a huge value.
func (l *Loader) header(w word.Word, addr uint32, elemSize int64) (int64, error) {
	raw, err := l.mem.ReadU64(addr)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseDecode, errors.KindMalformedHeader, err,
			"header word outside linear memory")
	}
	n := int64(raw)
	if n <= 0 {
		return 0, errors.MalformedHeader(uint64(w),
			fmt.Sprintf("header length %d; heap aggregates are never empty", n))
	}
	limit := int64(maxElems)
	if sz, ok := l.mem.(hoaxrt.MemorySizer); ok {
		limit = (int64(sz.Size()) - int64(addr) - 8) / elemSize
	}
	if n > limit {
		return 0, errors.MalformedHeader(uint64(w),
			fmt.Sprintf("header length %d exceeds linear memory", n))
	}
	return n, nil
}

func (l *Loader) word(w word.Word, addr uint32) (word.Word, error) {
	raw, err := l.mem.ReadU64(addr)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseDecode, errors.KindMalformedHeader, err,
			fmt.Sprintf("pointer %#x outside linear memory", w.Addr()))
	}
	return word.Word(raw), nil
}

func pushPath(err error, step string) error {
	if e, ok := err.(*errors.Error); ok {
		return e.WithPath(append([]string{step}, e.Path...)...)
	}
	return err
}
