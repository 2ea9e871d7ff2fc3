package printer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/hoaxlang/hoaxrt/errors"
	"github.com/hoaxlang/hoaxrt/heap"
	"github.com/hoaxlang/hoaxrt/word"
)

// Boolean literal spellings. These are fixed by the language's surface
// syntax and must never be computed.
const (
	trueToken  = "#t"
	falseToken = "#f"
)

// Printer renders runtime values onto an output stream.
type Printer struct {
	w io.Writer
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintResult renders one top-level value followed by the line
// terminator. The void value renders as nothing at all, terminator
// included.
func (p *Printer) PrintResult(v heap.Value) error {
	if v.Tag == word.TagVoid {
		return nil
	}
	if err := p.Print(v); err != nil {
		return err
	}
	if _, err := io.WriteString(p.w, "\n"); err != nil {
		return errors.IO(errors.PhasePrint, "write line terminator", err)
	}
	return nil
}

// Print renders one value with no trailing terminator. Rendering is a
// pure function of the value: the same input always produces the same
// text.
func (p *Printer) Print(v heap.Value) error {
	var b strings.Builder
	if err := render(&b, v); err != nil {
		return err
	}
	if _, err := io.WriteString(p.w, b.String()); err != nil {
		return errors.IO(errors.PhasePrint, "write rendering", err)
	}
	return nil
}

// Render returns the textual rendering of a value.
func Render(v heap.Value) (string, error) {
	var b strings.Builder
	if err := render(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func render(b *strings.Builder, v heap.Value) error {
	switch v.Tag {
	case word.TagInteger:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case word.TagBoolean:
		if v.Bool {
			b.WriteString(trueToken)
		} else {
			b.WriteString(falseToken)
		}
	case word.TagCharacter:
		renderChar(b, v.Char)
	case word.TagEof:
		b.WriteString("#<eof>")
	case word.TagVoid:
		// renders as nothing
	case word.TagEmpty:
		b.WriteString("()")
	case word.TagBox:
		b.WriteString("#&")
		return render(b, v.Items[0])
	case word.TagCons:
		return renderCons(b, v)
	case word.TagVector:
		b.WriteString("#(")
		for i, item := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			if err := render(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(')')
	case word.TagString:
		renderString(b, v.Str)
	default:
		return &errors.Error{
			Phase:  errors.PhasePrint,
			Kind:   errors.KindUnknownTag,
			Detail: fmt.Sprintf("no rendering for variant %s", v.Tag),
		}
	}
	return nil
}

// renderCons prints cons chains as proper lists when they terminate in
// the empty sequence, and with a dotted tail otherwise.
func renderCons(b *strings.Builder, v heap.Value) error {
	b.WriteByte('(')
	for {
		if err := render(b, v.Car()); err != nil {
			return err
		}
		tail := v.Cdr()
		switch tail.Tag {
		case word.TagEmpty:
			b.WriteByte(')')
			return nil
		case word.TagCons:
			b.WriteByte(' ')
			v = tail
		default:
			b.WriteString(" . ")
			if err := render(b, tail); err != nil {
				return err
			}
			b.WriteByte(')')
			return nil
		}
	}
}

var charNames = map[rune]string{
	0:    "nul",
	' ':  "space",
	'\t': "tab",
	'\n': "newline",
	'\r': "return",
}

func renderChar(b *strings.Builder, r rune) {
	if name, ok := charNames[r]; ok {
		b.WriteString("#\\")
		b.WriteString(name)
		return
	}
	if unicode.IsPrint(r) {
		b.WriteString("#\\")
		b.WriteRune(r)
		return
	}
	fmt.Fprintf(b, "#\\u%04X", r)
}

func renderString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
