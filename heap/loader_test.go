package heap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	rterrors "github.com/hoaxlang/hoaxrt/errors"
	"github.com/hoaxlang/hoaxrt/word"
)

// memImage is an in-test linear memory. Blocks are written the way the
// code generator lays them out: little-endian 64-bit words, 8-byte
// aligned.
type memImage struct {
	data []byte
}

func newMemImage(size uint32) *memImage {
	return &memImage{data: make([]byte, size)}
}

func (m *memImage) Read(offset, length uint32) ([]byte, error) {
	if int(offset)+int(length) > len(m.data) {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return m.data[offset : offset+length], nil
}

func (m *memImage) ReadU32(offset uint32) (uint32, error) {
	b, err := m.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *memImage) ReadU64(offset uint32) (uint64, error) {
	b, err := m.Read(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (m *memImage) Size() uint32 { return uint32(len(m.data)) }

func (m *memImage) putU64(addr uint32, v uint64) {
	binary.LittleEndian.PutUint64(m.data[addr:], v)
}

func (m *memImage) putU32(addr uint32, v uint32) {
	binary.LittleEndian.PutUint32(m.data[addr:], v)
}

func mustInt(t *testing.T, n int64) word.Word {
	t.Helper()
	w, err := word.FromInt(n)
	if err != nil {
		t.Fatalf("FromInt(%d): %v", n, err)
	}
	return w
}

func mustPtr(t *testing.T, tag word.Tag, addr uint32) word.Word {
	t.Helper()
	w, err := word.FromAddr(tag, addr)
	if err != nil {
		t.Fatalf("FromAddr(%s, %#x): %v", tag, addr, err)
	}
	return w
}

func TestLoadImmediates(t *testing.T) {
	l := NewLoader(newMemImage(64))

	tests := []struct {
		name string
		w    word.Word
		want Value
	}{
		{"zero", mustInt(t, 0), Int(0)},
		{"negative", mustInt(t, -42), Int(-42)},
		{"true", word.True, Bool(true)},
		{"false", word.False, Bool(false)},
		{"char", func() word.Word { w, _ := word.FromChar('x'); return w }(), Char('x')},
		{"eof", word.Eof, Eof()},
		{"void", word.Void, Void()},
		{"empty", word.Empty, Empty()},
		{"empty string", word.EmptyString, String("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Load(tt.w)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Load = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadBox(t *testing.T) {
	mem := newMemImage(64)
	mem.putU64(16, uint64(mustInt(t, 7)))

	got, err := NewLoader(mem).Load(mustPtr(t, word.TagBox, 16))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := Box(Int(7)); !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestLoadCons(t *testing.T) {
	// cdr in the first slot, car in the second.
	mem := newMemImage(64)
	mem.putU64(8, uint64(mustInt(t, 2)))  // cdr
	mem.putU64(16, uint64(mustInt(t, 1))) // car

	got, err := NewLoader(mem).Load(mustPtr(t, word.TagCons, 8))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := Cons(Int(1), Int(2)); !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestLoadProperList(t *testing.T) {
	// (1 2) as two cons cells terminated by the empty sequence.
	mem := newMemImage(128)
	// cell at 32: cdr=empty, car=2
	mem.putU64(32, uint64(word.Empty))
	mem.putU64(40, uint64(mustInt(t, 2)))
	// cell at 48: cdr=ptr 32, car=1
	mem.putU64(48, uint64(mustPtr(t, word.TagCons, 32)))
	mem.putU64(56, uint64(mustInt(t, 1)))

	got, err := NewLoader(mem).Load(mustPtr(t, word.TagCons, 48))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := List(Int(1), Int(2)); !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestLoadVector(t *testing.T) {
	mem := newMemImage(128)
	mem.putU64(0, 3) // raw length header
	mem.putU64(8, uint64(mustInt(t, 10)))
	mem.putU64(16, uint64(word.True))
	mem.putU64(24, uint64(mustPtr(t, word.TagBox, 64)))
	mem.putU64(64, uint64(mustInt(t, -1)))

	got, err := NewLoader(mem).Load(mustPtr(t, word.TagVector, 0))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Vector(Int(10), Bool(true), Box(Int(-1)))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestLoadString(t *testing.T) {
	mem := newMemImage(64)
	mem.putU64(0, 3)
	mem.putU32(8, 'a')
	mem.putU32(12, 'b')
	mem.putU32(16, 'λ')

	got, err := NewLoader(mem).Load(mustPtr(t, word.TagString, 0))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := String("abλ"); !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestLoadUnknownTag(t *testing.T) {
	l := NewLoader(newMemImage(64))
	_, err := l.Load(word.Word(0x100 | 0b101))
	if err == nil {
		t.Fatal("unknown tag should fail")
	}
	var rte *rterrors.Error
	if !errors.As(err, &rte) || rte.Kind != rterrors.KindUnknownTag {
		t.Errorf("error = %v, want unknown_tag", err)
	}
}

func TestLoadMalformedHeaders(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *memImage) word.Word
	}{
		{
			name: "zero length vector header",
			setup: func(m *memImage) word.Word {
				m.putU64(0, 0)
				return mustPtr(t, word.TagVector, 0)
			},
		},
		{
			name: "negative length header",
			setup: func(m *memImage) word.Word {
				m.putU64(0, ^uint64(0)) // -1
				return mustPtr(t, word.TagVector, 0)
			},
		},
		{
			name: "length exceeds memory",
			setup: func(m *memImage) word.Word {
				m.putU64(0, 1<<40)
				return mustPtr(t, word.TagString, 0)
			},
		},
		{
			name: "pointer past end of memory",
			setup: func(m *memImage) word.Word {
				return mustPtr(t, word.TagBox, 4096)
			},
		},
		{
			name: "surrogate codepoint in string",
			setup: func(m *memImage) word.Word {
				m.putU64(0, 1)
				m.putU32(8, 0xD800)
				return mustPtr(t, word.TagString, 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := newMemImage(128)
			w := tt.setup(mem)
			_, err := NewLoader(mem).Load(w)
			if err == nil {
				t.Fatal("malformed input should fail")
			}
			var rte *rterrors.Error
			if !errors.As(err, &rte) || rte.Kind != rterrors.KindMalformedHeader {
				t.Errorf("error = %v, want malformed_header", err)
			}
		})
	}
}

func TestVectorHeaderBoundUsesElementWidth(t *testing.T) {
	// Vector elements are 8 bytes, so a 16-element vector at address 0
	// needs 136 bytes. In 128 bytes of memory the header itself must be
	// rejected, before any element read.
	mem := newMemImage(128)
	mem.putU64(0, 16)

	_, err := NewLoader(mem).Load(mustPtr(t, word.TagVector, 0))
	if err == nil {
		t.Fatal("oversized vector header should fail")
	}
	var rte *rterrors.Error
	if !errors.As(err, &rte) || rte.Kind != rterrors.KindMalformedHeader {
		t.Fatalf("error = %v, want malformed_header", err)
	}
	if !strings.Contains(rte.Detail, "header length 16") {
		t.Errorf("detail = %q, want the header length called out", rte.Detail)
	}
}

func TestLoadCyclicStructureBounded(t *testing.T) {
	// A cons whose cdr points back at itself violates the acyclicity
	// contract; the loader must fail instead of recursing forever.
	mem := newMemImage(64)
	self := mustPtr(t, word.TagCons, 8)
	mem.putU64(8, uint64(self))            // cdr -> itself
	mem.putU64(16, uint64(mustInt(t, 1))) // car

	_, err := NewLoader(mem).WithMaxDepth(64).Load(self)
	if err == nil {
		t.Fatal("cyclic structure should fail")
	}
	var rte *rterrors.Error
	if !errors.As(err, &rte) || rte.Kind != rterrors.KindMalformedHeader {
		t.Errorf("error = %v, want malformed_header", err)
	}
}

func TestErrorPathNamesStep(t *testing.T) {
	// The diagnostic identifies which decode step saw the violation.
	mem := newMemImage(64)
	mem.putU64(8, uint64(word.Empty))              // cdr
	mem.putU64(16, uint64(word.Word(0x100|0b110))) // car: unassigned tag

	_, err := NewLoader(mem).Load(mustPtr(t, word.TagCons, 8))
	if err == nil {
		t.Fatal("should fail")
	}
	var rte *rterrors.Error
	if !errors.As(err, &rte) {
		t.Fatalf("error type: %v", err)
	}
	if len(rte.Path) == 0 || rte.Path[0] != "car" {
		t.Errorf("error path = %v, want to start with car", rte.Path)
	}
}
