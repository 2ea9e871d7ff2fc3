package wasmenc

// ValType is a value type encoding from the binary format.
type ValType byte

const (
	ValI32 ValType = 0x7F
	ValI64 ValType = 0x7E
)

// Binary magic number and version.
const (
	magic   uint32 = 0x6D736100 // "\0asm" in little-endian
	version uint32 = 0x01
)

// Section IDs. Sections must appear in increasing order by ID.
const (
	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionMemory   byte = 5
	sectionExport   byte = 7
	sectionCode     byte = 10
	sectionData     byte = 11
)

// Import/export descriptor kinds.
const (
	KindFunc   byte = 0
	KindMemory byte = 2
)

const funcTypeByte byte = 0x60

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is a function import. Imported functions occupy the low
// function indices, before any module-local function.
type Import struct {
	Module string
	Name   string
	Type   uint32
}

// Func is a module-local function: a type index, its locals, and an
// instruction stream without the terminating end opcode (Encode adds
// it).
type Func struct {
	Type   uint32
	Locals []ValType
	Body   []byte
}

// Export is one module export.
type Export struct {
	Name  string
	Kind  byte
	Index uint32
}

// Data is an active data segment placed at a fixed offset in memory 0.
type Data struct {
	Offset uint32
	Bytes  []byte
}

// Limits describe a memory's size in 64KB pages.
type Limits struct {
	Min    uint32
	Max    uint32
	HasMax bool
}

// Module is a core module under construction.
type Module struct {
	Types   []FuncType
	Imports []Import
	Funcs   []Func
	Memory  *Limits
	Exports []Export
	Data    []Data
}

// Encode encodes the module to the WebAssembly binary format.
func (m *Module) Encode() []byte {
	w := NewWriter()

	w.WriteU32LE(magic)
	w.WriteU32LE(version)

	if len(m.Types) > 0 {
		sec := NewWriter()
		sec.WriteU32(uint32(len(m.Types)))
		for _, ft := range m.Types {
			sec.Byte(funcTypeByte)
			writeValTypes(sec, ft.Params)
			writeValTypes(sec, ft.Results)
		}
		writeSection(w, sectionType, sec.Bytes())
	}

	if len(m.Imports) > 0 {
		sec := NewWriter()
		sec.WriteU32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec.WriteName(imp.Module)
			sec.WriteName(imp.Name)
			sec.Byte(KindFunc)
			sec.WriteU32(imp.Type)
		}
		writeSection(w, sectionImport, sec.Bytes())
	}

	if len(m.Funcs) > 0 {
		sec := NewWriter()
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, fn := range m.Funcs {
			sec.WriteU32(fn.Type)
		}
		writeSection(w, sectionFunction, sec.Bytes())
	}

	if m.Memory != nil {
		sec := NewWriter()
		sec.WriteU32(1)
		if m.Memory.HasMax {
			sec.Byte(0x01)
			sec.WriteU32(m.Memory.Min)
			sec.WriteU32(m.Memory.Max)
		} else {
			sec.Byte(0x00)
			sec.WriteU32(m.Memory.Min)
		}
		writeSection(w, sectionMemory, sec.Bytes())
	}

	if len(m.Exports) > 0 {
		sec := NewWriter()
		sec.WriteU32(uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			sec.WriteName(exp.Name)
			sec.Byte(exp.Kind)
			sec.WriteU32(exp.Index)
		}
		writeSection(w, sectionExport, sec.Bytes())
	}

	if len(m.Funcs) > 0 {
		sec := NewWriter()
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, fn := range m.Funcs {
			body := NewWriter()
			writeLocals(body, fn.Locals)
			body.WriteBytes(fn.Body)
			body.Byte(OpEnd)

			sec.WriteU32(uint32(body.Len()))
			sec.WriteBytes(body.Bytes())
		}
		writeSection(w, sectionCode, sec.Bytes())
	}

	if len(m.Data) > 0 {
		sec := NewWriter()
		sec.WriteU32(uint32(len(m.Data)))
		for _, d := range m.Data {
			sec.Byte(0x00) // active, memory 0
			sec.Byte(OpI32Const)
			sec.WriteS32(int32(d.Offset))
			sec.Byte(OpEnd)
			sec.WriteU32(uint32(len(d.Bytes)))
			sec.WriteBytes(d.Bytes)
		}
		writeSection(w, sectionData, sec.Bytes())
	}

	return w.Bytes()
}

func writeSection(w *Writer, id byte, contents []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(contents)))
	w.WriteBytes(contents)
}

func writeValTypes(w *Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}

// writeLocals run-length groups consecutive locals of the same type.
func writeLocals(w *Writer, locals []ValType) {
	type group struct {
		t ValType
		n uint32
	}
	var groups []group
	for _, t := range locals {
		if len(groups) > 0 && groups[len(groups)-1].t == t {
			groups[len(groups)-1].n++
			continue
		}
		groups = append(groups, group{t: t, n: 1})
	}
	w.WriteU32(uint32(len(groups)))
	for _, g := range groups {
		w.WriteU32(g.n)
		w.Byte(byte(g.t))
	}
}
