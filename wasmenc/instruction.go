package wasmenc

// Opcodes used by emitted entry bodies.
const (
	OpBlock    byte = 0x02
	OpLoop     byte = 0x03
	OpIf       byte = 0x04
	OpElse     byte = 0x05
	OpEnd      byte = 0x0B
	OpBr       byte = 0x0C
	OpBrIf     byte = 0x0D
	OpReturn   byte = 0x0F
	OpCall     byte = 0x10
	OpDrop     byte = 0x1A
	OpLocalGet byte = 0x20
	OpLocalSet byte = 0x21
	OpLocalTee byte = 0x22
	OpI64Load  byte = 0x29
	OpI64Store byte = 0x37
	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpI64Eqz   byte = 0x50
	OpI64Eq    byte = 0x51
	OpI64LtS   byte = 0x53
	OpI64GtS   byte = 0x55
	OpI64Add   byte = 0x7C
	OpI64Sub   byte = 0x7D
	OpI64Mul   byte = 0x7E
	OpI64And   byte = 0x83
	OpI64Or    byte = 0x84
	OpI64Shl   byte = 0x86
	OpI64ShrS  byte = 0x87
)

// BlockEmpty is the block type of a block producing no values.
const BlockEmpty byte = 0x40

// Body builds one function's instruction stream.
type Body struct {
	w *Writer
}

// NewBody creates an empty instruction stream.
func NewBody() *Body {
	return &Body{w: NewWriter()}
}

// Bytes returns the instruction stream, without a terminating end
// opcode; Module.Encode appends it.
func (b *Body) Bytes() []byte {
	return b.w.Bytes()
}

func (b *Body) op(code byte) *Body {
	b.w.Byte(code)
	return b
}

func (b *Body) I32Const(v int32) *Body {
	b.w.Byte(OpI32Const)
	b.w.WriteS32(v)
	return b
}

func (b *Body) I64Const(v int64) *Body {
	b.w.Byte(OpI64Const)
	b.w.WriteS64(v)
	return b
}

func (b *Body) LocalGet(i uint32) *Body {
	b.w.Byte(OpLocalGet)
	b.w.WriteU32(i)
	return b
}

func (b *Body) LocalSet(i uint32) *Body {
	b.w.Byte(OpLocalSet)
	b.w.WriteU32(i)
	return b
}

func (b *Body) LocalTee(i uint32) *Body {
	b.w.Byte(OpLocalTee)
	b.w.WriteU32(i)
	return b
}

func (b *Body) Call(fn uint32) *Body {
	b.w.Byte(OpCall)
	b.w.WriteU32(fn)
	return b
}

// Block opens a block with the given block type (BlockEmpty or a
// ValType byte).
func (b *Body) Block(blockType byte) *Body {
	b.w.Byte(OpBlock)
	b.w.Byte(blockType)
	return b
}

func (b *Body) Loop(blockType byte) *Body {
	b.w.Byte(OpLoop)
	b.w.Byte(blockType)
	return b
}

func (b *Body) If(blockType byte) *Body {
	b.w.Byte(OpIf)
	b.w.Byte(blockType)
	return b
}

func (b *Body) Else() *Body { return b.op(OpElse) }
func (b *Body) End() *Body  { return b.op(OpEnd) }

func (b *Body) Br(depth uint32) *Body {
	b.w.Byte(OpBr)
	b.w.WriteU32(depth)
	return b
}

func (b *Body) BrIf(depth uint32) *Body {
	b.w.Byte(OpBrIf)
	b.w.WriteU32(depth)
	return b
}

func (b *Body) Return() *Body { return b.op(OpReturn) }
func (b *Body) Drop() *Body   { return b.op(OpDrop) }

func (b *Body) I64Load(align, offset uint32) *Body {
	b.w.Byte(OpI64Load)
	b.w.WriteU32(align)
	b.w.WriteU32(offset)
	return b
}

func (b *Body) I64Store(align, offset uint32) *Body {
	b.w.Byte(OpI64Store)
	b.w.WriteU32(align)
	b.w.WriteU32(offset)
	return b
}

func (b *Body) I64Eqz() *Body  { return b.op(OpI64Eqz) }
func (b *Body) I64Eq() *Body   { return b.op(OpI64Eq) }
func (b *Body) I64LtS() *Body  { return b.op(OpI64LtS) }
func (b *Body) I64GtS() *Body  { return b.op(OpI64GtS) }
func (b *Body) I64Add() *Body  { return b.op(OpI64Add) }
func (b *Body) I64Sub() *Body  { return b.op(OpI64Sub) }
func (b *Body) I64Mul() *Body  { return b.op(OpI64Mul) }
func (b *Body) I64And() *Body  { return b.op(OpI64And) }
func (b *Body) I64Or() *Body   { return b.op(OpI64Or) }
func (b *Body) I64Shl() *Body  { return b.op(OpI64Shl) }
func (b *Body) I64ShrS() *Body { return b.op(OpI64ShrS) }
