package hostio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/tetratelabs/wazero/api"

	"github.com/hoaxlang/hoaxrt/engine"
	"github.com/hoaxlang/hoaxrt/errors"
	"github.com/hoaxlang/hoaxrt/word"
)

// ModuleName is the import namespace the code generator emits for every
// foreign call.
const ModuleName = "runtime"

// Streams binds the I/O primitives to one input and one output stream.
type Streams struct {
	in  *bufio.Reader
	out *bufio.Writer
	err error
}

// New creates Streams over the given reader and writer.
func New(in io.Reader, out io.Writer) *Streams {
	return &Streams{
		in:  bufio.NewReader(in),
		out: bufio.NewWriter(out),
	}
}

// Err returns the first fatal error a primitive recorded, or nil. After
// a trapped entry call this is the authoritative diagnostic; the trap
// itself only carries a flattened rendering.
func (s *Streams) Err() error {
	return s.err
}

// Flush drains buffered output to the underlying writer.
func (s *Streams) Flush() error {
	if err := s.out.Flush(); err != nil {
		return errors.IO(errors.PhaseWrite, "flush output", err)
	}
	return nil
}

// Functions returns the host functions in the fixed order and with the
// fixed signatures the code generator imports them.
func (s *Streams) Functions() []engine.HostFunc {
	i64 := []api.ValueType{api.ValueTypeI64}
	return []engine.HostFunc{
		{Name: "read_byte", Fn: api.GoModuleFunc(s.readByte), Results: i64},
		{Name: "peek_byte", Fn: api.GoModuleFunc(s.peekByte), Results: i64},
		{Name: "read_integer", Fn: api.GoModuleFunc(s.readInteger), Results: i64},
		{Name: "write_byte", Fn: api.GoModuleFunc(s.writeByte), Params: i64},
		{Name: "print_newline", Fn: api.GoModuleFunc(s.printNewline)},
		{Name: "raise_error", Fn: api.GoModuleFunc(s.raiseError)},
	}
}

// fatal records the first fatal error and aborts the entry call. The
// panic unwinds into the engine, which surfaces it as a trap.
func (s *Streams) fatal(err error) {
	if s.err == nil {
		s.err = err
	}
	panic(err)
}

func (s *Streams) readByte(_ context.Context, _ api.Module, stack []uint64) {
	b, err := s.in.ReadByte()
	if err == io.EOF {
		stack[0] = uint64(word.Eof)
		return
	}
	if err != nil {
		s.fatal(errors.IO(errors.PhaseRead, "read_byte", err))
	}
	stack[0] = encodeInt(s, int64(b))
}

func (s *Streams) peekByte(_ context.Context, _ api.Module, stack []uint64) {
	buf, err := s.in.Peek(1)
	if err == io.EOF {
		stack[0] = uint64(word.Eof)
		return
	}
	if err != nil {
		s.fatal(errors.IO(errors.PhaseRead, "peek_byte", err))
	}
	stack[0] = encodeInt(s, int64(buf[0]))
}

func (s *Streams) readInteger(_ context.Context, _ api.Module, stack []uint64) {
	n, err := s.scanInteger()
	if err != nil {
		s.fatal(err)
	}
	stack[0] = encodeInt(s, n)
}

func (s *Streams) writeByte(_ context.Context, _ api.Module, stack []uint64) {
	w := word.Word(stack[0])
	if w.Tag() != word.TagInteger {
		s.fatal(errors.OutOfRange(errors.PhaseWrite,
			fmt.Sprintf("write_byte expects an integer, got %s", w)))
	}
	n := w.Int()
	if n < 0 || n > 255 {
		s.fatal(errors.OutOfRange(errors.PhaseWrite,
			fmt.Sprintf("write_byte value %d outside 0..255", n)))
	}
	if err := s.out.WriteByte(byte(n)); err != nil {
		s.fatal(errors.IO(errors.PhaseWrite, "write_byte", err))
	}
}

func (s *Streams) printNewline(_ context.Context, _ api.Module, _ []uint64) {
	if err := s.out.WriteByte('\n'); err != nil {
		s.fatal(errors.IO(errors.PhaseWrite, "print_newline", err))
	}
}

func (s *Streams) raiseError(_ context.Context, _ api.Module, _ []uint64) {
	s.fatal(errors.GuestError())
}

// scanInteger reads a whitespace-delimited signed decimal from the
// input stream, leaving the delimiter unconsumed.
func (s *Streams) scanInteger() (int64, error) {
	b, err := s.skipSpace()
	if err != nil {
		return 0, err
	}

	var digits []byte
	if b == '-' || b == '+' {
		digits = append(digits, b)
		b, err = s.in.ReadByte()
		if err == io.EOF {
			return 0, errors.BadInput("read_integer: sign with no digits")
		}
		if err != nil {
			return 0, errors.IO(errors.PhaseRead, "read_integer", err)
		}
	}

	sawDigit := false
	for {
		if b < '0' || b > '9' {
			if err := s.in.UnreadByte(); err != nil {
				return 0, errors.IO(errors.PhaseRead, "read_integer", err)
			}
			break
		}
		sawDigit = true
		digits = append(digits, b)
		b, err = s.in.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.IO(errors.PhaseRead, "read_integer", err)
		}
	}
	if !sawDigit {
		return 0, errors.BadInput(fmt.Sprintf("read_integer: unexpected byte %q", b))
	}

	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, errors.OutOfRange(errors.PhaseRead,
			fmt.Sprintf("read_integer: %s does not fit the integer encoding", digits))
	}
	return n, nil
}

// skipSpace consumes ASCII whitespace and returns the first byte after
// it. End of input before any other byte is exhaustion.
func (s *Streams) skipSpace() (byte, error) {
	for {
		b, err := s.in.ReadByte()
		if err == io.EOF {
			return 0, errors.InputExhausted("read_integer")
		}
		if err != nil {
			return 0, errors.IO(errors.PhaseRead, "read_integer", err)
		}
		switch b {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			continue
		}
		return b, nil
	}
}

// encodeInt tags an integer, treating overflow as fatal. The encoding
// holds 60 payload bits, so a parsed int64 can still miss.
func encodeInt(s *Streams, n int64) uint64 {
	w, err := word.FromInt(n)
	if err != nil {
		s.fatal(err)
	}
	return uint64(w)
}
