package shim

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/hoaxlang/hoaxrt/engine"
	"github.com/hoaxlang/hoaxrt/heap"
	"github.com/hoaxlang/hoaxrt/hostio"
	"github.com/hoaxlang/hoaxrt/printer"
	"github.com/hoaxlang/hoaxrt/word"
)

// Options configure one run.
type Options struct {
	// Stdin is the program's input stream. Defaults to os.Stdin.
	Stdin io.Reader
	// Stdout receives the program's output and the result line.
	// Defaults to os.Stdout.
	Stdout io.Writer
	// MemoryLimitPages caps the instance's linear memory in 64KB
	// pages. 0 means the engine default.
	MemoryLimitPages uint32
	// MaxDepth overrides the decoder's recursion bound. 0 means the
	// default.
	MaxDepth int
}

// Run executes one compiled entry module to completion: host primitives
// are bound to the streams, the entry point runs, and the result word
// is decoded and printed. Program output always precedes the result
// line; on any error nothing is printed beyond the program's own
// output.
func Run(ctx context.Context, wasmBytes []byte, opts Options) error {
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	_, v, err := exec(ctx, wasmBytes, stdin, stdout, opts)
	if err != nil {
		return err
	}
	return printer.New(stdout).PrintResult(v)
}

// Result captures one run for inspection.
type Result struct {
	// Word is the raw tagged word the entry point returned.
	Word word.Word
	// Value is its decoded form.
	Value heap.Value
	// Output is everything the program wrote through the primitives.
	Output string
	// Render is the printed form of the result value.
	Render string
}

// Eval runs a module against an in-memory output stream and returns the
// pieces separately instead of printing. On error the Result still
// carries the output produced before the failure.
func Eval(ctx context.Context, wasmBytes []byte, stdin io.Reader, opts Options) (*Result, error) {
	if stdin == nil {
		stdin = bytes.NewReader(nil)
	}
	var out bytes.Buffer

	w, v, err := exec(ctx, wasmBytes, stdin, &out, opts)
	if err != nil {
		return &Result{Output: out.String()}, err
	}

	rendered, err := printer.Render(v)
	if err != nil {
		return &Result{Word: w, Value: v, Output: out.String()}, err
	}
	return &Result{Word: w, Value: v, Output: out.String(), Render: rendered}, nil
}

// exec drives Init, Running, and the decode half of Done, leaving the
// streams flushed so program output precedes whatever the caller does
// with the result.
func exec(ctx context.Context, wasmBytes []byte, stdin io.Reader, stdout io.Writer, opts Options) (word.Word, heap.Value, error) {
	eng, err := engine.New(ctx, &engine.Config{MemoryLimitPages: opts.MemoryLimitPages})
	if err != nil {
		return 0, heap.Value{}, err
	}
	defer eng.Close(ctx)

	streams := hostio.New(stdin, stdout)
	if err := eng.RegisterHost(ctx, hostio.ModuleName, streams.Functions()); err != nil {
		return 0, heap.Value{}, err
	}

	mod, err := eng.LoadModule(ctx, wasmBytes)
	if err != nil {
		return 0, heap.Value{}, err
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return 0, heap.Value{}, err
	}
	defer inst.Close(ctx)

	w, err := inst.CallEntry(ctx)
	if err != nil {
		// Output the program produced before trapping still counts.
		flushErr := streams.Flush()
		if herr := streams.Err(); herr != nil {
			return 0, heap.Value{}, herr
		}
		if flushErr != nil {
			engine.Logger().Warn("flush after trap failed", zap.Error(flushErr))
		}
		return 0, heap.Value{}, err
	}

	mem := inst.Memory()
	if mem == nil {
		// A module whose entry returns only immediates exports no
		// memory; a pointer word from such a module is then diagnosed
		// by the decoder instead of dereferencing nothing.
		mem = noMemory{}
	}
	loader := heap.NewLoader(mem)
	if opts.MaxDepth > 0 {
		loader = loader.WithMaxDepth(opts.MaxDepth)
	}
	v, err := loader.Load(w)
	if err != nil {
		if flushErr := streams.Flush(); flushErr != nil {
			engine.Logger().Warn("flush failed", zap.Error(flushErr))
		}
		return 0, heap.Value{}, err
	}

	if err := streams.Flush(); err != nil {
		return 0, heap.Value{}, err
	}
	return w, v, nil
}

type noMemory struct{}

func (noMemory) Read(offset, length uint32) ([]byte, error) {
	return nil, fmt.Errorf("module exports no memory")
}

func (noMemory) ReadU32(offset uint32) (uint32, error) {
	return 0, fmt.Errorf("module exports no memory")
}

func (noMemory) ReadU64(offset uint32) (uint64, error) {
	return 0, fmt.Errorf("module exports no memory")
}
