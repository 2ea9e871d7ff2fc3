package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	hoaxrt "github.com/hoaxlang/hoaxrt"
	"github.com/hoaxlang/hoaxrt/errors"
	"github.com/hoaxlang/hoaxrt/word"
)

// EntrySymbol is the export name of the compiled entry point. The code
// generator emits exactly one function under this name, typed [] -> [i64].
const EntrySymbol = "entry"

// Engine wraps a wazero runtime.
type Engine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation.
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages
	// (64KB each). 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// New creates a wazero-backed engine.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Engine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}, nil
}

func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// HostFunc is one primitive exported to generated code.
type HostFunc struct {
	Name    string
	Fn      api.GoModuleFunc
	Params  []api.ValueType
	Results []api.ValueType
}

// RegisterHost instantiates a host module exporting the given
// primitives. Generated code imports them under moduleName.
func (e *Engine) RegisterHost(ctx context.Context, moduleName string, funcs []HostFunc) error {
	builder := e.runtime.NewHostModuleBuilder(moduleName)
	for _, hf := range funcs {
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(hf.Fn, hf.Params, hf.Results).
			Export(hf.Name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Load(fmt.Sprintf("instantiate host module %q", moduleName), err)
	}
	Logger().Debug("host module registered",
		zap.String("module", moduleName),
		zap.Int("funcs", len(funcs)))
	return nil
}

// LoadModule compiles an emitted module.
func (e *Engine) LoadModule(ctx context.Context, wasmBytes []byte) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}
	return &Module{engine: e, compiled: compiled}, nil
}

// Module is a compiled entry module.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// Instantiate creates a running instance with its own linear memory.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	modConfig := wazero.NewModuleConfig().WithName("")
	instance, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modConfig)
	if err != nil {
		return nil, errors.Load("instantiate module", err)
	}

	inst := &Instance{instance: instance}
	// instance.Memory() hands back a non-nil interface wrapping a nil
	// memory when the module declares none, so presence is decided from
	// the compiled module instead. Compound data lives in exported
	// linear memory; a memory the module keeps private is unreachable
	// from a result word.
	if len(m.compiled.ExportedMemories()) > 0 {
		inst.memory = &guestMemory{mem: instance.Memory()}
	}
	return inst, nil
}

// Instance is a running copy of a module. It is not safe for concurrent
// use from multiple goroutines.
type Instance struct {
	instance api.Module
	memory   *guestMemory
}

func (i *Instance) Close(ctx context.Context) error {
	if i.instance == nil {
		return nil
	}
	err := i.instance.Close(ctx)
	i.instance = nil
	i.memory = nil
	return err
}

// Memory returns the instance's exported linear memory, or nil when the
// module exports none. A module whose entry returns only immediates
// needs no memory.
func (i *Instance) Memory() hoaxrt.Memory {
	if i.memory == nil {
		return nil
	}
	return i.memory
}

// CallEntry validates the entry export and invokes it, returning the
// tagged result word.
func (i *Instance) CallEntry(ctx context.Context) (word.Word, error) {
	fn := i.instance.ExportedFunction(EntrySymbol)
	if fn == nil {
		return 0, &errors.Error{
			Phase:  errors.PhaseEntry,
			Kind:   errors.KindNotFound,
			Detail: fmt.Sprintf("entry export %q not found", EntrySymbol),
		}
	}

	def := fn.Definition()
	if len(def.ParamTypes()) != 0 ||
		len(def.ResultTypes()) != 1 ||
		def.ResultTypes()[0] != api.ValueTypeI64 {
		return 0, errors.BadSignature(fmt.Sprintf(
			"entry must be [] -> [i64], have %d params and result %v",
			len(def.ParamTypes()), def.ResultTypes()))
	}

	results, err := fn.Call(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseEntry, errors.KindGuestError, err, "entry trapped")
	}
	if len(results) != 1 {
		return 0, errors.BadSignature(fmt.Sprintf("entry returned %d values", len(results)))
	}

	w := word.Word(results[0])
	Logger().Debug("entry returned", zap.String("word", w.String()))
	return w, nil
}

// guestMemory adapts wazero memory to the runtime's Memory interface.
type guestMemory struct {
	mem api.Memory
}

func (m *guestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *guestMemory) ReadU32(offset uint32) (uint32, error) {
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", offset)
	}
	return val, nil
}

func (m *guestMemory) ReadU64(offset uint32) (uint64, error) {
	val, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", offset)
	}
	return val, nil
}

func (m *guestMemory) Size() uint32 {
	return m.mem.Size()
}

// Compile-time check that guestMemory implements Memory and MemorySizer.
var _ hoaxrt.Memory = (*guestMemory)(nil)
var _ hoaxrt.MemorySizer = (*guestMemory)(nil)
