package engine

import (
	"context"
	goerrors "errors"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/hoaxlang/hoaxrt/errors"
	"github.com/hoaxlang/hoaxrt/wasmenc"
	"github.com/hoaxlang/hoaxrt/word"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	ctx := context.Background()
	e, err := New(ctx, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = e.Close(ctx) })
	return e
}

func instantiate(t *testing.T, e *Engine, wasm []byte) *Instance {
	t.Helper()
	ctx := context.Background()
	mod, err := e.LoadModule(ctx, wasm)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	inst, err := mod.Instantiate(ctx)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	t.Cleanup(func() { _ = inst.Close(ctx) })
	return inst
}

func constEntry(w word.Word) []byte {
	m := &wasmenc.Module{
		Types:   []wasmenc.FuncType{{Results: []wasmenc.ValType{wasmenc.ValI64}}},
		Funcs:   []wasmenc.Func{{Type: 0, Body: wasmenc.NewBody().I64Const(int64(w)).Bytes()}},
		Exports: []wasmenc.Export{{Name: "entry", Kind: wasmenc.KindFunc, Index: 0}},
	}
	return m.Encode()
}

func TestCallEntry(t *testing.T) {
	e := newEngine(t)
	inst := instantiate(t, e, constEntry(word.True))

	w, err := inst.CallEntry(context.Background())
	if err != nil {
		t.Fatalf("CallEntry: %v", err)
	}
	if w != word.True {
		t.Errorf("entry = %s, want true", w)
	}
}

func TestCallEntryMissingExport(t *testing.T) {
	m := &wasmenc.Module{
		Types:   []wasmenc.FuncType{{Results: []wasmenc.ValType{wasmenc.ValI64}}},
		Funcs:   []wasmenc.Func{{Type: 0, Body: wasmenc.NewBody().I64Const(0).Bytes()}},
		Exports: []wasmenc.Export{{Name: "start", Kind: wasmenc.KindFunc, Index: 0}},
	}
	inst := instantiate(t, newEngine(t), m.Encode())

	_, err := inst.CallEntry(context.Background())
	var rte *errors.Error
	if !goerrors.As(err, &rte) || rte.Kind != errors.KindNotFound {
		t.Errorf("error = %v, want not_found", err)
	}
}

func TestCallEntryBadSignature(t *testing.T) {
	tests := []struct {
		name string
		mod  *wasmenc.Module
	}{
		{
			name: "takes a parameter",
			mod: &wasmenc.Module{
				Types: []wasmenc.FuncType{{
					Params:  []wasmenc.ValType{wasmenc.ValI64},
					Results: []wasmenc.ValType{wasmenc.ValI64},
				}},
				Funcs:   []wasmenc.Func{{Type: 0, Body: wasmenc.NewBody().LocalGet(0).Bytes()}},
				Exports: []wasmenc.Export{{Name: "entry", Kind: wasmenc.KindFunc, Index: 0}},
			},
		},
		{
			name: "returns i32",
			mod: &wasmenc.Module{
				Types:   []wasmenc.FuncType{{Results: []wasmenc.ValType{wasmenc.ValI32}}},
				Funcs:   []wasmenc.Func{{Type: 0, Body: wasmenc.NewBody().I32Const(0).Bytes()}},
				Exports: []wasmenc.Export{{Name: "entry", Kind: wasmenc.KindFunc, Index: 0}},
			},
		},
		{
			name: "returns nothing",
			mod: &wasmenc.Module{
				Types:   []wasmenc.FuncType{{}},
				Funcs:   []wasmenc.Func{{Type: 0, Body: wasmenc.NewBody().Bytes()}},
				Exports: []wasmenc.Export{{Name: "entry", Kind: wasmenc.KindFunc, Index: 0}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := instantiate(t, newEngine(t), tt.mod.Encode())
			_, err := inst.CallEntry(context.Background())
			var rte *errors.Error
			if !goerrors.As(err, &rte) || rte.Kind != errors.KindBadSignature {
				t.Errorf("error = %v, want bad_signature", err)
			}
		})
	}
}

func TestRegisterHostAndCall(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	var calls int
	funcs := []HostFunc{
		{
			Name: "give",
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				calls++
				stack[0] = uint64(word.FromBool(true))
			}),
			Results: []api.ValueType{api.ValueTypeI64},
		},
	}
	if err := e.RegisterHost(ctx, "runtime", funcs); err != nil {
		t.Fatalf("RegisterHost: %v", err)
	}

	m := &wasmenc.Module{
		Types: []wasmenc.FuncType{{Results: []wasmenc.ValType{wasmenc.ValI64}}},
		Imports: []wasmenc.Import{
			{Module: "runtime", Name: "give", Type: 0},
		},
		Funcs:   []wasmenc.Func{{Type: 0, Body: wasmenc.NewBody().Call(0).Bytes()}},
		Exports: []wasmenc.Export{{Name: "entry", Kind: wasmenc.KindFunc, Index: 1}},
	}

	inst := instantiate(t, e, m.Encode())
	w, err := inst.CallEntry(ctx)
	if err != nil {
		t.Fatalf("CallEntry: %v", err)
	}
	if w != word.True {
		t.Errorf("entry = %s, want true", w)
	}
	if calls != 1 {
		t.Errorf("host function called %d times, want 1", calls)
	}
}

func TestHostPanicSurfacesAsTrap(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	boom := goerrors.New("boom")
	funcs := []HostFunc{
		{
			Name: "explode",
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, _ []uint64) {
				panic(boom)
			}),
		},
	}
	if err := e.RegisterHost(ctx, "runtime", funcs); err != nil {
		t.Fatalf("RegisterHost: %v", err)
	}

	m := &wasmenc.Module{
		Types: []wasmenc.FuncType{
			{},
			{Results: []wasmenc.ValType{wasmenc.ValI64}},
		},
		Imports: []wasmenc.Import{
			{Module: "runtime", Name: "explode", Type: 0},
		},
		Funcs: []wasmenc.Func{{Type: 1, Body: wasmenc.NewBody().
			Call(0).
			I64Const(0).
			Bytes()}},
		Exports: []wasmenc.Export{{Name: "entry", Kind: wasmenc.KindFunc, Index: 1}},
	}

	inst := instantiate(t, e, m.Encode())
	_, err := inst.CallEntry(ctx)
	if err == nil {
		t.Fatal("expected a trap")
	}
	var rte *errors.Error
	if !goerrors.As(err, &rte) || rte.Kind != errors.KindGuestError {
		t.Errorf("error = %v, want guest_error wrapper", err)
	}
}

func TestInstanceMemory(t *testing.T) {
	m := &wasmenc.Module{
		Types:  []wasmenc.FuncType{{Results: []wasmenc.ValType{wasmenc.ValI64}}},
		Funcs:  []wasmenc.Func{{Type: 0, Body: wasmenc.NewBody().I64Const(0).Bytes()}},
		Memory: &wasmenc.Limits{Min: 1},
		Exports: []wasmenc.Export{
			{Name: "entry", Kind: wasmenc.KindFunc, Index: 0},
			{Name: "memory", Kind: wasmenc.KindMemory, Index: 0},
		},
		Data: []wasmenc.Data{{Offset: 16, Bytes: []byte{0xEF, 0xBE, 0xAD, 0xDE, 0x00, 0x00, 0x00, 0x00}}},
	}
	inst := instantiate(t, newEngine(t), m.Encode())

	mem := inst.Memory()
	if mem == nil {
		t.Fatal("instance has no memory")
	}

	u32, err := mem.ReadU32(16)
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if u32 != 0xDEADBEEF {
		t.Errorf("ReadU32 = %#x, want 0xDEADBEEF", u32)
	}

	u64, err := mem.ReadU64(16)
	if err != nil {
		t.Fatalf("ReadU64: %v", err)
	}
	if u64 != 0xDEADBEEF {
		t.Errorf("ReadU64 = %#x, want 0xDEADBEEF", u64)
	}

	if _, err := mem.Read(65536, 8); err == nil {
		t.Error("read past the end of memory should fail")
	}
}

func TestInstanceMemoryAbsent(t *testing.T) {
	inst := instantiate(t, newEngine(t), constEntry(word.Void))
	if mem := inst.Memory(); mem != nil {
		t.Errorf("Memory() = %v, want nil for a module without memory", mem)
	}
}

func TestInstanceMemoryNotExported(t *testing.T) {
	// A declared but unexported memory is unreachable from a result
	// word, so the instance reports none.
	m := &wasmenc.Module{
		Types:   []wasmenc.FuncType{{Results: []wasmenc.ValType{wasmenc.ValI64}}},
		Funcs:   []wasmenc.Func{{Type: 0, Body: wasmenc.NewBody().I64Const(0).Bytes()}},
		Memory:  &wasmenc.Limits{Min: 1},
		Exports: []wasmenc.Export{{Name: "entry", Kind: wasmenc.KindFunc, Index: 0}},
	}
	inst := instantiate(t, newEngine(t), m.Encode())
	if mem := inst.Memory(); mem != nil {
		t.Errorf("Memory() = %v, want nil for an unexported memory", mem)
	}
}
