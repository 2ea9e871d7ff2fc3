// Package engine executes compiled entry modules on wazero.
//
// An Engine owns one wazero runtime. Host primitives are registered as
// a named host module before instantiation; generated code imports them
// by that module name. A Module is a compiled artifact; an Instance is
// one running copy with its own linear memory, exposing the entry point
// and a Memory view the decoder reads compound values through.
package engine
