package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/hoaxlang/hoaxrt/engine"
	"github.com/hoaxlang/hoaxrt/shim"
)

type cli struct {
	Wasm     string `arg:"" help:"Compiled entry module (.wasm)." type:"existingfile"`
	MemPages uint32 `help:"Cap instance memory in 64KB pages (0 = engine default)." default:"0"`
	Inspect  bool   `short:"i" help:"Inspect mode: run interactively with editable input and a tagged-word breakdown."`
	Verbose  bool   `short:"v" help:"Enable development logging."`
}

func main() {
	var args cli
	kong.Parse(&args,
		kong.Name("hoaxrun"),
		kong.Description("Run a compiled entry module against the process streams."),
		kong.UsageOnError(),
	)

	if args.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "hoaxrun: %v\n", err)
			os.Exit(1)
		}
		engine.SetLogger(logger)
		defer logger.Sync()
	}

	wasmBytes, err := os.ReadFile(args.Wasm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hoaxrun: %v\n", err)
		os.Exit(1)
	}

	if args.Inspect {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "hoaxrun: inspect mode needs a terminal")
			os.Exit(1)
		}
		if err := runInspect(args.Wasm, wasmBytes, args.MemPages); err != nil {
			fmt.Fprintf(os.Stderr, "hoaxrun: %v\n", err)
			os.Exit(1)
		}
		return
	}

	err = shim.Run(context.Background(), wasmBytes, shim.Options{
		MemoryLimitPages: args.MemPages,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "hoaxrun: %v\n", err)
		os.Exit(1)
	}
}
