// Command escript is a thin embedding demonstration: it builds a Runtime,
// loads the optional config file, registers the Http native module, runs a
// small hand-assembled demo program, and prints whatever it returns (or
// the exception that escaped it) through diag.
//
// There is no compiler here — escript never reads .es source files. A
// real embedder hand-assembles an InstructionBlock (see package asm) or
// receives one from an external compiler; this command stands in for
// that compiler with one built-in demo block so the runtime has something
// to execute end to end.
package main

import (
	"flag"
	"os"

	"github.com/escript-core/escript/asm"
	"github.com/escript-core/escript/config"
	"github.com/escript-core/escript/diag"
	"github.com/escript-core/escript/runtime"
	"github.com/escript-core/escript/stdlib/httpmod"
)

func main() {
	configPath := flag.String("config", "escript.toml", "path to an optional TOML config file")
	flag.Parse()

	logger := diag.New(os.Stderr)
	lifecycle := diag.NewLifecycleLogger(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	rt := runtime.NewRuntime()
	rt.SetLogger(logger)
	rt.SetStackSizeLimit(cfg.StackSizeLimit)
	lifecycle.RuntimeCreated()
	defer func() {
		rt.Close()
		lifecycle.RuntimeClosed()
	}()

	httpmod.Register(rt, "Http")

	block := demoProgram()
	result := rt.ExecuteBlock(block)

	if rt.IsExceptionPending() {
		msg := rt.FetchAndClearException().ToString()
		lifecycle.ExceptionEscaped(msg)
		logger.Errorf("uncaught exception: %s", msg)
		os.Exit(1)
	}

	if result != nil {
		logger.Warnf("demo program result: %s", result.ToString())
	}
}

// demoProgram hand-assembles a body that pushes the single number 42 and
// returns it as the function's result (the execution core has no
// arithmetic opcodes of its own; arithmetic is a stdlib concern, out of
// scope here) — just enough bytecode to exercise Runtime.ExecuteBlock end
// to end.
func demoProgram() *runtime.InstructionBlock {
	b := asm.New("demo.escb", "main")
	b.SetArity(0, 0, runtime.NoMultiParam, 3)
	b.PushNumber(42)
	return b.Build()
}
