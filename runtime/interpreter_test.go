package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escript-core/escript/asm"
	"github.com/escript-core/escript/runtime"
)

func TestExecuteBlockReturnsPushedValue(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	block := asm.New("t.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		PushNumber(42).
		Build()

	result := rt.ExecuteBlock(block)

	require.NotNil(t, result)
	assert.Equal(t, float64(42), result.ToDouble())
	assert.False(t, rt.IsExceptionPending())
}

func TestLocalVariableAssignThenGet(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	const localIdx = 3 // no params declared, so slot 3 is free for plain local use
	block := asm.New("t.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 4).
		PushNumber(99).
		AssignLocal(localIdx).
		GetLocal(localIdx).
		Build()

	result := rt.ExecuteBlock(block)

	require.NotNil(t, result)
	assert.Equal(t, float64(99), result.ToDouble())
}

func TestGlobalVariableAssignThenGet(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	id := runtime.StringToIdentifier("counter")
	block := asm.New("t.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		PushNumber(5).
		AssignVariable(id).
		GetVariable(id).
		Build()

	result := rt.ExecuteBlock(block)

	require.NotNil(t, result)
	assert.Equal(t, float64(5), result.ToDouble())

	stored := rt.GetGlobalVariable(id)
	require.NotNil(t, stored)
	assert.Equal(t, float64(5), stored.ToDouble())
}

// TestFunctionCallIdentity exercises the stack-order calling convention for
// I_CALL: the caller pushes this, fn, args... in that order, and opCall pops
// them in reverse.
func TestFunctionCallIdentity(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	identity := asm.New("t.escb", "identity").
		SetArity(1, 1, runtime.NoMultiParam, 4).
		GetLocal(runtime.SlotParam0).
		Build()

	outer := asm.New("t.escb", "main").SetArity(0, 0, runtime.NoMultiParam, 3)
	nestedIdx := outer.AddNestedFunction(identity)
	outer.PushVoid().        // this
		PushFunction(nestedIdx). // fn
		PushNumber(55).          // arg 0
		Call(1)
	block := outer.Build()

	result := rt.ExecuteBlock(block)

	require.NotNil(t, result)
	assert.Equal(t, float64(55), result.ToDouble())
}

// TestFunctionCallArityErrorPropagatesToTop exercises the arity-check
// failure path: calling a one-argument function with zero arguments sets a
// pending exception that, left uncaught, escapes all the way past the
// outermost frame, and ExecuteBlock returns nil.
func TestFunctionCallArityErrorPropagatesToTop(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	identity := asm.New("t.escb", "identity").
		SetArity(1, 1, runtime.NoMultiParam, 4).
		GetLocal(runtime.SlotParam0).
		Build()

	outer := asm.New("t.escb", "main").SetArity(0, 0, runtime.NoMultiParam, 3)
	nestedIdx := outer.AddNestedFunction(identity)
	outer.PushVoid(). // this
				PushFunction(nestedIdx). // fn
				Call(0)                  // no args supplied, identity requires 1
	block := outer.Build()

	result := rt.ExecuteBlock(block)

	assert.Nil(t, result)
	require.True(t, rt.IsExceptionPending())
	msg := rt.FetchAndClearException().ToString()
	assert.Contains(t, msg, "Too few parameters")
	assert.False(t, rt.IsExceptionPending())
}

// TestExceptionHandlerCatchesAndWiresResult exercises I_SET_EXCEPTION_HANDLER
// together with handlePendingState's unwind: a failing I_CREATE_INSTANCE
// (target not a Type) is caught, the exception value lands in SlotResult,
// and execution resumes at the handler address.
func TestExceptionHandlerCatchesAndWiresResult(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	b := asm.New("t.escb", "main").SetArity(0, 0, runtime.NoMultiParam, 3)
	handler := b.Label()
	b.SetExceptionHandler(handler)
	b.PushNumber(1) // not a *Type
	b.CreateInstance(0)
	b.Mark(handler)
	b.GetLocal(runtime.SlotResult)
	block := b.Build()

	result := rt.ExecuteBlock(block)

	require.NotNil(t, result)
	assert.Contains(t, result.ToString(), "not a Type")
	assert.False(t, rt.IsExceptionPending())
}

// TestForkSharesGlobals exercises Runtime.Fork: a forked Runtime sees the
// parent's globals (and vice versa), but each has its own exception state.
func TestForkSharesGlobals(t *testing.T) {
	parent := runtime.NewRuntime()
	defer parent.Close()

	id := runtime.StringToIdentifier("shared")
	parent.SetGlobalVariable(id, parent.NewNumber(7))

	child := parent.Fork()
	defer child.Close()

	got := child.GetGlobalVariable(id)
	require.NotNil(t, got)
	assert.Equal(t, float64(7), got.ToDouble())

	child.SetExceptionMessage("child-only failure")
	assert.True(t, child.IsExceptionPending())
	assert.False(t, parent.IsExceptionPending())
}
