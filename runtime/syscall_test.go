package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escript-core/escript/asm"
	"github.com/escript-core/escript/runtime"
)

func TestSysCallCreateArrayBuildsArrayFromStack(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	block := asm.New("t.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		PushNumber(1).
		PushNumber(2).
		PushNumber(3).
		SysCall(runtime.SysCallCreateArray, 3).
		Build()

	result := rt.ExecuteBlock(block)

	require.NotNil(t, result)
	arr, ok := result.(*runtime.Array)
	require.True(t, ok)
	require.Len(t, arr.Elements, 3)
	assert.Equal(t, float64(1), arr.Elements[0].ToDouble())
	assert.Equal(t, float64(3), arr.Elements[2].ToDouble())
}

func TestSysCallCreateMapPairsArgs(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	block := asm.New("t.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		PushString("name").
		PushString("ada").
		SysCall(runtime.SysCallCreateMap, 2).
		Build()

	result := rt.ExecuteBlock(block)

	require.NotNil(t, result)
	m, ok := result.(*runtime.MapObject)
	require.True(t, ok)
	v, found := m.Get(rt.NewString("name"))
	require.True(t, found)
	assert.Equal(t, "ada", v.ToString())
}

func TestSysCallThrowSetsPendingExceptionWithGivenValue(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	block := asm.New("t.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		PushString("boom").
		SysCall(runtime.SysCallThrow, 1).
		Build()

	result := rt.ExecuteBlock(block)

	assert.Nil(t, result)
	require.True(t, rt.IsExceptionPending())
	assert.Equal(t, "boom", rt.FetchAndClearException().ToString())
}

func TestSysCallGetIteratorOnArray(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	block := asm.New("t.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		PushNumber(1).
		PushNumber(2).
		SysCall(runtime.SysCallCreateArray, 2).
		SysCall(runtime.SysCallGetIterator, 1).
		Build()

	result := rt.ExecuteBlock(block)

	require.NotNil(t, result)
	it, ok := result.(*runtime.ArrayIterator)
	require.True(t, ok)
	assert.False(t, it.End())
	assert.Equal(t, float64(1), it.Value().ToDouble())
}

func TestSysCallExpandParamsOnStackSplicesTrailingSpreadArray(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	block := asm.New("t.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		PushNumber(10).
		PushNumber(20).
		PushNumber(30).
		SysCall(runtime.SysCallCreateArray, 2).
		PushNumber(2). // original argument count (a0 + the spread placeholder)
		PushNumber(0). // no plain arguments trail the spread placeholder
		SysCall(runtime.SysCallExpandParamsOnStack, 2).
		Build()

	result := rt.ExecuteBlock(block)

	require.NotNil(t, result)
	assert.Equal(t, float64(3), result.ToDouble())
}

func TestSysCallUnknownIDRaisesException(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	block := asm.New("t.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		SysCall(9999, 0).
		Build()

	result := rt.ExecuteBlock(block)

	assert.Nil(t, result)
	require.True(t, rt.IsExceptionPending())
	assert.Contains(t, rt.FetchAndClearException().ToString(), "invalid system call id")
}
