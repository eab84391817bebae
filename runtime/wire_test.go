package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escript-core/escript/asm"
	"github.com/escript-core/escript/runtime"
)

func TestInstructionBlockCBORRoundTrip(t *testing.T) {
	original := asm.New("demo.escb", "main").
		SetArity(1, 2, runtime.NoMultiParam, 4).
		DeclareLocal(3, "x").
		PushString("hello").
		GetLocal(3).
		Build()

	data, err := runtime.MarshalInstructionBlock(original)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := runtime.UnmarshalInstructionBlock(data)
	require.NoError(t, err)

	assert.Equal(t, original.Name, decoded.Name)
	assert.Equal(t, original.File, decoded.File)
	assert.Equal(t, original.MinArgs, decoded.MinArgs)
	assert.Equal(t, original.MaxArgs, decoded.MaxArgs)
	assert.Equal(t, original.NumLocals, decoded.NumLocals)
	assert.Equal(t, original.StringConstants, decoded.StringConstants)
	assert.Equal(t, original.LocalVariableNames, decoded.LocalVariableNames)
	assert.Equal(t, original.Instructions, decoded.Instructions)
}

func TestMarshalInstructionBlockIsDeterministic(t *testing.T) {
	block := asm.New("demo.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		PushNumber(1).
		Build()

	first, err := runtime.MarshalInstructionBlock(block)
	require.NoError(t, err)
	second, err := runtime.MarshalInstructionBlock(block)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
