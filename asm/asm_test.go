package asm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/escript-core/escript/asm"
	"github.com/escript-core/escript/runtime"
)

func TestBuilderPushNumberBuildsOneInstruction(t *testing.T) {
	b := asm.New("t.escb", "main").SetArity(0, 0, runtime.NoMultiParam, 3)
	b.PushNumber(42)
	block := b.Build()

	assert.Len(t, block.Instructions, 1)
	assert.Equal(t, runtime.I_PUSH_NUMBER, block.Instructions[0].Op)
	assert.Equal(t, float64(42), block.Instructions[0].Num)
}

func TestBuilderDeduplicatesStringConstants(t *testing.T) {
	b := asm.New("t.escb", "main").SetArity(0, 0, runtime.NoMultiParam, 3)
	b.PushString("hello")
	b.PushString("world")
	b.PushString("hello")
	block := b.Build()

	assert.Equal(t, []string{"hello", "world"}, block.StringConstants)
	assert.Equal(t, uint32(0), block.Instructions[0].U32)
	assert.Equal(t, uint32(1), block.Instructions[1].U32)
	assert.Equal(t, uint32(0), block.Instructions[2].U32)
}

func TestBuilderForwardLabelResolution(t *testing.T) {
	b := asm.New("t.escb", "main").SetArity(0, 0, runtime.NoMultiParam, 3)
	end := b.Label()
	b.PushBool(true)
	b.JmpOnTrue(end)
	b.PushNumber(1)
	b.Mark(end)
	b.PushNumber(2)
	block := b.Build()

	jumpInstr := block.Instructions[1]
	assert.Equal(t, runtime.I_JMP_ON_TRUE, jumpInstr.Op)
	assert.Equal(t, uint32(3), jumpInstr.Addr, "jump should target the instruction right after Mark")
}

func TestBuilderPanicsOnUnresolvedLabel(t *testing.T) {
	b := asm.New("t.escb", "main").SetArity(0, 0, runtime.NoMultiParam, 3)
	dangling := b.Label()
	b.Jmp(dangling)

	assert.Panics(t, func() { b.Build() })
}

func TestBuilderAddNestedFunctionReturnsStableIndex(t *testing.T) {
	outer := asm.New("t.escb", "outer").SetArity(0, 0, runtime.NoMultiParam, 3)
	nested1 := asm.New("t.escb", "nested1").SetArity(0, 0, runtime.NoMultiParam, 3).Build()
	nested2 := asm.New("t.escb", "nested2").SetArity(0, 0, runtime.NoMultiParam, 3).Build()

	idx1 := outer.AddNestedFunction(nested1)
	idx2 := outer.AddNestedFunction(nested2)

	assert.Equal(t, uint32(0), idx1)
	assert.Equal(t, uint32(1), idx2)
}
