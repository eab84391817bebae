package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escript-core/escript/asm"
	"github.com/escript-core/escript/runtime"
)

// TestGeneratorYieldsThenReturnsFinalValue exercises I_YIELD's suspend and
// YieldIterator.Resume's resume: a function that yields 1, then 2, then
// falls off the end returning 99, observed one step at a time.
func TestGeneratorYieldsThenReturnsFinalValue(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	block := asm.New("t.escb", "gen").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		PushNumber(1).
		Yield().
		PushNumber(2).
		Yield().
		PushNumber(99).
		Build()
	fn := runtime.NewUserFunction(rt.UserFunctionType(), block)

	result := rt.ExecuteFunction(fn, nil, nil)
	assert.Nil(t, result)
	require.True(t, rt.IsExiting())

	iter, ok := rt.FetchAndClearExitResult().(*runtime.YieldIterator)
	require.True(t, ok)
	assert.False(t, iter.End())
	assert.Equal(t, float64(1), iter.Value().ToDouble())

	resumed := iter.Resume(rt)
	assert.Nil(t, resumed)
	require.True(t, rt.IsExiting())

	iter2, ok := rt.FetchAndClearExitResult().(*runtime.YieldIterator)
	require.True(t, ok)
	assert.Equal(t, float64(2), iter2.Value().ToDouble())

	final := iter2.Resume(rt)
	require.NotNil(t, final)
	assert.Equal(t, float64(99), final.ToDouble())
	assert.False(t, rt.IsExiting())
}

func TestYieldIteratorResumeAfterCompletionIsDone(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	block := asm.New("t.escb", "gen").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		PushNumber(7).
		Yield().
		Build()
	fn := runtime.NewUserFunction(rt.UserFunctionType(), block)

	rt.ExecuteFunction(fn, nil, nil)
	iter, ok := rt.FetchAndClearExitResult().(*runtime.YieldIterator)
	require.True(t, ok)

	// The generator body has nothing left after its single yield, so this
	// resume runs it to completion and returns nil; the iterator only
	// learns there is no frame left to resume on the NEXT call.
	first := iter.Resume(rt)
	assert.Nil(t, first)
	assert.False(t, iter.End())

	second := iter.Resume(rt)
	assert.Nil(t, second)
	assert.True(t, iter.End())
}
