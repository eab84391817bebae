package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escript-core/escript/runtime"
)

func TestMapSetAndGet(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	m := rt.NewMap()
	m.Set(rt.NewString("name"), rt.NewString("ada"))
	m.Set(rt.NewString("age"), rt.NewNumber(36))

	v, ok := m.Get(rt.NewString("name"))
	require.True(t, ok)
	assert.Equal(t, "ada", v.ToString())

	_, ok = m.Get(rt.NewString("missing"))
	assert.False(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestMapSetOverwritesExistingKey(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	m := rt.NewMap()
	m.Set(rt.NewString("k"), rt.NewNumber(1))
	m.Set(rt.NewString("k"), rt.NewNumber(2))

	v, ok := m.Get(rt.NewString("k"))
	require.True(t, ok)
	assert.Equal(t, float64(2), v.ToDouble())
	assert.Equal(t, 1, m.Len())
}

func TestMapNewIteratorWalksPairsAsArrays(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	m := rt.NewMap()
	m.Set(rt.NewString("a"), rt.NewNumber(1))

	it, ok := m.NewIterator(rt).(*runtime.ArrayIterator)
	require.True(t, ok)
	require.False(t, it.End())

	pair, ok := it.Value().(*runtime.Array)
	require.True(t, ok)
	require.Len(t, pair.Elements, 2)
	assert.Equal(t, "a", pair.Elements[0].ToString())
	assert.Equal(t, float64(1), pair.Elements[1].ToDouble())

	it.Next()
	assert.True(t, it.End())
	assert.Nil(t, it.Value())
}
