package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escript-core/escript/runtime"
)

func arrayMethod(t *testing.T, arr runtime.Object, name string) runtime.Object {
	t.Helper()
	ref := arr.AccessAttribute(runtime.StringToIdentifier(name), false)
	require.NotNil(t, ref.Attr, "method %s not found", name)
	fn := ref.Attr.Value
	ref.Unlock()
	return fn
}

func TestArrayPushBackAndCount(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	arr := rt.NewArray(nil)
	pushBack := arrayMethod(t, arr, "pushBack")
	count := arrayMethod(t, arr, "count")

	rt.ExecuteFunction(pushBack, arr, []runtime.Object{rt.NewNumber(1)})
	rt.ExecuteFunction(pushBack, arr, []runtime.Object{rt.NewNumber(2)})

	result := rt.ExecuteFunction(count, arr, nil)
	require.NotNil(t, result)
	assert.Equal(t, float64(2), result.ToDouble())
}

func TestArrayGetAndSet(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	arr := rt.NewArray([]runtime.Object{rt.NewNumber(10), rt.NewNumber(20)})
	get := arrayMethod(t, arr, "get")
	set := arrayMethod(t, arr, "set")

	got := rt.ExecuteFunction(get, arr, []runtime.Object{rt.NewNumber(1)})
	require.NotNil(t, got)
	assert.Equal(t, float64(20), got.ToDouble())

	rt.ExecuteFunction(set, arr, []runtime.Object{rt.NewNumber(1), rt.NewNumber(99)})
	got = rt.ExecuteFunction(get, arr, []runtime.Object{rt.NewNumber(1)})
	require.NotNil(t, got)
	assert.Equal(t, float64(99), got.ToDouble())
}

func TestArrayGetOutOfRangeReturnsVoid(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	arr := rt.NewArray([]runtime.Object{rt.NewNumber(1)})
	get := arrayMethod(t, arr, "get")

	got := rt.ExecuteFunction(get, arr, []runtime.Object{rt.NewNumber(5)})
	require.NotNil(t, got)
	assert.Equal(t, "void", got.ToString())
}

func TestArraySetOutOfRangeRaisesException(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	arr := rt.NewArray([]runtime.Object{rt.NewNumber(1)})
	set := arrayMethod(t, arr, "set")

	result := rt.ExecuteFunction(set, arr, []runtime.Object{rt.NewNumber(5), rt.NewNumber(1)})

	require.NotNil(t, result)
	assert.Equal(t, "void", result.ToString())
	require.True(t, rt.IsExceptionPending())
	msg := rt.FetchAndClearException().ToString()
	assert.Contains(t, msg, "out of bounds")
}

func TestArrayPopBackOnEmptyReturnsVoid(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	arr := rt.NewArray(nil)
	popBack := arrayMethod(t, arr, "popBack")

	got := rt.ExecuteFunction(popBack, arr, nil)
	require.NotNil(t, got)
	assert.Equal(t, "void", got.ToString())
}

func TestArrayIsEqualComparesElementwise(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	a := rt.NewArray([]runtime.Object{rt.NewNumber(1), rt.NewString("x")})
	b := rt.NewArray([]runtime.Object{rt.NewNumber(1), rt.NewString("x")})
	c := rt.NewArray([]runtime.Object{rt.NewNumber(1), rt.NewString("y")})

	assert.True(t, a.IsEqual(rt, b))
	assert.False(t, a.IsEqual(rt, c))
}
