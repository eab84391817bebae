package httpmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escript-core/escript/runtime"
)

func TestWrapResponseCarriesStatusAndData(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	payload := rt.NewString("hello")
	resp := wrapResponse(rt, 201, payload)

	status, data := responseParts(resp)
	assert.Equal(t, 201, status)
	assert.Same(t, payload, data)
}

func TestResponseStatusFallsBackTo422ForShapelessResult(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	bare := runtime.NewExtObject(nil)
	status, data := responseParts(bare)

	assert.Equal(t, 422, status)
	assert.Same(t, runtime.Object(bare), data)
}

func TestResponsePartsRejectsOutOfRangeStatus(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	resp := runtime.NewExtObject(nil)
	resp.SetAttribute(identStatus, runtime.Attribute{Value: rt.NewNumber(9001), Props: runtime.AttrNormal})
	resp.SetAttribute(identData, runtime.Attribute{Value: rt.NewString("x"), Props: runtime.AttrNormal})

	status, _ := responseParts(resp)
	assert.Equal(t, 422, status)
}

func TestJSONRoundTripThroughScriptObjects(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	original := map[string]any{
		"name":   "ada",
		"age":    36.0,
		"active": true,
		"tags":   []any{"x", "y"},
	}

	script := jsonToScript(rt, original)
	back := scriptToJSON(script)

	require.IsType(t, map[string]any{}, back)
	out := back.(map[string]any)
	assert.Equal(t, "ada", out["name"])
	assert.Equal(t, 36.0, out["age"])
	assert.Equal(t, []any{"x", "y"}, out["tags"])
}

func TestAsEngineRejectsUnconstructedInstance(t *testing.T) {
	stray := runtime.NewExtObject(nil)

	assert.Panics(t, func() { asEngine(stray) })
}
