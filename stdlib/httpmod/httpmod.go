// Package httpmod binds gin-gonic/gin into the runtime as a native
// module: an Engine type whose get/post/put/patch/delete methods register
// gin routes that call back into script, translating each request's
// params/body into a plain script object and each script response into a
// gin JSON response. An Engine instance is an ordinary
// runtime.ExtObject, with the *gin.Engine it wraps kept in a side table
// (an ExtObject has no field for an arbitrary foreign pointer).
package httpmod

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/escript-core/escript/runtime"
)

var (
	identStatus = runtime.StringToIdentifier("status")
	identData   = runtime.StringToIdentifier("data")
	identParams = runtime.StringToIdentifier("params")
	identBody   = runtime.StringToIdentifier("body")
)

var (
	enginesMu sync.Mutex
	engines   = map[*runtime.ExtObject]*gin.Engine{}
)

// Register installs the Engine type and the response-shaping helper
// functions (ok/created/badRequest/...) into rt's global namespace under
// moduleName, so a script reaches them as e.g. Http.ok(data).
func Register(rt *runtime.Runtime, moduleName string) {
	module := runtime.NewExtObject(nil)

	engineType := buildEngineType(rt)
	module.SetAttribute(runtime.StringToIdentifier("Engine"), runtime.Attribute{
		Value: engineType, Props: runtime.AttrConst,
	})

	def := func(name string, minArgs, maxArgs int, fn runtime.NativeFunc) {
		module.SetAttribute(runtime.StringToIdentifier(name), runtime.Attribute{
			Value: runtime.NewNativeFunction(rt.NativeFunctionType(), name, minArgs, maxArgs, fn),
			Props: runtime.AttrConst,
		})
	}
	def("ok", 1, 1, respondWith(200))
	def("created", 1, 1, respondWith(201))
	def("badRequest", 1, 1, respondWith(400))
	def("unauthorized", 1, 1, respondWith(401))
	def("forbidden", 1, 1, respondWith(403))
	def("notFound", 1, 1, respondWith(404))
	def("internalServerError", 1, 1, respondWith(500))
	def("response", 2, 2, func(rt *runtime.Runtime, this runtime.Object, args []runtime.Object) runtime.RtValue {
		status := int(args[0].ToDouble())
		return runtime.ObjectValue(wrapResponse(rt, status, args[1]))
	})

	rt.RegisterModule(moduleName, module)
}

func respondWith(status int) runtime.NativeFunc {
	return func(rt *runtime.Runtime, this runtime.Object, args []runtime.Object) runtime.RtValue {
		return runtime.ObjectValue(wrapResponse(rt, status, args[0]))
	}
}

func wrapResponse(rt *runtime.Runtime, status int, data runtime.Object) runtime.Object {
	o := runtime.NewExtObject(nil)
	o.SetAttribute(identStatus, runtime.Attribute{Value: rt.NewNumber(float64(status)), Props: runtime.AttrNormal})
	o.SetAttribute(identData, runtime.Attribute{Value: data, Props: runtime.AttrNormal})
	return o
}

func asEngine(this runtime.Object) (*runtime.ExtObject, *gin.Engine) {
	inst, ok := this.(*runtime.ExtObject)
	if !ok {
		panic(runtime.NewScriptError("expected an Engine instance"))
	}
	enginesMu.Lock()
	g, ok := engines[inst]
	enginesMu.Unlock()
	if !ok {
		panic(runtime.NewScriptError("Engine instance was not constructed through init()"))
	}
	return inst, g
}

// buildEngineType registers Engine's constructor and its route/serve
// methods as type-attributes, mirroring registerArrayType's own pattern
// for defining native methods on a builtin type.
func buildEngineType(rt *runtime.Runtime) *runtime.Type {
	t := runtime.NewType(nil)
	t.Name = "Engine"

	def := func(name string, minArgs, maxArgs int, fn runtime.NativeFunc) {
		t.SetAttribute(runtime.StringToIdentifier(name), runtime.Attribute{
			Value: runtime.NewNativeFunction(rt.NativeFunctionType(), name, minArgs, maxArgs, fn),
			Props: runtime.AttrTypeAttr | runtime.AttrConst,
		})
	}

	def("init", 0, 0, func(rt *runtime.Runtime, this runtime.Object, args []runtime.Object) runtime.RtValue {
		inst := runtime.NewExtObject(t)
		enginesMu.Lock()
		engines[inst] = gin.Default()
		enginesMu.Unlock()
		return runtime.ObjectValue(inst)
	})

	route := func(register func(*gin.Engine, string, ...gin.HandlerFunc) gin.IRoutes) runtime.NativeFunc {
		return func(rt *runtime.Runtime, this runtime.Object, args []runtime.Object) runtime.RtValue {
			_, g := asEngine(this)
			path := args[0].ToString()
			callback := args[1]
			register(g, path, func(c *gin.Context) {
				reqObj := requestObject(rt, c)
				result := rt.ExecuteFunction(callback, nil, []runtime.Object{reqObj})
				status, body := responseParts(result)
				c.JSON(status, scriptToJSON(body))
			})
			return runtime.ObjectValue(this)
		}
	}

	def("get", 2, 2, route((*gin.Engine).GET))
	def("post", 2, 2, route((*gin.Engine).POST))
	def("put", 2, 2, route((*gin.Engine).PUT))
	def("patch", 2, 2, route((*gin.Engine).PATCH))
	def("delete", 2, 2, route((*gin.Engine).DELETE))

	def("serve", 1, 1, func(rt *runtime.Runtime, this runtime.Object, args []runtime.Object) runtime.RtValue {
		_, g := asEngine(this)
		port := int(args[0].ToDouble())
		if port < 1 || port > 65535 {
			panic(runtime.NewScriptError("serve expects a valid port number"))
		}
		g.Run(fmt.Sprintf(":%d", port))
		return runtime.VoidValue()
	})

	return t
}

// requestObject builds the single argument every route callback receives:
// an object carrying params (always present) and, for methods with a
// body, the decoded JSON body.
func requestObject(rt *runtime.Runtime, c *gin.Context) runtime.Object {
	o := runtime.NewExtObject(nil)
	params := runtime.NewExtObject(nil)
	for _, p := range c.Params {
		params.SetAttribute(runtime.StringToIdentifier(p.Key), runtime.Attribute{
			Value: rt.NewString(p.Value), Props: runtime.AttrNormal,
		})
	}
	o.SetAttribute(identParams, runtime.Attribute{Value: params, Props: runtime.AttrNormal})

	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodDelete {
		var body map[string]any
		if err := c.BindJSON(&body); err == nil {
			o.SetAttribute(identBody, runtime.Attribute{
				Value: jsonToScript(rt, body), Props: runtime.AttrNormal,
			})
		}
	}
	return o
}

// responseParts extracts an HTTP status and a payload from whatever a
// route callback returned: a wrapResponse-shaped object (status/data
// attributes) if present, 422 otherwise.
func responseParts(result runtime.Object) (int, runtime.Object) {
	const defaultStatus = 422
	if result == nil {
		return defaultStatus, result
	}
	ref := result.AccessAttribute(identStatus, true)
	if ref.Attr == nil {
		return defaultStatus, result
	}
	status := int(ref.Attr.Value.ToDouble())
	ref.Unlock()
	if status < 100 || status >= 600 {
		status = defaultStatus
	}
	dataRef := result.AccessAttribute(identData, true)
	if dataRef.Attr == nil {
		return status, result
	}
	data := dataRef.Attr.Value
	dataRef.Unlock()
	return status, data
}

// jsonToScript converts a decoded JSON value (map[string]any, []any, or a
// primitive) into the matching script Object graph.
func jsonToScript(rt *runtime.Runtime, v any) runtime.Object {
	switch val := v.(type) {
	case nil:
		return rt.VoidValue()
	case bool:
		return rt.NewBool(val)
	case float64:
		return rt.NewNumber(val)
	case string:
		return rt.NewString(val)
	case []any:
		elems := make([]runtime.Object, len(val))
		for i, e := range val {
			elems[i] = jsonToScript(rt, e)
		}
		return rt.NewArray(elems)
	case map[string]any:
		o := runtime.NewExtObject(nil)
		for k, e := range val {
			o.SetAttribute(runtime.StringToIdentifier(k), runtime.Attribute{
				Value: jsonToScript(rt, e), Props: runtime.AttrNormal,
			})
		}
		return o
	default:
		return rt.VoidValue()
	}
}

// scriptToJSON is jsonToScript's inverse, used to serialize a route
// callback's return value back to the HTTP client.
func scriptToJSON(o runtime.Object) any {
	if o == nil {
		return nil
	}
	if arr, ok := o.(*runtime.Array); ok {
		out := make([]any, len(arr.Elements))
		for i, e := range arr.Elements {
			out[i] = scriptToJSON(e)
		}
		return out
	}
	switch v := o.(type) {
	case *runtime.NumberBox:
		return v.ToDouble()
	case *runtime.BoolBox:
		return v.ToBool()
	case *runtime.VoidObject:
		return nil
	}
	if attrs := o.CollectLocalAttributes(); len(attrs) > 0 {
		out := make(map[string]any, len(attrs))
		for id, v := range attrs {
			out[id.String()] = scriptToJSON(v)
		}
		return out
	}
	return o.ToString()
}
