package runtime

// startInstanceCreation implements object construction: given a Type and
// constructor arguments, walk the type's own base chain
// collecting each ancestor's local `_constructor` attribute (outermost —
// i.e. the most-derived type's own constructor — first), build the new
// instance, and kick off the outermost constructor. Remaining ancestor
// constructors are queued on the resulting FCC for I_INIT_CALLER to run
// in turn as the constructor body executes its `init(...)` / super call.
func startInstanceCreation(rt *Runtime, typ *Type, args []Object) RtValue {
	if typ == nil {
		rt.SetExceptionMessage("cannot instantiate a null type")
		return VoidValue()
	}

	var constructors []Object
	for cur := typ; cur != nil; cur = cur.BaseType() {
		ref := cur.attrs.access(identConstructor)
		if ref.Attr == nil {
			continue
		}
		ctor := ref.Attr.Value
		ref.Unlock()
		constructors = append(constructors, ctor)
	}

	if len(constructors) == 0 {
		rt.SetExceptionMessage("type '" + typ.ToString() + "' has no constructor")
		return VoidValue()
	}

	outermost := constructors[0]
	remaining := constructors[1:]

	// A native-function constructor acts as a factory: it builds (and
	// returns) the instance itself rather than receiving a pre-built
	// `this`.
	if nf, ok := outermost.(*NativeFunction); ok {
		if nf.IsPrivate() && rt.GetCallingObject() != nil && !typ.IsBaseOf(typeOf(rt.GetCallingObject())) {
			rt.SetExceptionMessage("cannot call private constructor of '" + typ.ToString() + "' from outside its type")
			return VoidValue()
		}
		result := callNativeSafely(rt, nf, nil, args)
		if rt.IsExceptionPending() {
			return VoidValue()
		}
		obj := result.ToObject(rt, nil)
		if obj == nil {
			rt.SetExceptionMessage("constructor for '" + typ.ToString() + "' returned null")
			return VoidValue()
		}
		obj.SetType(typ)
		obj.InitAttributes(rt)
		return ObjectValue(obj)
	}

	instance := NewExtObject(typ)

	switch fn := outermost.(type) {
	case *UserFunction:
		result := startUserFunctionExecution(rt, instance, fn.Block, fn, args)
		if result.IsFunctionCallContext() {
			f := result.FCC()
			f.This = instance
			f.SetFlag(FlagConstructorCall, true)
			f.PendingSuperConstructors = remaining
			return fccValue(f)
		}
		if rt.IsExceptionPending() {
			return VoidValue()
		}
		instance.InitAttributes(rt)
		return ObjectValue(instance)
	default:
		rt.SetExceptionMessage("'" + typ.ToString() + "' constructor is not callable")
		return VoidValue()
	}
}

func typeOf(o Object) *Type {
	if o == nil {
		return nil
	}
	return o.Type()
}

// IsPrivate reports whether a NativeFunction was registered as a private
// constructor, visible only to the type's own subtypes.
// NativeFunction itself carries no attribute flags (it is a bare
// callable), so the registering code marks privacy via name convention:
// a leading underscore, mirroring the `_constructor` attribute's own
// naming. This keeps the Type/Attribute flag machinery as the single
// source of truth for visibility everywhere except this bootstrap path.
func (n *NativeFunction) IsPrivate() bool { return len(n.Name) > 0 && n.Name[0] == '_' }

// CreateInstance is the Runtime-facade entry point used by
// AttributeContainer.InitAttributes (a `@(init)`-flagged attribute whose
// declared value is a Type) and by embedders constructing objects without
// going through I_CREATE_INSTANCE.
func (rt *Runtime) CreateInstance(t *Type, args []Object) Object {
	result := startInstanceCreation(rt, t, args)
	if !result.IsFunctionCallContext() && rt.IsExceptionPending() {
		return nil
	}
	return rt.drive(result)
}

// ExecuteFunction is the Runtime-facade entry point for invoking any
// callable value outside of the bytecode loop (native code calling back
// into script, `@(init)`-flagged attributes whose value is a function,
// the embedding API).
func (rt *Runtime) ExecuteFunction(fn Object, this Object, args []Object) Object {
	result := startFunctionExecution(rt, this, fn, args)
	return rt.drive(result)
}

// drive pushes an in-progress FCC (if result is one) and runs the
// interpreter loop to completion, or resolves an already-final RtValue
// directly. Every Runtime entry point that can trigger script execution
// funnels through here.
func (rt *Runtime) drive(result RtValue) Object {
	if !result.IsFunctionCallContext() {
		return result.ToObject(rt, nil)
	}
	f := result.FCC()
	if !rt.pushActiveFCC(f) {
		return nil
	}
	return rt.runLoop(f)
}

// ExecuteBlock runs a standalone InstructionBlock — the embedding API's
// entry point for a freshly parsed/compiled top-level
// script, executed with no `this` and no arguments.
func (rt *Runtime) ExecuteBlock(block *InstructionBlock) Object {
	if block == nil {
		return nil
	}
	uf := NewUserFunction(rt.userFunctionType, block)
	result := startUserFunctionExecution(rt, nil, block, uf, nil)
	return rt.drive(result)
}
