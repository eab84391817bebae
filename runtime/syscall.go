package runtime

import "sync"

// SysCallFunc implements one numbered system call. It receives the
// already-built argument slice (object-value-popped from the stack by
// the interpreter, n_args of them) and the calling FCC for syscalls that
// need stack or frame access beyond their declared args
// (EXPAND_PARAMS_ON_STACK, CASE_TEST, ONCE_*, *_STATIC_VAR).
type SysCallFunc func(rt *Runtime, f *FCC, args []Object) RtValue

// System-call ids. Part of the ABI between compiler and interpreter:
// once assigned these numeric values must not change.
const (
	SysCallCreateArray uint32 = iota
	SysCallCreateMap
	SysCallThrowTypeException
	SysCallThrow
	SysCallExit
	SysCallGetIterator
	SysCallTestArrayParameterConstraints
	SysCallExpandParamsOnStack
	SysCallCaseTest
	SysCallOnceEnter
	SysCallOnceLeave
	SysCallGetStaticVar
	SysCallSetStaticVar
)

func registerSysCalls(rt *Runtime) {
	rt.sysCalls[SysCallCreateArray] = sysCreateArray
	rt.sysCalls[SysCallCreateMap] = sysCreateMap
	rt.sysCalls[SysCallThrowTypeException] = sysThrowTypeException
	rt.sysCalls[SysCallThrow] = sysThrow
	rt.sysCalls[SysCallExit] = sysExit
	rt.sysCalls[SysCallGetIterator] = sysGetIterator
	rt.sysCalls[SysCallTestArrayParameterConstraints] = sysTestArrayParameterConstraints
	rt.sysCalls[SysCallExpandParamsOnStack] = sysExpandParamsOnStack
	rt.sysCalls[SysCallCaseTest] = sysCaseTest
	rt.sysCalls[SysCallOnceEnter] = sysOnceEnter
	rt.sysCalls[SysCallOnceLeave] = sysOnceLeave
	rt.sysCalls[SysCallGetStaticVar] = sysGetStaticVar
	rt.sysCalls[SysCallSetStaticVar] = sysSetStaticVar
}

func sysCreateArray(rt *Runtime, f *FCC, args []Object) RtValue {
	return ObjectValue(newArray(rt, append([]Object(nil), args...)))
}

func sysCreateMap(rt *Runtime, f *FCC, args []Object) RtValue {
	if len(args)%2 != 0 {
		rt.Warnf("CREATE_MAP called with an odd number of arguments; dropping the last one")
		args = args[:len(args)-1]
	}
	m := newMapObject(rt)
	for i := 0; i+1 < len(args); i += 2 {
		m.set(args[i], args[i+1])
	}
	return ObjectValue(m)
}

func sysThrowTypeException(rt *Runtime, f *FCC, args []Object) RtValue {
	if len(args) < 2 {
		rt.SetExceptionMessage("THROW_TYPE_EXCEPTION requires at least 2 arguments")
		return VoidValue()
	}
	actual := args[len(args)-1]
	rt.SetExceptionMessage("Type exception: " + actual.ToString() + " did not match the expected type specifiers")
	return VoidValue()
}

func sysThrow(rt *Runtime, f *FCC, args []Object) RtValue {
	if len(args) == 0 {
		rt.SetException(rt.VoidValue())
	} else {
		rt.SetException(args[0])
	}
	return VoidValue()
}

func sysExit(rt *Runtime, f *FCC, args []Object) RtValue {
	if len(args) == 0 {
		rt.SetExitState(rt.VoidValue())
	} else {
		rt.SetExitState(args[0])
	}
	return VoidValue()
}

// Iterable is implemented by builtin collections (Array, Map) that can
// hand back an iterator without a script-level getIterator method.
type Iterable interface {
	NewIterator(rt *Runtime) Object
}

func sysGetIterator(rt *Runtime, f *FCC, args []Object) RtValue {
	if len(args) != 1 || args[0] == nil {
		rt.SetExceptionMessage("getIterator() requires one argument")
		return VoidValue()
	}
	v := args[0]
	if it, ok := v.(Iterable); ok {
		return ObjectValue(it.NewIterator(rt))
	}
	if _, ok := v.(*YieldIterator); ok {
		return ObjectValue(v)
	}
	ref := v.AccessAttribute(StringToIdentifier("getIterator"), false)
	if ref.Attr == nil {
		ref.Unlock()
		rt.SetExceptionMessage("no iterator available for this object")
		return VoidValue()
	}
	fn := ref.Attr.Value
	ref.Unlock()
	return ObjectValue(rt.ExecuteFunction(fn, v, nil))
}

func sysTestArrayParameterConstraints(rt *Runtime, f *FCC, args []Object) RtValue {
	if len(args) < 2 {
		return BoolValue(false)
	}
	arr, ok := args[len(args)-1].(*Array)
	if !ok {
		return BoolValue(false)
	}
	specifiers := args[:len(args)-1]
	for _, elem := range arr.Elements {
		matched := false
		for _, spec := range specifiers {
			ref := spec.AccessAttribute(StringToIdentifier("checkConstraint"), false)
			if ref.Attr == nil {
				continue
			}
			fn := ref.Attr.Value
			ref.Unlock()
			res := rt.ExecuteFunction(fn, spec, []Object{elem})
			if res != nil && res.ToBool() {
				matched = true
				break
			}
		}
		if !matched {
			return BoolValue(false)
		}
	}
	return BoolValue(true)
}

// sysExpandParamsOnStack splices spread-call Array arguments in place of
// their placeholders on the value stack. args[0] is the original argument
// count (before expansion); args[1:] are, for each spread placeholder
// present, how many plain values sit between it and the previous spread
// placeholder (or the top of stack, for the last one) — read from the
// last step back to the first, matching the order the placeholders were
// pushed. For each step: pop that many plain values off f's live stack,
// then pop one more value and require it to be an Array; its elements
// replace the placeholder in the final argument count and stack order.
// The new total argument count is returned so I_CALL/I_CREATE_INSTANCE's
// DynamicParameterCount path can read it back off the top of the stack.
func sysExpandParamsOnStack(rt *Runtime, f *FCC, args []Object) RtValue {
	if len(args) == 0 {
		rt.SetExceptionMessage("EXPAND_PARAMS_ON_STACK requires the original argument count")
		return VoidValue()
	}
	numParams := uint32(args[0].ToDouble())

	var pending []RtValue
	for i := len(args) - 1; i >= 1; i-- {
		for j := uint32(args[i].ToDouble()); j > 0; j-- {
			pending = append(pending, f.Pop())
		}

		placeholder := f.PopObject(rt)
		arr, ok := placeholder.(*Array)
		if !ok {
			rt.SetExceptionMessage("EXPAND_PARAMS_ON_STACK: spread argument is not an Array")
			return VoidValue()
		}
		numParams += uint32(len(arr.Elements))
		numParams--

		for k := len(arr.Elements) - 1; k >= 0; k-- {
			pending = append(pending, ObjectValue(arr.Elements[k]))
		}
	}

	for i := len(pending) - 1; i >= 0; i-- {
		f.Push(pending[i])
	}

	return Uint32Value(numParams)
}

func sysCaseTest(rt *Runtime, f *FCC, args []Object) RtValue {
	top := f.Peek()
	candidate := top.ToObject(rt, f.Fn)
	if len(args) == 1 && candidate != nil && candidate.IsEqual(rt, args[0]) {
		f.Pop().Release()
		return BoolValue(true)
	}
	return BoolValue(false)
}

// onceRegistry tracks `@(once)` block completion per InstructionBlock,
// guarded by a plain mutex. ONCE_ENTER returns true only once ONCE_LEAVE
// has run for the block, and false before that; it neither marks the
// block as in progress nor waits, so every ENTER that comes before the
// first LEAVE (from this or another runtime) returns false.
type onceRegistry struct {
	mu      sync.Mutex
	entered map[*InstructionBlock]bool
}

func (rt *Runtime) onceReg() *onceRegistry {
	rt.onceOnce.Do(func() { rt.onceState = &onceRegistry{entered: make(map[*InstructionBlock]bool)} })
	return rt.onceState
}

func sysOnceEnter(rt *Runtime, f *FCC, args []Object) RtValue {
	reg := rt.onceReg()
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.entered[f.Fn] {
		return BoolValue(true)
	}
	return BoolValue(false)
}

func sysOnceLeave(rt *Runtime, f *FCC, args []Object) RtValue {
	reg := rt.onceReg()
	reg.mu.Lock()
	reg.entered[f.Fn] = true
	reg.mu.Unlock()
	return VoidValue()
}

func sysGetStaticVar(rt *Runtime, f *FCC, args []Object) RtValue {
	rt.staticsMu.Lock()
	defer rt.staticsMu.Unlock()
	if rt.statics == nil {
		return VoidValue()
	}
	if v, ok := rt.statics[f.Fn]; ok {
		return ObjectValue(v)
	}
	return VoidValue()
}

func sysSetStaticVar(rt *Runtime, f *FCC, args []Object) RtValue {
	if len(args) == 0 {
		return VoidValue()
	}
	rt.staticsMu.Lock()
	if rt.statics == nil {
		rt.statics = make(map[*InstructionBlock]Object)
	}
	rt.statics[f.Fn] = args[0]
	rt.staticsMu.Unlock()
	return VoidValue()
}
