package runtime

import "strconv"

// NativeFunc is the signature every builtin/embedder-registered function
// implements: given the runtime, the receiver (nil for free functions),
// and already-arity-checked arguments, produce a stack value. A native
// function signals a script-catchable error by panicking with
// scriptError{...} or by returning a value and calling rt.SetException
// itself; startFunctionExecution recovers either form.
type NativeFunc func(rt *Runtime, this Object, args []Object) RtValue

// NativeFunction wraps a NativeFunc together with its declared arity, the
// shape startFunctionExecution's case 3 validates against.
type NativeFunction struct {
	ObjectBase
	Name    string
	MinArgs int
	MaxArgs int // -1 means unbounded
	Fn      NativeFunc
}

func NewNativeFunction(typ *Type, name string, minArgs, maxArgs int, fn NativeFunc) *NativeFunction {
	n := &NativeFunction{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Fn: fn}
	n.ObjectBase.init(typ)
	return n
}

func (n *NativeFunction) InternalTypeID() TypeID { return TypeIDNativeFunction }
func (n *NativeFunction) ToString() string       { return "fn<" + n.Name + ">" }
func (n *NativeFunction) ToDouble() float64      { return 0 }
func (n *NativeFunction) ToBool() bool           { return true }
func (n *NativeFunction) Hash() uint64           { return fnvHashString(n.Name) }
func (n *NativeFunction) IsEqual(rt *Runtime, other Object) bool { return n == other }
func (n *NativeFunction) Clone() Object                          { return n }
func (n *NativeFunction) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || n.typ == nil {
		return AttrRef{}
	}
	return n.typ.FindTypeAttribute(id)
}
func (n *NativeFunction) SetAttribute(ID, Attribute) bool       { return false }
func (n *NativeFunction) InitAttributes(*Runtime)               {}
func (n *NativeFunction) CollectLocalAttributes() map[ID]Object { return nil }
func (n *NativeFunction) Release()                              {}

func fnvHashString(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// UserFunction is a compiled bytecode function as a first-class runtime
// value: what I_PUSH_FUNCTION produces and what I_CALL eventually feeds
// to startFunctionExecution's case 1.
type UserFunction struct {
	ObjectBase
	Block *InstructionBlock
}

func NewUserFunction(typ *Type, block *InstructionBlock) *UserFunction {
	f := &UserFunction{Block: block}
	f.ObjectBase.init(typ)
	return f
}

func (f *UserFunction) InternalTypeID() TypeID { return TypeIDUserFunction }
func (f *UserFunction) ToString() string       { return "fn<" + f.Block.Name + ">" }
func (f *UserFunction) ToDouble() float64      { return 0 }
func (f *UserFunction) ToBool() bool           { return true }
func (f *UserFunction) Hash() uint64           { return fnvHashString(f.Block.Name) }
func (f *UserFunction) IsEqual(rt *Runtime, other Object) bool { return f == other }
func (f *UserFunction) Clone() Object                          { return f }
func (f *UserFunction) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || f.typ == nil {
		return AttrRef{}
	}
	return f.typ.FindTypeAttribute(id)
}
func (f *UserFunction) SetAttribute(ID, Attribute) bool       { return false }
func (f *UserFunction) InitAttributes(*Runtime)               {}
func (f *UserFunction) CollectLocalAttributes() map[ID]Object { return nil }
func (f *UserFunction) Release()                              {}

// FnBinder is a bound function: a callable that prepends BoundArgs and
// substitutes BoundThis (unless nil) ahead of Target on every invocation.
// Used for partial application (`obj.method` detached from obj keeps obj
// bound as `this`).
type FnBinder struct {
	ObjectBase
	Target    Object
	BoundThis Object
	BoundArgs []Object
}

func NewFnBinder(typ *Type, target, boundThis Object, boundArgs []Object) *FnBinder {
	b := &FnBinder{Target: target, BoundThis: boundThis, BoundArgs: boundArgs}
	b.ObjectBase.init(typ)
	return b
}

func (b *FnBinder) InternalTypeID() TypeID { return TypeIDBinder }
func (b *FnBinder) ToString() string       { return "fn<bound>" }
func (b *FnBinder) ToDouble() float64      { return 0 }
func (b *FnBinder) ToBool() bool           { return true }
func (b *FnBinder) Hash() uint64           { return uint64(uintptr(0)) }
func (b *FnBinder) IsEqual(rt *Runtime, other Object) bool { return b == other }
func (b *FnBinder) Clone() Object                          { return b }
func (b *FnBinder) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || b.typ == nil {
		return AttrRef{}
	}
	return b.typ.FindTypeAttribute(id)
}
func (b *FnBinder) SetAttribute(ID, Attribute) bool       { return false }
func (b *FnBinder) InitAttributes(*Runtime)               {}
func (b *FnBinder) CollectLocalAttributes() map[ID]Object { return nil }
func (b *FnBinder) Release()                              { b.releaseBase(b) }

// startFunctionExecution dispatches on fn's internal type id, producing
// either an FCC (wrapped in RtValue, for the
// interpreter to push and continue interpreting) or a final RtValue
// result. caller is the "this" the call site supplied (may be nil).
func startFunctionExecution(rt *Runtime, caller Object, fn Object, args []Object) RtValue {
	if fn == nil {
		rt.SetExceptionMessage("Cannot call null as a function")
		return VoidValue()
	}

	switch fn.InternalTypeID() {
	case TypeIDUserFunction:
		uf := fn.(*UserFunction)
		return startUserFunctionExecution(rt, caller, uf.Block, fn, args)

	case TypeIDBinder:
		binder := fn.(*FnBinder)
		merged := make([]Object, 0, len(binder.BoundArgs)+len(args))
		merged = append(merged, binder.BoundArgs...)
		merged = append(merged, args...)
		this := caller
		if binder.BoundThis != nil {
			this = binder.BoundThis
		}
		return startFunctionExecution(rt, this, binder.Target, merged)

	case TypeIDNativeFunction:
		nf := fn.(*NativeFunction)
		if len(args) < nf.MinArgs {
			rt.SetExceptionMessage("Too few parameters: expected at least " + strconv.Itoa(nf.MinArgs) + ", got " + strconv.Itoa(len(args)))
			return VoidValue()
		}
		if nf.MaxArgs >= 0 && len(args) > nf.MaxArgs {
			rt.Warnf("too many parameters calling %s: expected at most %d, got %d", nf.Name, nf.MaxArgs, len(args))
			args = args[:nf.MaxArgs]
		}
		return callNativeSafely(rt, nf, caller, args)

	default:
		ref := fn.AccessAttribute(identCall, false)
		if ref.Attr == nil {
			rt.Warnf("object of type %v is not callable", fn.Type())
			return VoidValue()
		}
		callable := ref.Attr.Value
		ref.Unlock()
		extended := append([]Object{fn}, args...)
		return startFunctionExecution(rt, fn, callable, extended)
	}
}

// callNativeSafely invokes nf.Fn, converting a panic(scriptError{...}) —
// the Go stand-in for the original runtime's caught C++ exception — into
// a pending exception, matching startFunctionExecution case 3's "catching
// any native exception and converting to a script exception".
func callNativeSafely(rt *Runtime, nf *NativeFunction, this Object, args []Object) (result RtValue) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(scriptError); ok {
				rt.SetExceptionMessage(se.message)
				result = VoidValue()
				return
			}
			rt.SetExceptionMessage("native function panicked")
			result = VoidValue()
		}
	}()
	return nf.Fn(rt, this, args)
}

// startUserFunctionExecution handles the user-function case: allocate
// an FCC, seed slots 0/1, check arity against the InstructionBlock's
// declared (min, max, multi_param_index), bind parameters, and return the
// new frame for the interpreter loop to run.
func startUserFunctionExecution(rt *Runtime, caller Object, block *InstructionBlock, fnObj Object, args []Object) RtValue {
	if len(args) < block.MinArgs {
		rt.SetExceptionMessage("Too few parameters: Expected " + strconv.Itoa(block.MinArgs) + ", got " + strconv.Itoa(len(args)) + ".")
		return VoidValue()
	}

	f := rt.pools.acquireFCC(block, caller)
	f.SetLocal(SlotThis, caller)
	f.SetLocal(SlotFunction, fnObj)

	if block.MultiParamIndex == NoMultiParam {
		if len(args) > block.MaxArgs {
			rt.Warnf("too many parameters: expected %d, got %d", block.MaxArgs, len(args))
			args = args[:block.MaxArgs]
		}
		for i, a := range args {
			f.SetLocal(uint32(SlotParam0+i), getRefOrCopy(a))
		}
	} else {
		fixed := block.MultiParamIndex
		for i := 0; i < fixed && i < len(args); i++ {
			f.SetLocal(uint32(SlotParam0+i), getRefOrCopy(args[i]))
		}
		var overflow []Object
		if len(args) > fixed {
			overflow = args[fixed:]
		}
		rest := make([]Object, len(overflow))
		for i, a := range overflow {
			rest[i] = getRefOrCopy(a)
		}
		f.SetLocal(uint32(SlotParam0+fixed), newArray(rt, rest))
	}

	return fccValue(f)
}

