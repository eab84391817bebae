package runtime

// FCCFlag collects the three per-frame boolean fields into one bitset,
// the same shape as TypeFlag (type.go) and AttrFlag (attribute.go).
type FCCFlag uint8

const (
	FlagConstructorCall FCCFlag = 1 << iota
	FlagProvidesCallerAsResult
	FlagStopExecutionAfterEnding
)

// InvalidAddr marks "no exception handler installed" for
// ExceptionHandlerPos.
const InvalidAddr = -1

// Local slot conventions shared by the compiler and the interpreter.
const (
	SlotThis     = 0
	SlotFunction = 1
	SlotResult   = 2
	SlotParam0   = 3
)

// FCC is one function call frame: the unit the interpreter loop and the
// FCC pool push, run, and recycle. It is itself an Object
// only in the sense that an RtValue can carry a *FCC (see fccValue, which
// startFunctionExecution returns for a call still to be run); FCC does not implement the Object interface since it never has
// attributes or a Type of its own.
type FCC struct {
	Caller *FCC // the caller's frame, or nil at the outermost call

	This Object              // local slot 0's value, the "this" object
	Fn   *InstructionBlock    // the bytecode being executed

	Cursor int // instruction index, the "instruction_cursor"

	ValueStack []RtValue
	Locals     []Object

	ExceptionHandlerPos int // InvalidAddr when no handler installed
	Flags               FCCFlag

	// PendingSuperConstructors queues remaining `_constructor` attributes
	// collected by startInstanceCreation for I_INIT_CALLER to consume,
	// outermost first.
	PendingSuperConstructors []Object

	refcount int32
}

func newFCC(fn *InstructionBlock, this Object) *FCC {
	f := &FCC{
		This:                this,
		Fn:                  fn,
		ExceptionHandlerPos: InvalidAddr,
		refcount:            1,
	}
	if fn != nil {
		f.Locals = make([]Object, fn.NumLocals)
	}
	return f
}

func (f *FCC) HasFlag(flag FCCFlag) bool { return f.Flags&flag != 0 }
func (f *FCC) SetFlag(flag FCCFlag, on bool) {
	if on {
		f.Flags |= flag
	} else {
		f.Flags &^= flag
	}
}

// --- value stack ---

func (f *FCC) Push(v RtValue) { f.ValueStack = append(f.ValueStack, v) }

func (f *FCC) Pop() RtValue {
	n := len(f.ValueStack)
	if n == 0 {
		return UndefinedValue()
	}
	v := f.ValueStack[n-1]
	f.ValueStack = f.ValueStack[:n-1]
	return v
}

func (f *FCC) Peek() RtValue {
	n := len(f.ValueStack)
	if n == 0 {
		return UndefinedValue()
	}
	return f.ValueStack[n-1]
}

func (f *FCC) StackLen() int { return len(f.ValueStack) }

// StackClear drops (and releases) every value currently on the stack; used
// when an exception begins unwinding this frame.
func (f *FCC) StackClear() {
	for _, v := range f.ValueStack {
		v.Release()
	}
	f.ValueStack = f.ValueStack[:0]
}

// PopBool interprets the popped value as a boolean: unboxed KindBool
// values are read directly, boxed objects defer to ToBool(), and anything
// else (void, undefined) is falsy.
func (f *FCC) PopBool() bool {
	v := f.Pop()
	switch v.Kind {
	case KindBool:
		return v.b
	case KindObject:
		if v.obj == nil {
			return false
		}
		b := v.obj.ToBool()
		v.obj.Release()
		return b
	default:
		return false
	}
}

func (f *FCC) PopU32() uint32 {
	v := f.Pop()
	if v.Kind == KindUint32 {
		return v.Uint32()
	}
	return uint32(v.Number())
}

func (f *FCC) PopIdentifier() ID { return f.Pop().Identifier() }

// PopObject pops a value and forces it to a full Object via ToObject's
// boxing rules, without applying call-by-value cloning.
func (f *FCC) PopObject(rt *Runtime) Object {
	return f.Pop().ToObject(rt, f.Fn)
}

// PopObjectValue is PopObject followed by get_ref_or_copy: CALL_BY_VALUE
// results are cloned, everything else shared.
func (f *FCC) PopObjectValue(rt *Runtime) Object {
	return getRefOrCopy(f.PopObject(rt))
}

// --- locals ---

func (f *FCC) GetLocal(idx uint32) Object {
	if int(idx) >= len(f.Locals) {
		return nil
	}
	return f.Locals[idx]
}

func (f *FCC) SetLocal(idx uint32, v Object) {
	if int(idx) < len(f.Locals) {
		f.Locals[idx] = v
	}
}

func (f *FCC) ResetLocal(idx uint32) { f.SetLocal(idx, nil) }

// LocalName consults the InstructionBlock's name table, used only for
// diagnostics (an uninitialised local referenced by name in an error).
func (f *FCC) LocalName(idx uint32) string {
	if f.Fn == nil || int(idx) >= len(f.Fn.LocalVariableNames) {
		return ""
	}
	return f.Fn.LocalVariableNames[idx]
}

// reset clears an FCC for reuse from the pool: every
// field is returned to its zero-ish state, but the backing slices are
// kept (truncated to 0) so reuse doesn't reallocate.
func (f *FCC) reset() {
	f.Caller = nil
	f.This = nil
	f.Fn = nil
	f.Cursor = 0
	f.ValueStack = f.ValueStack[:0]
	for i := range f.Locals {
		f.Locals[i] = nil
	}
	f.Locals = f.Locals[:0]
	f.ExceptionHandlerPos = InvalidAddr
	f.Flags = 0
	f.PendingSuperConstructors = nil
	f.refcount = 1
}
