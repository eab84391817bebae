package runtime

import (
	"sync"
)

// sharedRuntimeContext is the process-wide registry of live Runtimes,
// populated by NewRuntime and Runtime.Fork. Entries are only added and
// removed (register/unregister); nothing in this package reads the
// registry.
type sharedRuntimeContext struct {
	mu       sync.Mutex
	runtimes map[*Runtime]struct{}
}

var globalContext = &sharedRuntimeContext{runtimes: make(map[*Runtime]struct{})}

func (c *sharedRuntimeContext) register(rt *Runtime) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runtimes[rt] = struct{}{}
}

func (c *sharedRuntimeContext) unregister(rt *Runtime) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.runtimes, rt)
}

// Logger is the minimal sink the core reports warnings and exceptions
// through; diag.Logger (the ambient logging package) implements it.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Runtime holds one interpreter's worth of state — its FCC stack,
// exception/exit flags, globals, and the primitive-type pools it owns.
// Multiple Runtimes may run concurrently, each on its own goroutine,
// sharing the process-wide identifier table and, when forked, the same
// globals object and sharedRuntimeContext membership.
type Runtime struct {
	pools *pools

	voidType           *Type
	boolType           *Type
	numberType         *Type
	stringType         *Type
	identifierType     *Type
	arrayType          *Type
	nativeFunctionType *Type
	userFunctionType   *Type
	binderType         *Type
	voidSingleton      *VoidObject

	globals *ExtObject

	mu             sync.Mutex
	activeFCCs     []*FCC
	normalState    bool
	exceptionValue Object
	exitPending    bool
	exitValue      Object

	stackSizeLimit int

	logger Logger

	sysCalls map[uint32]SysCallFunc

	onceOnce  sync.Once
	onceState *onceRegistry

	staticsMu sync.Mutex
	statics   map[*InstructionBlock]Object

	mapType           *Type
	arrayIteratorType *Type
	yieldIteratorType *Type
}

// DefaultStackSizeLimit is the default FCC stack depth before a Runtime
// raises a stack-overflow exception instead of pushing another frame.
const DefaultStackSizeLimit = 100000

// NewRuntime builds a fresh, independent Runtime: its own globals
// namespace, its own primitive-type pools, registered in the shared
// runtime context. Use Fork to create a sibling that shares globals
// instead.
func NewRuntime() *Runtime {
	rt := &Runtime{
		normalState:    true,
		stackSizeLimit: DefaultStackSizeLimit,
		logger:         nopLogger{},
		sysCalls:       make(map[uint32]SysCallFunc),
	}
	rt.pools = newPools(rt)

	root := RootType()
	rt.voidType = NewType(nil)
	rt.voidType.Name = "Void"
	rt.boolType = NewType(nil)
	rt.boolType.Name = "Bool"
	rt.boolType.SetFlag(FlagCallByValue, true)
	rt.numberType = NewType(nil)
	rt.numberType.Name = "Number"
	rt.numberType.SetFlag(FlagCallByValue, true)
	rt.stringType = NewType(nil)
	rt.stringType.Name = "String"
	rt.stringType.SetFlag(FlagCallByValue, true)
	rt.identifierType = NewType(nil)
	rt.identifierType.Name = "Identifier"
	rt.nativeFunctionType = NewType(nil)
	rt.nativeFunctionType.Name = "NativeFunction"
	rt.userFunctionType = NewType(nil)
	rt.userFunctionType.Name = "Function"
	rt.binderType = NewType(nil)
	rt.binderType.Name = "FnBinder"
	_ = root

	rt.voidSingleton = newVoidObject(rt.voidType)
	rt.arrayType = registerArrayType(rt)
	rt.mapType = NewType(nil)
	rt.mapType.Name = "Map"
	rt.arrayIteratorType = registerArrayIteratorType(rt)
	rt.yieldIteratorType = NewType(nil)
	rt.yieldIteratorType.Name = "YieldIterator"

	globalsType := NewType(nil)
	globalsType.Name = "Namespace"
	rt.globals = NewExtObject(globalsType)

	registerSysCalls(rt)

	globalContext.register(rt)
	return rt
}

// Fork spawns a sibling Runtime sharing this one's globals namespace and
// primitive-type objects (so `===` on a shared Type still holds across
// runtimes), but with its own FCC stack and exception/exit state — the
// mechanism behind Threading.run spawning a forked runtime that shares
// globals with its parent.
func (rt *Runtime) Fork() *Runtime {
	child := &Runtime{
		voidType:           rt.voidType,
		boolType:           rt.boolType,
		numberType:         rt.numberType,
		stringType:         rt.stringType,
		identifierType:     rt.identifierType,
		arrayType:          rt.arrayType,
		nativeFunctionType: rt.nativeFunctionType,
		userFunctionType:   rt.userFunctionType,
		binderType:         rt.binderType,
		mapType:            rt.mapType,
		arrayIteratorType:  rt.arrayIteratorType,
		yieldIteratorType:  rt.yieldIteratorType,
		voidSingleton:      rt.voidSingleton,
		globals:            rt.globals,
		normalState:        true,
		stackSizeLimit:     rt.stackSizeLimit,
		logger:             rt.logger,
		sysCalls:           rt.sysCalls,
	}
	child.pools = newPools(child)
	globalContext.register(child)
	return child
}

// Close unregisters rt from the shared runtime context. Safe to call more
// than once.
func (rt *Runtime) Close() { globalContext.unregister(rt) }

func (rt *Runtime) SetLogger(l Logger) {
	if l != nil {
		rt.logger = l
	}
}

func (rt *Runtime) Warnf(format string, args ...any) { rt.logger.Warnf(format, args...) }

// VoidValue returns the Runtime's singleton Void object.
func (rt *Runtime) VoidValue() Object { return rt.voidSingleton }

// IdentifierObject boxes id as a first-class runtime value.
func (rt *Runtime) IdentifierObject(id ID) Object {
	o := &IdentifierObj{Value: id}
	o.ObjectBase.init(rt.identifierType)
	return o
}

// Globals returns the runtime's global namespace object.
func (rt *Runtime) Globals() *ExtObject { return rt.globals }

func (rt *Runtime) GetGlobalVariable(id ID) Object {
	ref := rt.globals.AccessAttribute(id, true)
	defer ref.Unlock()
	if ref.Attr == nil {
		return nil
	}
	return ref.Attr.Value
}

func (rt *Runtime) SetGlobalVariable(id ID, v Object) {
	rt.globals.SetAttribute(id, Attribute{Value: v, Props: AttrNormal})
}

// StackSizeLimit / SetStackSizeLimit implement the runtime-configurable
// FCC depth cap.
func (rt *Runtime) StackSizeLimit() int { return rt.stackSizeLimit }
func (rt *Runtime) SetStackSizeLimit(n int) {
	if n > 0 {
		rt.stackSizeLimit = n
	}
}

// NewString, NewNumber, NewBool, and NewArray box Go values as pooled
// runtime Objects, for embedders and native modules (stdlib/httpmod,
// etc.) that need to hand a script-level
// value back across the native boundary without going through an RtValue
// push/pop.
func (rt *Runtime) NewString(s string) Object        { return rt.pools.stringBox(s) }
func (rt *Runtime) NewNumber(f float64) Object       { return rt.pools.numberBox(f) }
func (rt *Runtime) NewBool(b bool) Object            { return rt.pools.boolBox(b) }
func (rt *Runtime) NewArray(elems []Object) Object   { return newArray(rt, elems) }
func (rt *Runtime) NewMap() *MapObject               { return newMapObject(rt) }
func (rt *Runtime) NewObject(typ *Type) Object       { return NewExtObject(typ) }

// NativeFunctionType exposes the Type every NewNativeFunction must be
// constructed against, for native modules living outside this package.
func (rt *Runtime) NativeFunctionType() *Type { return rt.nativeFunctionType }

// UserFunctionType exposes the Type every NewUserFunction must be
// constructed against, for embedders and tests that hand-assemble a
// function body and need to wrap it as a first-class callable (e.g. a
// type's `_constructor` attribute) without going through I_PUSH_FUNCTION.
func (rt *Runtime) UserFunctionType() *Type { return rt.userFunctionType }

// RegisterModule installs obj under name in the global namespace, the
// mechanism a native module (such as stdlib/httpmod) uses to
// make itself visible to scripts as a single global value.
func (rt *Runtime) RegisterModule(name string, obj Object) {
	rt.SetGlobalVariable(StringToIdentifier(name), obj)
}
