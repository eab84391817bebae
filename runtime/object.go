package runtime

import "sync/atomic"

// TypeID names the handful of object kinds the core itself must recognise
// by shape: the pooled primitives (Bool, Number, String) and the kinds
// the interpreter dispatches on directly (Array, FCC and friends).
// Every other object — including MapObject and anything the stdlib or an
// embedder defines — reports TypeIDGeneric.
type TypeID uint8

const (
	TypeIDGeneric TypeID = iota
	TypeIDVoid
	TypeIDBool
	TypeIDNumber
	TypeIDString
	TypeIDArray
	TypeIDBinder
	TypeIDFCC
	TypeIDType
	TypeIDExtObject
	TypeIDUserFunction
	TypeIDNativeFunction
	TypeIDIdentifier
)

// AttrRef is the result of accessing an attribute: a pointer to the live
// slot plus whatever lock must be held while that pointer is used. The
// caller releases the lock by calling Unlock once it has read or written
// through Attr and before yielding control to another frame (e.g. before
// a nested call), to keep attribute lookup safe under concurrent access.
type AttrRef struct {
	Attr   *Attribute
	unlock func()
}

func (r AttrRef) Unlock() {
	if r.unlock != nil {
		r.unlock()
	}
}

// Object is the contract every value that escapes the evaluation stack
// must satisfy. Plain data (Array, Map, ...) and language-level class
// instances alike implement it; ObjectBase supplies the refcount and type
// bookkeeping every implementation embeds.
type Object interface {
	Clone() Object
	ToString() string
	ToDouble() float64
	ToBool() bool
	Hash() uint64
	IsEqual(rt *Runtime, other Object) bool

	InternalTypeID() TypeID
	Type() *Type
	SetType(t *Type)

	// AccessAttribute returns a live pointer into this object's (or, for
	// Type, its inheritance chain's) attribute storage, or a nil Attr if
	// absent. localOnly restricts the search to this object's own
	// container, skipping the type walk.
	AccessAttribute(id ID, localOnly bool) AttrRef
	SetAttribute(id ID, attr Attribute) bool
	InitAttributes(rt *Runtime)
	CollectLocalAttributes() map[ID]Object

	Retain()
	Release()
	RefCount() int32
}

// ObjectBase is embedded by every concrete Object implementation. It owns
// the intrusive refcount and the (weak, in the sense of non-owning-count)
// pointer to the object's Type.
//
// Design note: Go already has a tracing garbage collector, so the
// refcount here exists purely to drive deterministic pool recycling — it
// is not what reclaims memory. Cycles in the attribute graph are
// therefore not a leak: when the last *reachable* reference disappears,
// Go's GC reclaims the cycle regardless of what the refcount says. The
// refcount can in principle be wrong in the presence of such cycles
// (never hitting zero), but that only disables pooling for the affected
// objects — it cannot leak memory.
type ObjectBase struct {
	refcount int32
	typ      *Type
	release  func(Object) // set by concrete types that are pool-recycled
}

func (o *ObjectBase) init(typ *Type) {
	o.refcount = 1
	o.typ = typ
}

func (o *ObjectBase) Type() *Type      { return o.typ }
func (o *ObjectBase) SetType(t *Type)  { o.typ = t }
func (o *ObjectBase) RefCount() int32  { return atomic.LoadInt32(&o.refcount) }

func (o *ObjectBase) Retain() {
	atomic.AddInt32(&o.refcount, 1)
}

// releaseBase decrements the refcount and, on hitting zero, forwards to
// the type-specific release handler (if any) for opportunistic pooling.
// self must be the concrete Object embedding this ObjectBase.
func (o *ObjectBase) releaseBase(self Object) {
	if atomic.AddInt32(&o.refcount, -1) > 0 {
		return
	}
	if o.release != nil {
		o.release(self)
	}
}

// DefaultInternalTypeID, DefaultClone etc. are not provided: every
// concrete Object type is small enough that spelling out Clone/ToString/
// Hash/IsEqual directly is clearer than a reflection-based default.

// IsEqual default semantics: CALL_BY_VALUE types compare by
// structural equality (Hash + type match), everything else compares by
// pointer identity. Concrete types may override when a richer notion of
// equality applies (e.g. Array comparing elementwise).
func DefaultIsEqual(a, b Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	ta, tb := a.Type(), b.Type()
	if ta != nil && ta.HasFlag(FlagCallByValue) && ta == tb {
		return a.Hash() == b.Hash() && a.ToString() == b.ToString()
	}
	return false
}
