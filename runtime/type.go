package runtime

import (
	"sync"
	"unsafe"
)

// TypeFlag is Type's own bit field, distinct from Attribute's AttrFlag.
// FlagCallByValue marks value types (Number, String, Bool, ...): their
// RtValue.ToObject and getRefOrCopy clone instead of sharing a reference.
// FlagContainsObjAttrs is an optimisation flag: it is set the first time
// an object-attribute template is stored, so CopyObjAttributesTo can skip
// entirely empty types. FlagAllowsUserInheritance mirrors
// Type::allowsUserInheritance from the original runtime; NewType sets it on
// every type it creates, builtin types included, and nothing in this
// package clears it.
type TypeFlag uint8

const (
	FlagCallByValue           TypeFlag = 1 << 0
	FlagContainsObjAttrs      TypeFlag = 1 << 1
	FlagAllowsUserInheritance TypeFlag = 1 << 2
)

// Type is both the runtime's class object and, transitively, the type of
// every class object: rootType.Type() == rootType. BaseType chains to a
// single ancestor (EScript has no multiple inheritance); attrs holds this
// type's own attributes, type- and object- alike, with object-attribute
// templates already flattened in from the base chain at construction time
// (see NewType).
type Type struct {
	ObjectBase
	base  *Type
	flags TypeFlag
	attrs *AttributeContainer

	// Name is diagnostic-only: unlike the original runtime, which derives
	// a printable name from a side table populated by declareConstant, this
	// port just lets the creator stamp one on for error messages and
	// decompiler output.
	Name string
}

var (
	rootTypeOnce sync.Once
	rootType     *Type
)

// RootType returns the self-referential bootstrap type: the type whose own
// Type() is itself. Every other type's ultimate Type() is this one, since
// nothing else ever constructs a Type for Type. Building it takes two
// phases (allocate, then patch typ back onto itself) because there is no
// way to pass a pointer to an object to its own constructor before it
// exists; RootType is safe to call concurrently from forked runtimes
// sharing this process-wide bootstrap, using sync.Once rather than a
// per-call lock.
func RootType() *Type {
	rootTypeOnce.Do(func() {
		t := &Type{
			flags: FlagAllowsUserInheritance,
			attrs: NewAttributeContainer(),
			Name:  "Type",
		}
		t.ObjectBase.init(nil)
		t.typ = t
		rootType = t
	})
	return rootType
}

// NewType creates a user- or builtin-defined type with the given base
// (nil means "derive directly from ExtObject's conceptual root", mirrored
// here simply as a nil BaseType). Per Type::Type(Type*) in the original
// runtime, the new type immediately flattens its base's object-attribute
// templates into its own container, so instance creation never needs to
// walk the base chain for object attributes.
func NewType(base *Type) *Type {
	t := &Type{
		base:  base,
		flags: FlagAllowsUserInheritance,
		attrs: NewAttributeContainer(),
	}
	t.ObjectBase.init(RootType())
	if base != nil {
		base.CopyObjAttributesTo(t)
	}
	return t
}

func (t *Type) HasFlag(f TypeFlag) bool { return t.flags&f != 0 }
func (t *Type) SetFlag(f TypeFlag, on bool) {
	if on {
		t.flags |= f
	} else {
		t.flags &^= f
	}
}

func (t *Type) BaseType() *Type { return t.base }

// HasBase reports whether other appears anywhere in t's ancestor chain.
func (t *Type) HasBase(other *Type) bool {
	for b := t.base; b != nil; b = b.base {
		if b == other {
			return true
		}
	}
	return false
}

// IsBaseOf reports whether t is an ancestor of other (the converse of
// HasBase, spelled the way the original Type::isBaseOf reads at call
// sites: `baseCandidate.IsBaseOf(derived)`).
func (t *Type) IsBaseOf(other *Type) bool {
	return other != nil && other.HasBase(t)
}

func (t *Type) InternalTypeID() TypeID { return TypeIDType }

func (t *Type) ToString() string {
	if t.Name != "" {
		return t.Name
	}
	return "Type"
}
func (t *Type) ToDouble() float64 { return 0 }
func (t *Type) ToBool() bool      { return true }
func (t *Type) Hash() uint64      { return uint64(uintptr(unsafe.Pointer(t))) }

func (t *Type) IsEqual(rt *Runtime, other Object) bool { return DefaultIsEqual(t, other) }

// Clone mirrors Type::clone: a fresh Type sharing the same base and
// declared type but with an empty attribute container of its own. Types
// are not CALL_BY_VALUE, so this path is rarely exercised by the
// interpreter; it exists for embedders that explicitly clone a type object.
func (t *Type) Clone() Object {
	nt := &Type{base: t.base, flags: t.flags &^ FlagContainsObjAttrs, attrs: NewAttributeContainer()}
	nt.ObjectBase.init(t.typ)
	return nt
}

func (t *Type) Release() { t.releaseBase(t) }

// FindTypeAttribute walks t and its ancestors looking for a TYPE_ATTR
// attribute named id. Per Type::findTypeAttribute, finding a matching
// attribute that turns out to be an object-attribute template (declared on
// some type in the chain as an instance field, not a class field) is a
// script-level error: callers asked for a type attribute by name but hit
// an object-attribute template, which has no meaning without an instance.
func (t *Type) FindTypeAttribute(id ID) AttrRef {
	for cur := t; cur != nil; cur = cur.base {
		ref := cur.attrs.access(id)
		if ref.Attr == nil {
			continue
		}
		if ref.Attr.IsObjAttribute() {
			ref.Unlock()
			panic(scriptError{"attribute '" + id.String() + "' is an object attribute, not a type attribute of '" + cur.ToString() + "'"})
		}
		return ref
	}
	return AttrRef{}
}

// AccessAttribute implements Type::_accessAttribute: first t's own
// container (type- and object-attributes alike, since a type can itself
// carry per-type state such as static fields); on a miss, and unless
// localOnly restricts the search, the base chain's type attributes; and
// finally — exactly once, not recursively — this Type's own Type's type
// attributes (so every Type object inherits methods like getName()
// declared as type-attributes of RootType itself).
func (t *Type) AccessAttribute(id ID, localOnly bool) AttrRef {
	if ref := t.attrs.access(id); ref.Attr != nil {
		return ref
	}
	if localOnly {
		return AttrRef{}
	}
	if t.base != nil {
		if ref := t.base.FindTypeAttribute(id); ref.Attr != nil {
			return ref
		}
	}
	if own := t.typ; own != nil && own != t {
		if ref := own.FindTypeAttribute(id); ref.Attr != nil {
			return ref
		}
	}
	return AttrRef{}
}

// SetAttribute stores attr under id, flagging this type as carrying
// object-attribute templates when appropriate so CopyObjAttributesTo knows
// there's work to do.
func (t *Type) SetAttribute(id ID, attr Attribute) bool {
	t.attrs.Set(id, attr)
	if attr.IsObjAttribute() {
		t.SetFlag(FlagContainsObjAttrs, true)
	}
	return true
}

// CopyObjAttributesTo copies every object-attribute template this type
// carries onto instance (an ExtObject being constructed, or — at type
// construction time — a derived Type flattening its base's templates in).
// It is a no-op when FlagContainsObjAttrs is unset.
func (t *Type) CopyObjAttributesTo(instance Object) {
	if !t.HasFlag(FlagContainsObjAttrs) {
		return
	}
	for id, attr := range t.attrs.snapshot() {
		if attr.IsObjAttribute() {
			instance.SetAttribute(id, Attribute{Value: getRefOrCopy(attr.Value), Props: attr.Props})
		}
	}
}

func (t *Type) InitAttributes(rt *Runtime) { t.attrs.InitAttributes(rt) }

func (t *Type) CollectLocalAttributes() map[ID]Object { return t.attrs.CollectAttributes() }

// CollectTypeAttributes returns only the TYPE_ATTR subset, walking up the
// base chain and letting a derived type's attribute shadow its base's.
func (t *Type) CollectTypeAttributes() map[ID]Object {
	out := make(map[ID]Object)
	chain := make([]*Type, 0, 4)
	for cur := t; cur != nil; cur = cur.base {
		chain = append(chain, cur)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for id, attr := range chain[i].attrs.snapshot() {
			if attr.IsTypeAttribute() {
				out[id] = attr.Value
			}
		}
	}
	return out
}

// CollectObjAttributes returns only this type's (already-flattened)
// object-attribute templates.
func (t *Type) CollectObjAttributes() map[ID]Object {
	out := make(map[ID]Object)
	for id, attr := range t.attrs.snapshot() {
		if attr.IsObjAttribute() {
			out[id] = attr.Value
		}
	}
	return out
}

// scriptError is panicked by FindTypeAttribute and recovered by the
// interpreter's per-instruction dispatch loop, which turns it into a
// pending exception on the Runtime exactly as the original runtime's
// C++ exceptions were caught at the same call sites.
type scriptError struct{ message string }

func (e scriptError) Error() string { return e.message }

// NewScriptError builds the same catchable-exception panic value
// FindTypeAttribute and Array's bounds checks use, for native modules
// outside this package (stdlib/httpmod, embedders) that need to signal a
// script-level error from inside a NativeFunc body. callNativeSafely and
// dispatchGuarded recover it identically regardless of which package
// panicked.
func NewScriptError(message string) error { return scriptError{message} }
