package runtime

import "unsafe"

// ExtObject is the runtime's generic "plain instance" object: what
// I_CREATE_INSTANCE produces for any user- or builtin-defined Type that
// isn't one of the primitive boxes. Its own AttributeContainer holds the
// instance's object attributes, seeded at construction time from the
// type's already-flattened templates (Type.CopyObjAttributesTo).
type ExtObject struct {
	ObjectBase
	attrs *AttributeContainer
}

// NewExtObject constructs an instance of typ. Per ExtObject::ExtObject(Type*)
// in the original runtime, the type's object-attribute templates are
// copied in immediately; typ may be nil for the handful of objects that
// predate any type (bootstrap only).
func NewExtObject(typ *Type) *ExtObject {
	o := &ExtObject{attrs: NewAttributeContainer()}
	o.ObjectBase.init(typ)
	if typ != nil {
		typ.CopyObjAttributesTo(o)
	}
	return o
}

// NewExtObjectWithAttrs constructs an instance and seeds attrs directly,
// for embedders building a pre-populated object without running a
// constructor chain; nothing in this package calls it.
func NewExtObjectWithAttrs(typ *Type, seed map[ID]Object) *ExtObject {
	o := NewExtObject(typ)
	for id, v := range seed {
		o.attrs.Set(id, Attribute{Value: v, Props: AttrNormal})
	}
	return o
}

func (o *ExtObject) InternalTypeID() TypeID { return TypeIDExtObject }

func (o *ExtObject) ToString() string {
	if t := o.typ; t != nil {
		return t.ToString() + " instance"
	}
	return "ExtObject"
}
func (o *ExtObject) ToDouble() float64 { return 0 }
func (o *ExtObject) ToBool() bool      { return true }
func (o *ExtObject) Hash() uint64      { return uint64(uintptr(unsafe.Pointer(o))) }

func (o *ExtObject) IsEqual(rt *Runtime, other Object) bool { return DefaultIsEqual(o, other) }

// Clone copies the object's own attributes (get_ref_or_copy'd per entry)
// into a fresh instance of the same type, mirroring
// ExtObject::ExtObject(const ExtObject&).
func (o *ExtObject) Clone() Object {
	n := &ExtObject{attrs: NewAttributeContainer()}
	n.ObjectBase.init(o.typ)
	n.attrs.CloneFrom(o.attrs)
	return n
}

// AccessAttribute mirrors ExtObject::_accessAttribute: the instance's own
// container is checked first; on a miss, unless localOnly restricts the
// search or there is no type to ask, the lookup is handed to the type's
// FindTypeAttribute — never back to this object's own AccessAttribute, so
// there is no double-checking of the instance container.
func (o *ExtObject) AccessAttribute(id ID, localOnly bool) AttrRef {
	if ref := o.attrs.access(id); ref.Attr != nil {
		return ref
	}
	if localOnly || o.typ == nil {
		return AttrRef{}
	}
	return o.typ.FindTypeAttribute(id)
}

func (o *ExtObject) SetAttribute(id ID, attr Attribute) bool {
	o.attrs.Set(id, attr)
	return true
}

func (o *ExtObject) InitAttributes(rt *Runtime) { o.attrs.InitAttributes(rt) }

func (o *ExtObject) CollectLocalAttributes() map[ID]Object { return o.attrs.CollectAttributes() }

func (o *ExtObject) Release() { o.releaseBase(o) }
