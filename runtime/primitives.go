package runtime

import (
	"strconv"
)

// VoidObject is the runtime's single shared Void instance: what VOID
// boxes to. There is exactly one per Runtime (rt.voidSingleton); it is
// never pooled or freed because it is never released to zero (the
// Runtime itself holds a permanent reference).
type VoidObject struct{ ObjectBase }

func newVoidObject(typ *Type) *VoidObject {
	v := &VoidObject{}
	v.ObjectBase.init(typ)
	return v
}

func (v *VoidObject) InternalTypeID() TypeID                    { return TypeIDVoid }
func (v *VoidObject) ToString() string                          { return "void" }
func (v *VoidObject) ToDouble() float64                          { return 0 }
func (v *VoidObject) ToBool() bool                               { return false }
func (v *VoidObject) Hash() uint64                               { return 0 }
func (v *VoidObject) IsEqual(rt *Runtime, other Object) bool     { _, ok := other.(*VoidObject); return ok }
func (v *VoidObject) Clone() Object                              { return v }
func (v *VoidObject) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || v.typ == nil {
		return AttrRef{}
	}
	return v.typ.FindTypeAttribute(id)
}
func (v *VoidObject) SetAttribute(ID, Attribute) bool          { return false }
func (v *VoidObject) InitAttributes(*Runtime)                  {}
func (v *VoidObject) CollectLocalAttributes() map[ID]Object    { return nil }
func (v *VoidObject) Release()                                 {}

// BoolBox is the pooled boxed representation of a BOOL RtValue.
type BoolBox struct {
	ObjectBase
	Value bool
}

func (b *BoolBox) InternalTypeID() TypeID { return TypeIDBool }
func (b *BoolBox) ToString() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b *BoolBox) ToDouble() float64 {
	if b.Value {
		return 1
	}
	return 0
}
func (b *BoolBox) ToBool() bool { return b.Value }
func (b *BoolBox) Hash() uint64 {
	if b.Value {
		return 1
	}
	return 0
}
func (b *BoolBox) IsEqual(rt *Runtime, other Object) bool {
	if o, ok := other.(*BoolBox); ok {
		return o.Value == b.Value
	}
	return false
}
func (b *BoolBox) Clone() Object { nb := *b; return &nb }
func (b *BoolBox) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || b.typ == nil {
		return AttrRef{}
	}
	return b.typ.FindTypeAttribute(id)
}
func (b *BoolBox) SetAttribute(ID, Attribute) bool       { return false }
func (b *BoolBox) InitAttributes(*Runtime)               {}
func (b *BoolBox) CollectLocalAttributes() map[ID]Object { return nil }
func (b *BoolBox) Release()                              { b.releaseBase(b) }

// NumberBox is the pooled boxed representation of a NUMBER/UINT32 RtValue.
type NumberBox struct {
	ObjectBase
	Value float64
}

func (n *NumberBox) InternalTypeID() TypeID { return TypeIDNumber }
func (n *NumberBox) ToString() string       { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (n *NumberBox) ToDouble() float64      { return n.Value }
func (n *NumberBox) ToBool() bool           { return n.Value != 0 }
func (n *NumberBox) Hash() uint64           { return uint64(n.Value) }
func (n *NumberBox) IsEqual(rt *Runtime, other Object) bool {
	if o, ok := other.(*NumberBox); ok {
		return o.Value == n.Value
	}
	return false
}
func (n *NumberBox) Clone() Object { nn := *n; return &nn }
func (n *NumberBox) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || n.typ == nil {
		return AttrRef{}
	}
	return n.typ.FindTypeAttribute(id)
}
func (n *NumberBox) SetAttribute(ID, Attribute) bool       { return false }
func (n *NumberBox) InitAttributes(*Runtime)               {}
func (n *NumberBox) CollectLocalAttributes() map[ID]Object { return nil }
func (n *NumberBox) Release()                              { n.releaseBase(n) }

// StringBox is the pooled boxed representation of a LOCAL_STRING_IDX
// RtValue, and the type every runtime-visible string literal becomes.
type StringBox struct {
	ObjectBase
	Value string
}

func (s *StringBox) InternalTypeID() TypeID { return TypeIDString }
func (s *StringBox) ToString() string       { return s.Value }
func (s *StringBox) ToDouble() float64 {
	f, err := strconv.ParseFloat(s.Value, 64)
	if err != nil {
		return 0
	}
	return f
}
func (s *StringBox) ToBool() bool { return s.Value != "" }
func (s *StringBox) Hash() uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s.Value); i++ {
		h ^= uint64(s.Value[i])
		h *= 1099511628211
	}
	return h
}
func (s *StringBox) IsEqual(rt *Runtime, other Object) bool {
	if o, ok := other.(*StringBox); ok {
		return o.Value == s.Value
	}
	return false
}
func (s *StringBox) Clone() Object { ns := *s; return &ns }
func (s *StringBox) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || s.typ == nil {
		return AttrRef{}
	}
	return s.typ.FindTypeAttribute(id)
}
func (s *StringBox) SetAttribute(ID, Attribute) bool       { return false }
func (s *StringBox) InitAttributes(*Runtime)               {}
func (s *StringBox) CollectLocalAttributes() map[ID]Object { return nil }
func (s *StringBox) Release()                              { s.releaseBase(s) }

// IdentifierObj wraps an interned ID as a first-class runtime value (what
// IDENTIFIER RtValues box to).
type IdentifierObj struct {
	ObjectBase
	Value ID
}

func (i *IdentifierObj) InternalTypeID() TypeID { return TypeIDIdentifier }
func (i *IdentifierObj) ToString() string       { return i.Value.String() }
func (i *IdentifierObj) ToDouble() float64      { return float64(i.Value) }
func (i *IdentifierObj) ToBool() bool           { return true }
func (i *IdentifierObj) Hash() uint64           { return uint64(i.Value) }
func (i *IdentifierObj) IsEqual(rt *Runtime, other Object) bool {
	if o, ok := other.(*IdentifierObj); ok {
		return o.Value == i.Value
	}
	return false
}
func (i *IdentifierObj) Clone() Object { return i }
func (i *IdentifierObj) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || i.typ == nil {
		return AttrRef{}
	}
	return i.typ.FindTypeAttribute(id)
}
func (i *IdentifierObj) SetAttribute(ID, Attribute) bool       { return false }
func (i *IdentifierObj) InitAttributes(*Runtime)               {}
func (i *IdentifierObj) CollectLocalAttributes() map[ID]Object { return nil }
func (i *IdentifierObj) Release() { i.releaseBase(i) }
