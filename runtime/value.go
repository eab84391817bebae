package runtime

// ValueKind discriminates the variants an RtValue can hold while it lives
// on the evaluation stack, before it is forced into a full Object.
type ValueKind uint8

const (
	KindUndefined ValueKind = iota
	KindVoid
	KindBool
	KindUint32
	KindNumber
	KindIdentifier
	KindLocalStringIdx
	KindObject
	KindFCC
)

// RtValue is the value that actually lives on an FCC's evaluation stack.
// Most variants are unboxed (bool/uint32/number/identifier/string index)
// so pushing a literal never allocates; OBJECT_PTR and FCC are the two
// variants that carry a pointer.
type RtValue struct {
	Kind ValueKind
	b    bool
	u32  uint32
	f64  float64
	id   ID
	obj  Object
	fcc  *FCC
}

func VoidValue() RtValue           { return RtValue{Kind: KindVoid} }
func UndefinedValue() RtValue      { return RtValue{Kind: KindUndefined} }
func BoolValue(b bool) RtValue     { return RtValue{Kind: KindBool, b: b} }
func Uint32Value(u uint32) RtValue { return RtValue{Kind: KindUint32, u32: u} }
func NumberValue(f float64) RtValue {
	return RtValue{Kind: KindNumber, f64: f}
}
func IdentifierValue(id ID) RtValue { return RtValue{Kind: KindIdentifier, id: id} }
func LocalStringIdxValue(i uint32) RtValue {
	return RtValue{Kind: KindLocalStringIdx, u32: i}
}

// ObjectValue stores a reference-counted pointer on the stack, taking a
// reference on obj. Callers must not also hold an un-owned alias they
// intend to release separately.
func ObjectValue(obj Object) RtValue {
	if obj != nil {
		obj.Retain()
	}
	return RtValue{Kind: KindObject, obj: obj}
}

// fccValue wraps a freshly-pushed user-function frame; the interpreter
// loop uses this marker to know "a new frame was pushed, go interpret it"
// rather than "here is a final result".
func fccValue(f *FCC) RtValue {
	return RtValue{Kind: KindFCC, fcc: f}
}

func (v RtValue) IsFunctionCallContext() bool { return v.Kind == KindFCC }
func (v RtValue) FCC() *FCC                   { return v.fcc }

func (v RtValue) Bool() bool      { return v.b }
func (v RtValue) Uint32() uint32  { return v.u32 }
func (v RtValue) Number() float64 { return v.f64 }
func (v RtValue) Identifier() ID  { return v.id }

// Release drops the reference this RtValue may own. Safe to call on any
// variant; only KindObject actually decrements a refcount.
func (v RtValue) Release() {
	if v.Kind == KindObject && v.obj != nil {
		v.obj.Release()
	}
}

// ToObject converts any RtValue into a full Object, applying the boxing
// rules: VOID becomes the runtime's singleton Void, BOOL/UINT32/
// NUMBER become pooled boxes, IDENTIFIER becomes an Identifier object,
// LOCAL_STRING_IDX is resolved against the current function's constant
// pool, OBJECT_PTR is cloned when its type is call-by-value, and
// UNDEFINED/FCC convert to nil.
func (v RtValue) ToObject(rt *Runtime, fn *InstructionBlock) Object {
	switch v.Kind {
	case KindVoid:
		return rt.VoidValue()
	case KindBool:
		return rt.pools.boolBox(v.b)
	case KindUint32:
		return rt.pools.numberBox(float64(v.u32))
	case KindNumber:
		return rt.pools.numberBox(v.f64)
	case KindIdentifier:
		return rt.IdentifierObject(v.id)
	case KindLocalStringIdx:
		if fn == nil || int(v.u32) >= len(fn.StringConstants) {
			return nil
		}
		return rt.pools.stringBox(fn.StringConstants[v.u32])
	case KindObject:
		if v.obj == nil {
			return nil
		}
		if t := v.obj.Type(); t != nil && t.HasFlag(FlagCallByValue) {
			return v.obj.Clone()
		}
		return v.obj
	default:
		return nil
	}
}

// getRefOrCopy implements the "value.get_ref_or_copy()" operation used
// throughout attribute cloning and parameter passing: call-by-value types
// are cloned, everything else is shared by reference (with an incremented
// refcount).
func getRefOrCopy(obj Object) Object {
	if obj == nil {
		return nil
	}
	if t := obj.Type(); t != nil && t.HasFlag(FlagCallByValue) {
		return obj.Clone()
	}
	obj.Retain()
	return obj
}
