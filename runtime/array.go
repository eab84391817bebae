package runtime

// Array is the runtime's list type. It is technically a stdlib object
// rather than part of the execution core proper, but the core
// constructs it directly for SYS_CALL_CREATE_ARRAY and for collecting a
// function's spread/multi parameter, so it lives beside the other pooled
// primitives rather than in a separate package.
type Array struct {
	ObjectBase
	Elements []Object
}

func newArray(rt *Runtime, elements []Object) *Array {
	a := &Array{Elements: elements}
	a.ObjectBase.init(rt.arrayType)
	return a
}

func (a *Array) InternalTypeID() TypeID { return TypeIDArray }
func (a *Array) ToString() string       { return "Array" }
func (a *Array) ToDouble() float64      { return float64(len(a.Elements)) }
func (a *Array) ToBool() bool           { return len(a.Elements) > 0 }
func (a *Array) Hash() uint64 {
	var h uint64 = 14695981039346656037
	for _, e := range a.Elements {
		h ^= e.Hash()
		h *= 1099511628211
	}
	return h
}
func (a *Array) IsEqual(rt *Runtime, other Object) bool {
	o, ok := other.(*Array)
	if !ok || len(o.Elements) != len(a.Elements) {
		return false
	}
	for i, e := range a.Elements {
		if !e.IsEqual(rt, o.Elements[i]) {
			return false
		}
	}
	return true
}

// Clone deep-copies the element slice (get_ref_or_copy per element) but
// shares the elements themselves unless they are individually
// CALL_BY_VALUE; Array itself is not CALL_BY_VALUE, so this path is only
// reached via an explicit clone() call, not implicit assignment.
func (a *Array) Clone() Object {
	elems := make([]Object, len(a.Elements))
	for i, e := range a.Elements {
		elems[i] = getRefOrCopy(e)
	}
	na := &Array{Elements: elems}
	na.ObjectBase.init(a.typ)
	return na
}

func (a *Array) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || a.typ == nil {
		return AttrRef{}
	}
	return a.typ.FindTypeAttribute(id)
}
func (a *Array) SetAttribute(ID, Attribute) bool       { return false }
func (a *Array) InitAttributes(*Runtime)               {}
func (a *Array) CollectLocalAttributes() map[ID]Object { return nil }
func (a *Array) Release()                              { a.releaseBase(a) }

// registerArrayType builds Array's Type and populates it with the
// handful of type-attributes (methods) every Array instance inherits —
// pushBack/popBack/count/get/set — expressed as ordinary type-attributes
// resolved through the normal attribute-lookup path instead of a special
// "is this an array method" fast path.
func registerArrayType(rt *Runtime) *Type {
	t := NewType(nil)
	t.Name = "Array"

	def := func(name string, minArgs, maxArgs int, fn NativeFunc) {
		t.SetAttribute(StringToIdentifier(name), Attribute{
			Value: NewNativeFunction(rt.nativeFunctionType, name, minArgs, maxArgs, fn),
			Props: AttrTypeAttr | AttrConst,
		})
	}

	def("pushBack", 1, 1, func(rt *Runtime, this Object, args []Object) RtValue {
		arr := this.(*Array)
		arr.Elements = append(arr.Elements, getRefOrCopy(args[0]))
		return ObjectValue(arr)
	})
	def("popBack", 0, 0, func(rt *Runtime, this Object, args []Object) RtValue {
		arr := this.(*Array)
		n := len(arr.Elements)
		if n == 0 {
			return VoidValue()
		}
		v := arr.Elements[n-1]
		arr.Elements = arr.Elements[:n-1]
		return ObjectValue(v)
	})
	def("count", 0, 0, func(rt *Runtime, this Object, args []Object) RtValue {
		return NumberValue(float64(len(this.(*Array).Elements)))
	})
	def("get", 1, 1, func(rt *Runtime, this Object, args []Object) RtValue {
		arr := this.(*Array)
		idx := int(args[0].ToDouble())
		if idx < 0 || idx >= len(arr.Elements) {
			return VoidValue()
		}
		return ObjectValue(arr.Elements[idx])
	})
	def("set", 2, 2, func(rt *Runtime, this Object, args []Object) RtValue {
		arr := this.(*Array)
		idx := int(args[0].ToDouble())
		if idx < 0 || idx >= len(arr.Elements) {
			panic(scriptError{"Array index out of bounds"})
		}
		arr.Elements[idx] = getRefOrCopy(args[1])
		return ObjectValue(arr)
	})

	return t
}
