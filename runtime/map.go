package runtime

// MapObject is the runtime's associative-array type, backing
// SYS_CALL_CREATE_MAP. Two keys match when both their Hash() and their
// ToString() are equal (IsEqual is not consulted), not by Go map identity,
// so a linear entry list is used rather than a native Go map keyed on an
// unhashable Object.
type MapObject struct {
	ObjectBase
	keys   []Object
	values []Object
}

func newMapObject(rt *Runtime) *MapObject {
	m := &MapObject{}
	m.ObjectBase.init(rt.mapType)
	return m
}

func (m *MapObject) set(key, value Object) {
	for i, k := range m.keys {
		if k.Hash() == key.Hash() && k.ToString() == key.ToString() {
			m.values[i] = value
			return
		}
	}
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

func (m *MapObject) get(key Object) (Object, bool) {
	for i, k := range m.keys {
		if k.Hash() == key.Hash() && k.ToString() == key.ToString() {
			return m.values[i], true
		}
	}
	return nil, false
}

// Set and Get expose the map's linear-scan key/value operations to
// embedders and native modules that build a MapObject outside of
// SYS_CALL_CREATE_MAP.
func (m *MapObject) Set(key, value Object)      { m.set(key, value) }
func (m *MapObject) Get(key Object) (Object, bool) { return m.get(key) }
func (m *MapObject) Len() int                   { return len(m.keys) }

func (m *MapObject) InternalTypeID() TypeID { return TypeIDGeneric }
func (m *MapObject) ToString() string       { return "Map" }
func (m *MapObject) ToDouble() float64      { return float64(len(m.keys)) }
func (m *MapObject) ToBool() bool           { return len(m.keys) > 0 }
func (m *MapObject) Hash() uint64           { return uint64(len(m.keys)) }
func (m *MapObject) IsEqual(rt *Runtime, other Object) bool { return m == other }
func (m *MapObject) Clone() Object {
	nm := &MapObject{keys: append([]Object(nil), m.keys...), values: append([]Object(nil), m.values...)}
	nm.ObjectBase.init(m.typ)
	return nm
}
func (m *MapObject) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || m.typ == nil {
		return AttrRef{}
	}
	return m.typ.FindTypeAttribute(id)
}
func (m *MapObject) SetAttribute(ID, Attribute) bool       { return false }
func (m *MapObject) InitAttributes(*Runtime)               {}
func (m *MapObject) CollectLocalAttributes() map[ID]Object { return nil }
func (m *MapObject) Release()                              { m.releaseBase(m) }

// NewIterator implements Iterable for a Map: a sequential walk over its
// key/value pairs as two-element Arrays.
func (m *MapObject) NewIterator(rt *Runtime) Object {
	pairs := make([]Object, len(m.keys))
	for i := range m.keys {
		pairs[i] = newArray(rt, []Object{m.keys[i], m.values[i]})
	}
	return newArrayIterator(rt, pairs)
}

// NewIterator implements Iterable for Array: a plain index cursor.
func (a *Array) NewIterator(rt *Runtime) Object {
	return newArrayIterator(rt, a.Elements)
}

// registerArrayIteratorType mirrors registerArrayType's pattern, giving
// script code the next/value/end protocol every ArrayIterator instance
// needs to drive a loop over SYS_CALL_GET_ITERATOR's result.
func registerArrayIteratorType(rt *Runtime) *Type {
	t := NewType(nil)
	t.Name = "ArrayIterator"

	def := func(name string, minArgs, maxArgs int, fn NativeFunc) {
		t.SetAttribute(StringToIdentifier(name), Attribute{
			Value: NewNativeFunction(rt.nativeFunctionType, name, minArgs, maxArgs, fn),
			Props: AttrTypeAttr | AttrConst,
		})
	}

	def("next", 0, 0, func(rt *Runtime, this Object, args []Object) RtValue {
		this.(*ArrayIterator).Next()
		return VoidValue()
	})
	def("value", 0, 0, func(rt *Runtime, this Object, args []Object) RtValue {
		v := this.(*ArrayIterator).Value()
		if v == nil {
			return VoidValue()
		}
		return ObjectValue(v)
	})
	def("end", 0, 0, func(rt *Runtime, this Object, args []Object) RtValue {
		return BoolValue(this.(*ArrayIterator).End())
	})

	return t
}

// ArrayIterator is the simple sequential-cursor iterator SYS_CALL_GET_ITERATOR
// returns for both Array and Map. It implements the minimal `next`/`value`/
// `end` protocol scripts call through ordinary attribute lookup.
type ArrayIterator struct {
	ObjectBase
	elements []Object
	pos      int
}

func newArrayIterator(rt *Runtime, elements []Object) *ArrayIterator {
	it := &ArrayIterator{elements: elements}
	it.ObjectBase.init(rt.arrayIteratorType)
	return it
}

func (it *ArrayIterator) InternalTypeID() TypeID { return TypeIDGeneric }
func (it *ArrayIterator) ToString() string       { return "ArrayIterator" }
func (it *ArrayIterator) ToDouble() float64      { return 0 }
func (it *ArrayIterator) ToBool() bool           { return !it.End() }
func (it *ArrayIterator) Hash() uint64           { return uint64(it.pos) }
func (it *ArrayIterator) IsEqual(rt *Runtime, other Object) bool { return it == other }
func (it *ArrayIterator) Clone() Object                          { return it }
func (it *ArrayIterator) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || it.typ == nil {
		return AttrRef{}
	}
	return it.typ.FindTypeAttribute(id)
}
func (it *ArrayIterator) SetAttribute(ID, Attribute) bool       { return false }
func (it *ArrayIterator) InitAttributes(*Runtime)               {}
func (it *ArrayIterator) CollectLocalAttributes() map[ID]Object { return nil }
func (it *ArrayIterator) Release()                              { it.releaseBase(it) }

func (it *ArrayIterator) End() bool    { return it.pos >= len(it.elements) }
func (it *ArrayIterator) Value() Object {
	if it.End() {
		return nil
	}
	return it.elements[it.pos]
}
func (it *ArrayIterator) Next() { it.pos++ }
