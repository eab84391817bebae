package runtime

// YieldIterator is what I_YIELD turns a suspended FCC into: the frame is
// lifted out of the active stack (not copied, so its locals and stack
// survive the suspension) and parked here along with the value it
// yielded.
// Resuming calls Resume, which re-pushes Frame as active and lets the
// interpreter loop continue from just past the I_YIELD instruction.
type YieldIterator struct {
	ObjectBase
	Frame        *FCC
	CurrentValue Object
	done         bool
}

func newYieldIterator(rt *Runtime, frame *FCC, value Object) *YieldIterator {
	y := &YieldIterator{Frame: frame, CurrentValue: value}
	y.ObjectBase.init(rt.yieldIteratorType)
	return y
}

func (y *YieldIterator) InternalTypeID() TypeID { return TypeIDGeneric }
func (y *YieldIterator) ToString() string       { return "YieldIterator" }
func (y *YieldIterator) ToDouble() float64      { return 0 }
func (y *YieldIterator) ToBool() bool           { return !y.done }
func (y *YieldIterator) Hash() uint64           { return 0 }
func (y *YieldIterator) IsEqual(rt *Runtime, other Object) bool { return y == other }
func (y *YieldIterator) Clone() Object                          { return y }
func (y *YieldIterator) AccessAttribute(id ID, localOnly bool) AttrRef {
	if localOnly || y.typ == nil {
		return AttrRef{}
	}
	return y.typ.FindTypeAttribute(id)
}
func (y *YieldIterator) SetAttribute(ID, Attribute) bool       { return false }
func (y *YieldIterator) InitAttributes(*Runtime)               {}
func (y *YieldIterator) CollectLocalAttributes() map[ID]Object { return nil }
func (y *YieldIterator) Release()                              { y.releaseBase(y) }

func (y *YieldIterator) End() bool     { return y.done }
func (y *YieldIterator) Value() Object { return y.CurrentValue }

// Resume re-enters the parked frame by pushing it back onto rt's active
// FCC stack and running the interpreter loop on it. Resume clears Frame
// before running it (a later I_YIELD parks the frame in a new
// YieldIterator), so a nil Frame (this iterator was already resumed)
// marks the iterator done and returns nil.
func (y *YieldIterator) Resume(rt *Runtime) Object {
	if y.Frame == nil {
		y.done = true
		return nil
	}
	f := y.Frame
	y.Frame = nil
	if !rt.pushActiveFCC(f) {
		return nil
	}
	result := rt.runLoop(f)
	return result
}
