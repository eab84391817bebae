package runtime

// runLoop is the interpreter's dispatch loop. outer has
// already been pushed onto rt's active FCC stack by the caller
// (ExecuteFunction or YieldIterator.Resume); runLoop drives instructions
// until outer itself finishes — by then or exception/exit or a normal
// end-of-function return — and yields outer's result. Frames that outer
// calls into (I_CALL, I_CREATE_INSTANCE, I_INIT_CALLER) are pushed and
// run within this same loop, never via a nested Go call, so a thousand
// script-level calls cost zero additional goroutine stack.
func (rt *Runtime) runLoop(outer *FCC) Object {
	for {
		cur := rt.currentFCC()
		if cur == nil {
			return nil
		}

		if !rt.CheckNormalState() {
			if done, result := rt.handlePendingState(cur, outer); done {
				return result
			}
			continue
		}

		if cur.Cursor >= len(cur.Fn.Instructions) {
			if done, result := rt.endOfFunction(cur, outer); done {
				return result
			}
			continue
		}

		instr := cur.Fn.Instructions[cur.Cursor]
		cur.Cursor++
		rt.dispatchGuarded(cur, instr)
	}
}

// dispatchGuarded recovers a panic(scriptError{...}) raised deep inside
// attribute lookup (Type.FindTypeAttribute, Array bounds checks, ...) the
// same way the original runtime's try/catch around each instruction did,
// turning it into a pending exception rather than crashing the goroutine.
func (rt *Runtime) dispatchGuarded(cur *FCC, instr Instruction) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(scriptError); ok {
				rt.SetExceptionMessage(se.message)
				return
			}
			panic(r)
		}
	}()
	rt.dispatch(cur, instr)
}

// handlePendingState implements the loop's exception/exit check. It
// returns (true, result) when runLoop should return to its caller.
func (rt *Runtime) handlePendingState(cur, outer *FCC) (bool, Object) {
	if rt.IsExiting() {
		cur.StackClear()
		rt.popActiveFCC()
		if cur == outer {
			rt.pools.releaseFCC(cur)
			return true, nil
		}
		rt.pools.releaseFCC(cur)
		return false, nil
	}

	// exception pending
	cur.StackClear()
	if cur.ExceptionHandlerPos != InvalidAddr {
		exc := rt.FetchAndClearException()
		cur.SetLocal(SlotResult, exc)
		cur.Cursor = cur.ExceptionHandlerPos
		cur.ExceptionHandlerPos = InvalidAddr
		return false, nil
	}
	rt.popActiveFCC()
	done := cur == outer
	rt.pools.releaseFCC(cur)
	return done, nil
}

// endOfFunction implements the cursor-past-end path: constructor result
// extraction, stack-empty assertion, frame teardown, and wiring the
// result into the caller (or returning it, at outer).
func (rt *Runtime) endOfFunction(cur, outer *FCC) (bool, Object) {
	var result Object
	if cur.HasFlag(FlagConstructorCall) {
		result = cur.GetLocal(SlotThis)
		if explicit := cur.GetLocal(SlotResult); explicit != nil {
			rt.Warnf("constructor %s set an explicit result; ignoring in favour of `this`", cur.Fn.Name)
		}
	} else if cur.StackLen() > 0 {
		result = cur.Pop().ToObject(rt, cur.Fn)
	}

	if cur.StackLen() != 0 {
		rt.Warnf("internal error: %d values left on the stack at end of %s", cur.StackLen(), cur.Fn.Name)
		cur.StackClear()
	}

	rt.popActiveFCC()
	isOuter := cur == outer
	providesCallerAsResult := cur.HasFlag(FlagProvidesCallerAsResult)
	rt.pools.releaseFCC(cur)

	if isOuter {
		return true, result
	}

	newTop := rt.currentFCC()
	if newTop == nil {
		return true, result
	}
	if providesCallerAsResult {
		newTop.This = result
		if result != nil {
			result.InitAttributes(rt)
		}
	} else {
		newTop.Push(ObjectValue(getRefOrCopy(result)))
	}
	return false, nil
}

// dispatch executes exactly one already-fetched instruction against cur.
func (rt *Runtime) dispatch(cur *FCC, instr Instruction) {
	switch instr.Op {
	case I_PUSH_VOID:
		cur.Push(VoidValue())
	case I_PUSH_UNDEFINED:
		cur.Push(UndefinedValue())
	case I_PUSH_BOOL:
		cur.Push(BoolValue(instr.Bool))
	case I_PUSH_NUMBER:
		cur.Push(NumberValue(instr.Num))
	case I_PUSH_UINT:
		cur.Push(Uint32Value(instr.U32))
	case I_PUSH_ID:
		cur.Push(IdentifierValue(instr.Id))
	case I_PUSH_STRING:
		cur.Push(LocalStringIdxValue(instr.U32))
	case I_PUSH_FUNCTION:
		cur.Push(ObjectValue(rt.resolveNestedFunction(cur, instr.U32)))

	case I_POP:
		cur.Pop().Release()
	case I_DUP:
		v := cur.Peek()
		if v.Kind == KindObject && v.obj != nil {
			v.obj.Retain()
		}
		cur.Push(v)
	case I_NOT:
		cur.Push(BoolValue(!cur.PopBool()))

	case I_JMP:
		cur.Cursor = int(instr.Addr)
	case I_JMP_ON_TRUE:
		if cur.PopBool() {
			cur.Cursor = int(instr.Addr)
		}
	case I_JMP_ON_FALSE:
		if !cur.PopBool() {
			cur.Cursor = int(instr.Addr)
		}
	case I_JMP_IF_SET:
		idx := cur.PopU32()
		if cur.GetLocal(idx) != nil {
			cur.Cursor = int(instr.Addr)
		}
	case I_SET_MARKER:
		// compiler artefact, no-op at runtime

	case I_GET_LOCAL_VARIABLE:
		v := cur.GetLocal(instr.U32)
		if v == nil {
			rt.Warnf("local variable %q read before assignment", cur.LocalName(instr.U32))
			cur.Push(VoidValue())
		} else {
			cur.Push(ObjectValue(v))
		}
	case I_ASSIGN_LOCAL:
		v := cur.PopObjectValue(rt)
		cur.SetLocal(instr.U32, v)
	case I_RESET_LOCAL_VARIABLE:
		cur.ResetLocal(instr.U32)

	case I_GET_VARIABLE:
		rt.opGetVariable(cur, instr.Id)
	case I_FIND_VARIABLE:
		rt.opFindVariable(cur, instr.Id)
	case I_ASSIGN_VARIABLE:
		rt.opAssignVariable(cur, instr.Id)

	case I_GET_ATTRIBUTE:
		rt.opGetAttribute(cur, instr.Id)
	case I_SET_ATTRIBUTE:
		rt.opSetAttribute(cur, instr.Id)
	case I_ASSIGN_ATTRIBUTE:
		rt.opAssignAttribute(cur, instr.Id)

	case I_CALL:
		rt.opCall(cur, instr.U32)
	case I_CREATE_INSTANCE:
		rt.opCreateInstance(cur, instr.U32)
	case I_INIT_CALLER:
		rt.opInitCaller(cur, instr.U32)
	case I_SET_EXCEPTION_HANDLER:
		cur.ExceptionHandlerPos = int(instr.Addr)
	case I_SYS_CALL:
		rt.opSysCall(cur, instr.U32, instr.U32b)
	case I_YIELD:
		rt.opYield(cur)

	default:
		rt.Warnf("unknown opcode %v", instr.Op)
	}
}

func (rt *Runtime) resolveNestedFunction(cur *FCC, idx uint32) Object {
	if cur.Fn == nil || int(idx) >= len(cur.Fn.NestedFunctions) {
		return nil
	}
	return NewUserFunction(rt.userFunctionType, cur.Fn.NestedFunctions[idx])
}

// opGetVariable / I_GET_ATTRIBUTE share the PRIVATE-check-then-warn shape.
func (rt *Runtime) opGetVariable(cur *FCC, id ID) {
	ref := rt.lookupVariable(cur, id)
	defer ref.Unlock()
	rt.pushAttrRead(cur, cur.This, ref)
}

func (rt *Runtime) opGetAttribute(cur *FCC, id ID) {
	obj := cur.PopObject(rt)
	ref := obj.AccessAttribute(id, false)
	defer ref.Unlock()
	rt.pushAttrRead(cur, obj, ref)
}

func (rt *Runtime) pushAttrRead(cur *FCC, owner Object, ref AttrRef) {
	if ref.Attr == nil {
		rt.Warnf("attribute not found")
		cur.Push(VoidValue())
		return
	}
	if ref.Attr.IsPrivate() && rt.GetCallingObject() != owner {
		rt.SetExceptionMessage("cannot access private attribute from outside its object")
		cur.Push(VoidValue())
		return
	}
	cur.Push(ObjectValue(ref.Attr.Value))
}

// lookupVariable tries cur.This.id first, falling back to globals
// (local-only), matching I_GET_VARIABLE / I_FIND_VARIABLE's resolution
// order.
func (rt *Runtime) lookupVariable(cur *FCC, id ID) AttrRef {
	if cur.This != nil {
		if ref := cur.This.AccessAttribute(id, false); ref.Attr != nil {
			return ref
		}
	}
	return rt.globals.AccessAttribute(id, true)
}

// opFindVariable pushes (owner, value): owner is cur.This if that's where
// the attribute was found, else the globals object.
func (rt *Runtime) opFindVariable(cur *FCC, id ID) {
	if cur.This != nil {
		if ref := cur.This.AccessAttribute(id, false); ref.Attr != nil {
			v := ref.Attr.Value
			ref.Unlock()
			cur.Push(ObjectValue(cur.This))
			cur.Push(ObjectValue(v))
			return
		}
	}
	ref := rt.globals.AccessAttribute(id, true)
	defer ref.Unlock()
	cur.Push(ObjectValue(rt.globals))
	if ref.Attr == nil {
		rt.Warnf("variable %q not found", id.String())
		cur.Push(VoidValue())
		return
	}
	cur.Push(ObjectValue(ref.Attr.Value))
}

func (rt *Runtime) opAssignVariable(cur *FCC, id ID) {
	v := cur.PopObjectValue(rt)
	if cur.This != nil {
		if ref := cur.This.AccessAttribute(id, false); ref.Attr != nil {
			if ref.Attr.IsConst() {
				ref.Unlock()
				rt.SetExceptionMessage("cannot assign to const variable")
				return
			}
			ref.Attr.Value = v
			ref.Unlock()
			return
		}
	}
	ref := rt.globals.AccessAttribute(id, true)
	if ref.Attr == nil {
		ref.Unlock()
		rt.globals.SetAttribute(id, Attribute{Value: v, Props: AttrNormal})
		return
	}
	if ref.Attr.IsConst() {
		ref.Unlock()
		rt.SetExceptionMessage("cannot assign to const variable")
		return
	}
	ref.Attr.Value = v
	ref.Unlock()
}

func (rt *Runtime) opSetAttribute(cur *FCC, id ID) {
	v := cur.PopObjectValue(rt)
	obj := cur.PopObject(rt)
	obj.SetAttribute(id, Attribute{Value: v, Props: AttrNormal})
}

func (rt *Runtime) opAssignAttribute(cur *FCC, id ID) {
	obj := cur.PopObject(rt)
	v := cur.PopObjectValue(rt)
	ref := obj.AccessAttribute(id, false)
	if ref.Attr == nil {
		ref.Unlock()
		rt.Warnf("assignment to unknown attribute %q", id.String())
		return
	}
	if ref.Attr.IsConst() {
		ref.Unlock()
		rt.SetExceptionMessage("cannot assign to const attribute " + id.String())
		return
	}
	if ref.Attr.IsPrivate() && rt.GetCallingObject() != obj {
		ref.Unlock()
		rt.SetExceptionMessage("cannot assign to private attribute " + id.String() + " from outside its object")
		return
	}
	ref.Attr.Value = v
	ref.Unlock()
}

func (rt *Runtime) opCall(cur *FCC, nArgs uint32) {
	n := int(nArgs)
	if nArgs == DynamicParameterCount {
		n = int(cur.PopU32())
	}
	args := make([]Object, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = cur.PopObjectValue(rt)
	}
	fn := cur.PopObject(rt)
	this := cur.PopObject(rt)

	result := startFunctionExecution(rt, this, fn, args)
	if result.IsFunctionCallContext() {
		newFrame := result.FCC()
		newFrame.Caller = cur
		rt.pushActiveFCC(newFrame)
		return
	}
	cur.Push(result)
}

func (rt *Runtime) opCreateInstance(cur *FCC, nArgs uint32) {
	n := int(nArgs)
	if nArgs == DynamicParameterCount {
		n = int(cur.PopU32())
	}
	args := make([]Object, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = cur.PopObjectValue(rt)
	}
	typObj := cur.PopObject(rt)
	typ, ok := typObj.(*Type)
	if !ok {
		rt.SetExceptionMessage("CREATE_INSTANCE target is not a Type")
		return
	}

	result := startInstanceCreation(rt, typ, args)
	if result.IsFunctionCallContext() {
		newFrame := result.FCC()
		newFrame.Caller = cur
		rt.pushActiveFCC(newFrame)
		return
	}
	cur.Push(result)
}

func (rt *Runtime) opInitCaller(cur *FCC, nSuperArgs uint32) {
	if !cur.HasFlag(FlagConstructorCall) {
		if nSuperArgs > 0 {
			rt.Warnf("INIT_CALLER used outside a constructor frame")
		}
		return
	}

	args := make([]Object, nSuperArgs)
	for i := int(nSuperArgs) - 1; i >= 0; i-- {
		args[i] = cur.PopObjectValue(rt)
	}
	if len(cur.PendingSuperConstructors) == 0 {
		return
	}
	next := cur.PendingSuperConstructors[0]
	remaining := cur.PendingSuperConstructors[1:]

	result := startFunctionExecution(rt, cur.This, next, args)
	if result.IsFunctionCallContext() {
		newFrame := result.FCC()
		newFrame.Caller = cur
		newFrame.PendingSuperConstructors = remaining
		newFrame.SetFlag(FlagConstructorCall, true)
		newFrame.SetFlag(FlagProvidesCallerAsResult, true)
		rt.pushActiveFCC(newFrame)
		return
	}
	obj := result.ToObject(rt, cur.Fn)
	if obj != nil {
		obj.InitAttributes(rt)
		cur.This = obj
	}
	cur.PendingSuperConstructors = remaining
}

func (rt *Runtime) opSysCall(cur *FCC, fnID, nArgs uint32) {
	n := int(nArgs)
	if nArgs == DynamicParameterCount {
		n = int(cur.PopU32())
	}
	args := make([]Object, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = cur.PopObjectValue(rt)
	}
	handler, ok := rt.sysCalls[fnID]
	if !ok {
		rt.SetExceptionMessage("invalid system call id")
		return
	}
	cur.Push(handler(rt, cur, args))
}

func (rt *Runtime) opYield(cur *FCC) {
	v := cur.PopObject(rt)
	rt.popActiveFCC()
	iter := newYieldIterator(rt, cur, v)
	newTop := rt.currentFCC()
	if newTop == nil {
		rt.SetExitState(iter)
		return
	}
	newTop.Push(ObjectValue(iter))
}
