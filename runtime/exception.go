package runtime

// SetException installs v as the pending exception, clearing normalState.
// Called by the interpreter for script-level errors and by native
// functions (via panic(scriptError{...}) or direct use) that want to
// raise a catchable error.
func (rt *Runtime) SetException(v Object) {
	rt.mu.Lock()
	rt.exceptionValue = v
	rt.normalState = false
	rt.mu.Unlock()
}

// SetExceptionMessage boxes msg as a String and installs it as the
// pending exception; used for internal errors that have no richer
// Exception object to attach (arity errors, stack overflow, ...).
func (rt *Runtime) SetExceptionMessage(msg string) {
	rt.SetException(rt.pools.stringBox(msg))
}

// IsExceptionPending / IsExiting read the two pending-state flags without
// clearing them.
func (rt *Runtime) IsExceptionPending() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.exceptionValue != nil
}

func (rt *Runtime) IsExiting() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.exitPending
}

// CheckNormalState reports whether neither an exception nor an exit is
// pending.
func (rt *Runtime) CheckNormalState() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.normalState
}

// FetchAndClearException atomically takes and clears the pending
// exception, restoring normalState when nothing else (an exit) is
// pending.
func (rt *Runtime) FetchAndClearException() Object {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	v := rt.exceptionValue
	rt.exceptionValue = nil
	rt.normalState = !rt.exitPending
	return v
}

// SetExitState installs v as the pending exit result: unlike an
// exception, it is never caught by I_SET_EXCEPTION_HANDLER.
func (rt *Runtime) SetExitState(v Object) {
	rt.mu.Lock()
	rt.exitValue = v
	rt.exitPending = true
	rt.normalState = false
	rt.mu.Unlock()
}

func (rt *Runtime) FetchAndClearExitResult() Object {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	v := rt.exitValue
	rt.exitValue = nil
	rt.exitPending = false
	rt.normalState = rt.exceptionValue == nil
	return v
}
