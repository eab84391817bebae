package runtime

// pushActiveFCC and popActiveFCC maintain the Runtime's FCC stack: it
// lives inside the Runtime for the duration of an outermost execute
// call. Depth is checked against StackSizeLimit on push; exceeding it
// sets a pending exception instead of growing the host goroutine's stack
// without bound.
func (rt *Runtime) pushActiveFCC(f *FCC) bool {
	rt.mu.Lock()
	if len(rt.activeFCCs) >= rt.stackSizeLimit {
		rt.mu.Unlock()
		rt.stackSizeError()
		return false
	}
	rt.activeFCCs = append(rt.activeFCCs, f)
	rt.mu.Unlock()
	return true
}

func (rt *Runtime) popActiveFCC() *FCC {
	rt.mu.Lock()
	n := len(rt.activeFCCs)
	if n == 0 {
		rt.mu.Unlock()
		return nil
	}
	f := rt.activeFCCs[n-1]
	rt.activeFCCs = rt.activeFCCs[:n-1]
	rt.mu.Unlock()
	return f
}

func (rt *Runtime) currentFCC() *FCC {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if len(rt.activeFCCs) == 0 {
		return nil
	}
	return rt.activeFCCs[len(rt.activeFCCs)-1]
}

func (rt *Runtime) stackSizeError() {
	rt.SetExceptionMessage("Stack overflow: exceeded maximum call depth")
}

// GetStackSize reports the current FCC nesting depth.
func (rt *Runtime) GetStackSize() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.activeFCCs)
}

// GetCallingObject returns the "this" of the currently executing frame,
// or nil at top level. Used by native functions that need to know their
// caller's identity (e.g. for a private-constructor subtype check).
func (rt *Runtime) GetCallingObject() Object {
	f := rt.currentFCC()
	if f == nil {
		return nil
	}
	return f.This
}

// GetStackInfo renders a lightweight "file:line" trace of the active FCC
// stack, outermost first, for attaching to thrown exceptions.
func (rt *Runtime) GetStackInfo() []string {
	rt.mu.Lock()
	frames := append([]*FCC(nil), rt.activeFCCs...)
	rt.mu.Unlock()

	out := make([]string, 0, len(frames))
	for _, f := range frames {
		if f.Fn == nil {
			out = append(out, "<native>")
			continue
		}
		out = append(out, f.Fn.FormatError(f.Cursor, f.Fn.Name))
	}
	return out
}
