package runtime

import "sync"

// pools holds the per-Runtime free-lists for the primitive boxes: Bool,
// Number, String, and FCC. Every pool is guarded by TryLock: under
// contention the object is simply discarded (left for the Go GC) rather
// than blocking, since pooling here is opportunistic, never blocking.
type pools struct {
	rt *Runtime

	boolMu   sync.Mutex
	boolFree []*BoolBox

	numMu   sync.Mutex
	numFree []*NumberBox

	strMu   sync.Mutex
	strFree []*StringBox

	fccMu   sync.Mutex
	fccFree []*FCC
}

func newPools(rt *Runtime) *pools { return &pools{rt: rt} }

func (p *pools) boolBox(v bool) *BoolBox {
	if p.boolMu.TryLock() {
		if n := len(p.boolFree); n > 0 {
			b := p.boolFree[n-1]
			p.boolFree = p.boolFree[:n-1]
			p.boolMu.Unlock()
			b.refcount = 1
			b.Value = v
			return b
		}
		p.boolMu.Unlock()
	}
	b := &BoolBox{Value: v}
	b.ObjectBase.init(p.rt.boolType)
	b.release = func(o Object) { p.releaseBool(o.(*BoolBox)) }
	return b
}

func (p *pools) releaseBool(b *BoolBox) {
	if p.boolMu.TryLock() {
		p.boolFree = append(p.boolFree, b)
		p.boolMu.Unlock()
	}
}

func (p *pools) numberBox(v float64) *NumberBox {
	if p.numMu.TryLock() {
		if n := len(p.numFree); n > 0 {
			b := p.numFree[n-1]
			p.numFree = p.numFree[:n-1]
			p.numMu.Unlock()
			b.refcount = 1
			b.Value = v
			return b
		}
		p.numMu.Unlock()
	}
	b := &NumberBox{Value: v}
	b.ObjectBase.init(p.rt.numberType)
	b.release = func(o Object) { p.releaseNumber(o.(*NumberBox)) }
	return b
}

func (p *pools) releaseNumber(b *NumberBox) {
	if p.numMu.TryLock() {
		p.numFree = append(p.numFree, b)
		p.numMu.Unlock()
	}
}

func (p *pools) stringBox(v string) *StringBox {
	if p.strMu.TryLock() {
		if n := len(p.strFree); n > 0 {
			b := p.strFree[n-1]
			p.strFree = p.strFree[:n-1]
			p.strMu.Unlock()
			b.refcount = 1
			b.Value = v
			return b
		}
		p.strMu.Unlock()
	}
	b := &StringBox{Value: v}
	b.ObjectBase.init(p.rt.stringType)
	b.release = func(o Object) { p.releaseString(o.(*StringBox)) }
	return b
}

func (p *pools) releaseString(b *StringBox) {
	if p.strMu.TryLock() {
		p.strFree = append(p.strFree, b)
		p.strMu.Unlock()
	}
}

// acquireFCC pulls a recycled frame off the pool or allocates a fresh one.
func (p *pools) acquireFCC(fn *InstructionBlock, this Object) *FCC {
	if p.fccMu.TryLock() {
		if n := len(p.fccFree); n > 0 {
			f := p.fccFree[n-1]
			p.fccFree = p.fccFree[:n-1]
			p.fccMu.Unlock()
			f.This = this
			f.Fn = fn
			if fn != nil {
				if cap(f.Locals) >= fn.NumLocals {
					f.Locals = f.Locals[:fn.NumLocals]
					for i := range f.Locals {
						f.Locals[i] = nil
					}
				} else {
					f.Locals = make([]Object, fn.NumLocals)
				}
			}
			return f
		}
		p.fccMu.Unlock()
	}
	return newFCC(fn, this)
}

// releaseFCC resets and returns a frame to the pool, opportunistically.
func (p *pools) releaseFCC(f *FCC) {
	f.reset()
	if p.fccMu.TryLock() {
		p.fccFree = append(p.fccFree, f)
		p.fccMu.Unlock()
	}
}
