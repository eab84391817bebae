package runtime

import "sync"

// AttrFlag is the wire-format property byte for an Attribute: a single
// byte of bit flags. ATTR_NORMAL_ATTRIBUTE is exposed as AttrNormal for
// embedders.
type AttrFlag uint8

const (
	AttrNormal   AttrFlag = 0
	AttrConst    AttrFlag = 1 << 0
	AttrPrivate  AttrFlag = 1 << 1
	AttrTypeAttr AttrFlag = 1 << 2 // unset => object-attribute template
	AttrInit     AttrFlag = 1 << 3
	AttrOverride AttrFlag = 1 << 4

	// AttrAssignmentRelevant is the subset of flags consulted when an
	// assignment (not a declaration) touches the attribute.
	AttrAssignmentRelevant = AttrConst | AttrPrivate
)

// Attribute pairs a value with its property flags.
type Attribute struct {
	Value Object
	Props AttrFlag
}

func (a Attribute) has(f AttrFlag) bool   { return a.Props&f != 0 }
func (a Attribute) IsConst() bool         { return a.has(AttrConst) }
func (a Attribute) IsPrivate() bool       { return a.has(AttrPrivate) }
func (a Attribute) IsTypeAttribute() bool { return a.has(AttrTypeAttr) }
func (a Attribute) IsObjAttribute() bool  { return !a.has(AttrTypeAttr) }
func (a Attribute) IsInitializable() bool { return a.has(AttrInit) }
func (a Attribute) IsOverriding() bool    { return a.has(AttrOverride) }
func (a Attribute) IsNull() bool          { return a.Value == nil }

// AttributeContainer maps identifiers to attributes. Insertion order is
// irrelevant; the embedded mutex is the lock every AccessAttribute call
// acquires and hands back to the caller as part of AttrRef.
type AttributeContainer struct {
	mu sync.Mutex
	m  map[ID]*Attribute
}

func NewAttributeContainer() *AttributeContainer {
	return &AttributeContainer{m: make(map[ID]*Attribute)}
}

// access locks the container and, if id is present, returns a pointer to
// its slot along with the still-held lock's Unlock func. If absent, the
// lock is released immediately and a nil Attr is returned.
func (c *AttributeContainer) access(id ID) AttrRef {
	c.mu.Lock()
	if attr, ok := c.m[id]; ok {
		return AttrRef{Attr: attr, unlock: c.mu.Unlock}
	}
	c.mu.Unlock()
	return AttrRef{}
}

// Set inserts or replaces the attribute stored under id.
func (c *AttributeContainer) Set(id ID, attr Attribute) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.m[id]; ok {
		*existing = attr
		return
	}
	a := attr
	c.m[id] = &a
}

// CloneFrom deep-copies every attribute of other into c: each value is
// replaced by value.get_ref_or_copy() (a clone for call-by-value types,
// a shared reference otherwise), and properties are preserved.
func (c *AttributeContainer) CloneFrom(other *AttributeContainer) {
	other.mu.Lock()
	snapshot := make([]struct {
		id   ID
		attr Attribute
	}, 0, len(other.m))
	for id, attr := range other.m {
		snapshot = append(snapshot, struct {
			id   ID
			attr Attribute
		}{id, *attr})
	}
	other.mu.Unlock()

	for _, e := range snapshot {
		c.Set(e.id, Attribute{Value: getRefOrCopy(e.attr.Value), Props: e.attr.Props})
	}
}

// InitAttributes runs deferred initializers: for each INIT-flagged
// attribute, its current value is either instantiated (if it is a Type)
// or invoked as a zero-argument function, and the result replaces it.
func (c *AttributeContainer) InitAttributes(rt *Runtime) {
	c.mu.Lock()
	var toInit []*Attribute
	for _, attr := range c.m {
		if attr.IsInitializable() {
			toInit = append(toInit, attr)
		}
	}
	c.mu.Unlock()

	for _, attr := range toInit {
		var result Object
		if t, ok := attr.Value.(*Type); ok {
			result = rt.CreateInstance(t, nil)
		} else {
			result = rt.ExecuteFunction(attr.Value, nil, nil)
		}
		c.mu.Lock()
		attr.Value = result
		c.mu.Unlock()
	}
}

// CollectAttributes returns a snapshot copy of every attribute's value,
// used for introspection (e.g. Type.getObjAttributes()).
func (c *AttributeContainer) CollectAttributes() map[ID]Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[ID]Object, len(c.m))
	for id, attr := range c.m {
		out[id] = attr.Value
	}
	return out
}

// snapshot returns a copy of every stored Attribute (value and flags),
// used by Type.CopyObjAttributesTo so it need not hold the lock while it
// calls back into instance.SetAttribute (which may itself lock a
// different container).
func (c *AttributeContainer) snapshot() map[ID]Attribute {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[ID]Attribute, len(c.m))
	for id, attr := range c.m {
		out[id] = *attr
	}
	return out
}

// Len reports the number of stored attributes (diagnostics only).
func (c *AttributeContainer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
