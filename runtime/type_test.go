package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escript-core/escript/runtime"
)

func TestTypeAttributeInheritanceAndShadowing(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	greeting := runtime.StringToIdentifier("greeting")

	base := runtime.NewType(nil)
	base.Name = "Base"
	base.SetAttribute(greeting, runtime.Attribute{
		Value: rt.NewString("base"), Props: runtime.AttrTypeAttr,
	})

	derived := runtime.NewType(base)
	derived.Name = "Derived"

	ref := derived.AccessAttribute(greeting, false)
	require.NotNil(t, ref.Attr)
	assert.Equal(t, "base", ref.Attr.Value.ToString())
	ref.Unlock()

	assert.True(t, base.IsBaseOf(derived))
	assert.True(t, derived.HasBase(base))

	derived.SetAttribute(greeting, runtime.Attribute{
		Value: rt.NewString("derived"), Props: runtime.AttrTypeAttr,
	})

	shadowed := derived.AccessAttribute(greeting, false)
	require.NotNil(t, shadowed.Attr)
	assert.Equal(t, "derived", shadowed.Attr.Value.ToString())
	shadowed.Unlock()

	// the base's own attribute is unaffected by the derived type's shadow
	baseRef := base.AccessAttribute(greeting, false)
	require.NotNil(t, baseRef.Attr)
	assert.Equal(t, "base", baseRef.Attr.Value.ToString())
	baseRef.Unlock()
}

func TestFindTypeAttributeRejectsObjectAttributeTemplate(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	count := runtime.StringToIdentifier("count")
	typ := runtime.NewType(nil)
	typ.Name = "Counter"
	typ.SetAttribute(count, runtime.Attribute{
		Value: rt.NewNumber(0), Props: runtime.AttrNormal, // object attribute: no AttrTypeAttr
	})

	assert.Panics(t, func() { typ.FindTypeAttribute(count) })
}

// TestObjectAttributeTemplatesAreClonedPerInstance exercises
// Type.CopyObjAttributesTo: two instances of the same type must not share
// the same object-attribute value, since Number is CALL_BY_VALUE.
func TestObjectAttributeTemplatesAreClonedPerInstance(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	count := runtime.StringToIdentifier("count")
	typ := runtime.NewType(nil)
	typ.Name = "Counter"
	typ.SetAttribute(count, runtime.Attribute{
		Value: rt.NewNumber(0), Props: runtime.AttrNormal,
	})

	inst1 := runtime.NewExtObject(typ)
	inst2 := runtime.NewExtObject(typ)

	ref1 := inst1.AccessAttribute(count, true)
	require.NotNil(t, ref1.Attr)
	ref1.Attr.Value = rt.NewNumber(5)
	ref1.Unlock()

	ref2 := inst2.AccessAttribute(count, true)
	require.NotNil(t, ref2.Attr)
	assert.Equal(t, float64(0), ref2.Attr.Value.ToDouble(), "instances must not share a CALL_BY_VALUE object-attribute template")
	ref2.Unlock()
}

func TestExtObjectCloneCopiesAttributesIndependently(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	name := runtime.StringToIdentifier("name")
	original := runtime.NewExtObject(nil)
	original.SetAttribute(name, runtime.Attribute{Value: rt.NewString("alice"), Props: runtime.AttrNormal})

	clone := original.Clone().(*runtime.ExtObject)

	cloneRef := clone.AccessAttribute(name, true)
	require.NotNil(t, cloneRef.Attr)
	cloneRef.Attr.Value = rt.NewString("bob")
	cloneRef.Unlock()

	originalRef := original.AccessAttribute(name, true)
	require.NotNil(t, originalRef.Attr)
	assert.Equal(t, "alice", originalRef.Attr.Value.ToString())
	originalRef.Unlock()
}
