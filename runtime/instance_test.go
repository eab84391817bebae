package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escript-core/escript/asm"
	"github.com/escript-core/escript/runtime"
)

// TestConstructorChainingSharesSingleInstance exercises I_INIT_CALLER and
// startInstanceCreation's base-chain walk: a derived type's constructor
// calls its base's constructor via InitCaller, and both constructors must
// observe and mutate the very same instance, not two separate objects.
func TestConstructorChainingSharesSingleInstance(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	baseField := runtime.StringToIdentifier("baseField")
	derivedField := runtime.StringToIdentifier("derivedField")
	ctorID := runtime.StringToIdentifier("_constructor")

	baseCtorBlock := asm.New("t.escb", "BaseCtor").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		GetLocal(runtime.SlotThis).
		PushString("base-init").
		SetAttribute(baseField).
		Build()
	baseCtor := runtime.NewUserFunction(rt.UserFunctionType(), baseCtorBlock)

	baseType := runtime.NewType(nil)
	baseType.Name = "Base"
	baseType.SetAttribute(ctorID, runtime.Attribute{Value: baseCtor, Props: runtime.AttrTypeAttr})

	derivedCtorBlock := asm.New("t.escb", "DerivedCtor").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		InitCaller(0).
		GetLocal(runtime.SlotThis).
		PushString("derived-init").
		SetAttribute(derivedField).
		Build()
	derivedCtor := runtime.NewUserFunction(rt.UserFunctionType(), derivedCtorBlock)

	derivedType := runtime.NewType(baseType)
	derivedType.Name = "Derived"
	derivedType.SetAttribute(ctorID, runtime.Attribute{Value: derivedCtor, Props: runtime.AttrTypeAttr})

	instance := rt.CreateInstance(derivedType, nil)

	require.NotNil(t, instance)
	assert.False(t, rt.IsExceptionPending())
	assert.Same(t, derivedType, instance.Type())

	baseRef := instance.AccessAttribute(baseField, true)
	require.NotNil(t, baseRef.Attr, "base constructor must have run against the derived instance")
	assert.Equal(t, "base-init", baseRef.Attr.Value.ToString())
	baseRef.Unlock()

	derivedRef := instance.AccessAttribute(derivedField, true)
	require.NotNil(t, derivedRef.Attr)
	assert.Equal(t, "derived-init", derivedRef.Attr.Value.ToString())
	derivedRef.Unlock()
}

// TestCreateInstanceWithNoConstructorSetsException exercises
// startInstanceCreation's "type has no constructor" error path.
func TestCreateInstanceWithNoConstructorSetsException(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	bare := runtime.NewType(nil)
	bare.Name = "Bare"

	instance := rt.CreateInstance(bare, nil)

	assert.Nil(t, instance)
	require.True(t, rt.IsExceptionPending())
	msg := rt.FetchAndClearException().ToString()
	assert.Contains(t, msg, "has no constructor")
}

// TestNativeFactoryConstructorBuildsAndTypesInstance exercises
// startInstanceCreation's native-factory-constructor case: a
// NativeFunction constructor builds and returns the instance itself rather
// than receiving a pre-built `this`.
func TestNativeFactoryConstructorBuildsAndTypesInstance(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	ctorID := runtime.StringToIdentifier("_constructor")
	label := runtime.StringToIdentifier("label")

	typ := runtime.NewType(nil)
	typ.Name = "Widget"

	factory := runtime.NewNativeFunction(rt.NativeFunctionType(), "widget_new", 1, 1,
		func(rt *runtime.Runtime, this runtime.Object, args []runtime.Object) runtime.RtValue {
			o := runtime.NewExtObject(nil)
			o.SetAttribute(label, runtime.Attribute{Value: args[0], Props: runtime.AttrNormal})
			return runtime.ObjectValue(o)
		})
	typ.SetAttribute(ctorID, runtime.Attribute{Value: factory, Props: runtime.AttrTypeAttr})

	instance := rt.CreateInstance(typ, []runtime.Object{rt.NewString("gadget")})

	require.NotNil(t, instance)
	assert.Same(t, typ, instance.Type(), "a native factory's returned object must be retyped to the requested type")

	ref := instance.AccessAttribute(label, true)
	require.NotNil(t, ref.Attr)
	assert.Equal(t, "gadget", ref.Attr.Value.ToString())
	ref.Unlock()
}
