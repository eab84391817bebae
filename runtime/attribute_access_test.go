package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escript-core/escript/asm"
	"github.com/escript-core/escript/runtime"
)

// TestPrivateAttributeAccessDeniedFromOutside exercises pushAttrRead's
// privacy check: reading a PRIVATE attribute when the executing frame's
// `this` isn't the attribute's owner sets a pending exception instead of
// returning the value.
func TestPrivateAttributeAccessDeniedFromOutside(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	secret := runtime.StringToIdentifier("secret")
	holder := runtime.StringToIdentifier("holder")

	obj := runtime.NewExtObject(nil)
	obj.SetAttribute(secret, runtime.Attribute{Value: rt.NewString("shh"), Props: runtime.AttrPrivate})
	rt.SetGlobalVariable(holder, obj)

	block := asm.New("t.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		GetVariable(holder).
		GetAttribute(secret).
		Build()

	result := rt.ExecuteBlock(block)

	assert.Nil(t, result)
	require.True(t, rt.IsExceptionPending())
	msg := rt.FetchAndClearException().ToString()
	assert.Contains(t, msg, "private attribute")
}

// TestConstAttributeAssignmentRejected exercises opAssignAttribute's
// const check (I_ASSIGN_ATTRIBUTE, as opposed to I_SET_ATTRIBUTE which
// always overwrites unconditionally).
func TestConstAttributeAssignmentRejected(t *testing.T) {
	rt := runtime.NewRuntime()
	defer rt.Close()

	frozen := runtime.StringToIdentifier("frozen")
	holder := runtime.StringToIdentifier("holder")

	obj := runtime.NewExtObject(nil)
	obj.SetAttribute(frozen, runtime.Attribute{Value: rt.NewNumber(1), Props: runtime.AttrConst})
	rt.SetGlobalVariable(holder, obj)

	block := asm.New("t.escb", "main").
		SetArity(0, 0, runtime.NoMultiParam, 3).
		PushNumber(2).       // new value, pushed first
		GetVariable(holder). // object, pushed second (top) per I_ASSIGN_ATTRIBUTE's pop order
		AssignAttribute(frozen).
		Build()

	result := rt.ExecuteBlock(block)

	assert.Nil(t, result)
	require.True(t, rt.IsExceptionPending())
	msg := rt.FetchAndClearException().ToString()
	assert.Contains(t, msg, "const")

	ref := obj.AccessAttribute(frozen, true)
	require.NotNil(t, ref.Attr)
	assert.Equal(t, float64(1), ref.Attr.Value.ToDouble(), "rejected assignment must not have mutated the attribute")
	ref.Unlock()
}
