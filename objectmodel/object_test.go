package objectmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBoolCoercion(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"1", true},
		{"false", false},
		{"0", false},
		{"TRUE", true},
	}
	for _, tc := range cases {
		o := NewObject()
		require.NoError(t, o.AddBool("flag", tc.in))
		a, ok := o.Get("flag")
		require.True(t, ok)
		assert.Equal(t, tc.want, a.Value)
	}
}

func TestAddBoolRejectsGarbage(t *testing.T) {
	o := NewObject()
	err := o.AddBool("flag", "maybe")
	assert.ErrorIs(t, err, ErrBadValue)
}

func TestRemoveAttribute(t *testing.T) {
	o := NewObject()
	o.AddFlag("nice")
	o.AddTime("pork", 111)
	o.RemoveAttribute("pork")
	assert.False(t, o.IsSet("pork"))
	assert.True(t, o.IsSet("nice"))
	assert.Len(t, o.Attributes(), 1)
}

func TestAttributeOrderPreserved(t *testing.T) {
	o := NewObject()
	o.AddFlag("a")
	o.AddFlag("b")
	o.AddFlag("c")
	names := make([]string, 0, 3)
	for _, a := range o.Attributes() {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestWireRoundTrip(t *testing.T) {
	o := NewObject(42)
	o.AddFlag("nice")
	require.NoError(t, o.AddBool("enabled", "true"))
	o.AddInt("count", 7)
	o.AddFloat("ratio", 3.5)
	o.AddTime("seen", 1234567890)
	o.AddString("name", "hello")
	store := int32(2)
	o.AddBytes("hosts", 99, &store)
	o.AddObject("parent", 5)

	encoded, err := EncodeObject(o)
	require.NoError(t, err)

	decoded, err := DecodeObject(encoded)
	require.NoError(t, err)

	require.NotNil(t, decoded.ObjectID())
	assert.Equal(t, uint64(42), *decoded.ObjectID())

	for _, name := range []string{"nice", "enabled", "count", "ratio", "seen", "name", "hosts", "parent"} {
		assert.True(t, decoded.IsSet(name), "expected %s to be set", name)
	}
	enabled, _ := decoded.Get("enabled")
	assert.Equal(t, true, enabled.Value)
	count, _ := decoded.Get("count")
	assert.Equal(t, int64(7), count.Value)
	ratio, _ := decoded.Get("ratio")
	assert.Equal(t, 3.5, ratio.Value)
	hosts, _ := decoded.Get("hosts")
	ref := hosts.Value.(BytesRef)
	assert.Equal(t, uint64(99), ref.Key)
	require.NotNil(t, ref.Store)
	assert.Equal(t, int32(2), *ref.Store)
}

func TestWireRoundTripWithoutID(t *testing.T) {
	o := NewObject()
	o.AddFlag("bad")
	encoded, err := EncodeObject(o)
	require.NoError(t, err)
	decoded, err := DecodeObject(encoded)
	require.NoError(t, err)
	assert.Nil(t, decoded.ObjectID())
}

func TestEnumBridgeRoundTrip(t *testing.T) {
	v, err := NameToNumber("RequestType", "GET")
	require.NoError(t, err)
	name, err := NumberToName("RequestType", v)
	require.NoError(t, err)
	assert.Equal(t, "GET", name)
}

func TestEnumBridgeUnknownName(t *testing.T) {
	_, err := NameToNumber("RequestType", "NOPE")
	assert.Error(t, err)
}
