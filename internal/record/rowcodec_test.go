package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return &Schema{
		Attrs: []Attribute{
			{Name: "id", Type: TypeInt},
			{Name: "score", Type: TypeFloat},
			{Name: "active", Type: TypeBool},
			{Name: "name", Type: TypeString, TypeLength: 8},
		},
		KeyAttrs: []int32{0},
	}
}

func TestSetGetAttr_RoundTrip(t *testing.T) {
	s := testSchema()
	tuple, err := NewTuple(s)
	require.NoError(t, err)

	require.NoError(t, SetAttr(tuple, s, 0, IntValue(42)))
	require.NoError(t, SetAttr(tuple, s, 1, FloatValue(3.5)))
	require.NoError(t, SetAttr(tuple, s, 2, BoolValue(true)))
	require.NoError(t, SetAttr(tuple, s, 3, StringValue("hello")))

	v0, err := GetAttr(tuple, s, 0)
	require.NoError(t, err)
	require.Equal(t, int32(42), v0.I)

	v1, err := GetAttr(tuple, s, 1)
	require.NoError(t, err)
	require.InDelta(t, 3.5, v1.F, 1e-6)

	v2, err := GetAttr(tuple, s, 2)
	require.NoError(t, err)
	require.True(t, v2.B)

	v3, err := GetAttr(tuple, s, 3)
	require.NoError(t, err)
	require.Equal(t, "hello", v3.S)
}

func TestSetAttr_TypeMismatch(t *testing.T) {
	s := testSchema()
	tuple, err := NewTuple(s)
	require.NoError(t, err)

	err = SetAttr(tuple, s, 0, StringValue("not an int"))
	require.Error(t, err)
}

func TestRecordSize_MatchesFixedWidthArithmetic(t *testing.T) {
	s := testSchema()
	sz, err := s.RecordSize()
	require.NoError(t, err)
	// id(4) + score(4) + active(1) + name(8+1)
	require.EqualValues(t, 4+4+1+9, sz)
}

func TestAttrOffset_Sequential(t *testing.T) {
	s := testSchema()
	off, err := s.AttrOffset(3)
	require.NoError(t, err)
	require.EqualValues(t, 9, off)
}

func TestGetAttr_StringIsNulPadded(t *testing.T) {
	s := &Schema{Attrs: []Attribute{{Name: "name", Type: TypeString, TypeLength: 8}}}
	tuple, err := NewTuple(s)
	require.NoError(t, err)

	require.NoError(t, SetAttr(tuple, s, 0, StringValue("ab")))
	require.Equal(t, byte(0), tuple[2])

	v, err := GetAttr(tuple, s, 0)
	require.NoError(t, err)
	require.Equal(t, "ab", v.S)
}
