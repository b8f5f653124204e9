package expr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kavarin/recordstore/internal/record"
)

func testSchemaAndTuple(t *testing.T) (*record.Schema, []byte) {
	t.Helper()
	s := &record.Schema{Attrs: []record.Attribute{
		{Name: "id", Type: record.TypeInt},
		{Name: "name", Type: record.TypeString, TypeLength: 8},
	}}
	tuple, err := record.NewTuple(s)
	require.NoError(t, err)
	require.NoError(t, record.SetAttr(tuple, s, 0, record.IntValue(5)))
	require.NoError(t, record.SetAttr(tuple, s, 1, record.StringValue("bob")))
	return s, tuple
}

func TestEval_AttrRefAndConst(t *testing.T) {
	s, tuple := testSchemaAndTuple(t)

	v, err := Eval(tuple, s, AttrRef(0))
	require.NoError(t, err)
	require.EqualValues(t, 5, v.I)

	v, err = Eval(tuple, s, Const(record.IntValue(9)))
	require.NoError(t, err)
	require.EqualValues(t, 9, v.I)
}

func TestEval_Equal(t *testing.T) {
	s, tuple := testSchemaAndTuple(t)

	v, err := Eval(tuple, s, Equal(AttrRef(0), Const(record.IntValue(5))))
	require.NoError(t, err)
	require.True(t, v.B)
}

func TestEval_Smaller_StringsLexicographic(t *testing.T) {
	s, tuple := testSchemaAndTuple(t)

	v, err := Eval(tuple, s, Smaller(Const(record.StringValue("amy")), AttrRef(1)))
	require.NoError(t, err)
	require.True(t, v.B)
}

func TestEval_TypeMismatch(t *testing.T) {
	s, tuple := testSchemaAndTuple(t)

	_, err := Eval(tuple, s, Equal(AttrRef(0), AttrRef(1)))
	require.Error(t, err)
}

func TestEval_BoolOps(t *testing.T) {
	s, tuple := testSchemaAndTuple(t)

	v, err := Eval(tuple, s, And(Const(record.BoolValue(true)), Const(record.BoolValue(false))))
	require.NoError(t, err)
	require.False(t, v.B)

	v, err = Eval(tuple, s, Or(Const(record.BoolValue(true)), Const(record.BoolValue(false))))
	require.NoError(t, err)
	require.True(t, v.B)

	v, err = Eval(tuple, s, Not(Const(record.BoolValue(false))))
	require.NoError(t, err)
	require.True(t, v.B)
}

func TestEval_NonBooleanToBoolOp(t *testing.T) {
	s, tuple := testSchemaAndTuple(t)

	_, err := Eval(tuple, s, Not(AttrRef(0)))
	require.Error(t, err)
}
