// Package expr implements the small boolean/comparison expression tree used
// to filter tuples during a scan.
package expr

import (
	"fmt"

	"github.com/kavarin/recordstore/internal/record"
	"github.com/kavarin/recordstore/internal/rmerror"
)

// OpType names an operator node's operation.
type OpType int

const (
	OpNot OpType = iota
	OpAnd
	OpOr
	OpEqual
	OpSmaller
)

// Expr is a node in the expression tree: a constant, an attribute
// reference, or an operator over one or two child expressions.
type Expr struct {
	kind exprKind
	cons record.Value
	attr int
	op   OpType
	args []*Expr
}

type exprKind int

const (
	kindConst exprKind = iota
	kindAttrRef
	kindOp
)

// Const builds a constant-value leaf.
func Const(v record.Value) *Expr {
	return &Expr{kind: kindConst, cons: v}
}

// AttrRef builds a leaf referencing attribute i of the tuple under
// evaluation.
func AttrRef(i int) *Expr {
	return &Expr{kind: kindAttrRef, attr: i}
}

// Not builds a unary boolean NOT over child.
func Not(child *Expr) *Expr {
	return &Expr{kind: kindOp, op: OpNot, args: []*Expr{child}}
}

// And builds a binary boolean AND.
func And(l, r *Expr) *Expr {
	return &Expr{kind: kindOp, op: OpAnd, args: []*Expr{l, r}}
}

// Or builds a binary boolean OR.
func Or(l, r *Expr) *Expr {
	return &Expr{kind: kindOp, op: OpOr, args: []*Expr{l, r}}
}

// Equal builds a same-type equality comparison.
func Equal(l, r *Expr) *Expr {
	return &Expr{kind: kindOp, op: OpEqual, args: []*Expr{l, r}}
}

// Smaller builds a same-type `<` comparison; strings compare
// lexicographically.
func Smaller(l, r *Expr) *Expr {
	return &Expr{kind: kindOp, op: OpSmaller, args: []*Expr{l, r}}
}

// Eval evaluates expr against tuple under schema.
func Eval(tuple []byte, schema *record.Schema, e *Expr) (record.Value, error) {
	switch e.kind {
	case kindConst:
		return e.cons, nil
	case kindAttrRef:
		return record.GetAttr(tuple, schema, e.attr)
	case kindOp:
		return evalOp(tuple, schema, e)
	default:
		return record.Value{}, fmt.Errorf("expr: unknown expression kind")
	}
}

func evalOp(tuple []byte, schema *record.Schema, e *Expr) (record.Value, error) {
	left, err := Eval(tuple, schema, e.args[0])
	if err != nil {
		return record.Value{}, err
	}

	switch e.op {
	case OpNot:
		return boolNot(left)
	}

	right, err := Eval(tuple, schema, e.args[1])
	if err != nil {
		return record.Value{}, err
	}

	switch e.op {
	case OpAnd:
		return boolAnd(left, right)
	case OpOr:
		return boolOr(left, right)
	case OpEqual:
		return valueEqual(left, right)
	case OpSmaller:
		return valueSmaller(left, right)
	default:
		return record.Value{}, fmt.Errorf("expr: unknown operator")
	}
}

func boolNot(v record.Value) (record.Value, error) {
	if v.Type != record.TypeBool {
		return record.Value{}, rmerror.ErrBoolExprArgNotBoolean
	}
	return record.BoolValue(!v.B), nil
}

func boolAnd(l, r record.Value) (record.Value, error) {
	if l.Type != record.TypeBool || r.Type != record.TypeBool {
		return record.Value{}, rmerror.ErrBoolExprArgNotBoolean
	}
	return record.BoolValue(l.B && r.B), nil
}

func boolOr(l, r record.Value) (record.Value, error) {
	if l.Type != record.TypeBool || r.Type != record.TypeBool {
		return record.Value{}, rmerror.ErrBoolExprArgNotBoolean
	}
	return record.BoolValue(l.B || r.B), nil
}

func valueEqual(l, r record.Value) (record.Value, error) {
	if l.Type != r.Type {
		return record.Value{}, rmerror.ErrCompareDifferentDatatype
	}
	switch l.Type {
	case record.TypeInt:
		return record.BoolValue(l.I == r.I), nil
	case record.TypeFloat:
		return record.BoolValue(l.F == r.F), nil
	case record.TypeBool:
		return record.BoolValue(l.B == r.B), nil
	case record.TypeString:
		return record.BoolValue(l.S == r.S), nil
	default:
		return record.Value{}, rmerror.ErrUnsupportedDatatype
	}
}

func valueSmaller(l, r record.Value) (record.Value, error) {
	if l.Type != r.Type {
		return record.Value{}, rmerror.ErrCompareDifferentDatatype
	}
	switch l.Type {
	case record.TypeInt:
		return record.BoolValue(l.I < r.I), nil
	case record.TypeFloat:
		return record.BoolValue(l.F < r.F), nil
	case record.TypeBool:
		return record.BoolValue(!l.B && r.B), nil
	case record.TypeString:
		return record.BoolValue(l.S < r.S), nil
	default:
		return record.Value{}, rmerror.ErrUnsupportedDatatype
	}
}
