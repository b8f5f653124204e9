package record

import "fmt"

// Value is a typed attribute value, as produced by decoding a tuple or by an
// expression constant.
type Value struct {
	Type DataType
	I    int32
	F    float32
	B    bool
	S    string
}

func IntValue(v int32) Value     { return Value{Type: TypeInt, I: v} }
func FloatValue(v float32) Value { return Value{Type: TypeFloat, F: v} }
func BoolValue(v bool) Value     { return Value{Type: TypeBool, B: v} }
func StringValue(v string) Value { return Value{Type: TypeString, S: v} }

func (v Value) String() string {
	switch v.Type {
	case TypeInt:
		return fmt.Sprintf("%d", v.I)
	case TypeFloat:
		return fmt.Sprintf("%g", v.F)
	case TypeBool:
		return fmt.Sprintf("%t", v.B)
	case TypeString:
		return v.S
	default:
		return "<invalid>"
	}
}
