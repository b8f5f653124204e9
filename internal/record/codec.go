package record

import (
	"fmt"
	"math"

	"github.com/kavarin/recordstore/internal/alias/bx"
	"github.com/kavarin/recordstore/internal/rmerror"
)

// NewTuple allocates a zeroed, schema-sized tuple buffer.
func NewTuple(s *Schema) ([]byte, error) {
	sz, err := s.RecordSize()
	if err != nil {
		return nil, err
	}
	return make([]byte, sz), nil
}

// SetAttr writes v into attribute i of tuple, which must be schema.RecordSize()
// bytes. Fails if v's type does not match the schema's declared type.
func SetAttr(tuple []byte, s *Schema, i int, v Value) error {
	if i < 0 || i >= len(s.Attrs) {
		return fmt.Errorf("record: attribute index %d out of range", i)
	}
	attr := s.Attrs[i]
	if attr.Type != v.Type {
		return fmt.Errorf("record: setAttr %q: %w", attr.Name, rmerror.ErrCompareDifferentDatatype)
	}
	off, err := s.AttrOffset(i)
	if err != nil {
		return err
	}
	sz, err := s.AttrSize(i)
	if err != nil {
		return err
	}
	dst := tuple[off : off+sz]

	switch attr.Type {
	case TypeInt:
		bx.PutU32(dst, uint32(v.I))
	case TypeFloat:
		bx.PutU32(dst, math.Float32bits(v.F))
	case TypeBool:
		if v.B {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case TypeString:
		for j := range dst {
			dst[j] = 0
		}
		copy(dst, v.S)
	default:
		return fmt.Errorf("record: setAttr %q: %w", attr.Name, rmerror.ErrUnsupportedDatatype)
	}
	return nil
}

// GetAttr decodes attribute i out of tuple using the schema's type and
// offset for that attribute.
func GetAttr(tuple []byte, s *Schema, i int) (Value, error) {
	if i < 0 || i >= len(s.Attrs) {
		return Value{}, fmt.Errorf("record: attribute index %d out of range", i)
	}
	attr := s.Attrs[i]
	off, err := s.AttrOffset(i)
	if err != nil {
		return Value{}, err
	}
	sz, err := s.AttrSize(i)
	if err != nil {
		return Value{}, err
	}
	src := tuple[off : off+sz]

	switch attr.Type {
	case TypeInt:
		return IntValue(int32(bx.U32(src))), nil
	case TypeFloat:
		return FloatValue(math.Float32frombits(bx.U32(src))), nil
	case TypeBool:
		return BoolValue(src[0] != 0), nil
	case TypeString:
		n := 0
		for n < len(src) && src[n] != 0 {
			n++
		}
		return StringValue(string(src[:n])), nil
	default:
		return Value{}, fmt.Errorf("record: getAttr %q: %w", attr.Name, rmerror.ErrUnsupportedDatatype)
	}
}
