// Package record defines the typed tuple model: data types, schemas, values,
// and the fixed-width binary codec used to read and write tuple bytes.
package record

import "fmt"

// DataType is one of the four supported attribute types.
type DataType int32

const (
	TypeInt DataType = iota
	TypeFloat
	TypeBool
	TypeString
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeBool:
		return "BOOL"
	case TypeString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Attribute is one column of a schema: a name, a type, and (for TypeString
// only) the maximum string length, excluding the trailing NUL pad byte.
type Attribute struct {
	Name       string
	Type       DataType
	TypeLength int32
}

// Schema describes a table's tuple layout: its attributes in order and which
// of them form the primary key.
type Schema struct {
	Attrs    []Attribute
	KeyAttrs []int32 // indices into Attrs
}

// AttrSize returns the on-disk byte size of one instance of attribute i:
// INT/FLOAT are 4 bytes, BOOL is 1 byte, STRING is TypeLength+1 (NUL padded).
func (s *Schema) AttrSize(i int) (int32, error) {
	if i < 0 || i >= len(s.Attrs) {
		return 0, fmt.Errorf("record: attribute index %d out of range", i)
	}
	a := s.Attrs[i]
	switch a.Type {
	case TypeInt, TypeFloat:
		return 4, nil
	case TypeString:
		return a.TypeLength + 1, nil
	case TypeBool:
		return 1, nil
	default:
		return 0, fmt.Errorf("record: attribute %q: unsupported datatype", a.Name)
	}
}

// AttrOffset returns the byte offset of attribute i within an encoded tuple.
func (s *Schema) AttrOffset(i int) (int32, error) {
	if i < 0 || i >= len(s.Attrs) {
		return 0, fmt.Errorf("record: attribute index %d out of range", i)
	}
	var off int32
	for j := 0; j < i; j++ {
		sz, err := s.AttrSize(j)
		if err != nil {
			return 0, err
		}
		off += sz
	}
	return off, nil
}

// RecordSize returns the total encoded tuple size: the sum of every
// attribute's size.
func (s *Schema) RecordSize() (int32, error) {
	var total int32
	for i := range s.Attrs {
		sz, err := s.AttrSize(i)
		if err != nil {
			return 0, err
		}
		total += sz
	}
	return total, nil
}
