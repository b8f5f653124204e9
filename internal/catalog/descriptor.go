// Package catalog implements the page-0 resident system catalog: the
// free-page-list head plus the directory of table descriptors that gives
// every table its schema and its page chain's head page.
package catalog

import (
	"fmt"

	"github.com/kavarin/recordstore/internal/record"
)

const (
	TableNameSize = 16
	AttrNameSize  = 16
	MaxAttrs      = 8
	MaxKeyAttrs   = 4
)

// TableDescriptor is the fixed-size, on-disk metadata for one table.
type TableDescriptor struct {
	Name       string
	NumAttr    int32
	AttrNames  [MaxAttrs]string
	DataTypes  [MaxAttrs]record.DataType
	TypeLength [MaxAttrs]int32
	KeySize    int32
	KeyAttrs   [MaxKeyAttrs]int32
	NumTuples  int32
	HeadPage   int32
}

// NewTableDescriptor builds a descriptor from a name and schema, bounding
// the name and attribute/key counts to the fixed caps.
func NewTableDescriptor(name string, schema *record.Schema, headPage int32) (*TableDescriptor, error) {
	if len(name) >= TableNameSize {
		return nil, fmt.Errorf("catalog: table name %q exceeds %d bytes", name, TableNameSize-1)
	}
	if len(schema.Attrs) > MaxAttrs {
		return nil, fmt.Errorf("catalog: schema has %d attributes, max %d", len(schema.Attrs), MaxAttrs)
	}
	if len(schema.KeyAttrs) > MaxKeyAttrs {
		return nil, fmt.Errorf("catalog: schema has %d key attributes, max %d", len(schema.KeyAttrs), MaxKeyAttrs)
	}

	td := &TableDescriptor{
		Name:     name,
		NumAttr:  int32(len(schema.Attrs)),
		KeySize:  int32(len(schema.KeyAttrs)),
		HeadPage: headPage,
	}
	for i, a := range schema.Attrs {
		if len(a.Name) >= AttrNameSize {
			return nil, fmt.Errorf("catalog: attribute name %q exceeds %d bytes", a.Name, AttrNameSize-1)
		}
		td.AttrNames[i] = a.Name
		td.DataTypes[i] = a.Type
		td.TypeLength[i] = a.TypeLength
	}
	for i, k := range schema.KeyAttrs {
		td.KeyAttrs[i] = k
	}
	return td, nil
}

// Schema reconstructs the record.Schema described by this descriptor.
func (td *TableDescriptor) Schema() *record.Schema {
	attrs := make([]record.Attribute, td.NumAttr)
	for i := 0; i < int(td.NumAttr); i++ {
		attrs[i] = record.Attribute{
			Name:       td.AttrNames[i],
			Type:       td.DataTypes[i],
			TypeLength: td.TypeLength[i],
		}
	}
	keyAttrs := make([]int32, td.KeySize)
	copy(keyAttrs, td.KeyAttrs[:td.KeySize])
	return &record.Schema{Attrs: attrs, KeyAttrs: keyAttrs}
}

// descriptorEncodedSize is the packed on-disk size of one TableDescriptor:
// name(16) + numAttr(4) + attrNames(8*16) + dataTypes(8*4) + typeLength(8*4)
// + keySize(4) + keyAttrs(4*4) + numTuples(4) + headPage(4).
const descriptorEncodedSize = TableNameSize + 4 + MaxAttrs*AttrNameSize + MaxAttrs*4 + MaxAttrs*4 + 4 + MaxKeyAttrs*4 + 4 + 4
