package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kavarin/recordstore/internal/record"
	"github.com/kavarin/recordstore/internal/rmerror"
	"github.com/kavarin/recordstore/internal/storage"
)

func testSchema() *record.Schema {
	return &record.Schema{
		Attrs: []record.Attribute{
			{Name: "id", Type: record.TypeInt},
			{Name: "name", Type: record.TypeString, TypeLength: 10},
		},
		KeyAttrs: []int32{0},
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New()
	require.EqualValues(t, 1, c.TotalNumPages)
	require.EqualValues(t, NoPage, c.FreePage)
	require.EqualValues(t, 0, c.NumTables)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	c := New()
	td, err := NewTableDescriptor("people", testSchema(), 1)
	require.NoError(t, err)
	require.NoError(t, c.AddTable(td))
	c.TotalNumPages = 2

	buf := make([]byte, storage.PageSize)
	require.NoError(t, c.Encode(buf))

	decoded, err := Decode(buf)
	require.NoError(t, err)
	require.EqualValues(t, 2, decoded.TotalNumPages)
	require.EqualValues(t, 1, decoded.NumTables)

	got, idx, ok := decoded.LookupTable("people")
	require.True(t, ok)
	require.Equal(t, 0, idx)
	require.EqualValues(t, 1, got.HeadPage)
	require.EqualValues(t, 2, got.NumAttr)

	schema := got.Schema()
	require.Equal(t, "name", schema.Attrs[1].Name)
	require.EqualValues(t, 10, schema.Attrs[1].TypeLength)
}

func TestAddTable_DuplicateName(t *testing.T) {
	c := New()
	td, err := NewTableDescriptor("people", testSchema(), 1)
	require.NoError(t, err)
	require.NoError(t, c.AddTable(td))

	err = c.AddTable(td)
	require.Error(t, err)
}

func TestAddTable_DirectoryFull(t *testing.T) {
	c := New()
	for i := 0; i < MaxTables; i++ {
		td, err := NewTableDescriptor(fmt_table(i), testSchema(), int32(i+1))
		require.NoError(t, err)
		require.NoError(t, c.AddTable(td))
	}

	overflow, err := NewTableDescriptor("one_too_many", testSchema(), 99)
	require.NoError(t, err)
	err = c.AddTable(overflow)
	require.ErrorIs(t, err, rmerror.ErrNoMoreEntries)
}

func TestRemoveTable_CompactsArray(t *testing.T) {
	c := New()
	for _, name := range []string{"a", "b", "c"} {
		td, err := NewTableDescriptor(name, testSchema(), 1)
		require.NoError(t, err)
		require.NoError(t, c.AddTable(td))
	}

	_, idx, ok := c.LookupTable("b")
	require.True(t, ok)
	require.NoError(t, c.RemoveTable(idx))

	require.EqualValues(t, 2, c.NumTables)
	_, _, ok = c.LookupTable("b")
	require.False(t, ok)
	_, _, ok = c.LookupTable("c")
	require.True(t, ok)
}

func fmt_table(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return string(letters[i%len(letters)]) + "_tbl"
}
