package resultset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Pure(t *testing.T) {
	snapshot := makeRows(23)
	state := ViewState{SortKey: "tx_count", SortDirection: Descending, PageIndex: 2, PageSize: 10}

	first := Compute(snapshot, rowSchema, state)
	second := Compute(snapshot, rowSchema, state)

	assert.Equal(t, first, second)
	assert.Equal(t, []int{13, 12, 11, 10, 9, 8, 7, 6, 5, 4}, counts(first.Items))
}

func TestCompute_NonPositivePageSizeFallsBack(t *testing.T) {
	page := Compute(makeRows(23), rowSchema, ViewState{PageIndex: 1})
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Len(t, page.Items, DefaultPageSize)
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{23, 10, 3},
		{23, 50, 1},
		{5, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.count, tt.size), "count=%d size=%d", tt.count, tt.size)
	}
}

func TestParseDirection(t *testing.T) {
	dir, err := ParseDirection(" DESC ")
	require.NoError(t, err)
	assert.Equal(t, Descending, dir)
	assert.Equal(t, "desc", dir.String())

	dir, err = ParseDirection("asc")
	require.NoError(t, err)
	assert.Equal(t, Ascending, dir)

	_, err = ParseDirection("sideways")
	require.ErrorIs(t, err, ErrInvalidDirection)
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "42", Number(42).String())
	assert.Equal(t, "1.5", Number(1.5).String())
	assert.Equal(t, "", OptionalText("").String())
	assert.False(t, OptionalText("").Present)
	assert.Equal(t, "", Missing(KindNumeric).String())
}

func TestNewSchema_Errors(t *testing.T) {
	addr := TextField("address", func(r row) string { return r.Address })
	count := NumericField("tx_count", func(r row) float64 { return float64(r.Count) })

	_, err := NewSchema("address", addr, addr)
	require.ErrorIs(t, err, ErrDuplicateField)

	_, err = NewSchema("label", addr, count)
	require.ErrorIs(t, err, ErrUnknownIdentity)

	_, err = NewSchema("tx_count", addr, count)
	require.ErrorIs(t, err, ErrIdentityKind)

	_, err = NewSchema("address", addr, Field[row]{Name: "broken", Kind: KindText})
	require.ErrorIs(t, err, ErrNilAccessor)

	assert.Panics(t, func() { MustSchema("nope", addr) })
}

func TestSchema_Accessors(t *testing.T) {
	assert.Equal(t, []string{"address", "label", "type", "tx_count"}, rowSchema.FieldNames())
	assert.Equal(t, []string{"address", "label", "tx_count", "type"}, rowSchema.SortedFieldNames())
	assert.Equal(t, "address", rowSchema.Identity())
	assert.Equal(t, "0xabc", rowSchema.IdentityOf(row{Address: "0xabc"}))
	assert.True(t, rowSchema.HasField("label"))
	assert.False(t, rowSchema.HasField("missing"))
}
