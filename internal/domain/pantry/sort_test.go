package pantry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []Item {
	return []Item{
		{ID: "a", Name: "Tomato", Quantity: 2, ExpirationDate: "2025-03-01"},
		{ID: "b", Name: "Lettuce", Quantity: 5, ExpirationDate: ""},
		{ID: "c", Name: "Cheese", Quantity: 2, ExpirationDate: "2024-12-31"},
		{ID: "d", Name: "Apple", Quantity: 1, ExpirationDate: "2025-01-15"},
	}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestSortStateToggle(t *testing.T) {
	t.Run("SameKey_ShouldFlipDirection", func(t *testing.T) {
		s := SortState{}.Toggle(SortByName)
		assert.Equal(t, Asc, s.Direction)
		s = s.Toggle(SortByName)
		assert.Equal(t, Desc, s.Direction)
		s = s.Toggle(SortByName)
		assert.Equal(t, Asc, s.Direction)
	})

	t.Run("NewKey_ShouldResetToAscending", func(t *testing.T) {
		s := SortState{Key: SortByName, Direction: Desc}.Toggle(SortByQuantity)
		assert.Equal(t, SortState{Key: SortByQuantity, Direction: Asc}, s)
	})
}

func TestSort(t *testing.T) {
	t.Run("Quantity_ShouldBeStableForEqualKeys", func(t *testing.T) {
		items := sample()
		SortState{Key: SortByQuantity, Direction: Asc}.Sort(items)
		assert.Equal(t, []string{"d", "a", "c", "b"}, ids(items))
	})

	t.Run("QuantityDescending_ShouldKeepEqualOrder", func(t *testing.T) {
		items := sample()
		SortState{Key: SortByQuantity, Direction: Desc}.Sort(items)
		assert.Equal(t, []string{"b", "a", "c", "d"}, ids(items))
	})

	t.Run("ExpirationDate_ShouldPutEmptyFirst", func(t *testing.T) {
		items := sample()
		SortState{Key: SortByExpirationDate, Direction: Asc}.Sort(items)
		assert.Equal(t, []string{"b", "c", "d", "a"}, ids(items))
	})

	t.Run("RepeatedSort_ShouldBeIdempotent", func(t *testing.T) {
		items := sample()
		s := SortState{Key: SortByName, Direction: Asc}
		s.Sort(items)
		first := ids(items)
		s.Sort(items)
		assert.Equal(t, first, ids(items))
		assert.Equal(t, []string{"d", "c", "b", "a"}, first)
	})

	t.Run("Unsorted_ShouldLeaveOrder", func(t *testing.T) {
		items := sample()
		SortState{}.Sort(items)
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(items))
	})
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("expirationDate")
	require.NoError(t, err)
	assert.Equal(t, SortByExpirationDate, k)

	_, err = ParseSortKey("colour")
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}
