package pantry

import (
	"fmt"
	"sort"
)

// SortKey names a sortable item field.
type SortKey string

const (
	SortByName           SortKey = "name"
	SortByQuantity       SortKey = "quantity"
	SortByExpirationDate SortKey = "expirationDate"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseSortKey validates a sort key coming from the outside.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(raw); k {
	case SortByName, SortByQuantity, SortByExpirationDate:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, raw)
	}
}

// SortState is the single active sort key. The zero value means unsorted.
type SortState struct {
	Key       SortKey   `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Active reports whether a key has been chosen.
func (s SortState) Active() bool {
	return s.Key != ""
}

// Toggle returns the next state: the same key flips direction, a new key
// starts ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key && s.Direction == Asc {
		return SortState{Key: key, Direction: Desc}
	}
	return SortState{Key: key, Direction: Asc}
}

// Less compares two items on the state's key. Equal keys are not less in
// either direction, so stable sorts keep their relative order.
func (s SortState) Less(a, b Item) bool {
	c := compare(s.Key, a, b)
	if s.Direction == Desc {
		return c > 0
	}
	return c < 0
}

// Sort stably reorders items in place according to the state.
func (s SortState) Sort(items []Item) {
	if !s.Active() {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return s.Less(items[i], items[j])
	})
}

func compare(key SortKey, a, b Item) int {
	switch key {
	case SortByName:
		return compareStrings(a.Name, b.Name)
	case SortByQuantity:
		switch {
		case a.Quantity < b.Quantity:
			return -1
		case a.Quantity > b.Quantity:
			return 1
		}
		return 0
	case SortByExpirationDate:
		// ISO-8601 dates order lexicographically; empty dates sort first.
		return compareStrings(a.ExpirationDate, b.ExpirationDate)
	}
	return 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
