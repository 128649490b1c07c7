// Package pantry contains the pantry item model and the pure derivations
// (sorting, filtering, quantity clamping) the inventory controller builds on.
package pantry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Collection is the document store collection holding pantry items.
const Collection = "pantry"

// NewItemID is the edit-session target of the add-row draft. Store ids are
// UUIDs so the sentinel can never collide with a real item.
const NewItemID = "new"

// Record field names. They match the documents written by earlier clients of
// the same collection.
const (
	FieldName           = "name"
	FieldQuantity       = "quantity"
	FieldImage          = "image"
	FieldExpirationDate = "expirationDate"
)

// Item is a tracked food entry. ID is assigned by the document store.
type Item struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	Image          string `json:"image"`
	ExpirationDate string `json:"expirationDate"`
}

// EmptyDraft returns the initial value of the add-row draft.
func EmptyDraft() Item {
	return Item{ID: NewItemID}
}

// ClampQuantity floors quantities at zero.
func ClampQuantity(q int) int {
	if q < 0 {
		return 0
	}
	return q
}

// AdjustQuantity returns max(0, q+delta).
func AdjustQuantity(q, delta int) int {
	return ClampQuantity(q + delta)
}

// ParseQuantity converts raw input into a quantity. Non-numeric input yields 0.
func ParseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return ClampQuantity(n)
	}
	// Leading-integer prefix, e.g. "3 cans".
	end := 0
	for end < len(raw) && (raw[end] >= '0' && raw[end] <= '9' || end == 0 && raw[end] == '-') {
		end++
	}
	if n, err := strconv.Atoi(raw[:end]); err == nil {
		return ClampQuantity(n)
	}
	return 0
}

// ValidateNew checks the add-row preconditions: a non-empty name and a
// positive quantity.
func (i Item) ValidateNew() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrNameRequired
	}
	if i.Quantity <= 0 {
		return ErrQuantityNotPositive
	}
	return nil
}

// Fields returns the flat record stored for the item (everything but ID).
func (i Item) Fields() map[string]any {
	return map[string]any{
		FieldName:           i.Name,
		FieldQuantity:       i.Quantity,
		FieldImage:          i.Image,
		FieldExpirationDate: i.ExpirationDate,
	}
}

// FromDocument decodes a stored record. Records without a name or with a
// quantity that is not a non-negative integer are malformed.
func FromDocument(id string, fields map[string]any) (Item, error) {
	item := Item{ID: id}
	if id == "" {
		return item, fmt.Errorf("%w: missing id", ErrMalformedRecord)
	}

	name, ok := fields[FieldName].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return item, fmt.Errorf("%w: document %s has no name", ErrMalformedRecord, id)
	}
	item.Name = name

	qty, err := decodeQuantity(fields[FieldQuantity])
	if err != nil {
		return item, fmt.Errorf("%w: document %s: %v", ErrMalformedRecord, id, err)
	}
	item.Quantity = qty

	item.Image, _ = fields[FieldImage].(string)
	item.ExpirationDate, _ = fields[FieldExpirationDate].(string)

	return item, nil
}

// decodeQuantity accepts the numeric shapes produced by JSON and SQL drivers.
func decodeQuantity(v any) (int, error) {
	switch q := v.(type) {
	case nil:
		return 0, nil
	case int:
		return nonNegative(int64(q))
	case int32:
		return nonNegative(int64(q))
	case int64:
		return nonNegative(q)
	case float64:
		if q != math.Trunc(q) {
			return 0, fmt.Errorf("quantity %v is not an integer", q)
		}
		return nonNegative(int64(q))
	case string:
		n, err := strconv.Atoi(q)
		if err != nil {
			return 0, fmt.Errorf("quantity %q is not numeric", q)
		}
		return nonNegative(int64(n))
	default:
		return 0, fmt.Errorf("unsupported quantity type %T", v)
	}
}

func nonNegative(n int64) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("quantity %d is negative", n)
	}
	return int(n), nil
}

// Names returns the item names in list order.
func Names(items []Item) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}

// Filter returns the items whose name contains query, case-insensitively.
// It never mutates items; an empty query returns a copy of the whole list.
func Filter(items []Item, query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if q == "" || strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}
