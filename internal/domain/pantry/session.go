package pantry

import "fmt"

// Editable field names accepted by EditSession.Set.
const (
	EditName           = FieldName
	EditQuantity       = FieldQuantity
	EditImage          = FieldImage
	EditExpirationDate = FieldExpirationDate
)

// EditSession is the single edit slot. Target is an item id or NewItemID and
// Draft is a private copy of that row; the canonical list is only touched when
// the draft is committed.
type EditSession struct {
	Target string `json:"target"`
	Draft  Item   `json:"draft"`
}

// NewEditSession opens a session on a copy of item.
func NewEditSession(item Item) *EditSession {
	return &EditSession{Target: item.ID, Draft: item}
}

// NewDraftSession opens a session on an empty add-row draft.
func NewDraftSession() *EditSession {
	return &EditSession{Target: NewItemID, Draft: EmptyDraft()}
}

// IsNew reports whether the session edits the add-row draft.
func (s *EditSession) IsNew() bool {
	return s.Target == NewItemID
}

// Set applies raw input to one draft field. Quantity input that is not a
// number becomes 0; dates are stored verbatim.
func (s *EditSession) Set(field, value string) error {
	switch field {
	case EditName:
		s.Draft.Name = value
	case EditQuantity:
		s.Draft.Quantity = ParseQuantity(value)
	case EditImage:
		s.Draft.Image = value
	case EditExpirationDate:
		s.Draft.ExpirationDate = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// ApplyCatalog fills name and image from a predefined ingredient.
func (s *EditSession) ApplyCatalog(entry CatalogEntry) {
	s.Draft.Name = entry.Name
	s.Draft.Image = entry.Image
}

// Adjust applies a quantity delta to the draft, flooring at zero.
func (s *EditSession) Adjust(delta int) {
	s.Draft.Quantity = AdjustQuantity(s.Draft.Quantity, delta)
}
