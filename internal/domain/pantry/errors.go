package pantry

import "errors"

// Domain errors for pantry operations
var (
	// Validation errors
	ErrNameRequired        = errors.New("pantry item name is required")
	ErrQuantityNotPositive = errors.New("pantry item quantity must be greater than 0")
	ErrUnknownSortKey      = errors.New("unknown sort key")
	ErrUnknownField        = errors.New("unknown pantry item field")

	// Record errors
	ErrMalformedRecord = errors.New("malformed pantry record")

	// Edit session errors
	ErrNoEditSession = errors.New("item is not being edited")
	ErrItemNotFound  = errors.New("pantry item not found")
)
