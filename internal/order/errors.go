package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
)

var (
	ErrNotFound                = errors.New("order not found")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// ValidationError is a caller error detected before any repository call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// DishesUnavailableError carries every requested dish id that does not exist
// or is inactive, so the caller can fix the whole line list in one round-trip.
type DishesUnavailableError struct {
	IDs []uuid.UUID
}

func (e *DishesUnavailableError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return "dishes not found or inactive: " + strings.Join(ids, ", ")
}
