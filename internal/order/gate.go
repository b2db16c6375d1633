package order

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/Samega18/MesaFacil/internal/dish"
)

// maxLines caps how many distinct lines a single order may carry.
const maxLines = 50

// LineRequest is one requested (dish, quantity) pair.
type LineRequest struct {
	DishID   uuid.UUID
	Quantity int
}

// DishCatalog is the read-only slice of the dish repository the gate needs.
type DishCatalog interface {
	GetActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]dish.Dish, error)
}

// CatalogGate admits an order's requested lines against the set of currently
// active dishes. Admission is all-or-nothing: if any requested dish is missing
// or inactive the whole request is rejected, listing every offender.
type CatalogGate struct {
	catalog DishCatalog
}

func NewCatalogGate(catalog DishCatalog) *CatalogGate {
	return &CatalogGate{catalog: catalog}
}

func validateLines(lines []LineRequest) error {
	if len(lines) == 0 {
		return &ValidationError{Field: "items", Message: "order must contain at least one item"}
	}
	if len(lines) > maxLines {
		return &ValidationError{Field: "items", Message: fmt.Sprintf("order cannot contain more than %d items", maxLines)}
	}
	for i, line := range lines {
		if line.DishID == uuid.Nil {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].dishId", i),
				Message: "dish id is required",
			}
		}
		if line.Quantity < 1 || line.Quantity > 99 {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be an integer between 1 and 99",
			}
		}
	}
	return nil
}

// ResolveActive validates the requested lines and resolves them against active
// dishes in one batched lookup. Input validation happens before the catalog is
// touched. The returned map is keyed by dish id.
func (g *CatalogGate) ResolveActive(ctx context.Context, lines []LineRequest) (map[uuid.UUID]dish.Dish, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	distinct := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.DishID]; ok {
			continue
		}
		seen[line.DishID] = struct{}{}
		distinct = append(distinct, line.DishID)
	}

	dishes, err := g.catalog.GetActiveByIDs(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("catalog gate: failed to resolve dishes: %w", err)
	}

	resolved := make(map[uuid.UUID]dish.Dish, len(dishes))
	for _, d := range dishes {
		resolved[d.ID] = d
	}

	if len(resolved) < len(distinct) {
		missing := make([]uuid.UUID, 0, len(distinct)-len(resolved))
		for _, id := range distinct {
			if _, ok := resolved[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, &DishesUnavailableError{IDs: missing}
	}

	return resolved, nil
}
