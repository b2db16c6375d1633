package order

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

const maxNotesLength = 500

// Orders only move forward: RECEIVED → PREPARING → READY → DELIVERED.
// DELIVERED is terminal. Re-sending the current status is a no-op so retried
// updates stay idempotent.
var allowedTransitions = map[Status]map[Status]bool{
	StatusReceived:  {StatusPreparing: true},
	StatusPreparing: {StatusReady: true},
	StatusReady:     {StatusDelivered: true},
	StatusDelivered: {},
}

type CreateInput struct {
	Items  []LineRequest
	Notes  *string
	Status Status
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, status Status) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status) (*Order, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) (*Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	gate *CatalogGate
}

func NewService(repo Repository, gate *CatalogGate) Service {
	return &service{repo: repo, gate: gate}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateNotes(notes *string) error {
	if notes != nil && len([]rune(*notes)) > maxNotesLength {
		return &ValidationError{
			Field:   "notes",
			Message: fmt.Sprintf("notes cannot exceed %d characters", maxNotesLength),
		}
	}
	return nil
}

// Create assembles and persists a new order: the catalog gate admits the
// requested lines, each line's unit price is snapshotted from the dish's
// current price, and the header plus all items commit atomically.
func (s *service) Create(ctx context.Context, input CreateInput) (*Order, error) {
	if err := validateNotes(input.Notes); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = StatusReceived
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	resolved, err := s.gate.ResolveActive(ctx, input.Items)
	if err != nil {
		var unavailable *DishesUnavailableError
		if errors.As(err, &unavailable) {
			log.Warn().Str("missing_ids", unavailable.Error()).Msg("service: order references unavailable dishes")
		}
		return nil, err
	}

	items := make([]Item, 0, len(input.Items))
	total := 0.0
	for _, line := range input.Items {
		d := resolved[line.DishID]
		subtotal := round2(d.Price * float64(line.Quantity))
		total += subtotal

		items = append(items, Item{
			DishID:    line.DishID,
			Quantity:  line.Quantity,
			UnitPrice: d.Price,
			Subtotal:  subtotal,
			Dish: &DishSummary{
				ID:       d.ID,
				Name:     d.Name,
				Price:    d.Price,
				Category: d.Category.String(),
				Image:    d.Image,
			},
		})
	}
	total = round2(total)

	// Unreachable with positive dish prices, but a zero price slipping in
	// through stale data must not produce a free order.
	if total <= 0 {
		return nil, &ValidationError{Field: "totalValue", Message: "order total must be greater than zero"}
	}

	o := &Order{
		TotalValue: total,
		Status:     status,
		Notes:      input.Notes,
		Items:      items,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Float64("total_value", o.TotalValue).Int("items", len(o.Items)).Msg("service: order created")

	return o, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}

	return o, nil
}

func (s *service) List(ctx context.Context, status Status) ([]Order, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	orders, err := s.repo.List(ctx, status)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus moves an order along its lifecycle, enforcing the forward-only
// transition table.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status) (*Order, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: order not found for status update")
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to get order for status update")
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if current.Status == newStatus {
		log.Info().Stringer("order_id", id).Stringer("status", newStatus).Msg("service: order status already set, nothing to do")
		return current, nil
	}

	if !allowedTransitions[current.Status][newStatus] {
		log.Warn().
			Stringer("order_id", id).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, current.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to reload order after status update: %w", err)
	}

	log.Info().Stringer("order_id", id).Stringer("old_status", current.Status).Stringer("new_status", newStatus).Msg("service: order status updated")

	return updated, nil
}

// UpdateNotes replaces the order's notes. Status, items and total are not
// touched.
func (s *service) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) (*Order, error) {
	if err := validateNotes(notes); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateNotes(ctx, id, notes); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to update order notes")
		return nil, fmt.Errorf("service: failed to update order notes: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to reload order after notes update: %w", err)
	}

	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to delete order")
		return fmt.Errorf("service: failed to delete order: %w", err)
	}

	log.Info().Stringer("order_id", id).Msg("service: order deleted")

	return nil
}
