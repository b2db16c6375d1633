package dish

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type CreateInput struct {
	Name        string
	Description string
	Price       float64
	Category    Category
	Active      *bool
	Image       *string
}

// UpdateInput carries a partial update; nil fields keep their current value.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *Category
	Active      *bool
	Image       *string
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Dish, error)
	List(ctx context.Context) ([]Dish, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Dish, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Dish, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// roundPrice keeps money values at exactly two fraction digits.
func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

func normalizeImage(image *string) *string {
	if image == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*image)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Dish, error) {
	name := strings.TrimSpace(input.Name)

	exists, err := s.repo.ExistsByName(ctx, name, uuid.Nil)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("service: failed to check dish name uniqueness")
		return nil, fmt.Errorf("service: failed to check dish name: %w", err)
	}
	if exists {
		log.Warn().Str("name", name).Msg("service: dish name already taken")
		return nil, ErrNameExists
	}

	d := &Dish{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Price:       roundPrice(input.Price),
		Category:    input.Category,
		Active:      true,
		Image:       normalizeImage(input.Image),
	}
	if input.Active != nil {
		d.Active = *input.Active
	}

	if err := s.repo.Create(ctx, d); err != nil {
		if errors.Is(err, ErrNameExists) {
			// Lost the race against a concurrent create with the same name.
			return nil, ErrNameExists
		}
		log.Error().Err(err).Str("name", name).Msg("service: failed to create dish in repository")
		return nil, fmt.Errorf("service: failed to create dish: %w", err)
	}

	log.Info().Stringer("dish_id", d.ID).Str("name", d.Name).Msg("service: dish created")

	return d, nil
}

func (s *service) List(ctx context.Context) ([]Dish, error) {
	dishes, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list dishes")
		return nil, fmt.Errorf("service: failed to list dishes: %w", err)
	}

	return dishes, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Dish, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("dish_id", id).Msg("service: failed to fetch dish by id")
		return nil, fmt.Errorf("service: failed to fetch dish: %w", err)
	}

	return d, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Dish, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("dish_id", id).Msg("service: failed to fetch dish for update")
		return nil, fmt.Errorf("service: failed to fetch dish for update: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if !strings.EqualFold(name, current.Name) {
			exists, err := s.repo.ExistsByName(ctx, name, id)
			if err != nil {
				log.Error().Err(err).Str("name", name).Msg("service: failed to check dish name uniqueness")
				return nil, fmt.Errorf("service: failed to check dish name: %w", err)
			}
			if exists {
				log.Warn().Stringer("dish_id", id).Str("name", name).Msg("service: dish name already taken")
				return nil, ErrNameExists
			}
		}
		current.Name = name
	}
	if input.Description != nil {
		current.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		current.Price = roundPrice(*input.Price)
	}
	if input.Category != nil {
		current.Category = *input.Category
	}
	if input.Active != nil {
		current.Active = *input.Active
	}
	if input.Image != nil {
		current.Image = normalizeImage(input.Image)
	}

	if err := s.repo.Update(ctx, current); err != nil {
		if errors.Is(err, ErrNameExists) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		log.Error().Err(err).Stringer("dish_id", id).Msg("service: failed to update dish in repository")
		return nil, fmt.Errorf("service: failed to update dish: %w", err)
	}

	log.Info().Stringer("dish_id", id).Msg("service: dish updated")

	return current, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		if errors.Is(err, ErrInUse) {
			log.Warn().Stringer("dish_id", id).Msg("service: dish has order items, refusing delete")
			return ErrInUse
		}
		log.Error().Err(err).Stringer("dish_id", id).Msg("service: failed to delete dish")
		return fmt.Errorf("service: failed to delete dish: %w", err)
	}

	log.Info().Stringer("dish_id", id).Msg("service: dish deleted")

	return nil
}
