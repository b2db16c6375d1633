package dish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("dish not found")
	ErrNameExists = errors.New("dish with this name already exists")
	ErrInUse      = errors.New("dish is referenced by existing order items")
)

type Repository interface {
	Create(ctx context.Context, d *Dish) error
	GetByID(ctx context.Context, id uuid.UUID) (*Dish, error)
	GetActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]Dish, error)
	List(ctx context.Context) ([]Dish, error)
	ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, d *Dish) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const dishColumns = `id, name, description, price, category, active, image, created_at, updated_at`

func scanDish(row pgx.Row, d *Dish) error {
	return row.Scan(
		&d.ID,
		&d.Name,
		&d.Description,
		&d.Price,
		&d.Category,
		&d.Active,
		&d.Image,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
}

func (r *postgresRepository) Create(ctx context.Context, d *Dish) error {
	if d.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate dish ID: %w", err)
		}
		d.ID = genID
	}

	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
		INSERT INTO dishes (id, name, description, price, category, active, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		d.ID,
		d.Name,
		d.Description,
		d.Price,
		string(d.Category),
		d.Active,
		d.Image,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrNameExists
		}
		return fmt.Errorf("repository: failed to insert dish: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Dish, error) {
	query := `SELECT ` + dishColumns + ` FROM dishes WHERE id = $1`

	var d Dish
	err := scanDish(r.db.QueryRow(ctx, query, id), &d)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select dish by id %s: %w", id, err)
	}

	return &d, nil
}

// GetActiveByIDs resolves the given dish ids in one query, restricted to
// active dishes. Ids that are missing or inactive are simply absent from the
// result; the caller decides whether that is an error.
func (r *postgresRepository) GetActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]Dish, error) {
	query := `SELECT ` + dishColumns + ` FROM dishes WHERE id = ANY($1) AND active = true`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query active dishes: %w", err)
	}
	defer rows.Close()

	dishes := make([]Dish, 0, len(ids))
	for rows.Next() {
		var d Dish
		if err := scanDish(rows, &d); err != nil {
			return nil, fmt.Errorf("repository: failed to scan dish: %w", err)
		}
		dishes = append(dishes, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating active dishes: %w", err)
	}

	return dishes, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Dish, error) {
	query := `SELECT ` + dishColumns + ` FROM dishes ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query dishes: %w", err)
	}
	defer rows.Close()

	dishes := make([]Dish, 0)
	for rows.Next() {
		var d Dish
		if err := scanDish(rows, &d); err != nil {
			return nil, fmt.Errorf("repository: failed to scan dish: %w", err)
		}
		dishes = append(dishes, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating dishes: %w", err)
	}

	return dishes, nil
}

// ExistsByName reports whether another dish already uses the given name,
// compared case-insensitively. excludeID skips the dish being updated.
func (r *postgresRepository) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM dishes WHERE lower(name) = lower($1) AND id <> $2)`

	var exists bool
	err := r.db.QueryRow(ctx, query, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check dish name %q: %w", name, err)
	}

	return exists, nil
}

func (r *postgresRepository) Update(ctx context.Context, d *Dish) error {
	d.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE dishes
		SET name = $1, description = $2, price = $3, category = $4, active = $5, image = $6, updated_at = $7
		WHERE id = $8
	`
	cmdTag, err := r.db.Exec(ctx, query,
		d.Name,
		d.Description,
		d.Price,
		string(d.Category),
		d.Active,
		d.Image,
		d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrNameExists
		}
		return fmt.Errorf("repository: failed to update dish %s: %w", d.ID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM dishes WHERE id = $1`

	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrInUse
		}
		return fmt.Errorf("repository: failed to delete dish %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
