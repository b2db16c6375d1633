package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, status Status) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Create persists the order header and every item in a single transaction.
// Either the whole order commits or nothing does; a failed create leaves no
// partial order visible to readers.
func (r *postgresRepository) Create(ctx context.Context, o *Order) (err error) {
	if o.ID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		o.ID = genID
	}

	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Stringer("order_id", o.ID).Msg("panic during order create, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			log.Warn().Err(err).Stringer("order_id", o.ID).Msg("order create transaction failed, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	queryOrder := `
		INSERT INTO orders (id, total_value, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID,
		o.TotalValue,
		string(o.Status),
		o.Notes,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, dish_id, quantity, unit_price, subtotal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i := range o.Items {
		item := &o.Items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
			return err
		}
		item.ID = itemID
		item.OrderID = o.ID
		item.CreatedAt = now
		item.UpdatedAt = now

		_, err = tx.Exec(ctx, queryItem,
			item.ID,
			item.OrderID,
			item.DishID,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
			item.CreatedAt,
			item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}
	}

	return nil
}

const itemWithDishQuery = `
	SELECT oi.id, oi.order_id, oi.dish_id, oi.quantity, oi.unit_price, oi.subtotal, oi.created_at, oi.updated_at,
	       d.name, d.price, d.category, d.image
	FROM order_items oi
	JOIN dishes d ON d.id = oi.dish_id
`

func scanItemWithDish(rows pgx.Rows) (Item, error) {
	var (
		item    Item
		summary DishSummary
	)
	err := rows.Scan(
		&item.ID,
		&item.OrderID,
		&item.DishID,
		&item.Quantity,
		&item.UnitPrice,
		&item.Subtotal,
		&item.CreatedAt,
		&item.UpdatedAt,
		&summary.Name,
		&summary.Price,
		&summary.Category,
		&summary.Image,
	)
	if err != nil {
		return Item{}, err
	}
	summary.ID = item.DishID
	item.Dish = &summary
	return item, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	queryOrder := `
		SELECT id, total_value, status, notes, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRow(ctx, queryOrder, id).Scan(
		&o.ID,
		&o.TotalValue,
		&o.Status,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	rows, err := r.db.Query(ctx, itemWithDishQuery+` WHERE oi.order_id = $1 ORDER BY oi.created_at ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order %s: %w", id, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItemWithDish(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order %s: %w", id, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order %s: %w", id, err)
	}

	o.Items = items

	return &o, nil
}

// List returns orders newest first, optionally filtered by status. An empty
// status means no filter.
func (r *postgresRepository) List(ctx context.Context, status Status) ([]Order, error) {
	queryOrders := `
		SELECT id, total_value, status, notes, created_at, updated_at
		FROM orders
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
	`

	orderRows, err := r.db.Query(ctx, queryOrders, string(status))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		var o Order
		err := orderRows.Scan(
			&o.ID,
			&o.TotalValue,
			&o.Status,
			&o.Notes,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]Item, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}
	if err = orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	itemRows, err := r.db.Query(ctx, itemWithDishQuery+` WHERE oi.order_id = ANY($1) ORDER BY oi.created_at ASC`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanItemWithDish(itemRows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if o, ok := ordersMap[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err = itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	orders := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *ordersMap[id])
	}

	return orders, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), time.Now().UTC(), id)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", id).Str("new_status", string(newStatus)).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update status for order %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	query := `
		UPDATE orders
		SET notes = $1, updated_at = $2
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, notes, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update notes for order %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the order's items and then its header as one transaction.
// Unlike dish deletion there is no dependent-record guard.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", id).Msg("failed to rollback delete transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	_, err = tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete items for order %s: %w", id, err)
	}

	cmdTag, execErr := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if execErr != nil {
		err = fmt.Errorf("repository: failed to delete order %s: %w", id, execErr)
		return err
	}

	if cmdTag.RowsAffected() == 0 {
		err = ErrNotFound
		return err
	}

	return nil
}
