package order_test

import (
	"context"
	"os"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samega18/MesaFacil/internal/dish"
	"github.com/Samega18/MesaFacil/internal/order"
)

// testPool connects to the database named by TEST_DATABASE_URL, or skips the
// test when the variable is unset. Migrations are expected to be applied.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration test")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func createTestDish(t *testing.T, pool *pgxpool.Pool, name string, price float64, active bool) dish.Dish {
	t.Helper()

	repo := dish.NewRepository(pool)
	d := dish.Dish{
		Name:        name,
		Description: "Criado pelo teste de integração",
		Price:       price,
		Category:    dish.CategoryMainCourse,
		Active:      active,
	}
	require.NoError(t, repo.Create(context.Background(), &d))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM dishes WHERE id = $1`, d.ID)
	})

	return d
}

func TestRepository_CreateAndGet(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	d := createTestDish(t, pool, "Pizza integração "+uuid.Must(uuid.NewV4()).String(), 35.90, true)

	repo := order.NewRepository(pool)
	o := &order.Order{
		TotalValue: 71.80,
		Status:     order.StatusReceived,
		Items: []order.Item{
			{DishID: d.ID, Quantity: 2, UnitPrice: 35.90, Subtotal: 71.80},
		},
	}

	require.NoError(t, repo.Create(ctx, o))
	t.Cleanup(func() {
		_ = repo.Delete(ctx, o.ID)
	})

	fetched, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)

	assert.Equal(t, o.ID, fetched.ID)
	assert.Equal(t, 71.80, fetched.TotalValue)
	assert.Equal(t, order.StatusReceived, fetched.Status)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, d.ID, fetched.Items[0].DishID)
	assert.Equal(t, 2, fetched.Items[0].Quantity)
	assert.Equal(t, 35.90, fetched.Items[0].UnitPrice)
	assert.Equal(t, 71.80, fetched.Items[0].Subtotal)
	require.NotNil(t, fetched.Items[0].Dish)
	assert.Equal(t, d.Name, fetched.Items[0].Dish.Name)
}

func TestRepository_CreateRollsBackOnBadItem(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	d := createTestDish(t, pool, "Pizza rollback "+uuid.Must(uuid.NewV4()).String(), 35.90, true)

	repo := order.NewRepository(pool)
	o := &order.Order{
		TotalValue: 71.80,
		Status:     order.StatusReceived,
		Items: []order.Item{
			{DishID: d.ID, Quantity: 2, UnitPrice: 35.90, Subtotal: 71.80},
			// The FK on dish_id rejects this line, which must take the
			// whole order down with it.
			{DishID: uuid.Must(uuid.NewV4()), Quantity: 1, UnitPrice: 9.99, Subtotal: 9.99},
		},
	}

	err := repo.Create(ctx, o)
	require.Error(t, err)

	_, err = repo.GetByID(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)

	var itemCount int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM order_items WHERE order_id = $1`, o.ID).Scan(&itemCount))
	assert.Zero(t, itemCount)
}

func TestRepository_UpdateStatus(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	d := createTestDish(t, pool, "Pizza status "+uuid.Must(uuid.NewV4()).String(), 35.90, true)

	repo := order.NewRepository(pool)
	o := &order.Order{
		TotalValue: 35.90,
		Status:     order.StatusReceived,
		Items:      []order.Item{{DishID: d.ID, Quantity: 1, UnitPrice: 35.90, Subtotal: 35.90}},
	}
	require.NoError(t, repo.Create(ctx, o))
	t.Cleanup(func() {
		_ = repo.Delete(ctx, o.ID)
	})

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, order.StatusPreparing))

	fetched, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPreparing, fetched.Status)
	assert.True(t, fetched.UpdatedAt.After(fetched.CreatedAt))

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.Must(uuid.NewV4()), order.StatusPreparing), order.ErrNotFound)
}

func TestRepository_DeleteRemovesItems(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	d := createTestDish(t, pool, "Pizza delete "+uuid.Must(uuid.NewV4()).String(), 35.90, true)

	repo := order.NewRepository(pool)
	o := &order.Order{
		TotalValue: 35.90,
		Status:     order.StatusReceived,
		Items:      []order.Item{{DishID: d.ID, Quantity: 1, UnitPrice: 35.90, Subtotal: 35.90}},
	}
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, repo.Delete(ctx, o.ID))

	_, err := repo.GetByID(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)

	var itemCount int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM order_items WHERE order_id = $1`, o.ID).Scan(&itemCount))
	assert.Zero(t, itemCount)

	assert.ErrorIs(t, repo.Delete(ctx, o.ID), order.ErrNotFound)
}

func TestRepository_InactiveDishExcludedFromActiveLookup(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	active := createTestDish(t, pool, "Ativo "+uuid.Must(uuid.NewV4()).String(), 10.00, true)
	inactive := createTestDish(t, pool, "Inativo "+uuid.Must(uuid.NewV4()).String(), 10.00, false)

	repo := dish.NewRepository(pool)
	resolved, err := repo.GetActiveByIDs(ctx, []uuid.UUID{active.ID, inactive.ID})
	require.NoError(t, err)

	require.Len(t, resolved, 1)
	assert.Equal(t, active.ID, resolved[0].ID)
}
