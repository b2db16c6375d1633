package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Samega18/MesaFacil/internal/dish"
)

type mockDishService struct {
	createFunc  func(ctx context.Context, input dish.CreateInput) (*dish.Dish, error)
	listFunc    func(ctx context.Context) ([]dish.Dish, error)
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*dish.Dish, error)
	updateFunc  func(ctx context.Context, id uuid.UUID, input dish.UpdateInput) (*dish.Dish, error)
	deleteFunc  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDishService) Create(ctx context.Context, input dish.CreateInput) (*dish.Dish, error) {
	return m.createFunc(ctx, input)
}

func (m *mockDishService) List(ctx context.Context) ([]dish.Dish, error) {
	return m.listFunc(ctx)
}

func (m *mockDishService) GetByID(ctx context.Context, id uuid.UUID) (*dish.Dish, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockDishService) Update(ctx context.Context, id uuid.UUID, input dish.UpdateInput) (*dish.Dish, error) {
	return m.updateFunc(ctx, id, input)
}

func (m *mockDishService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func newDishRouter(svc dish.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		NewDishHandler(svc).RegisterRoutes(api)
	})
	return r
}

const pizzaIDStr = "550e8400-e29b-41d4-a716-446655440000"

func TestDishHandler_Create(t *testing.T) {
	pizzaID := uuid.FromStringOrNil(pizzaIDStr)

	t.Run("created", func(t *testing.T) {
		svc := &mockDishService{
			createFunc: func(ctx context.Context, input dish.CreateInput) (*dish.Dish, error) {
				return &dish.Dish{
					ID:          pizzaID,
					Name:        input.Name,
					Description: input.Description,
					Price:       input.Price,
					Category:    input.Category,
					Active:      true,
				}, nil
			},
		}
		r := newDishRouter(svc)

		body := `{"name":"Pizza","description":"Pizza tradicional italiana","price":35.90,"category":"MAIN_COURSE"}`
		req := httptest.NewRequest(http.MethodPost, "/api/dishes", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var created dish.Dish
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "Pizza", created.Name)
		assert.True(t, created.Active)
		assert.Equal(t, 35.90, created.Price)
	})

	t.Run("empty_name_fails_on_the_name_field", func(t *testing.T) {
		svc := &mockDishService{
			createFunc: func(ctx context.Context, input dish.CreateInput) (*dish.Dish, error) {
				t.Fatal("service must not be called")
				return nil, nil
			},
		}
		r := newDishRouter(svc)

		body := `{"name":"","description":"Pizza tradicional italiana","price":35.90,"category":"MAIN_COURSE"}`
		req := httptest.NewRequest(http.MethodPost, "/api/dishes", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ValidationErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Dados inválidos", resp.Error)
		assert.Len(t, resp.Details, 1)
		assert.Equal(t, "name", resp.Details[0].Field)
	})

	t.Run("every_violated_field_is_reported", func(t *testing.T) {
		svc := &mockDishService{
			createFunc: func(ctx context.Context, input dish.CreateInput) (*dish.Dish, error) {
				t.Fatal("service must not be called")
				return nil, nil
			},
		}
		r := newDishRouter(svc)

		body := `{"name":"P","description":"curta","price":-1,"category":"SOUP"}`
		req := httptest.NewRequest(http.MethodPost, "/api/dishes", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ValidationErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		fields := make([]string, 0, len(resp.Details))
		for _, d := range resp.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"name", "description", "price", "category"}, fields)
	})

	t.Run("duplicate_name_conflicts", func(t *testing.T) {
		svc := &mockDishService{
			createFunc: func(ctx context.Context, input dish.CreateInput) (*dish.Dish, error) {
				return nil, dish.ErrNameExists
			},
		}
		r := newDishRouter(svc)

		body := `{"name":"Pizza","description":"Pizza tradicional italiana","price":35.90,"category":"MAIN_COURSE"}`
		req := httptest.NewRequest(http.MethodPost, "/api/dishes", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "DISH_NAME_EXISTS", resp.Code)
		assert.Equal(t, "Já existe um prato com este nome", resp.Message)
	})

	t.Run("malformed_body", func(t *testing.T) {
		svc := &mockDishService{}
		r := newDishRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/dishes", bytes.NewBufferString(`{invalid`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDishHandler_Get(t *testing.T) {
	pizzaID := uuid.FromStringOrNil(pizzaIDStr)

	t.Run("found", func(t *testing.T) {
		svc := &mockDishService{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*dish.Dish, error) {
				return &dish.Dish{ID: id, Name: "Pizza", Price: 35.90, Category: dish.CategoryMainCourse, Active: true}, nil
			},
		}
		r := newDishRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/dishes/"+pizzaIDStr, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var found dish.Dish
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
		assert.Equal(t, pizzaID, found.ID)
	})

	t.Run("not_found", func(t *testing.T) {
		svc := &mockDishService{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*dish.Dish, error) {
				return nil, dish.ErrNotFound
			},
		}
		r := newDishRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/dishes/"+pizzaIDStr, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed_id", func(t *testing.T) {
		svc := &mockDishService{}
		r := newDishRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/dishes/not-a-uuid", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDishHandler_Update(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		svc := &mockDishService{
			updateFunc: func(ctx context.Context, id uuid.UUID, input dish.UpdateInput) (*dish.Dish, error) {
				assert.Nil(t, input.Name)
				assert.NotNil(t, input.Price)
				return &dish.Dish{ID: id, Name: "Pizza", Price: *input.Price, Category: dish.CategoryMainCourse, Active: true}, nil
			},
		}
		r := newDishRouter(svc)

		req := httptest.NewRequest(http.MethodPut, "/api/dishes/"+pizzaIDStr, bytes.NewBufferString(`{"price":42.00}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		svc := &mockDishService{
			updateFunc: func(ctx context.Context, id uuid.UUID, input dish.UpdateInput) (*dish.Dish, error) {
				return nil, dish.ErrNotFound
			},
		}
		r := newDishRouter(svc)

		req := httptest.NewRequest(http.MethodPut, "/api/dishes/"+pizzaIDStr, bytes.NewBufferString(`{"price":42.00}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDishHandler_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := &mockDishService{
			deleteFunc: func(ctx context.Context, id uuid.UUID) error { return nil },
		}
		r := newDishRouter(svc)

		req := httptest.NewRequest(http.MethodDelete, "/api/dishes/"+pizzaIDStr, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("referenced_dish_conflicts", func(t *testing.T) {
		svc := &mockDishService{
			deleteFunc: func(ctx context.Context, id uuid.UUID) error { return dish.ErrInUse },
		}
		r := newDishRouter(svc)

		req := httptest.NewRequest(http.MethodDelete, "/api/dishes/"+pizzaIDStr, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "DISH_IN_USE", resp.Code)
	})
}
