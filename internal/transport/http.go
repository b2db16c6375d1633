package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/Samega18/MesaFacil/internal/dish"
	"github.com/Samega18/MesaFacil/internal/handler"
	"github.com/Samega18/MesaFacil/internal/order"
)

// NewRouter wires repositories, services and handlers over the given pool and
// mounts the API under /api. The mobile client is served from another origin,
// so the whole surface is CORS-enabled.
func NewRouter(pool *pgxpool.Pool) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	dishRepo := dish.NewRepository(pool)
	dishService := dish.NewService(dishRepo)

	orderRepo := order.NewRepository(pool)
	gate := order.NewCatalogGate(dishRepo)
	orderService := order.NewService(orderRepo, gate)

	r.Route("/api", func(api chi.Router) {
		handler.NewDishHandler(dishService).RegisterRoutes(api)
		handler.NewOrderHandler(orderService).RegisterRoutes(api)
	})

	return cors.Default().Handler(r)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
