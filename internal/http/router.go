package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/rogerio-castellano/school-inventory/docs"
	"github.com/rogerio-castellano/school-inventory/internal/http/handlers"
	rl "github.com/rogerio-castellano/school-inventory/internal/http/rate_limiter"
	"github.com/rogerio-castellano/school-inventory/internal/logging"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const RoleAdmin = "admin"

var loginLimiter = rl.New(1, 5, 10*time.Minute)

// SetLoginLimiter replaces the per-IP limiter guarding /login.
func SetLoginLimiter(l *rl.Limiter) {
	loginLimiter = l
}

func LoginLimiter() *rl.Limiter {
	return loginLimiter
}

func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(logging.Requests)
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.With(loginLimiter.Middleware).Post("/login", handlers.LoginHandler)

	r.Get("/inventory", handlers.GetInventoryHandler)
	r.Get("/inventory/export", handlers.ExportInventoryHandler)
	r.Get("/inventory/{id}", handlers.GetItemHandler)
	r.Get("/categories", handlers.GetCategoriesHandler)
	r.Get("/requests", handlers.GetRequestsHandler)
	r.Get("/requests/{id}", handlers.GetRequestHandler)
	r.Get("/dashboard", handlers.DashboardHandler)
	r.Get("/reports", handlers.ReportsHandler)
	r.Get("/notices", handlers.GetNoticesHandler)
	r.Get("/notices/stream", handlers.StreamNoticesHandler)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware)

		r.Post("/logout", handlers.LogoutHandler)

		r.Post("/inventory", handlers.CreateItemHandler)
		r.Put("/inventory/{id}", handlers.UpdateItemHandler)
		r.Post("/inventory/{id}/adjust", handlers.AdjustQuantityHandler)

		r.Post("/requests", handlers.CreateRequestHandler)
		r.Post("/requests/{id}/{action}", handlers.TransitionRequestHandler)

		r.Post("/categories", handlers.CreateCategoryHandler)
		r.Put("/categories/{id}", handlers.UpdateCategoryHandler)

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(RoleAdmin))

			r.Delete("/inventory/{id}", handlers.DeleteItemHandler)
			r.Post("/inventory/bulk-delete", handlers.BulkDeleteHandler)
			r.Post("/inventory/import", handlers.ImportItemsHandler)
			r.Delete("/requests/{id}", handlers.DeleteRequestHandler)
			r.Delete("/categories/{id}", handlers.DeleteCategoryHandler)
		})
	})

	return r
}
