package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/trip-expense-api/internal/auth"
	"github.com/redmonkez12/trip-expense-api/internal/config"
	"github.com/redmonkez12/trip-expense-api/internal/httputil"
	"github.com/redmonkez12/trip-expense-api/internal/logging"
	"github.com/redmonkez12/trip-expense-api/internal/trip"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	tripHandler *trip.Handler,
	authMiddleware *auth.Middleware,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS must run before anything that can short-circuit the request.
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	// Public routes.
	r.Get("/test/", handleTest)
	r.Post("/login/", authHandler.Login)
	r.Post("/add-user/", authHandler.Register)
	r.Get("/verify-email/", authHandler.VerifyEmail)

	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Protected routes.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Get("/my-trips/", tripHandler.MyTrips)
		r.Get("/my-trips/{trip_id}/details/", tripHandler.TripDetails)
		r.Post("/add-trip/", tripHandler.AddTrip)
		r.Put("/update-trip/{trip_id}", tripHandler.UpdateTrip)
		r.Delete("/delete-trip/{trip_id}", tripHandler.DeleteTrip)
		r.Post("/add-expense/", tripHandler.AddExpense)
		r.Delete("/delete-expense/{expense_id}", tripHandler.DeleteExpense)
	})

	return r
}

// handleTest is the liveness endpoint
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /test/ [get]
func handleTest(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{
		"status":  "success",
		"message": "A request was successfully sent",
	}, http.StatusOK)
}
