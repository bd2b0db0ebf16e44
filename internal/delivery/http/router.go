package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"collegeevents/internal/delivery/http/controllers"
	"collegeevents/internal/delivery/http/middleware"
	"collegeevents/internal/domain"
)

// RouterConfig carries the controllers and cross-cutting dependencies of the router.
type RouterConfig struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	AllowedOrigins []string

	Auth          *controllers.AuthController
	Events        *controllers.EventController
	Attendees     *controllers.AttendeeController
	Notifications *controllers.NotificationController
	Admin         *controllers.AdminController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	requireAuth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)
	requireClub := middleware.RequireRole(domain.RoleClub)

	r.Get("/health", controllers.Health)

	// Auth
	r.Post("/auth/signup", cfg.Auth.SignUp)
	r.Post("/auth/login", cfg.Auth.Login)
	r.With(requireAuth).Post("/auth/logout", cfg.Auth.Logout)
	r.With(requireAuth).Get("/auth/me", cfg.Auth.Me)

	// Browse
	r.Get("/clubs", cfg.Events.ListClubs)
	r.Get("/events", cfg.Events.ListEvents)
	r.Get("/events/{eventID}", cfg.Events.GetEvent)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		// Club management; the service also checks ownership.
		r.With(requireClub).Post("/events", cfg.Events.CreateEvent)
		r.With(requireClub).Patch("/events/{eventID}", cfg.Events.UpdateEvent)
		r.Post("/events/{eventID}/complete", cfg.Events.CompleteEvent)

		// Attendee
		r.Post("/events/{eventID}/registrations", cfg.Attendees.Register)
		r.Get("/me/registrations", cfg.Attendees.ListMyRegistrations)
		r.Get("/me/registrations/{registrationID}/certificate", cfg.Attendees.Certificate)

		// Notifications
		r.Get("/notifications", cfg.Notifications.List)
		r.Delete("/notifications", cfg.Notifications.Clear)
		r.Delete("/notifications/{noticeID}", cfg.Notifications.Dismiss)

		r.With(requireClub).Post("/admin/reset", cfg.Admin.ResetDemoData)
	})

	// Swagger
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
