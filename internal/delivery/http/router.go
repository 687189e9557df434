package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventcalendar/internal/delivery/http/controllers"
	"eventcalendar/internal/delivery/http/helpers"
	"eventcalendar/internal/delivery/http/middleware"
	"eventcalendar/internal/domain"
	"eventcalendar/internal/metrics"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Events        *controllers.EventController
	Participation *controllers.ParticipationController
	Auth          *controllers.AuthController
	Calendar      *controllers.CalendarController
}

// RouterConfig carries the cross-cutting dependencies of the handler chain.
type RouterConfig struct {
	Logger             *slog.Logger
	Verifier           domain.TokenVerifier
	Metrics            *metrics.Metrics
	CORSAllowedOrigins []string
}

// NewRouter initializes the HTTP router with all application routes and wraps it
// in CORS, request logging, authentication and metrics, outermost first.
func NewRouter(c Controllers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("GET /events", c.Events.ListEvents)
	mux.HandleFunc("GET /events.ics", c.Calendar.Feed)
	mux.HandleFunc("POST /events", c.Events.CreateEvent)
	mux.HandleFunc("GET /events/{eventID}", c.Events.GetEvent)
	mux.HandleFunc("PUT /events/{eventID}", c.Events.UpdateEvent)
	mux.HandleFunc("DELETE /events/{eventID}", c.Events.DeleteEvent)
	mux.HandleFunc("POST /events/{eventID}/participation", c.Participation.ToggleParticipation)

	// Auth
	mux.HandleFunc("POST /auth/register", c.Auth.Register)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Ops
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", cfg.Metrics.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = middleware.Metrics(cfg.Metrics, mux)
	handler = middleware.Authenticate(cfg.Verifier, cfg.Logger)(handler)
	handler = middleware.LoggingMiddleware(cfg.Logger, handler)
	return middleware.CORS(cfg.CORSAllowedOrigins, handler)
}
