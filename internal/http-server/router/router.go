package router

import (
	"log/slog"
	"net/http"

	"inderbu-scheduler/internal/http-server/handlers/onboarding/complete"
	"inderbu-scheduler/internal/http-server/handlers/sessions/attempts"
	"inderbu-scheduler/internal/http-server/handlers/sessions/bulk"
	selectionClear "inderbu-scheduler/internal/http-server/handlers/sessions/clear"
	"inderbu-scheduler/internal/http-server/handlers/sessions/create"
	"inderbu-scheduler/internal/http-server/handlers/sessions/dates"
	"inderbu-scheduler/internal/http-server/handlers/sessions/get"
	"inderbu-scheduler/internal/http-server/handlers/sessions/login"
	"inderbu-scheduler/internal/http-server/handlers/sessions/step"
	"inderbu-scheduler/internal/http-server/handlers/sessions/submit"
	"inderbu-scheduler/internal/http-server/handlers/sessions/toggle"
	"inderbu-scheduler/pkg/middleware/mwLogger"
	"inderbu-scheduler/pkg/middleware/rateLimit"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

// Service is everything the HTTP API needs from the scheduler service.
type Service interface {
	create.SessionCreator
	get.SessionGetter
	dates.DatesSetter
	toggle.SlotToggler
	bulk.BulkSelector
	selectionClear.SelectionClearer
	step.Navigator
	submit.Submitter
	login.LoginHandler
	attempts.AttemptLister
	complete.OnboardingCompleter
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+create.VisitorHeader)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func New(log *slog.Logger, service Service, limits rateLimit.Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(CORS)
	if limits.RPS > 0 {
		router.Use(rateLimit.New(log, limits))
	}

	// Sessions
	router.Post("/sessions", create.New(log, service))
	router.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", get.New(log, service))
		r.Put("/dates", dates.New(log, service))
		r.Post("/slots/{hour}/toggle", toggle.New(log, service))
		r.Post("/selection/bulk", bulk.New(log, service))
		r.Delete("/selection", selectionClear.New(log, service))
		r.Post("/steps/{step}", step.New(log, service))
		r.Post("/reservations", submit.New(log, service))
		r.Get("/reservations", attempts.New(log, service))
		r.Post("/login", login.New(log, service))
	})

	// Onboarding
	router.Post("/onboarding/complete", complete.New(log, service))

	return router
}
