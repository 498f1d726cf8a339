package complete

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"inderbu-scheduler/api"
	"inderbu-scheduler/internal/http-server/handlers/apierr"
	"inderbu-scheduler/internal/http-server/handlers/sessions/create"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type OnboardingCompleter interface {
	CompleteOnboarding(ctx context.Context, visitorID, sessionID string) error
}

type Request struct {
	api.OnboardingRequest
}

func New(log *slog.Logger, completer OnboardingCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.onboarding.complete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		// The body is optional.
		if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
			apierr.DecodeFailed(w, r, log, err)
			return
		}

		visitorID := r.Header.Get(create.VisitorHeader)

		if err := completer.CompleteOnboarding(r.Context(), visitorID, req.SessionID); err != nil {
			apierr.Write(w, r, log, err, "failed to complete onboarding")
			return
		}

		log.Info("Onboarding completed", slog.String("visitor_id", visitorID), slog.String("session_id", req.SessionID))

		w.WriteHeader(http.StatusNoContent)
	}
}
