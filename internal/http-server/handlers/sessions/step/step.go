package step

import (
	"context"
	"log/slog"
	"net/http"

	"inderbu-scheduler/api"
	"inderbu-scheduler/internal/http-server/handlers/apierr"
	"inderbu-scheduler/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type Navigator interface {
	Navigate(ctx context.Context, id, step string) (*api.Session, error)
}

type Response struct {
	response.Response
	Session *api.Session `json:"session,omitempty"`
}

func New(log *slog.Logger, nav Navigator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.step.New"

		id := chi.URLParam(r, "id")
		step := chi.URLParam(r, "step")

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("session_id", id),
		)

		session, err := nav.Navigate(r.Context(), id, step)
		if err != nil {
			apierr.Write(w, r, log, err, "failed to change step")
			return
		}

		log.Debug("Step changed", slog.String("step", session.Step))

		render.JSON(w, r, Response{Session: session})
	}
}
