package clear

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

type SelectionClearer interface {
	ClearSelection(ctx context.Context, id string) (*api.Session, error)
}

type Response struct {
	response.Response
	Session *api.Session `json:"session,omitempty"`
}

func New(log *slog.Logger, clearer SelectionClearer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.clear.New"

		id := chi.URLParam(r, "id")

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("session_id", id),
		)

		session, err := clearer.ClearSelection(r.Context(), id)
		if err != nil {
			apierr.Write(w, r, log, err, "failed to clear selection")
			return
		}

		log.Info("Selection cleared")

		render.JSON(w, r, Response{Session: session})
	}
}
