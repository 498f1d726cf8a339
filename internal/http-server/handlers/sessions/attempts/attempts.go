package attempts

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

type AttemptLister interface {
	ListAttempts(ctx context.Context, id string) ([]api.Attempt, error)
}

type Response struct {
	response.Response
	Attempts []api.Attempt `json:"attempts"`
}

func New(log *slog.Logger, lister AttemptLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.attempts.New"

		id := chi.URLParam(r, "id")

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("session_id", id),
		)

		attempts, err := lister.ListAttempts(r.Context(), id)
		if err != nil {
			apierr.Write(w, r, log, err, "failed to list reservation attempts")
			return
		}

		log.Info("Reservation attempts retrieved", slog.Int("count", len(attempts)))

		render.JSON(w, r, Response{Attempts: attempts})
	}
}
