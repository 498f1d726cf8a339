package dates

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

type DatesSetter interface {
	SetDates(ctx context.Context, id string, req *api.DatesRequest) (*api.Session, error)
}

type Request struct {
	api.DatesRequest
}

type Response struct {
	response.Response
	Session *api.Session `json:"session,omitempty"`
}

func New(log *slog.Logger, setter DatesSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.dates.New"

		id := chi.URLParam(r, "id")

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("session_id", id),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			apierr.DecodeFailed(w, r, log, err)
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		session, err := setter.SetDates(r.Context(), id, &req.DatesRequest)
		if err != nil {
			apierr.Write(w, r, log, err, "failed to set dates")
			return
		}

		log.Info("Dates updated", slog.String("url_query", session.URLQuery))

		render.JSON(w, r, Response{Session: session})
	}
}
