package bulk

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

type BulkSelector interface {
	BulkSelect(ctx context.Context, id string, req *api.BulkRequest) (*api.BulkResult, *api.Session, error)
}

type Request struct {
	api.BulkRequest
}

type Response struct {
	response.Response
	Result  *api.BulkResult `json:"result,omitempty"`
	Session *api.Session    `json:"session,omitempty"`
}

func New(log *slog.Logger, selector BulkSelector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.bulk.New"

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

		res, session, err := selector.BulkSelect(r.Context(), id, &req.BulkRequest)
		if err != nil {
			apierr.Write(w, r, log, err, "failed to apply selection")
			return
		}

		log.Info("Bulk selection applied",
			slog.String("shortcut", req.Shortcut),
			slog.String("period", req.Period),
			slog.Any("applied", res.Applied),
			slog.Any("skipped", res.Skipped),
		)

		render.JSON(w, r, Response{Result: res, Session: session})
	}
}
