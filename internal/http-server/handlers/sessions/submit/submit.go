package submit

import (
	"context"
	"log/slog"
	"net/http"

	"inderbu-scheduler/api"
	"inderbu-scheduler/internal/auth"
	"inderbu-scheduler/internal/http-server/handlers/apierr"
	"inderbu-scheduler/internal/scheduler"
	"inderbu-scheduler/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type Submitter interface {
	Submit(ctx context.Context, id, token string) (*api.SubmitResult, error)
}

type Response struct {
	response.Response
	Outcome *api.Outcome `json:"outcome,omitempty"`
	Session *api.Session `json:"session,omitempty"`
}

func New(log *slog.Logger, submitter Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.submit.New"

		id := chi.URLParam(r, "id")

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("session_id", id),
		)

		token := auth.BearerToken(r.Header.Get("Authorization"))

		res, err := submitter.Submit(r.Context(), id, token)
		if err != nil {
			apierr.Write(w, r, log, err, "failed to submit reservation")
			return
		}

		log.Info("Submission finished",
			slog.String("state", res.Outcome.State),
			slog.Any("lost_hours", res.Outcome.LostHours),
		)

		body := Response{Outcome: &res.Outcome, Session: &res.Session}

		switch scheduler.SubmitState(res.Outcome.State) {
		case scheduler.StateSucceeded:
			w.WriteHeader(http.StatusCreated)
		case scheduler.StateLoginRequired:
			body.Response = response.Error(response.LOGIN_REQUIRED, res.Outcome.Message)
			w.WriteHeader(http.StatusUnauthorized)
		case scheduler.StateConflict:
			body.Response = response.Error(response.SLOT_CONFLICT, res.Outcome.Message)
			w.WriteHeader(http.StatusConflict)
		case scheduler.StateFailed:
			body.Response = response.Error(response.FAILED_REQUEST, res.Outcome.Message)
			w.WriteHeader(http.StatusBadGateway)
		}

		render.JSON(w, r, body)
	}
}
