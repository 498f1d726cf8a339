package create

import (
	"context"
	"log/slog"
	"net/http"

	"inderbu-scheduler/api"
	"inderbu-scheduler/internal/http-server/handlers/apierr"
	"inderbu-scheduler/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

// VisitorHeader identifies the browser that owns the onboarding flag.
const VisitorHeader = "X-Visitor-ID"

type SessionCreator interface {
	CreateSession(ctx context.Context, visitorID string, req *api.CreateSessionRequest) (*api.Session, error)
}

type Request struct {
	api.CreateSessionRequest
}

type Response struct {
	response.Response
	Session *api.Session `json:"session,omitempty"`
}

func New(log *slog.Logger, creator SessionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			apierr.DecodeFailed(w, r, log, err)
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		session, err := creator.CreateSession(r.Context(), r.Header.Get(VisitorHeader), &req.CreateSessionRequest)
		if err != nil {
			apierr.Write(w, r, log, err, "failed to create session")
			return
		}

		log.Info("Session created", slog.String("session_id", session.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Session: session})
	}
}
