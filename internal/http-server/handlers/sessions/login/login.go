package login

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

type LoginHandler interface {
	Login(ctx context.Context, id string, req *api.LoginRequest) (*api.LoginResult, error)
}

type Request struct {
	api.LoginRequest
}

type Response struct {
	response.Response
	*api.LoginResult
}

func New(log *slog.Logger, handler LoginHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.login.New"

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

		// Never log the password.
		log.Info("Login requested", slog.String("email", req.Email))

		res, err := handler.Login(r.Context(), id, &req.LoginRequest)
		if err != nil {
			apierr.Write(w, r, log, err, "failed to log in")
			return
		}

		if res.Outcome != nil {
			log.Info("Deferred submission replayed", slog.String("state", res.Outcome.State))
		}

		render.JSON(w, r, Response{LoginResult: res})
	}
}
