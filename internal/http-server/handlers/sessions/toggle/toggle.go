package toggle

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"inderbu-scheduler/api"
	"inderbu-scheduler/internal/http-server/handlers/apierr"
	"inderbu-scheduler/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type SlotToggler interface {
	ToggleSlot(ctx context.Context, id string, hour int) (*api.Session, error)
}

type Response struct {
	response.Response
	Session *api.Session `json:"session,omitempty"`
}

func New(log *slog.Logger, toggler SlotToggler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.toggle.New"

		id := chi.URLParam(r, "id")

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("session_id", id),
		)

		hour, err := strconv.Atoi(chi.URLParam(r, "hour"))
		if err != nil {
			log.Info("Invalid hour", slog.String("hour", chi.URLParam(r, "hour")))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "hour must be an integer"))
			return
		}

		session, err := toggler.ToggleSlot(r.Context(), id, hour)
		if err != nil {
			apierr.Write(w, r, log, err, "failed to toggle slot")
			return
		}

		log.Debug("Slot toggled", slog.Int("hour", hour), slog.Any("selected", session.SelectedHours))

		render.JSON(w, r, Response{Session: session})
	}
}
