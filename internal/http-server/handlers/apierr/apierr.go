package apierr

import (
	"errors"
	"log/slog"
	"net/http"

	"inderbu-scheduler/internal/backend"
	"inderbu-scheduler/internal/scheduler"
	"inderbu-scheduler/pkg/response"
	"inderbu-scheduler/pkg/sl"

	"github.com/go-chi/render"
)

type mapping struct {
	target error
	status int
	code   response.ErrCode
	msg    string
}

// Order matters: the first matching sentinel wins.
var mappings = []mapping{
	{response.ErrNotFound, http.StatusNotFound, response.NOT_FOUND, "session not found"},
	{response.ErrLocked, http.StatusLocked, response.LOCKED, "a submission for this session is already running"},
	{scheduler.ErrSubmitInProgress, http.StatusLocked, response.LOCKED, "a submission for this session is already running"},
	{scheduler.ErrSlotOccupied, http.StatusConflict, response.SLOT_OCCUPIED, "slot is occupied"},
	{scheduler.ErrNoAvailableHours, http.StatusConflict, response.NO_AVAILABLE_HOURS, "none of the requested hours is available"},
	{scheduler.ErrReservationConflict, http.StatusConflict, response.SLOT_CONFLICT, "slot was taken by another reservation"},
	{backend.ErrInvalidCredentials, http.StatusUnauthorized, response.LOGIN_REQUIRED, "invalid credentials"},
	{scheduler.ErrNoPendingSubmission, http.StatusConflict, response.VALIDATION_FAILED, "no submission is waiting for login"},
}

var validation = []error{
	response.ErrValidation,
	scheduler.ErrInvalidHour,
	scheduler.ErrInvalidWeekday,
	scheduler.ErrInvalidMode,
	scheduler.ErrNoDate,
	scheduler.ErrNoEndDate,
	scheduler.ErrEndNotAfterStart,
	scheduler.ErrRangeModeOff,
	scheduler.ErrNoSelection,
	scheduler.ErrUnknownShortcut,
	scheduler.ErrUnknownPeriod,
	scheduler.ErrUnknownStep,
	scheduler.ErrAvailabilityLoading,
	scheduler.ErrAvailabilityUnknown,
}

// Write maps err to a status and error body. fallback is the message used for
// unexpected errors, which are logged at error level.
func Write(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, fallback string) {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			log.Warn(m.msg, sl.Err(err))
			w.WriteHeader(m.status)
			render.JSON(w, r, response.Error(m.code, m.msg))
			return
		}
	}

	for _, target := range validation {
		if errors.Is(err, target) {
			log.Info("Validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(response.VALIDATION_FAILED, target.Error()))
			return
		}
	}

	log.Error(fallback, sl.Err(err))
	w.WriteHeader(http.StatusInternalServerError)
	render.JSON(w, r, response.Error(response.FAILED_REQUEST, fallback))
}

// DecodeFailed writes the response for an unreadable request body.
func DecodeFailed(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.Error("Failed to decode request body", sl.Err(err))
	w.WriteHeader(http.StatusBadRequest)
	render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
}
