package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"inderbu-scheduler/internal/backend"
	"inderbu-scheduler/internal/scheduler"
	"inderbu-scheduler/pkg/response"
)

func TestWrite(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name   string
		err    error
		status int
		code   response.ErrCode
	}{
		{"not found", response.ErrNotFound, http.StatusNotFound, response.NOT_FOUND},
		{"locked", response.ErrLocked, http.StatusLocked, response.LOCKED},
		{"occupied", scheduler.ErrSlotOccupied, http.StatusConflict, response.SLOT_OCCUPIED},
		{"conflict", scheduler.ErrReservationConflict, http.StatusConflict, response.SLOT_CONFLICT},
		{"bad credentials", backend.ErrInvalidCredentials, http.StatusUnauthorized, response.LOGIN_REQUIRED},
		{"nothing deferred", scheduler.ErrNoPendingSubmission, http.StatusConflict, response.VALIDATION_FAILED},
		{"validation", scheduler.ErrNoSelection, http.StatusUnprocessableEntity, response.VALIDATION_FAILED},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, response.FAILED_REQUEST},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			Write(w, r, log, fmt.Errorf("service.Op: %w", tt.err), "request failed")

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}

			var body response.Response
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.ResponseError.Code != string(tt.code) {
				t.Errorf("code = %q, want %q", body.ResponseError.Code, tt.code)
			}
		})
	}
}
