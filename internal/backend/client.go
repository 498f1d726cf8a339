package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inderbu-scheduler/internal/scheduler"
	"inderbu-scheduler/pkg/sl"

	"github.com/go-chi/render"
)

// ConflictCode is the structured code the backend returns for a taken slot.
const ConflictCode = "SLOT_CONFLICT"

// legacyConflictMarkers are substrings of free-text errors older backends use for conflicts.
var legacyConflictMarkers = []string{"conflicto", "ocupado"}

type Options struct {
	BaseURL                string
	Timeout                time.Duration
	LegacyConflictMessages bool
}

// Client talks to the INDERBU reservations API.
type Client struct {
	client  *http.Client
	baseURL string
	legacy  bool
	log     *slog.Logger
}

func New(opts Options, log *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		legacy:  opts.LegacyConflictMessages,
		log:     log,
	}
}

type slotDTO struct {
	Hour   int    `json:"hour"`
	Status string `json:"status"`
}

type availabilityResponse struct {
	Slots []slotDTO `json:"slots"`
}

func (c *Client) FetchAvailability(ctx context.Context, q scheduler.AvailabilityQuery) (scheduler.Availability, error) {
	const op = "backend.Client.FetchAvailability"

	log := c.log.With(slog.String("op", op), slog.String("query", q.Key()))

	params := url.Values{}
	params.Set("subScenarioId", strconv.FormatInt(q.SubScenarioID, 10))
	params.Set("initialDate", scheduler.FormatDate(q.InitialDate))
	if q.FinalDate != nil {
		params.Set("finalDate", scheduler.FormatDate(*q.FinalDate))
	}
	if len(q.Weekdays) > 0 {
		params.Set("weekdays", scheduler.JoinWeekdays(q.Weekdays))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/availability?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error("Availability request failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error("Unexpected availability status", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%s: unexpected status code: %d", op, resp.StatusCode)
	}

	var body availabilityResponse
	if err := render.DecodeJSON(resp.Body, &body); err != nil {
		log.Error("Failed to decode availability", sl.Err(err))
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	avail := make(scheduler.Availability, len(body.Slots))
	for _, s := range body.Slots {
		if s.Hour < 0 || s.Hour >= scheduler.HoursPerDay {
			continue
		}
		avail[s.Hour] = parseStatus(s.Status)
	}

	log.Debug("Availability fetched", slog.Int("slots", len(body.Slots)))

	return avail, nil
}

func parseStatus(s string) scheduler.Status {
	switch strings.ToLower(s) {
	case "available", "free", "disponible":
		return scheduler.StatusAvailable
	case "occupied", "booked", "ocupado":
		return scheduler.StatusOccupied
	default:
		return scheduler.StatusUnknown
	}
}

type reservationRange struct {
	InitialDate string `json:"initialDate"`
	FinalDate   string `json:"finalDate,omitempty"`
}

type reservationRequest struct {
	SubScenarioID    int64            `json:"subScenarioId"`
	TimeSlotIDs      []int            `json:"timeSlotIds"`
	ReservationRange reservationRange `json:"reservationRange"`
	Weekdays         []int            `json:"weekdays,omitempty"`
}

type reservationResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CreateReservation posts cmd with the bearer token. Conflicts map to
// scheduler.ErrReservationConflict and rejected tokens to scheduler.ErrUnauthorized.
func (c *Client) CreateReservation(ctx context.Context, token string, cmd scheduler.ReservationCommand) error {
	const op = "backend.Client.CreateReservation"

	log := c.log.With(slog.String("op", op), slog.Int64("sub_scenario_id", cmd.SubScenarioID))

	body := reservationRequest{
		SubScenarioID: cmd.SubScenarioID,
		TimeSlotIDs:   cmd.TimeSlotIDs,
		ReservationRange: reservationRange{
			InitialDate: scheduler.FormatDate(cmd.Range.InitialDate),
		},
		Weekdays: cmd.Weekdays,
	}
	if cmd.Range.FinalDate != nil {
		body.ReservationRange.FinalDate = scheduler.FormatDate(*cmd.Range.FinalDate)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reservations", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error("Reservation request failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var res reservationResponse
	if err := decodeOptional(resp.Body, &res); err != nil {
		log.Warn("Failed to decode reservation response", sl.Err(err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, scheduler.ErrUnauthorized)
	case resp.StatusCode == http.StatusConflict || res.Code == ConflictCode:
		return fmt.Errorf("%s: %s: %w", op, res.Error, scheduler.ErrReservationConflict)
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s: unexpected status code: %d: %s", op, resp.StatusCode, res.Error)
	case !res.Success:
		if c.legacy && isLegacyConflict(res.Error) {
			log.Warn("Conflict detected from free-text error", slog.String("error", res.Error))
			return fmt.Errorf("%s: %s: %w", op, res.Error, scheduler.ErrReservationConflict)
		}
		return fmt.Errorf("%s: reservation rejected: %s", op, res.Error)
	}

	log.Info("Reservation accepted", slog.Any("time_slot_ids", cmd.TimeSlotIDs))

	return nil
}

func isLegacyConflict(msg string) bool {
	msg = strings.ToLower(msg)
	for _, marker := range legacyConflictMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	const op = "backend.Client.Login"

	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("Login request failed", slog.String("op", op), sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%s: unexpected status code: %d", op, resp.StatusCode)
	}

	var res loginResponse
	if err := render.DecodeJSON(resp.Body, &res); err != nil {
		return "", fmt.Errorf("%s: decode: %w", op, err)
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return res.AccessToken, nil
}

func decodeOptional(r io.Reader, v any) error {
	err := render.DecodeJSON(r, v)
	if err == io.EOF {
		return nil
	}

	return err
}
