package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"inderbu-scheduler/pkg/sl"
)

type SubmitState string

const (
	StateIdle          SubmitState = "idle"
	StateValidating    SubmitState = "validating"
	StateSubmitting    SubmitState = "submitting"
	StateSucceeded     SubmitState = "succeeded"
	StateConflict      SubmitState = "conflict"
	StateFailed        SubmitState = "failed"
	StateLoginRequired SubmitState = "login_required"
)

type ReservationRange struct {
	InitialDate time.Time
	FinalDate   *time.Time
}

// ReservationCommand is the payload sent to the reservation endpoint.
type ReservationCommand struct {
	SubScenarioID int64
	TimeSlotIDs   []int
	Range         ReservationRange
	Weekdays      []int
}

// ReservationGateway submits reservations. Implementations return ErrReservationConflict
// when the backend reports a taken slot and ErrUnauthorized when the token is rejected.
type ReservationGateway interface {
	CreateReservation(ctx context.Context, token string, cmd ReservationCommand) error
}

type Outcome struct {
	State     SubmitState
	Message   string
	LostHours []int
	Command   *ReservationCommand
	Path      []SubmitState
}

type SubmitterDeps struct {
	SubScenarioID int64
	Selection     *Selection
	Dates         *DateRange
	Availability  *AvailabilityTracker
	Gateway       ReservationGateway
	// Authenticated reports whether token may be sent to the backend.
	// When nil any non-empty token is accepted.
	Authenticated func(token string) bool
	Log           *slog.Logger
}

// Submitter runs the reservation state machine of one scheduler session:
// idle -> validating -> submitting -> {succeeded, conflict, failed} -> idle.
type Submitter struct {
	deps SubmitterDeps
	log  *slog.Logger

	mu      sync.Mutex
	state   SubmitState
	pending *ReservationCommand
	last    *Outcome
}

func NewSubmitter(deps SubmitterDeps) *Submitter {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	if deps.Authenticated == nil {
		deps.Authenticated = func(token string) bool { return token != "" }
	}

	return &Submitter{
		deps:  deps,
		log:   log,
		state: StateIdle,
	}
}

// Submit validates the current selection and sends it to the backend. Validation
// failures are returned as errors and never reach the backend; every other result is
// reported through the Outcome.
func (s *Submitter) Submit(ctx context.Context, token string) (*Outcome, error) {
	const op = "scheduler.Submitter.Submit"

	path, err := s.begin(StateValidating)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cmd, lost, err := s.validate()
	if err != nil {
		s.finish(nil)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// A validated submission replaces any command still waiting for login.
	s.CancelPending()

	if len(lost) > 0 {
		out := &Outcome{
			State:     StateConflict,
			Message:   "Some selected slots are no longer available: " + formatHours(lost),
			LostHours: lost,
			Command:   &cmd,
			Path:      append(path, StateConflict),
		}
		s.log.Info("Stale selection detected before submit", slog.String("op", op), slog.Any("lost_hours", lost))
		s.finish(out)
		return out, nil
	}

	if !s.deps.Authenticated(token) {
		out := s.deferForLogin(cmd, append(path, StateLoginRequired))
		s.finish(out)
		return out, nil
	}

	out := s.send(ctx, token, cmd, path)
	s.finish(out)

	return out, nil
}

// ResumeAfterLogin replays the submission deferred behind a login prompt exactly once,
// with the same payload.
func (s *Submitter) ResumeAfterLogin(ctx context.Context, token string) (*Outcome, error) {
	const op = "scheduler.Submitter.ResumeAfterLogin"

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrSubmitInProgress)
	}
	if s.pending == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrNoPendingSubmission)
	}
	cmd := *s.pending
	s.pending = nil
	s.state = StateSubmitting
	s.mu.Unlock()

	out := s.send(ctx, token, cmd, []SubmitState{StateIdle})
	s.finish(out)

	return out, nil
}

// CancelPending drops a submission waiting for login.
func (s *Submitter) CancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
}

func (s *Submitter) Pending() *ReservationCommand {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil
	}
	cmd := *s.pending

	return &cmd
}

func (s *Submitter) State() SubmitState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Submitter) LastOutcome() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}

func (s *Submitter) begin(next SubmitState) ([]SubmitState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return nil, ErrSubmitInProgress
	}
	s.state = next

	return []SubmitState{StateIdle, next}, nil
}

func (s *Submitter) finish(out *Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if out != nil {
		out.Path = append(out.Path, StateIdle)
		s.last = out
	}
	s.state = StateIdle
}

func (s *Submitter) setState(st SubmitState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = st
}

func (s *Submitter) validate() (ReservationCommand, []int, error) {
	if s.deps.Selection.Len() == 0 {
		return ReservationCommand{}, nil, ErrNoSelection
	}

	q, err := s.deps.Dates.Query(s.deps.SubScenarioID)
	if err != nil {
		return ReservationCommand{}, nil, err
	}

	if s.deps.Availability.Loading() {
		return ReservationCommand{}, nil, ErrAvailabilityLoading
	}
	if current, ok := s.deps.Availability.Query(); !ok || !current.Equal(q) || !s.deps.Availability.Current() {
		return ReservationCommand{}, nil, ErrAvailabilityUnknown
	}

	cmd := ReservationCommand{
		SubScenarioID: q.SubScenarioID,
		TimeSlotIDs:   s.deps.Selection.Hours(),
		Range: ReservationRange{
			InitialDate: q.InitialDate,
			FinalDate:   q.FinalDate,
		},
		Weekdays: q.Weekdays,
	}

	lost := s.deps.Selection.RemoveUnavailable(s.deps.Availability.IsSlotAvailable)

	return cmd, lost, nil
}

func (s *Submitter) deferForLogin(cmd ReservationCommand, path []SubmitState) *Outcome {
	s.mu.Lock()
	s.pending = &cmd
	s.mu.Unlock()

	s.log.Info("Submission deferred until login", slog.Int64("sub_scenario_id", cmd.SubScenarioID))

	return &Outcome{
		State:   StateLoginRequired,
		Message: "Log in to complete your reservation",
		Command: &cmd,
		Path:    path,
	}
}

func (s *Submitter) send(ctx context.Context, token string, cmd ReservationCommand, path []SubmitState) *Outcome {
	const op = "scheduler.Submitter.send"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("sub_scenario_id", cmd.SubScenarioID),
		slog.Any("time_slot_ids", cmd.TimeSlotIDs),
	)

	s.setState(StateSubmitting)
	path = append(path, StateSubmitting)

	err := s.deps.Gateway.CreateReservation(ctx, token, cmd)

	switch {
	case err == nil:
		s.setState(StateSucceeded)
		s.deps.Selection.Clear()
		s.resync(ctx, log)
		log.Info("Reservation created")

		return &Outcome{
			State:   StateSucceeded,
			Message: "Reservation confirmed",
			Command: &cmd,
			Path:    append(path, StateSucceeded),
		}

	case errors.Is(err, ErrUnauthorized):
		log.Info("Backend rejected token, deferring until login")
		return s.deferForLogin(cmd, append(path, StateLoginRequired))

	case errors.Is(err, ErrReservationConflict):
		s.setState(StateConflict)
		var lost []int
		// Dropping hours is only safe against availability of the submitted query.
		if s.resync(ctx, log) {
			lost = s.deps.Selection.RemoveUnavailable(func(h int) bool {
				return s.deps.Availability.SlotStatus(h) != StatusOccupied
			})
		}
		log.Warn("Reservation conflict", slog.Any("lost_hours", lost))

		msg := "Someone else just booked one of these slots. Availability was refreshed, adjust your selection"
		if len(lost) > 0 {
			msg += ": " + formatHours(lost) + " no longer available"
		}

		return &Outcome{
			State:     StateConflict,
			Message:   msg,
			LostHours: lost,
			Command:   &cmd,
			Path:      append(path, StateConflict),
		}

	default:
		s.setState(StateFailed)
		s.resync(ctx, log)
		log.Error("Reservation failed", sl.Err(err))

		return &Outcome{
			State:   StateFailed,
			Message: "Could not complete the reservation, please try again",
			Command: &cmd,
			Path:    append(path, StateFailed),
		}
	}
}

func (s *Submitter) resync(ctx context.Context, log *slog.Logger) bool {
	if err := s.deps.Availability.refresh(ctx); err != nil {
		if errors.Is(err, errSuperseded) {
			log.Debug("Availability resync superseded by a newer query")
			return false
		}
		log.Warn("Availability resync failed", sl.Err(err))
		return false
	}

	return true
}

func formatHours(hours []int) string {
	labels := make([]string, len(hours))
	for i, h := range hours {
		labels[i] = FormatHour(h)
	}

	return strings.Join(labels, ", ")
}
