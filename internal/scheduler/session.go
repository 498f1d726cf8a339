package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"inderbu-scheduler/pkg/sl"
)

type SessionConfig struct {
	ID                string
	SubScenarioID     int64
	Today             time.Time
	HasSeenOnboarding bool
	StepAdvanceDelay  time.Duration
	AfterFunc         AfterFunc
	Fetcher           AvailabilityFetcher
	Gateway           ReservationGateway
	Authenticated     func(token string) bool
	Log               *slog.Logger
}

// Session is one scheduler for one sub-scenario: dates, hour selection, availability,
// submission state machine, URL sync and wizard step.
type Session struct {
	ID            string
	SubScenarioID int64
	CreatedAt     time.Time

	log          *slog.Logger
	dates        *DateRange
	selection    *Selection
	availability *AvailabilityTracker
	submitter    *Submitter
	url          *URLSync
	wizard       *Wizard
}

func NewSession(cfg SessionConfig) *Session {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("session_id", cfg.ID), slog.Int64("sub_scenario_id", cfg.SubScenarioID))

	today := cfg.Today
	if today.IsZero() {
		today = time.Now()
	}

	s := &Session{
		ID:            cfg.ID,
		SubScenarioID: cfg.SubScenarioID,
		CreatedAt:     time.Now(),
		log:           log,
		dates:         NewDateRange(today),
		selection:     NewSelection(),
		availability:  NewAvailabilityTracker(cfg.Fetcher, log),
		url:           NewURLSync(nil),
		wizard:        NewWizard(cfg.StepAdvanceDelay, cfg.HasSeenOnboarding, cfg.AfterFunc),
	}

	s.submitter = NewSubmitter(SubmitterDeps{
		SubScenarioID: cfg.SubScenarioID,
		Selection:     s.selection,
		Dates:         s.dates,
		Availability:  s.availability,
		Gateway:       cfg.Gateway,
		Authenticated: cfg.Authenticated,
		Log:           log,
	})

	return s
}

// Start restores the URL state once, publishes the canonical query and loads availability.
// Invalid URL parameters are ignored and reported through the returned error.
func (s *Session) Start(ctx context.Context, query url.Values) error {
	const op = "scheduler.Session.Start"

	_, restoreErr := s.url.Restore(query, s.dates)
	if restoreErr != nil {
		s.log.Warn("Ignoring invalid URL state", slog.String("op", op), sl.Err(restoreErr))
	}

	s.url.Push(s.dates)
	s.refresh(ctx)

	if restoreErr != nil {
		return fmt.Errorf("%s: %w", op, restoreErr)
	}

	return nil
}

type DateChange struct {
	Mode     Mode
	Date     time.Time
	EndDate  *time.Time
	Weekdays []int
}

// SetDates applies a date configuration as a whole; an invalid end date rejects the change.
func (s *Session) SetDates(ctx context.Context, ch DateChange) error {
	const op = "scheduler.Session.SetDates"

	if ch.Mode == "" {
		ch.Mode = ModeSingle
	}
	if _, err := ParseMode(string(ch.Mode)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ch.Date.IsZero() {
		return fmt.Errorf("%s: %w", op, ErrNoDate)
	}
	if ch.Mode == ModeRange && ch.EndDate != nil && !TruncateDate(*ch.EndDate).After(TruncateDate(ch.Date)) {
		return fmt.Errorf("%s: %w", op, ErrEndNotAfterStart)
	}
	for _, d := range ch.Weekdays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%s: %w", op, ErrInvalidWeekday)
		}
	}

	s.dates.ToggleRangeMode(ch.Mode == ModeRange)
	s.dates.SetStartDate(ch.Date)
	if ch.Mode == ModeRange && ch.EndDate != nil {
		if err := s.dates.SetEndDate(*ch.EndDate); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	s.dates.ToggleWeekdayMode(false)
	if ch.Mode == ModeRange && len(ch.Weekdays) > 0 {
		s.dates.ToggleWeekdayMode(true)
		for _, d := range normalizeWeekdays(ch.Weekdays) {
			_ = s.dates.ToggleWeekday(d)
		}
	}

	// A deferred command belongs to the previous dates.
	s.submitter.CancelPending()

	s.url.Push(s.dates)
	s.wizard.DateCommitted()
	s.refresh(ctx)

	return nil
}

func (s *Session) refresh(ctx context.Context) {
	const op = "scheduler.Session.refresh"

	q, err := s.dates.Query(s.SubScenarioID)
	if err != nil {
		s.log.Debug("Skipping availability check", slog.String("op", op), slog.String("reason", err.Error()))
		return
	}

	if err := s.availability.Check(ctx, q); err != nil {
		s.log.Warn("Availability check failed", slog.String("op", op), sl.Err(err))
	}
}

// Reload forces a fresh availability fetch for the current dates.
func (s *Session) Reload(ctx context.Context) error {
	if _, ok := s.availability.Query(); !ok {
		s.refresh(ctx)
		return nil
	}

	return s.availability.Refresh(ctx)
}

func (s *Session) Toggle(hour int) error {
	return s.selection.Toggle(hour, s.availability)
}

func (s *Session) ApplyShortcut(name string) (BulkResult, error) {
	hours, err := ShortcutHours(name)
	if err != nil {
		return BulkResult{}, err
	}

	return s.selection.BulkAdd(hours, s.availability)
}

func (s *Session) SelectPeriod(p Period) (BulkResult, error) {
	hours, err := PeriodHours(p)
	if err != nil {
		return BulkResult{}, err
	}

	return s.selection.BulkAdd(hours, s.availability)
}

func (s *Session) ClearSelection() {
	s.selection.Clear()
	s.submitter.CancelPending()
}

func (s *Session) Submit(ctx context.Context, token string) (*Outcome, error) {
	out, err := s.submitter.Submit(ctx, token)
	if err == nil && out.State == StateSucceeded {
		s.wizard.Navigate(StepDate)
	}

	return out, err
}

func (s *Session) ResumeAfterLogin(ctx context.Context, token string) (*Outcome, error) {
	out, err := s.submitter.ResumeAfterLogin(ctx, token)
	if err == nil && out.State == StateSucceeded {
		s.wizard.Navigate(StepDate)
	}

	return out, err
}

func (s *Session) CancelPendingSubmission() {
	s.submitter.CancelPending()
}

func (s *Session) Navigate(step Step) {
	s.wizard.Navigate(step)
}

func (s *Session) CompleteOnboarding() {
	s.wizard.CompleteOnboarding()
}

func (s *Session) Close() {
	s.wizard.Close()
}

type Snapshot struct {
	ID              string
	SubScenarioID   int64
	Mode            Mode
	StartDate       time.Time
	EndDate         *time.Time
	WeekdayMode     bool
	Weekdays        []int
	DatesError      error
	Slots           []TimeSlot
	SelectedHours   []int
	Loading         bool
	AvailabilityErr string
	SubmitState     SubmitState
	LoginPending    bool
	LastOutcome     *Outcome
	Step            Step
	AdvancePending  bool
	ShowOnboarding  bool
	URLQuery        string
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:              s.ID,
		SubScenarioID:   s.SubScenarioID,
		Mode:            s.dates.Mode(),
		StartDate:       s.dates.StartDate(),
		EndDate:         s.dates.EndDate(),
		WeekdayMode:     s.dates.WeekdayMode(),
		Weekdays:        s.dates.Weekdays(),
		DatesError:      s.dates.Validate(),
		Slots:           s.availability.Slots(),
		SelectedHours:   s.selection.Hours(),
		Loading:         s.availability.Loading(),
		AvailabilityErr: s.availability.Err(),
		SubmitState:     s.submitter.State(),
		LoginPending:    s.submitter.Pending() != nil,
		LastOutcome:     s.submitter.LastOutcome(),
		Step:            s.wizard.Step(),
		AdvancePending:  s.wizard.AdvancePending(),
		ShowOnboarding:  s.wizard.ShowOnboarding(),
		URLQuery:        s.url.Query(),
	}
}
