package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"inderbu-scheduler/api"
	"inderbu-scheduler/internal/lock"
	"inderbu-scheduler/internal/models"
	"inderbu-scheduler/internal/scheduler"
	"inderbu-scheduler/pkg/response"
	"inderbu-scheduler/pkg/sl"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Journal interface {
	RecordAttempt(ctx context.Context, a *models.ReservationAttempt) (int64, error)
	ListAttempts(ctx context.Context, sessionID string, limit int) ([]*models.ReservationAttempt, error)
}

type OnboardingStore interface {
	HasSeenOnboarding(ctx context.Context, visitorID string) (bool, error)
	MarkOnboardingSeen(ctx context.Context, visitorID string) error
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Backend is the INDERBU API as seen by sessions.
type Backend interface {
	scheduler.AvailabilityFetcher
	scheduler.ReservationGateway
}

type Options struct {
	SessionTTL       time.Duration
	MaxSessions      int
	StepAdvanceDelay time.Duration
	SearchDebounce   time.Duration
	SubmitLockTTL    time.Duration
	JournalLimit     int
}

type Deps struct {
	Backend       Backend
	Auth          Authenticator
	Authenticated func(token string) bool
	Journal       Journal
	Locker        lock.Locker
	// Onboarding may be nil; every visitor then sees the onboarding once per session.
	Onboarding OnboardingStore
	Log        *slog.Logger
	Now        func() time.Time
}

type Service struct {
	deps     Deps
	opts     Options
	log      *slog.Logger
	sessions *expirable.LRU[string, *scheduler.Session]
}

func NewService(deps Deps, opts Options) *Service {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 10000
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	if opts.SubmitLockTTL <= 0 {
		opts.SubmitLockTTL = 30 * time.Second
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	s := &Service{deps: deps, opts: opts, log: deps.Log}
	s.sessions = expirable.NewLRU[string, *scheduler.Session](opts.MaxSessions, func(id string, sess *scheduler.Session) {
		sess.Close()
		s.log.Debug("Session evicted", slog.String("session_id", id))
	}, opts.SessionTTL)

	return s
}

func (s *Service) CreateSession(ctx context.Context, visitorID string, req *api.CreateSessionRequest) (*api.Session, error) {
	const op = "service.CreateSession"

	if req.SubScenarioID <= 0 {
		return nil, fmt.Errorf("%s: sub_scenario_id must be positive: %w", op, response.ErrValidation)
	}

	values, err := url.ParseQuery(req.Query)
	if err != nil {
		s.log.Warn("Ignoring malformed session query", slog.String("op", op), sl.Err(err))
		values = url.Values{}
	}

	seen := false
	if s.deps.Onboarding != nil {
		seen, err = s.deps.Onboarding.HasSeenOnboarding(ctx, visitorID)
		if err != nil {
			s.log.Warn("Failed to read onboarding flag", slog.String("op", op), sl.Err(err))
		}
	}

	sess := scheduler.NewSession(scheduler.SessionConfig{
		ID:                uuid.NewString(),
		SubScenarioID:     req.SubScenarioID,
		Today:             s.deps.Now(),
		HasSeenOnboarding: seen,
		StepAdvanceDelay:  s.opts.StepAdvanceDelay,
		Fetcher:           s.deps.Backend,
		Gateway:           s.deps.Backend,
		Authenticated:     s.deps.Authenticated,
		Log:               s.log,
	})

	if err := sess.Start(ctx, values); err != nil {
		s.log.Warn("Session started with invalid URL params", slog.String("op", op), sl.Err(err))
	}

	s.sessions.Add(sess.ID, sess)

	s.log.Info("Session created",
		slog.String("op", op),
		slog.String("session_id", sess.ID),
		slog.Int64("sub_scenario_id", sess.SubScenarioID),
	)

	return s.view(sess), nil
}

func (s *Service) session(id string) (*scheduler.Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, response.ErrNotFound
	}

	return sess, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*api.Session, error) {
	const op = "service.GetSession"

	sess, err := s.session(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.view(sess), nil
}

func (s *Service) SetDates(ctx context.Context, id string, req *api.DatesRequest) (*api.Session, error) {
	const op = "service.SetDates"

	sess, err := s.session(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := dateChange(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := sess.SetDates(ctx, ch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.view(sess), nil
}

func dateChange(req *api.DatesRequest) (scheduler.DateChange, error) {
	var ch scheduler.DateChange

	mode := scheduler.ModeSingle
	if req.Mode != "" {
		m, err := scheduler.ParseMode(req.Mode)
		if err != nil {
			return ch, err
		}
		mode = m
	}

	date, err := scheduler.ParseDate(req.Date)
	if err != nil {
		return ch, fmt.Errorf("date: %w", scheduler.ErrNoDate)
	}

	ch = scheduler.DateChange{Mode: mode, Date: date, Weekdays: req.Weekdays}

	if req.EndDate != nil && *req.EndDate != "" {
		end, err := scheduler.ParseDate(*req.EndDate)
		if err != nil {
			return ch, fmt.Errorf("end_date: %w", scheduler.ErrNoEndDate)
		}
		ch.EndDate = &end
	}

	return ch, nil
}

func (s *Service) ToggleSlot(ctx context.Context, id string, hour int) (*api.Session, error) {
	const op = "service.ToggleSlot"

	sess, err := s.session(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := sess.Toggle(hour); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.view(sess), nil
}

func (s *Service) BulkSelect(ctx context.Context, id string, req *api.BulkRequest) (*api.BulkResult, *api.Session, error) {
	const op = "service.BulkSelect"

	sess, err := s.session(id)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	var res scheduler.BulkResult

	switch {
	case req.Shortcut != "" && req.Period != "":
		return nil, nil, fmt.Errorf("%s: shortcut and period are exclusive: %w", op, response.ErrValidation)
	case req.Shortcut != "":
		res, err = sess.ApplyShortcut(req.Shortcut)
	case req.Period != "":
		res, err = sess.SelectPeriod(scheduler.Period(req.Period))
	default:
		return nil, nil, fmt.Errorf("%s: shortcut or period is required: %w", op, response.ErrValidation)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.BulkResult{
		Applied: res.Applied,
		Skipped: res.Skipped,
		Partial: res.Partial(),
	}, s.view(sess), nil
}

func (s *Service) ClearSelection(ctx context.Context, id string) (*api.Session, error) {
	const op = "service.ClearSelection"

	sess, err := s.session(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess.ClearSelection()

	return s.view(sess), nil
}

func (s *Service) Navigate(ctx context.Context, id, step string) (*api.Session, error) {
	const op = "service.Navigate"

	sess, err := s.session(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st, err := scheduler.ParseStep(step)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess.Navigate(st)

	return s.view(sess), nil
}

// Submit runs one reservation attempt for the session. A login-required outcome is
// returned as a result, not an error; the caller decides how to surface it.
func (s *Service) Submit(ctx context.Context, id, token string) (*api.SubmitResult, error) {
	const op = "service.Submit"

	sess, err := s.session(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.withSubmitLock(ctx, id, func() (*scheduler.Outcome, error) {
		return sess.Submit(ctx, token)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.record(ctx, sess, out)

	return &api.SubmitResult{Outcome: outcomeView(out), Session: *s.view(sess)}, nil
}

// Login exchanges credentials for a token and replays the submission that was
// deferred for authentication, if any.
func (s *Service) Login(ctx context.Context, id string, req *api.LoginRequest) (*api.LoginResult, error) {
	const op = "service.Login"

	sess, err := s.session(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%s: email and password are required: %w", op, response.ErrValidation)
	}

	token, err := s.deps.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := &api.LoginResult{AccessToken: token}

	if sess.Snapshot().LoginPending {
		out, err := s.withSubmitLock(ctx, id, func() (*scheduler.Outcome, error) {
			return sess.ResumeAfterLogin(ctx, token)
		})
		if err != nil && !errors.Is(err, scheduler.ErrNoPendingSubmission) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if out != nil {
			s.record(ctx, sess, out)
			v := outcomeView(out)
			res.Outcome = &v
		}
	}

	res.Session = *s.view(sess)

	return res, nil
}

func (s *Service) withSubmitLock(ctx context.Context, id string, fn func() (*scheduler.Outcome, error)) (*scheduler.Outcome, error) {
	const op = "service.withSubmitLock"

	key := "submit:" + id

	token, ok, err := s.deps.Locker.Lock(ctx, key, s.opts.SubmitLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}

	defer func() {
		// The lease may outlive a cancelled request context.
		uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := s.deps.Locker.Unlock(uctx, key, token); err != nil {
			s.log.Warn("Failed to release submit lock", slog.String("op", op), sl.Err(err))
		}
	}()

	return fn()
}

func (s *Service) record(ctx context.Context, sess *scheduler.Session, out *scheduler.Outcome) {
	const op = "service.record"

	if s.deps.Journal == nil || out == nil || out.Command == nil {
		return
	}

	cmd := out.Command
	a := &models.ReservationAttempt{
		SessionID:     sess.ID,
		SubScenarioID: cmd.SubScenarioID,
		Hours:         toInt64(cmd.TimeSlotIDs),
		InitialDate:   cmd.Range.InitialDate,
		FinalDate:     cmd.Range.FinalDate,
		Weekdays:      toInt64(cmd.Weekdays),
		Outcome:       models.AttemptOutcome(out.State),
		LostHours:     toInt64(out.LostHours),
		Message:       out.Message,
	}

	if _, err := s.deps.Journal.RecordAttempt(ctx, a); err != nil {
		s.log.Error("Failed to record reservation attempt", slog.String("op", op), sl.Err(err))
	}
}

func (s *Service) ListAttempts(ctx context.Context, id string) ([]api.Attempt, error) {
	const op = "service.ListAttempts"

	if _, err := s.session(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.deps.Journal == nil {
		return []api.Attempt{}, nil
	}

	rows, err := s.deps.Journal.ListAttempts(ctx, id, s.opts.JournalLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	attempts := make([]api.Attempt, 0, len(rows))
	for _, a := range rows {
		v := api.Attempt{
			ID:            a.ID,
			SubScenarioID: a.SubScenarioID,
			Hours:         a.Hours,
			InitialDate:   scheduler.FormatDate(a.InitialDate),
			Weekdays:      a.Weekdays,
			Outcome:       string(a.Outcome),
			LostHours:     a.LostHours,
			Message:       a.Message,
			CreatedAt:     a.CreatedAt,
		}
		if a.FinalDate != nil {
			f := scheduler.FormatDate(*a.FinalDate)
			v.FinalDate = &f
		}
		attempts = append(attempts, v)
	}

	return attempts, nil
}

// CompleteOnboarding remembers that the visitor dismissed the onboarding and hides it
// in the given session, when one is named.
func (s *Service) CompleteOnboarding(ctx context.Context, visitorID, sessionID string) error {
	const op = "service.CompleteOnboarding"

	if visitorID == "" && sessionID == "" {
		return fmt.Errorf("%s: visitor id or session id is required: %w", op, response.ErrValidation)
	}

	if sessionID != "" {
		sess, err := s.session(sessionID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		sess.CompleteOnboarding()
	}

	if visitorID != "" && s.deps.Onboarding != nil {
		if err := s.deps.Onboarding.MarkOnboardingSeen(ctx, visitorID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// Close stops every live session's timers.
func (s *Service) Close() {
	s.sessions.Purge()
}

func toInt64(v []int) []int64 {
	out := make([]int64, len(v))
	for i, n := range v {
		out[i] = int64(n)
	}

	return out
}
