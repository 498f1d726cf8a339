package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"inderbu-scheduler/pkg/sl"
)

// Availability maps hours to their status for one query. Hours the backend
// did not report are not bookable.
type Availability map[int]Status

func (a Availability) Status(hour int) Status {
	if st, ok := a[hour]; ok {
		return st
	}

	return StatusOccupied
}

func (a Availability) AvailableHours() []int {
	set := make(map[int]struct{})
	for h, st := range a {
		if st == StatusAvailable && validHour(h) {
			set[h] = struct{}{}
		}
	}

	return sortedKeys(set)
}

type AvailabilityFetcher interface {
	FetchAvailability(ctx context.Context, q AvailabilityQuery) (Availability, error)
}

// Fetchers that cache results implement invalidator so Refresh can bypass them.
type invalidator interface {
	Invalidate(q AvailabilityQuery)
}

// AvailabilityTracker holds the availability of the most recently issued query.
// Results of superseded queries are discarded when they resolve. A failed fetch
// records the error and keeps the last known good availability in place.
type AvailabilityTracker struct {
	fetcher AvailabilityFetcher
	log     *slog.Logger

	mu       sync.RWMutex
	gen      uint64
	issued   bool
	current  AvailabilityQuery
	loading  bool
	data     Availability
	resolved *AvailabilityQuery
	lastErr  string
}

func NewAvailabilityTracker(fetcher AvailabilityFetcher, log *slog.Logger) *AvailabilityTracker {
	if log == nil {
		log = slog.Default()
	}

	return &AvailabilityTracker{
		fetcher: fetcher,
		log:     log,
	}
}

// Check fetches availability for q unless q equals the current query and is
// already loaded or in flight.
func (t *AvailabilityTracker) Check(ctx context.Context, q AvailabilityQuery) error {
	t.mu.Lock()
	if t.issued && t.current.Equal(q) && (t.loading || (t.isCurrentLocked() && t.lastErr == "")) {
		t.mu.Unlock()
		return nil
	}
	gen := t.issueLocked(q)
	t.mu.Unlock()

	if err := t.fetch(ctx, gen, q); err != nil && !errors.Is(err, errSuperseded) {
		return err
	}

	return nil
}

// Refresh refetches the current query, bypassing any cache in the fetcher.
// A result discarded because a newer query was issued meanwhile is not an error.
func (t *AvailabilityTracker) Refresh(ctx context.Context) error {
	if err := t.refresh(ctx); err != nil && !errors.Is(err, errSuperseded) {
		return err
	}

	return nil
}

// refresh reports errSuperseded when its result was discarded.
func (t *AvailabilityTracker) refresh(ctx context.Context) error {
	const op = "scheduler.AvailabilityTracker.Refresh"

	t.mu.Lock()
	if !t.issued {
		t.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrAvailabilityUnknown)
	}
	q := t.current
	gen := t.issueLocked(q)
	t.mu.Unlock()

	if inv, ok := t.fetcher.(invalidator); ok {
		inv.Invalidate(q)
	}

	return t.fetch(ctx, gen, q)
}

func (t *AvailabilityTracker) issueLocked(q AvailabilityQuery) uint64 {
	t.gen++
	t.issued = true
	t.current = q
	t.loading = true

	return t.gen
}

func (t *AvailabilityTracker) fetch(ctx context.Context, gen uint64, q AvailabilityQuery) error {
	const op = "scheduler.AvailabilityTracker.fetch"

	log := t.log.With(slog.String("op", op), slog.String("query", q.Key()))

	data, err := t.fetcher.FetchAvailability(ctx, q)

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen {
		log.Debug("Discarding stale availability result", slog.Uint64("gen", gen), slog.Uint64("current_gen", t.gen))
		return errSuperseded
	}

	t.loading = false

	if err != nil {
		t.lastErr = err.Error()
		log.Warn("Availability fetch failed, keeping last known availability", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	t.data = data
	t.resolved = &q
	t.lastErr = ""

	log.Debug("Availability applied", slog.Int("available", len(data.AvailableHours())))

	return nil
}

func (t *AvailabilityTracker) isCurrentLocked() bool {
	return t.resolved != nil && t.resolved.Equal(t.current)
}

// SlotStatus reads the latest resolved availability; unknown before the first result.
func (t *AvailabilityTracker) SlotStatus(hour int) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.resolved == nil || !validHour(hour) {
		return StatusUnknown
	}

	return t.data.Status(hour)
}

func (t *AvailabilityTracker) IsSlotAvailable(hour int) bool {
	return t.SlotStatus(hour) == StatusAvailable
}

func (t *AvailabilityTracker) Slots() []TimeSlot {
	return GenerateSlots(t.SlotStatus)
}

func (t *AvailabilityTracker) AvailableHours() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.resolved == nil {
		return nil
	}

	return t.data.AvailableHours()
}

func (t *AvailabilityTracker) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.loading
}

func (t *AvailabilityTracker) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.resolved != nil
}

// Current reports whether the applied availability belongs to the latest issued query.
func (t *AvailabilityTracker) Current() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.isCurrentLocked()
}

func (t *AvailabilityTracker) Query() (AvailabilityQuery, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.current, t.issued
}

func (t *AvailabilityTracker) Err() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.lastErr
}
