package scheduler

import (
	"fmt"
	"sync"
)

// StatusReader reports the availability status of an hour for the current query.
type StatusReader interface {
	SlotStatus(hour int) Status
}

// StatusFunc adapts a plain function to StatusReader.
type StatusFunc func(hour int) Status

func (f StatusFunc) SlotStatus(hour int) Status { return f(hour) }

// Selection is the set of hours chosen by the user for the current date configuration.
// It is only mutated through Toggle, BulkAdd, Clear and RemoveUnavailable; availability
// refreshes never touch it.
type Selection struct {
	mu    sync.Mutex
	hours map[int]struct{}
}

func NewSelection(hours ...int) *Selection {
	s := &Selection{hours: make(map[int]struct{}, len(hours))}
	for _, h := range hours {
		if validHour(h) {
			s.hours[h] = struct{}{}
		}
	}

	return s
}

// Toggle flips membership of hour unless the hour is occupied.
func (s *Selection) Toggle(hour int, statuses StatusReader) error {
	const op = "scheduler.Selection.Toggle"

	if !validHour(hour) {
		return fmt.Errorf("%s: %w", op, ErrInvalidHour)
	}

	if statuses != nil && statuses.SlotStatus(hour) == StatusOccupied {
		return fmt.Errorf("%s: %s: %w", op, FormatHour(hour), ErrSlotOccupied)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hours[hour]; ok {
		delete(s.hours, hour)
	} else {
		s.hours[hour] = struct{}{}
	}

	return nil
}

type BulkResult struct {
	Applied []int `json:"applied"`
	Skipped []int `json:"skipped"`
}

func (r BulkResult) Partial() bool {
	return len(r.Skipped) > 0
}

// BulkAdd unions the currently available subset of hours into the selection.
// When none of the hours is available the selection is left untouched and
// ErrNoAvailableHours is returned.
func (s *Selection) BulkAdd(hours []int, statuses StatusReader) (BulkResult, error) {
	const op = "scheduler.Selection.BulkAdd"

	var res BulkResult
	seen := make(map[int]struct{}, len(hours))

	for _, h := range hours {
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}

		if validHour(h) && statuses != nil && statuses.SlotStatus(h) == StatusAvailable {
			res.Applied = append(res.Applied, h)
		} else {
			res.Skipped = append(res.Skipped, h)
		}
	}

	if len(res.Applied) == 0 {
		return res, fmt.Errorf("%s: %w", op, ErrNoAvailableHours)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range res.Applied {
		s.hours[h] = struct{}{}
	}

	return res, nil
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hours = make(map[int]struct{})
}

// RemoveUnavailable drops every selected hour the checker reports as not available
// and returns the dropped hours in ascending order.
func (s *Selection) RemoveUnavailable(isAvailable func(hour int) bool) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make(map[int]struct{})
	for h := range s.hours {
		if !isAvailable(h) {
			removed[h] = struct{}{}
		}
	}

	for h := range removed {
		delete(s.hours, h)
	}

	return sortedKeys(removed)
}

func (s *Selection) Hours() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedKeys(s.hours)
}

func (s *Selection) Contains(hour int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.hours[hour]
	return ok
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.hours)
}
