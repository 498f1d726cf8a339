package scheduler

import (
	"errors"
	"slices"
	"testing"
)

func TestSelectionToggleTwiceRestores(t *testing.T) {
	statuses := availableOnly(8, 9, 10)

	for _, initial := range [][]int{nil, {9}, {8, 10}} {
		s := NewSelection(initial...)
		before := s.Hours()

		for h := 0; h < HoursPerDay; h++ {
			if statuses.Status(h) == StatusOccupied {
				continue
			}
			if err := s.Toggle(h, StatusFunc(statuses.Status)); err != nil {
				t.Fatalf("toggle %d: %v", h, err)
			}
			if err := s.Toggle(h, StatusFunc(statuses.Status)); err != nil {
				t.Fatalf("toggle back %d: %v", h, err)
			}
			if got := s.Hours(); !slices.Equal(got, before) {
				t.Fatalf("after double toggle of %d: %v, want %v", h, got, before)
			}
		}
	}
}

func TestSelectionToggleOccupiedRejected(t *testing.T) {
	statuses := StatusFunc(availableOnly(9).Status)

	s := NewSelection()
	err := s.Toggle(10, statuses)
	if !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("toggle occupied: err = %v", err)
	}
	if s.Contains(10) {
		t.Error("occupied hour was added")
	}

	selected := NewSelection(10)
	if err := selected.Toggle(10, statuses); !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("toggle selected occupied: err = %v", err)
	}
	if !selected.Contains(10) {
		t.Error("occupied hour membership changed")
	}
}

func TestSelectionToggleUnknownAllowed(t *testing.T) {
	s := NewSelection()
	if err := s.Toggle(7, StatusFunc(func(int) Status { return StatusUnknown })); err != nil {
		t.Fatalf("toggle unknown: %v", err)
	}
	if !s.Contains(7) {
		t.Error("hour 7 not selected")
	}
}

func TestSelectionToggleInvalidHour(t *testing.T) {
	s := NewSelection()
	for _, h := range []int{-1, 24, 100} {
		if err := s.Toggle(h, nil); !errors.Is(err, ErrInvalidHour) {
			t.Errorf("toggle %d: err = %v", h, err)
		}
	}
	if s.Len() != 0 {
		t.Errorf("selection = %v", s.Hours())
	}
}

func TestSelectionBulkAddPartial(t *testing.T) {
	statuses := StatusFunc(availableOnly(6, 8, 20).Status)

	s := NewSelection(20)
	res, err := s.BulkAdd([]int{6, 7, 8}, statuses)
	if err != nil {
		t.Fatalf("BulkAdd: %v", err)
	}

	if !slices.Equal(res.Applied, []int{6, 8}) {
		t.Errorf("applied = %v", res.Applied)
	}
	if !slices.Equal(res.Skipped, []int{7}) || !res.Partial() {
		t.Errorf("skipped = %v, partial = %v", res.Skipped, res.Partial())
	}
	if got := s.Hours(); !slices.Equal(got, []int{6, 8, 20}) {
		t.Errorf("selection = %v", got)
	}
}

func TestSelectionBulkAddNothingAvailable(t *testing.T) {
	statuses := StatusFunc(availableOnly(3).Status)

	s := NewSelection(3)
	res, err := s.BulkAdd([]int{12, 13}, statuses)
	if !errors.Is(err, ErrNoAvailableHours) {
		t.Fatalf("err = %v", err)
	}
	if len(res.Applied) != 0 {
		t.Errorf("applied = %v", res.Applied)
	}
	if got := s.Hours(); !slices.Equal(got, []int{3}) {
		t.Errorf("selection mutated: %v", got)
	}
}

func TestSelectionBulkAddSkipsUnknown(t *testing.T) {
	s := NewSelection()
	_, err := s.BulkAdd([]int{1, 2}, StatusFunc(func(int) Status { return StatusUnknown }))
	if !errors.Is(err, ErrNoAvailableHours) {
		t.Fatalf("err = %v", err)
	}
}

func TestSelectionRemoveUnavailable(t *testing.T) {
	s := NewSelection(9, 10, 11, 14)
	avail := availableOnly(9, 14)

	removed := s.RemoveUnavailable(func(h int) bool { return avail.Status(h) == StatusAvailable })

	if !slices.Equal(removed, []int{10, 11}) {
		t.Errorf("removed = %v", removed)
	}
	if got := s.Hours(); !slices.Equal(got, []int{9, 14}) {
		t.Errorf("selection = %v", got)
	}

	if again := s.RemoveUnavailable(func(int) bool { return true }); len(again) != 0 {
		t.Errorf("second pass removed %v", again)
	}
}

func TestSelectionClear(t *testing.T) {
	s := NewSelection(1, 2, 3)
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("selection = %v", s.Hours())
	}
}
