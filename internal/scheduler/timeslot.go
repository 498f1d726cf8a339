package scheduler

import (
	"fmt"
	"sort"
)

const HoursPerDay = 24

type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusUnknown   Status = "unknown"
)

type TimeSlot struct {
	Hour   int    `json:"hour"`
	Status Status `json:"status"`
}

func (t TimeSlot) Label() string {
	return FormatHour(t.Hour)
}

// GenerateSlots builds the 24 hourly slots of a day ordered by hour.
// A nil statusOf reports every hour as unknown, and so does a statusOf
// that panics for a given hour.
func GenerateSlots(statusOf func(hour int) Status) []TimeSlot {
	slots := make([]TimeSlot, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		slots[h] = TimeSlot{Hour: h, Status: safeStatus(statusOf, h)}
	}

	return slots
}

func safeStatus(statusOf func(hour int) Status, hour int) (st Status) {
	if statusOf == nil {
		return StatusUnknown
	}

	defer func() {
		if r := recover(); r != nil {
			st = StatusUnknown
		}
	}()

	st = statusOf(hour)
	switch st {
	case StatusAvailable, StatusOccupied:
		return st
	default:
		return StatusUnknown
	}
}

// FormatHour renders an hour of the day on a 12-hour clock, e.g. 0 -> "12 AM".
func FormatHour(hour int) string {
	h := ((hour % HoursPerDay) + HoursPerDay) % HoursPerDay

	switch {
	case h == 0:
		return "12 AM"
	case h == 12:
		return "12 PM"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	default:
		return fmt.Sprintf("%d PM", h-12)
	}
}

func validHour(hour int) bool {
	return hour >= 0 && hour < HoursPerDay
}

// Period is a coarse bucket of the day used for "select all available in ..." actions.
type Period string

const (
	PeriodNight     Period = "night"
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

var periodBounds = map[Period][2]int{
	PeriodNight:     {0, 6},
	PeriodMorning:   {6, 12},
	PeriodAfternoon: {12, 18},
	PeriodEvening:   {18, 24},
}

func PeriodHours(p Period) ([]int, error) {
	b, ok := periodBounds[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPeriod, p)
	}

	return hourRange(b[0], b[1]), nil
}

func PeriodOf(hour int) Period {
	for p, b := range periodBounds {
		if hour >= b[0] && hour < b[1] {
			return p
		}
	}

	return ""
}

// Shortcut is a named, precomputed set of hours offered as one-click selection.
type Shortcut struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Hours []int  `json:"hours"`
}

var shortcuts = []Shortcut{
	{Name: "business-hours", Label: "Business hours", Hours: hourRange(8, 18)},
	{Name: "lunch-break", Label: "Lunch break", Hours: hourRange(12, 14)},
	{Name: "early-morning", Label: "Early morning", Hours: hourRange(5, 8)},
	{Name: "after-work", Label: "After work", Hours: hourRange(18, 22)},
}

func Shortcuts() []Shortcut {
	out := make([]Shortcut, len(shortcuts))
	for i, s := range shortcuts {
		s.Hours = append([]int(nil), s.Hours...)
		out[i] = s
	}

	return out
}

func ShortcutHours(name string) ([]int, error) {
	for _, s := range shortcuts {
		if s.Name == name {
			return append([]int(nil), s.Hours...), nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownShortcut, name)
}

func hourRange(from, to int) []int {
	hours := make([]int, 0, to-from)
	for h := from; h < to; h++ {
		hours = append(hours, h)
	}

	return hours
}

func sortedKeys(set map[int]struct{}) []int {
	hours := make([]int, 0, len(set))
	for h := range set {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	return hours
}
