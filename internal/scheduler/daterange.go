package scheduler

import (
	"fmt"
	"sync"
	"time"
)

type Mode string

const (
	ModeSingle Mode = "single"
	ModeRange  Mode = "range"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSingle, ModeRange:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// DateRange tracks the booking mode and dates of a scheduler session.
// The end date is never cleared when the start date moves past it;
// Validate reports the inconsistency instead.
type DateRange struct {
	mu          sync.Mutex
	mode        Mode
	start       time.Time
	end         *time.Time
	weekdayMode bool
	weekdays    map[int]struct{}
}

func NewDateRange(today time.Time) *DateRange {
	return &DateRange{
		mode:     ModeSingle,
		start:    TruncateDate(today),
		weekdays: make(map[int]struct{}),
	}
}

func (d *DateRange) SetStartDate(date time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.start = TruncateDate(date)
}

// SetEndDate is a no-op returning ErrEndNotAfterStart when date <= start.
func (d *DateRange) SetEndDate(date time.Time) error {
	const op = "scheduler.DateRange.SetEndDate"

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mode != ModeRange {
		return fmt.Errorf("%s: %w", op, ErrRangeModeOff)
	}

	date = TruncateDate(date)
	if d.start.IsZero() {
		return fmt.Errorf("%s: %w", op, ErrNoDate)
	}
	if !date.After(d.start) {
		return fmt.Errorf("%s: %s <= %s: %w", op, FormatDate(date), FormatDate(d.start), ErrEndNotAfterStart)
	}

	d.end = &date

	return nil
}

func (d *DateRange) ToggleRangeMode(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if on {
		d.mode = ModeRange
		return
	}

	d.mode = ModeSingle
	d.end = nil
}

func (d *DateRange) ToggleWeekdayMode(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.weekdayMode = on
	if !on {
		d.weekdays = make(map[int]struct{})
	}
}

// ToggleWeekday adds or removes day (0=Sunday..6=Saturday) from the weekday filter.
func (d *DateRange) ToggleWeekday(day int) error {
	const op = "scheduler.DateRange.ToggleWeekday"

	if day < 0 || day > 6 {
		return fmt.Errorf("%s: %w", op, ErrInvalidWeekday)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.weekdays[day]; ok {
		delete(d.weekdays, day)
	} else {
		d.weekdays[day] = struct{}{}
	}

	return nil
}

func (d *DateRange) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.mode
}

func (d *DateRange) StartDate() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.start
}

func (d *DateRange) EndDate() *time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.end == nil {
		return nil
	}
	end := *d.end

	return &end
}

func (d *DateRange) WeekdayMode() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.weekdayMode
}

func (d *DateRange) Weekdays() []int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return sortedKeys(d.weekdays)
}

func (d *DateRange) Validate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.validateLocked()
}

func (d *DateRange) validateLocked() error {
	if d.start.IsZero() {
		return ErrNoDate
	}

	if d.mode == ModeRange {
		if d.end == nil {
			return ErrNoEndDate
		}
		if !d.end.After(d.start) {
			return ErrEndNotAfterStart
		}
	}

	return nil
}

// Query builds the availability query for the current configuration. Weekdays only
// apply to range bookings with the weekday filter on.
func (d *DateRange) Query(subScenarioID int64) (AvailabilityQuery, error) {
	const op = "scheduler.DateRange.Query"

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.validateLocked(); err != nil {
		return AvailabilityQuery{}, fmt.Errorf("%s: %w", op, err)
	}

	var weekdays []int
	if d.mode == ModeRange && d.weekdayMode {
		weekdays = sortedKeys(d.weekdays)
	}

	return NewAvailabilityQuery(subScenarioID, d.start, d.end, weekdays), nil
}
