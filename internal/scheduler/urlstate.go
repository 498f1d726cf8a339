package scheduler

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Query parameters shared with the browser URL.
const (
	ParamDate     = "date"
	ParamEndDate  = "endDate"
	ParamWeekdays = "weekdays"
	ParamMode     = "mode"
)

// URLState is the shareable part of a session: booking mode, dates and weekday filter.
type URLState struct {
	Mode     Mode
	Date     time.Time
	EndDate  *time.Time
	Weekdays []int
}

func StateOf(d *DateRange) URLState {
	st := URLState{
		Mode:    d.Mode(),
		Date:    d.StartDate(),
		EndDate: d.EndDate(),
	}
	if d.WeekdayMode() {
		st.Weekdays = d.Weekdays()
	}

	return st
}

func EncodeURLState(st URLState) url.Values {
	v := url.Values{}

	if !st.Date.IsZero() {
		v.Set(ParamDate, FormatDate(st.Date))
	}
	if st.EndDate != nil {
		v.Set(ParamEndDate, FormatDate(*st.EndDate))
	}
	if days := normalizeWeekdays(st.Weekdays); len(days) > 0 {
		v.Set(ParamWeekdays, JoinWeekdays(days))
	}

	mode := st.Mode
	if mode == "" {
		mode = ModeSingle
	}
	v.Set(ParamMode, string(mode))

	return v
}

// ParseURLState reads the recognized parameters. Invalid values are skipped and
// reported in the returned error while the valid ones are still filled in.
func ParseURLState(v url.Values) (URLState, error) {
	var (
		st   URLState
		errs []error
	)

	if raw := v.Get(ParamMode); raw != "" {
		mode, err := ParseMode(raw)
		if err != nil {
			errs = append(errs, err)
		} else {
			st.Mode = mode
		}
	}

	if raw := v.Get(ParamDate); raw != "" {
		date, err := ParseDate(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ParamDate, err))
		} else {
			st.Date = date
		}
	}

	if raw := v.Get(ParamEndDate); raw != "" {
		date, err := ParseDate(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ParamEndDate, err))
		} else {
			st.EndDate = &date
		}
	}

	if raw := v.Get(ParamWeekdays); raw != "" {
		days, err := ParseWeekdays(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ParamWeekdays, err))
		}
		st.Weekdays = days
	}

	return st, errors.Join(errs...)
}

// ParseWeekdays reads a comma list of days, numeric (0=Sunday..6=Saturday) or
// English names such as "mon" or "friday".
func ParseWeekdays(raw string) ([]int, error) {
	var (
		days []int
		errs []error
	)

	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		wd, ok := parseWeekday(part)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidWeekday, part))
			continue
		}
		days = append(days, int(wd))
	}

	return normalizeWeekdays(days), errors.Join(errs...)
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(strings.ToLower(s))

	if n, err := strconv.Atoi(s); err == nil {
		if n >= 0 && n <= 6 {
			return time.Weekday(n), true
		}
		return 0, false
	}

	switch s {
	case "sun", "sunday":
		return time.Sunday, true
	case "mon", "monday":
		return time.Monday, true
	case "tue", "tues", "tuesday":
		return time.Tuesday, true
	case "wed", "wednesday":
		return time.Wednesday, true
	case "thu", "thur", "thursday":
		return time.Thursday, true
	case "fri", "friday":
		return time.Friday, true
	case "sat", "saturday":
		return time.Saturday, true
	default:
		return 0, false
	}
}

// Apply writes st into d. An end date without an explicit mode implies range mode.
func (st URLState) Apply(d *DateRange) error {
	var errs []error

	mode := st.Mode
	if mode == "" && st.EndDate != nil {
		mode = ModeRange
	}
	if mode != "" {
		d.ToggleRangeMode(mode == ModeRange)
	}

	if !st.Date.IsZero() {
		d.SetStartDate(st.Date)
	}

	if st.EndDate != nil {
		if err := d.SetEndDate(*st.EndDate); err != nil {
			errs = append(errs, err)
		}
	}

	if len(st.Weekdays) > 0 {
		d.ToggleWeekdayMode(true)
		for _, day := range normalizeWeekdays(st.Weekdays) {
			if err := d.ToggleWeekday(day); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// URLSync keeps the browser URL in step with a DateRange. Restore applies the
// incoming query once; the write-back that would echo it is skipped, and later
// pushes replace the URL only when the encoded state changes.
type URLSync struct {
	mu       sync.Mutex
	replace  func(query string)
	restored bool
	skipNext bool
	last     string
}

func NewURLSync(replace func(query string)) *URLSync {
	if replace == nil {
		replace = func(string) {}
	}

	return &URLSync{replace: replace}
}

func (u *URLSync) Restore(v url.Values, d *DateRange) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.restored {
		return false, nil
	}
	u.restored = true

	st, parseErr := ParseURLState(v)
	if st.Mode == "" && st.Date.IsZero() && st.EndDate == nil && len(st.Weekdays) == 0 {
		return false, parseErr
	}

	applyErr := st.Apply(d)

	u.last = EncodeURLState(StateOf(d)).Encode()
	u.skipNext = true

	return true, errors.Join(parseErr, applyErr)
}

func (u *URLSync) Push(d *DateRange) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.skipNext {
		u.skipNext = false
		return false
	}

	q := EncodeURLState(StateOf(d)).Encode()
	if q == u.last {
		return false
	}
	u.last = q
	u.replace(q)

	return true
}

func (u *URLSync) Query() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.last
}
