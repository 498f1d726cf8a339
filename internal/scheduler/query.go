package scheduler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}

	return t, nil
}

// TruncateDate drops the clock part of t, keeping its calendar day in UTC.
func TruncateDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(DateLayout)
}

// AvailabilityQuery identifies one availability fetch. Weekdays use 0=Sunday..6=Saturday.
type AvailabilityQuery struct {
	SubScenarioID int64
	InitialDate   time.Time
	FinalDate     *time.Time
	Weekdays      []int
}

func NewAvailabilityQuery(subScenarioID int64, initial time.Time, final *time.Time, weekdays []int) AvailabilityQuery {
	q := AvailabilityQuery{
		SubScenarioID: subScenarioID,
		InitialDate:   TruncateDate(initial),
	}

	if final != nil && !final.IsZero() {
		f := TruncateDate(*final)
		q.FinalDate = &f
	}

	q.Weekdays = normalizeWeekdays(weekdays)

	return q
}

// Equal reports deep equality, which drives re-fetch suppression.
func (q AvailabilityQuery) Equal(o AvailabilityQuery) bool {
	if q.SubScenarioID != o.SubScenarioID || !q.InitialDate.Equal(o.InitialDate) {
		return false
	}

	if (q.FinalDate == nil) != (o.FinalDate == nil) {
		return false
	}
	if q.FinalDate != nil && !q.FinalDate.Equal(*o.FinalDate) {
		return false
	}

	return slices.Equal(normalizeWeekdays(q.Weekdays), normalizeWeekdays(o.Weekdays))
}

func (q AvailabilityQuery) Key() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d|%s|", q.SubScenarioID, FormatDate(q.InitialDate))
	if q.FinalDate != nil {
		b.WriteString(FormatDate(*q.FinalDate))
	}
	b.WriteString("|")
	b.WriteString(JoinWeekdays(normalizeWeekdays(q.Weekdays)))

	return b.String()
}

func (q AvailabilityQuery) String() string {
	return q.Key()
}

func JoinWeekdays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}

	return strings.Join(parts, ",")
}

func normalizeWeekdays(days []int) []int {
	if len(days) == 0 {
		return nil
	}

	out := slices.Clone(days)
	slices.Sort(out)

	return slices.Compact(out)
}
