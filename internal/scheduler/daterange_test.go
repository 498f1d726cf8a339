package scheduler

import (
	"errors"
	"slices"
	"testing"
)

func TestDateRangeSetEndDate(t *testing.T) {
	cases := []struct {
		name    string
		end     string
		wantErr error
	}{
		{name: "same day", end: "2024-06-01", wantErr: ErrEndNotAfterStart},
		{name: "day before", end: "2024-05-31", wantErr: ErrEndNotAfterStart},
		{name: "next day", end: "2024-06-02"},
		{name: "next month", end: "2024-07-15"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDateRange(mustDate(t, "2024-06-01"))
			d.ToggleRangeMode(true)

			err := d.SetEndDate(mustDate(t, tc.end))

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				if d.EndDate() != nil {
					t.Errorf("end date set to %v after rejection", d.EndDate())
				}
				return
			}

			if err != nil {
				t.Fatalf("SetEndDate: %v", err)
			}
			if got := FormatDate(*d.EndDate()); got != tc.end {
				t.Errorf("end = %s, want %s", got, tc.end)
			}
		})
	}
}

func TestDateRangeRejectedEndKeepsPrevious(t *testing.T) {
	d := NewDateRange(mustDate(t, "2024-06-01"))
	d.ToggleRangeMode(true)

	if err := d.SetEndDate(mustDate(t, "2024-06-05")); err != nil {
		t.Fatal(err)
	}
	if err := d.SetEndDate(mustDate(t, "2024-06-01")); !errors.Is(err, ErrEndNotAfterStart) {
		t.Fatalf("err = %v", err)
	}
	if got := FormatDate(*d.EndDate()); got != "2024-06-05" {
		t.Errorf("end = %s", got)
	}
}

func TestDateRangeEndRequiresRangeMode(t *testing.T) {
	d := NewDateRange(mustDate(t, "2024-06-01"))
	if err := d.SetEndDate(mustDate(t, "2024-06-03")); !errors.Is(err, ErrRangeModeOff) {
		t.Fatalf("err = %v", err)
	}
}

func TestDateRangeStartPastEndIsRevalidated(t *testing.T) {
	d := NewDateRange(mustDate(t, "2024-06-01"))
	d.ToggleRangeMode(true)
	if err := d.SetEndDate(mustDate(t, "2024-06-03")); err != nil {
		t.Fatal(err)
	}

	d.SetStartDate(mustDate(t, "2024-06-03"))

	if d.EndDate() == nil {
		t.Fatal("end date was cleared")
	}
	if err := d.Validate(); !errors.Is(err, ErrEndNotAfterStart) {
		t.Errorf("Validate = %v", err)
	}
	if _, err := d.Query(1); !errors.Is(err, ErrEndNotAfterStart) {
		t.Errorf("Query err = %v", err)
	}
}

func TestDateRangeToggles(t *testing.T) {
	d := NewDateRange(mustDate(t, "2024-06-01"))
	d.ToggleRangeMode(true)
	if err := d.SetEndDate(mustDate(t, "2024-06-30")); err != nil {
		t.Fatal(err)
	}

	d.ToggleWeekdayMode(true)
	for _, day := range []int{1, 3, 5, 3} {
		if err := d.ToggleWeekday(day); err != nil {
			t.Fatal(err)
		}
	}
	if got := d.Weekdays(); !slices.Equal(got, []int{1, 5}) {
		t.Errorf("weekdays = %v", got)
	}
	if err := d.ToggleWeekday(7); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("ToggleWeekday(7) = %v", err)
	}

	q, err := d.Query(42)
	if err != nil {
		t.Fatal(err)
	}
	if q.SubScenarioID != 42 || !slices.Equal(q.Weekdays, []int{1, 5}) || q.FinalDate == nil {
		t.Errorf("query = %+v", q)
	}

	d.ToggleWeekdayMode(false)
	if len(d.Weekdays()) != 0 {
		t.Errorf("weekdays after mode off = %v", d.Weekdays())
	}

	d.ToggleRangeMode(false)
	if d.EndDate() != nil {
		t.Error("end date kept after range mode off")
	}
	if d.Mode() != ModeSingle {
		t.Errorf("mode = %s", d.Mode())
	}
}

func TestDateRangeValidate(t *testing.T) {
	d := NewDateRange(mustDate(t, "2024-06-01"))
	if err := d.Validate(); err != nil {
		t.Fatalf("single mode: %v", err)
	}

	d.ToggleRangeMode(true)
	if err := d.Validate(); !errors.Is(err, ErrNoEndDate) {
		t.Errorf("range without end: %v", err)
	}

	empty := &DateRange{mode: ModeSingle, weekdays: map[int]struct{}{}}
	if err := empty.Validate(); !errors.Is(err, ErrNoDate) {
		t.Errorf("no start: %v", err)
	}
}

func TestAvailabilityQueryEqual(t *testing.T) {
	start := mustDate(t, "2024-07-01")
	end := mustDate(t, "2024-07-05")
	otherEnd := mustDate(t, "2024-07-06")

	base := NewAvailabilityQuery(7, start, &end, []int{5, 1, 3})

	cases := []struct {
		name  string
		other AvailabilityQuery
		want  bool
	}{
		{"same fields reordered weekdays", NewAvailabilityQuery(7, start, &end, []int{1, 3, 5}), true},
		{"other sub-scenario", NewAvailabilityQuery(8, start, &end, []int{1, 3, 5}), false},
		{"other end", NewAvailabilityQuery(7, start, &otherEnd, []int{1, 3, 5}), false},
		{"no end", NewAvailabilityQuery(7, start, nil, []int{1, 3, 5}), false},
		{"no weekdays", NewAvailabilityQuery(7, start, &end, nil), false},
	}

	for _, tc := range cases {
		if got := base.Equal(tc.other); got != tc.want {
			t.Errorf("%s: Equal = %v, want %v", tc.name, got, tc.want)
		}
		if got := base.Key() == tc.other.Key(); got != tc.want {
			t.Errorf("%s: key equality = %v, want %v", tc.name, got, tc.want)
		}
	}
}
