package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"inderbu-scheduler/internal/scheduler"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.HandlerFunc, legacy bool) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return New(Options{BaseURL: srv.URL + "/", Timeout: time.Second, LegacyConflictMessages: legacy}, discardLogger())
}

func testCommand(t *testing.T) scheduler.ReservationCommand {
	t.Helper()

	d, err := scheduler.ParseDate("2024-07-01")
	if err != nil {
		t.Fatal(err)
	}

	return scheduler.ReservationCommand{
		SubScenarioID: 7,
		TimeSlotIDs:   []int{14, 15},
		Range:         scheduler.ReservationRange{InitialDate: d},
	}
}

func TestFetchAvailability(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/availability" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"slots":[{"hour":9,"status":"available"},{"hour":10,"status":"occupied"},{"hour":30,"status":"available"}]}`)
	}, false)

	start, _ := scheduler.ParseDate("2024-07-01")
	end, _ := scheduler.ParseDate("2024-07-05")
	q := scheduler.NewAvailabilityQuery(7, start, &end, []int{5, 1})

	a, err := c.FetchAvailability(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}

	if a.Status(9) != scheduler.StatusAvailable || a.Status(10) != scheduler.StatusOccupied {
		t.Errorf("availability = %v", a)
	}
	if a.Status(11) != scheduler.StatusOccupied {
		t.Error("missing hour should read as occupied")
	}
	if len(a) != 2 {
		t.Errorf("out of range hour kept: %v", a)
	}

	want := "finalDate=2024-07-05&initialDate=2024-07-01&subScenarioId=7&weekdays=1%2C5"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestFetchAvailabilityBadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, false)

	start, _ := scheduler.ParseDate("2024-07-01")
	if _, err := c.FetchAvailability(context.Background(), scheduler.NewAvailabilityQuery(1, start, nil, nil)); err == nil {
		t.Fatal("expected error")
	}
}

func TestCreateReservationRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}

		var body reservationRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.SubScenarioID != 7 || !slices.Equal(body.TimeSlotIDs, []int{14, 15}) || body.ReservationRange.InitialDate != "2024-07-01" {
			t.Errorf("body = %+v", body)
		}
		if body.ReservationRange.FinalDate != "" {
			t.Errorf("final date = %q", body.ReservationRange.FinalDate)
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true}`)
	}, false)

	if err := c.CreateReservation(context.Background(), "tok", testCommand(t)); err != nil {
		t.Fatal(err)
	}
}

func TestCreateReservationErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		legacy bool
		want   error
	}{
		{name: "http conflict", status: http.StatusConflict, body: `{"error":"taken"}`, want: scheduler.ErrReservationConflict},
		{name: "structured code", status: http.StatusBadRequest, body: `{"code":"SLOT_CONFLICT"}`, want: scheduler.ErrReservationConflict},
		{name: "unauthorized", status: http.StatusUnauthorized, want: scheduler.ErrUnauthorized},
		{name: "legacy message", status: http.StatusOK, body: `{"success":false,"error":"Horario ocupado"}`, legacy: true, want: scheduler.ErrReservationConflict},
		{name: "legacy disabled", status: http.StatusOK, body: `{"success":false,"error":"Horario ocupado"}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, tt.legacy)

			err := c.CreateReservation(context.Background(), "tok", testCommand(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if tt.want == nil && (errors.Is(err, scheduler.ErrReservationConflict) || errors.Is(err, scheduler.ErrUnauthorized)) {
				t.Errorf("err = %v classified as %v", err, tt.want)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"jwt"}`)
	}, false)

	tok, err := c.Login(context.Background(), "a@b.co", "secret")
	if err != nil || tok != "jwt" {
		t.Fatalf("Login = %q, %v", tok, err)
	}

	if _, err := c.Login(context.Background(), "a@b.co", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v", err)
	}
}

type countingFetcher struct {
	calls atomic.Int32
	delay time.Duration
}

func (f *countingFetcher) FetchAvailability(ctx context.Context, q scheduler.AvailabilityQuery) (scheduler.Availability, error) {
	f.calls.Add(1)
	time.Sleep(f.delay)
	return scheduler.Availability{9: scheduler.StatusAvailable}, nil
}

func TestCachedFetcher(t *testing.T) {
	next := &countingFetcher{}
	c := NewCachedFetcher(next, 8, time.Minute, discardLogger())

	start, _ := scheduler.ParseDate("2024-07-01")
	q := scheduler.NewAvailabilityQuery(1, start, nil, nil)

	a, err := c.FetchAvailability(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	a[9] = scheduler.StatusOccupied

	b, _ := c.FetchAvailability(context.Background(), q)
	if b.Status(9) != scheduler.StatusAvailable {
		t.Error("cached value mutated through a returned map")
	}
	if next.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", next.calls.Load())
	}

	c.Invalidate(q)
	if _, err := c.FetchAvailability(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if next.calls.Load() != 2 {
		t.Errorf("calls after invalidate = %d, want 2", next.calls.Load())
	}
}

func TestCachedFetcherCollapsesConcurrent(t *testing.T) {
	next := &countingFetcher{delay: 50 * time.Millisecond}
	c := NewCachedFetcher(next, 8, time.Minute, discardLogger())

	start, _ := scheduler.ParseDate("2024-07-01")
	q := scheduler.NewAvailabilityQuery(1, start, nil, nil)

	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		go func() {
			_, _ = c.FetchAvailability(context.Background(), q)
			done <- struct{}{}
		}()
	}
	for i := 0; i < 5; i++ {
		<-done
	}

	if n := next.calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}
