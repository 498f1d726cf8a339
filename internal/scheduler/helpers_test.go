package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}

	return d
}

func availableOnly(hours ...int) Availability {
	a := make(Availability, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		a[h] = StatusOccupied
	}
	for _, h := range hours {
		a[h] = StatusAvailable
	}

	return a
}

// stubFetcher answers every query with the same availability, or err.
type stubFetcher struct {
	mu          sync.Mutex
	data        Availability
	err         error
	calls       []AvailabilityQuery
	invalidated []AvailabilityQuery
}

func (f *stubFetcher) FetchAvailability(_ context.Context, q AvailabilityQuery) (Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, q)
	if f.err != nil {
		return nil, f.err
	}

	return f.data, nil
}

func (f *stubFetcher) Invalidate(q AvailabilityQuery) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invalidated = append(f.invalidated, q)
}

func (f *stubFetcher) set(data Availability, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data = data
	f.err = err
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

type fetchReply struct {
	data Availability
	err  error
}

type pendingFetch struct {
	query AvailabilityQuery
	reply chan fetchReply
}

// blockingFetcher hands every request to the test, which resolves them in any order.
type blockingFetcher struct {
	requests chan pendingFetch
}

func newBlockingFetcher() *blockingFetcher {
	return &blockingFetcher{requests: make(chan pendingFetch)}
}

func (f *blockingFetcher) FetchAvailability(ctx context.Context, q AvailabilityQuery) (Availability, error) {
	p := pendingFetch{query: q, reply: make(chan fetchReply, 1)}

	select {
	case f.requests <- p:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	r := <-p.reply
	return r.data, r.err
}

type gatewayCall struct {
	token string
	cmd   ReservationCommand
}

type fakeGateway struct {
	mu    sync.Mutex
	calls []gatewayCall
	errs  []error
}

// CreateReservation returns the queued errors in order, then nil.
func (g *fakeGateway) CreateReservation(_ context.Context, token string, cmd ReservationCommand) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, gatewayCall{token: token, cmd: cmd})
	if len(g.errs) == 0 {
		return nil
	}
	err := g.errs[0]
	g.errs = g.errs[1:]

	return err
}

func (g *fakeGateway) callsSnapshot() []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]gatewayCall(nil), g.calls...)
}

type fakeTimer struct {
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// manualClock captures scheduled callbacks so tests can fire them explicitly.
type manualClock struct {
	mu     sync.Mutex
	funcs  []func()
	timers []*fakeTimer
	delays []time.Duration
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{}
	c.funcs = append(c.funcs, f)
	c.timers = append(c.timers, t)
	c.delays = append(c.delays, d)

	return t
}

func (c *manualClock) fireLast() {
	c.mu.Lock()
	f := c.funcs[len(c.funcs)-1]
	t := c.timers[len(c.timers)-1]
	c.mu.Unlock()

	if !t.stopped {
		f()
	}
}
