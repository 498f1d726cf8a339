package rateLimit

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"inderbu-scheduler/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

type Options struct {
	RPS   float64
	Burst int
	// Idle clients are forgotten after TTL.
	TTL  time.Duration
	Size int
}

// limiterStore keeps one token bucket per client address.
type limiterStore struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.limiters.Get(ip); ok {
		return l
	}

	l := rate.NewLimiter(s.limit, s.burst)
	s.limiters.Add(ip, l)

	return l
}

func New(log *slog.Logger, opts Options) func(next http.Handler) http.Handler {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.Size <= 0 {
		opts.Size = 10000
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	store := &limiterStore{
		limiters: expirable.NewLRU[string, *rate.Limiter](opts.Size, nil, opts.TTL),
		limit:    rate.Limit(opts.RPS),
		burst:    opts.Burst,
	}

	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/rate_limit"),
		)

		log.Info("Rate limit middleware enabled", slog.Float64("rps", opts.RPS), slog.Int("burst", opts.Burst))

		fn := func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if !store.get(ip).Allow() {
				log.Warn("Rate limit exceeded",
					slog.String("ip", ip),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error(response.TOO_MANY_REQUESTS, "rate limit exceeded, try again later"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
