package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const onboardingPrefix = "onboarding:"

type Storage struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to addr and pings it. onboardingTTL bounds how long a
// visitor's completed-onboarding flag is kept; zero keeps it forever.
func New(addr string, onboardingTTL time.Duration) (*Storage, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{client: client, ttl: onboardingTTL}, nil
}

func (s *Storage) Client() *redis.Client {
	return s.client
}

func (s *Storage) HasSeenOnboarding(ctx context.Context, visitorID string) (bool, error) {
	const op = "storage.redis.HasSeenOnboarding"

	if visitorID == "" {
		return false, nil
	}

	_, err := s.client.Get(ctx, onboardingPrefix+visitorID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

func (s *Storage) MarkOnboardingSeen(ctx context.Context, visitorID string) error {
	const op = "storage.redis.MarkOnboardingSeen"

	if err := s.client.Set(ctx, onboardingPrefix+visitorID, time.Now().UTC().Format(time.RFC3339), s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}
