package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type lease struct {
	token   string
	expires time.Time
}

// Local is an in-process Locker for single-instance deployments without redis.
type Local struct {
	mu     sync.Mutex
	leases map[string]lease
	now    func() time.Time
}

func NewLocal() *Local {
	return &Local{leases: make(map[string]lease), now: time.Now}
}

func (l *Local) Lock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, ok := l.leases[key]; ok && now.Before(cur.expires) {
		return "", false, nil
	}

	token := uuid.NewString()
	l.leases[key] = lease{token: token, expires: now.Add(ttl)}

	return token, true, nil
}

func (l *Local) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.leases[key]
	if !ok || cur.token != token {
		return ErrNotHeld
	}
	delete(l.leases, key)

	return nil
}
