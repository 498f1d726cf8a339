package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   "42",
		ExpiresAt: exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	return s
}

func TestCheck(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	c := NewChecker(func() time.Time { return now })

	if err := c.Check(signed(t, now.Add(time.Hour))); err != nil {
		t.Errorf("valid token: %v", err)
	}
	if err := c.Check(signed(t, now.Add(-time.Minute))); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired token err = %v", err)
	}
	if err := c.Check(""); !errors.Is(err, ErrNoToken) {
		t.Errorf("empty token err = %v", err)
	}
	if c.Authenticated("not.a.jwt") {
		t.Error("garbage token accepted")
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":  "abc",
		"bearer  xyz": "xyz",
		"Basic abc":   "",
		"":            "",
	}
	for in, want := range tests {
		if got := BearerToken(in); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}
