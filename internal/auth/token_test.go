package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"task-tracker/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue("account-123")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	accountID, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if accountID != "account-123" {
		t.Fatalf("expected account-123, got %q", accountID)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService("test-secret", time.Hour).WithClock(func() time.Time { return issued })

	token, err := svc.Issue("account-123")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// one second past expiry
	svc.WithClock(func() time.Time { return issued.Add(time.Hour + time.Second) })
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue("account-123")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := svc.Verify(tampered); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-one", time.Hour).Issue("account-123")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := NewTokenService("secret-two", time.Hour).Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}
