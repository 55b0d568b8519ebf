package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"orion-backend/internal/domain"
)

// Authenticator is the credential-verification collaborator consumed by the
// Manager. The production implementation lives with the CLI client and talks
// to the backend's /auth/login endpoint.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (Session, error)
}

// MockAuthenticator accepts any credentials after a fixed artificial delay,
// deriving the session from the email alone: role "admin" when the email
// contains "admin", name from the local part. A stand-in for demos and tests
// only; it verifies nothing.
type MockAuthenticator struct {
	Delay time.Duration
}

const defaultMockDelay = 800 * time.Millisecond

func NewMockAuthenticator() *MockAuthenticator {
	return &MockAuthenticator{Delay: defaultMockDelay}
}

func (a *MockAuthenticator) Authenticate(_ context.Context, email, _ string) (Session, error) {
	if a.Delay > 0 {
		// The delay is deliberate and not cancellable, modeling the fixed
		// latency of the upstream call.
		time.Sleep(a.Delay)
	}

	email = strings.TrimSpace(email)
	name := email
	if at := strings.Index(email, "@"); at >= 0 {
		name = email[:at]
	}
	role := domain.RoleUser
	if strings.Contains(email, "admin") {
		role = domain.RoleAdmin
	}
	return Session{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Role:  role,
	}, nil
}
