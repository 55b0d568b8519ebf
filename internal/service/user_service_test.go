package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"orion-backend/internal/domain"
)

type mockUserRepo struct {
	byEmail map[string]domain.User
	byID    map[string]domain.User
	created []domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byEmail: make(map[string]domain.User),
		byID:    make(map[string]domain.User),
	}
}

func (m *mockUserRepo) add(u domain.User) {
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
}

func (m *mockUserRepo) Create(_ context.Context, u domain.User) error {
	m.created = append(m.created, u)
	m.add(u)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func hashedUser(t *testing.T, email, password string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return domain.User{
		ID:           "u1",
		Email:        email,
		DisplayName:  "Bob",
		Role:         domain.RoleUser,
		PasswordHash: string(hash),
	}
}

func TestUserService_Register(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo, nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:       "  Bob@Co.COM ",
		DisplayName: "Bob",
		Password:    "secret-pass",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "bob@co.com" {
		t.Fatalf("email = %q, want normalized lowercase", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("role = %q, want default user", user.Role)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret-pass" {
		t.Fatal("password must be stored hashed")
	}
	if len(repo.created) != 1 {
		t.Fatalf("created %d users, want 1", len(repo.created))
	}
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newMockUserRepo(), nil)

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"missing at sign", RegisterInput{Email: "bobco.com", Password: "secret-pass"}, ErrInvalidEmail},
		{"blank email", RegisterInput{Email: "   ", Password: "secret-pass"}, ErrInvalidEmail},
		{"short password", RegisterInput{Email: "bob@co.com", Password: "short"}, ErrWeakPassword},
		{"unknown role", RegisterInput{Email: "bob@co.com", Password: "secret-pass", Role: "owner"}, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tt.input); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	repo.add(domain.User{ID: "u1", Email: "bob@co.com"})
	svc := NewUserService(zap.NewNop(), repo, nil)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "bob@co.com", Password: "secret-pass"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	repo := newMockUserRepo()
	repo.add(hashedUser(t, "bob@co.com", "secret-pass"))
	svc := NewUserService(zap.NewNop(), repo, nil)

	user, err := svc.Authenticate(context.Background(), "Bob@Co.com", "secret-pass")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("user id = %q, want u1", user.ID)
	}
}

func TestUserService_AuthenticateRejections(t *testing.T) {
	repo := newMockUserRepo()
	repo.add(hashedUser(t, "bob@co.com", "secret-pass"))
	svc := NewUserService(zap.NewNop(), repo, nil)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "bob@co.com", "not-the-pass"},
		{"unknown email", "nobody@co.com", "secret-pass"},
		{"blank password", "bob@co.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestUserService_AuthenticateRateLimited(t *testing.T) {
	repo := newMockUserRepo()
	repo.add(hashedUser(t, "bob@co.com", "secret-pass"))
	svc := NewUserService(zap.NewNop(), repo, NewLoginRateLimiter(time.Minute, 2))

	for i := 0; i < 2; i++ {
		if _, err := svc.Authenticate(context.Background(), "bob@co.com", "secret-pass"); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	_, err := svc.Authenticate(context.Background(), "bob@co.com", "secret-pass")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}

	// Another account is unaffected.
	repo.add(domain.User{ID: "u2", Email: "alice@co.com", PasswordHash: hashedUser(t, "alice@co.com", "other-pass").PasswordHash})
	if _, err := svc.Authenticate(context.Background(), "alice@co.com", "other-pass"); err != nil {
		t.Fatalf("second account: %v", err)
	}
}

func TestUserService_GetByID(t *testing.T) {
	repo := newMockUserRepo()
	repo.add(domain.User{ID: "u1", Email: "bob@co.com"})
	svc := NewUserService(zap.NewNop(), repo, nil)

	if _, err := svc.GetByID(context.Background(), "u1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestLoginRateLimiter_WindowSlides(t *testing.T) {
	limiter := NewLoginRateLimiter(20*time.Millisecond, 1)

	if !limiter.Allow("k") {
		t.Fatal("first attempt must pass")
	}
	if limiter.Allow("k") {
		t.Fatal("second attempt inside the window must fail")
	}
	time.Sleep(30 * time.Millisecond)
	if !limiter.Allow("k") {
		t.Fatal("attempt after the window must pass")
	}
}
