package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"orion-backend/internal/domain"
)

// stubAuthenticator returns a fixed session or error, optionally blocking
// until released so concurrency paths can be exercised.
type stubAuthenticator struct {
	sess    Session
	err     error
	started chan struct{}
	release chan struct{}
}

func (a *stubAuthenticator) Authenticate(_ context.Context, _, _ string) (Session, error) {
	if a.started != nil {
		close(a.started)
	}
	if a.release != nil {
		<-a.release
	}
	if a.err != nil {
		return Session{}, a.err
	}
	return a.sess, nil
}

type failingStore struct {
	MemoryStore
}

func (s *failingStore) Save(Session) error {
	return errors.New("disk full")
}

func TestManager_StartsInitializing(t *testing.T) {
	m := NewManager(NewMemoryStore(), &stubAuthenticator{})
	if got := m.State().Status; got != StatusInitializing {
		t.Fatalf("status = %v, want initializing", got)
	}
}

func TestManager_InitializeEmptyStore(t *testing.T) {
	m := NewManager(NewMemoryStore(), &stubAuthenticator{})

	state := m.Initialize()
	if state.Status != StatusUnauthenticated {
		t.Fatalf("status = %v, want unauthenticated", state.Status)
	}
	if state.Session != (Session{}) {
		t.Fatalf("session = %+v, want zero", state.Session)
	}
}

func TestManager_InitializeRehydrates(t *testing.T) {
	store := NewMemoryStore()
	want := testSession()
	if err := store.Save(want); err != nil {
		t.Fatalf("seed: %v", err)
	}

	m := NewManager(store, &stubAuthenticator{})
	state := m.Initialize()
	if state.Status != StatusAuthenticated {
		t.Fatalf("status = %v, want authenticated", state.Status)
	}
	if state.Session != want {
		t.Fatalf("session = %+v, want %+v", state.Session, want)
	}
}

func TestManager_InitializeMalformedPayload(t *testing.T) {
	store := NewMemoryStore()
	store.SetRaw([]byte(`{"id":"u1"`))

	m := NewManager(store, &stubAuthenticator{})
	state := m.Initialize()
	if state.Status != StatusUnauthenticated {
		t.Fatalf("status = %v, want unauthenticated", state.Status)
	}
}

func TestManager_InitializeIsOneShot(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, &stubAuthenticator{})
	m.Initialize()

	// A session appearing in storage afterwards must not flip the state:
	// Initialize resolves exactly once.
	if err := store.Save(testSession()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	state := m.Initialize()
	if state.Status != StatusUnauthenticated {
		t.Fatalf("status = %v, want unauthenticated after repeat initialize", state.Status)
	}
}

func TestManager_LoginWritesThrough(t *testing.T) {
	store := NewMemoryStore()
	want := testSession()
	m := NewManager(store, &stubAuthenticator{sess: want})
	m.Initialize()

	got, err := m.Login(context.Background(), want.Email, "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got != want {
		t.Fatalf("login session = %+v, want %+v", got, want)
	}

	state := m.State()
	if state.Status != StatusAuthenticated || state.Session != want {
		t.Fatalf("state = %+v, want authenticated with %+v", state, want)
	}

	stored, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("store load: ok=%v err=%v", ok, err)
	}
	if stored != want {
		t.Fatalf("stored = %+v, want %+v", stored, want)
	}
}

func TestManager_LoginFailureLeavesStateUntouched(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, &stubAuthenticator{err: ErrInvalidCredentials})
	m.Initialize()

	_, err := m.Login(context.Background(), "bob@co.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if got := m.State().Status; got != StatusUnauthenticated {
		t.Fatalf("status = %v, want unauthenticated", got)
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatal("failed login must not write to the store")
	}
}

func TestManager_LoginUnavailableBackend(t *testing.T) {
	m := NewManager(NewMemoryStore(), &stubAuthenticator{err: ErrServiceUnavailable})
	m.Initialize()

	_, err := m.Login(context.Background(), "bob@co.com", "pw")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestManager_LoginStoreFailure(t *testing.T) {
	store := &failingStore{}
	m := NewManager(store, &stubAuthenticator{sess: testSession()})
	m.Initialize()

	if _, err := m.Login(context.Background(), "bob@co.com", "pw"); err == nil {
		t.Fatal("expected error when the store write fails")
	}
	if got := m.State().Status; got != StatusUnauthenticated {
		t.Fatalf("status = %v, want unauthenticated after store failure", got)
	}
}

func TestManager_ConcurrentLoginRejected(t *testing.T) {
	auth := &stubAuthenticator{
		sess:    testSession(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	m := NewManager(NewMemoryStore(), auth)
	m.Initialize()

	done := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "bob@co.com", "pw")
		done <- err
	}()

	<-auth.started
	if _, err := m.Login(context.Background(), "bob@co.com", "pw"); !errors.Is(err, ErrLoginInFlight) {
		t.Fatalf("err = %v, want ErrLoginInFlight", err)
	}

	close(auth.release)
	if err := <-done; err != nil {
		t.Fatalf("first login: %v", err)
	}

	// With the first login settled a new attempt goes through.
	auth.started, auth.release = nil, nil
	if _, err := m.Login(context.Background(), "bob@co.com", "pw"); err != nil {
		t.Fatalf("retry login: %v", err)
	}
}

func TestManager_LogoutClearsEverything(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, &stubAuthenticator{sess: testSession()})
	m.Initialize()
	if _, err := m.Login(context.Background(), "bob@co.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := m.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	state := m.State()
	if state.Status != StatusUnauthenticated {
		t.Fatalf("status = %v, want unauthenticated", state.Status)
	}
	if state.Session != (Session{}) {
		t.Fatalf("session = %+v, want zero", state.Session)
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatal("store must be empty after logout")
	}
}

func TestManager_LogoutIsIdempotent(t *testing.T) {
	m := NewManager(NewMemoryStore(), &stubAuthenticator{})
	m.Initialize()

	if err := m.Logout(); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if err := m.Logout(); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if got := m.State().Status; got != StatusUnauthenticated {
		t.Fatalf("status = %v, want unauthenticated", got)
	}
}

func TestMockAuthenticator_DerivesSessionFromEmail(t *testing.T) {
	auth := &MockAuthenticator{} // zero Delay keeps the test fast

	tests := []struct {
		email    string
		wantName string
		wantRole domain.Role
	}{
		{"admin@example.com", "admin", domain.RoleAdmin},
		{"alice@example.com", "alice", domain.RoleUser},
		{"site-admin@co.com", "site-admin", domain.RoleAdmin},
	}
	for _, tt := range tests {
		sess, err := auth.Authenticate(context.Background(), tt.email, "anything")
		if err != nil {
			t.Fatalf("%s: %v", tt.email, err)
		}
		if sess.Email != tt.email {
			t.Errorf("%s: email = %q", tt.email, sess.Email)
		}
		if sess.Name != tt.wantName {
			t.Errorf("%s: name = %q, want %q", tt.email, sess.Name, tt.wantName)
		}
		if sess.Role != tt.wantRole {
			t.Errorf("%s: role = %q, want %q", tt.email, sess.Role, tt.wantRole)
		}
		if sess.ID == "" {
			t.Errorf("%s: empty id", tt.email)
		}
	}
}

func TestMockAuthenticator_AppliesDelay(t *testing.T) {
	auth := &MockAuthenticator{Delay: 30 * time.Millisecond}

	start := time.Now()
	if _, err := auth.Authenticate(context.Background(), "bob@co.com", "pw"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("returned after %v, want at least the configured delay", elapsed)
	}
}
