package session

import (
	"context"
	"errors"
	"sync"
)

// Status is the manager's lifecycle state. There is no way back to
// StatusInitializing once Initialize has run.
type Status int

const (
	StatusInitializing Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// State is a point-in-time snapshot of the manager. Consumers re-read it on
// every render decision rather than caching it.
type State struct {
	Status  Status
	Session Session
}

var (
	// ErrInvalidCredentials means the authenticator rejected the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrServiceUnavailable means the authenticator could not be reached.
	ErrServiceUnavailable = errors.New("authentication service unavailable")
	// ErrLoginInFlight means another login is already running; concurrent
	// logins are rejected rather than racing on the store.
	ErrLoginInFlight = errors.New("login already in progress")
)

// Manager is the single authority on "who is logged in". It owns the
// in-memory state; the Store owns the durable copy, kept consistent only by
// the manager's write-through on login/logout.
//
// Managers are plain injected values, never package-level singletons, so
// tests can run several isolated instances.
type Manager struct {
	store Store
	auth  Authenticator

	mu          sync.Mutex
	status      Status
	session     Session
	hasSession  bool
	loginActive bool
	initialized bool
}

func NewManager(store Store, auth Authenticator) *Manager {
	return &Manager{
		store:  store,
		auth:   auth,
		status: StatusInitializing,
	}
}

// Initialize performs the one-shot startup rehydration from the store and
// resolves the Initializing state. Later calls are no-ops, so the manager
// leaves Initializing exactly once per lifetime.
func (m *Manager) Initialize() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return m.stateLocked()
	}
	m.initialized = true

	sess, ok, err := m.store.Load()
	if err != nil || !ok {
		// Unreadable storage degrades to "no session".
		m.status = StatusUnauthenticated
		m.hasSession = false
		return m.stateLocked()
	}
	m.session = sess
	m.hasSession = true
	m.status = StatusAuthenticated
	return m.stateLocked()
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Login authenticates via the collaborator and, on success, writes the new
// session through to the store before publishing the Authenticated state.
// On failure the state is left untouched. Only one login may be in flight;
// a concurrent call fails with ErrLoginInFlight instead of silently racing.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	m.mu.Lock()
	if m.loginActive {
		m.mu.Unlock()
		return Session{}, ErrLoginInFlight
	}
	m.loginActive = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loginActive = false
		m.mu.Unlock()
	}()

	sess, err := m.auth.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	if err := m.store.Save(sess); err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	m.session = sess
	m.hasSession = true
	m.status = StatusAuthenticated
	m.mu.Unlock()
	return sess, nil
}

// Logout clears the in-memory session and the durable copy. It is
// synchronous and idempotent: logging out twice is not an error.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.session = Session{}
	m.hasSession = false
	if m.status != StatusInitializing {
		m.status = StatusUnauthenticated
	}
	m.mu.Unlock()

	return m.store.Clear()
}

func (m *Manager) stateLocked() State {
	st := State{Status: m.status}
	if m.hasSession {
		st.Session = m.session
	}
	return st
}
