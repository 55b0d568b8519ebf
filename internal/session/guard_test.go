package session

import (
	"context"
	"path/filepath"
	"testing"
)

func TestGuard_Decide(t *testing.T) {
	guard := NewGuard("login")

	tests := []struct {
		name  string
		state State
		want  Decision
	}{
		{"initializing defers", State{Status: StatusInitializing}, DecisionLoading},
		{"unauthenticated redirects", State{Status: StatusUnauthenticated}, DecisionRedirect},
		{"authenticated renders", State{Status: StatusAuthenticated, Session: testSession()}, DecisionAllow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := guard.Decide(tt.state); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGuard_DefaultLoginTarget(t *testing.T) {
	if got := NewGuard("").LoginTarget; got != "login" {
		t.Fatalf("login target = %q, want %q", got, "login")
	}
}

// Walks the full lifecycle over one shared file: first run logs in, a
// "restart" (fresh manager over the same store) resolves straight to the
// protected view, logout locks it again.
func TestGuard_SessionSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	guard := NewGuard("login")
	auth := &stubAuthenticator{sess: testSession()}

	first := NewManager(store, auth)
	if got := guard.Decide(first.State()); got != DecisionLoading {
		t.Fatalf("before initialize: %v, want loading", got)
	}
	if got := guard.Decide(first.Initialize()); got != DecisionRedirect {
		t.Fatalf("empty store: %v, want redirect", got)
	}
	if _, err := first.Login(context.Background(), "bob@co.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := guard.Decide(first.State()); got != DecisionAllow {
		t.Fatalf("after login: %v, want allow", got)
	}

	second := NewManager(store, auth)
	state := second.Initialize()
	if got := guard.Decide(state); got != DecisionAllow {
		t.Fatalf("after restart: %v, want allow", got)
	}
	if state.Session != testSession() {
		t.Fatalf("restored session = %+v, want %+v", state.Session, testSession())
	}

	if err := second.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got := guard.Decide(second.State()); got != DecisionRedirect {
		t.Fatalf("after logout: %v, want redirect", got)
	}

	third := NewManager(store, auth)
	if got := guard.Decide(third.Initialize()); got != DecisionRedirect {
		t.Fatalf("restart after logout: %v, want redirect", got)
	}
}
