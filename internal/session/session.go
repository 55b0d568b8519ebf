// Package session implements the client-side session gate used by cmd/cli:
// a durable single-record session store, a state-machine manager that owns
// "who is logged in", and a guard deciding whether a protected view renders.
package session

import (
	"encoding/json"
	"errors"
	"strings"

	"orion-backend/internal/domain"
)

// Session is the authenticated identity held in memory and mirrored to the
// store. Its presence is the sole authorization signal for protected views.
type Session struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

var errMalformedSession = errors.New("malformed session payload")

// decodeSession parses a persisted payload. Anything that does not
// deserialize into the expected shape, including an unknown role, is
// malformed; callers treat that identically to "no session".
func decodeSession(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, errMalformedSession
	}
	if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Email) == "" {
		return Session{}, errMalformedSession
	}
	if !domain.ValidRole(s.Role) {
		return Session{}, errMalformedSession
	}
	return s, nil
}

func encodeSession(s Session) ([]byte, error) {
	return json.Marshal(s)
}
