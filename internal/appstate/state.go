// Package appstate is the application context shared by services and the
// HTTP layer: the signed-in operator and the current pharmacy settings.
// One State is built in main and passed down explicitly.
package appstate

import (
	"sync"

	"medbill/m/domain"
)

type State struct {
	mu       sync.RWMutex
	session  *domain.Session
	settings domain.Settings
}

func New(settings domain.Settings) *State {
	return &State{settings: settings}
}

// Session returns the active session, if any.
func (s *State) Session() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return domain.Session{}, false
	}
	return *s.session, true
}

func (s *State) SetSession(session domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
}

func (s *State) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}

// Operator is the username recorded on bills and returns.
func (s *State) Operator() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Username
}

// Authorized reports whether a token for userID issued by sessionID belongs
// to the active session.
func (s *State) Authorized(userID int64, sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil && s.session.UserID == userID && s.session.ID == sessionID
}

func (s *State) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *State) SetSettings(settings domain.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}
