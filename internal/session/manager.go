package session

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hobbysprout/sprout/internal/gateway"
)

const authConcept = "PasswordAuthentication"

// Manager holds the current session, mirrors it to durable storage, and
// reacts to credential rejection. UserID and token are always set and cleared
// together.
type Manager struct {
	gw      Caller
	storage Storage
	notify  Notifier

	current *Session
}

func NewManager(gw Caller, storage Storage, notify Notifier) *Manager {
	return &Manager{gw: gw, storage: storage, notify: notify}
}

type authResponse struct {
	User    string `json:"user"`
	Session string `json:"session"`
}

// Authenticate exchanges credentials for a session and persists it. A non-nil
// error means no session was established; existing state is untouched.
func (m *Manager) Authenticate(ctx context.Context, username, password string) error {
	raw, err := m.gw.Call(ctx, authConcept, "authenticate", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	var res authResponse
	if err := gateway.Object(raw, authConcept, "authenticate", &res); err != nil {
		return err
	}
	if res.User == "" || res.Session == "" {
		return gateway.NewDecodeError(authConcept, "authenticate", "response missing user or session")
	}
	return m.adopt(&Session{UserID: res.User, Username: username, Token: res.Session})
}

// Register creates an account and leaves the manager with an active session.
// Some deployments answer register with the session directly, others only
// create the account; the latter gets a follow-up authenticate.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	raw, err := m.gw.Call(ctx, authConcept, "register", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	var res authResponse
	if err := gateway.Object(raw, authConcept, "register", &res); err == nil && res.User != "" && res.Session != "" {
		return m.adopt(&Session{UserID: res.User, Username: username, Token: res.Session})
	}
	return m.Authenticate(ctx, username, password)
}

// Logout invalidates the session remotely on a best-effort basis and always
// clears local state.
func (m *Manager) Logout(ctx context.Context) {
	if _, err := m.gw.Call(ctx, authConcept, "logout", nil); err != nil {
		log.Printf("session: remote logout failed: %v", err)
	}
	m.clear()
	m.emit(EventNavigateLogin)
}

// Restore reinstates a previously persisted session without validating it
// against the server. A half-persisted or unreadable pair is cleared so the
// identity/token invariant holds.
func (m *Manager) Restore() error {
	rawUser, okUser, err := m.storage.Get(StorageKeyUser)
	if err != nil {
		return err
	}
	token, okToken, err := m.storage.Get(StorageKeySession)
	if err != nil {
		return err
	}
	if !okUser || !okToken || token == "" {
		if okUser || okToken {
			m.clear()
		}
		return nil
	}
	var s Session
	if err := json.Unmarshal([]byte(rawUser), &s); err != nil || s.UserID == "" {
		m.clear()
		return nil
	}
	s.Token = token
	m.current = &s
	return nil
}

// HandleAuthRejected clears the session after the server rejected its
// credential and asks for the login surface. Safe to call repeatedly; the
// event fires only on the actual transition.
func (m *Manager) HandleAuthRejected() {
	if m.current == nil {
		return
	}
	m.clear()
	m.emit(EventNavigateLogin)
}

func (m *Manager) IsAuthenticated() bool {
	return m.current != nil && m.current.UserID != "" && m.current.Token != ""
}

// Current returns a copy of the active session, or nil.
func (m *Manager) Current() *Session {
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// SessionToken implements gateway.TokenSource.
func (m *Manager) SessionToken() string {
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

func (m *Manager) adopt(s *Session) error {
	identity, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := m.storage.Set(StorageKeyUser, string(identity)); err != nil {
		return err
	}
	if err := m.storage.Set(StorageKeySession, s.Token); err != nil {
		return err
	}
	m.current = s
	return nil
}

func (m *Manager) clear() {
	m.current = nil
	if err := m.storage.Delete(StorageKeyUser); err != nil {
		log.Printf("session: clear %s: %v", StorageKeyUser, err)
	}
	if err := m.storage.Delete(StorageKeySession); err != nil {
		log.Printf("session: clear %s: %v", StorageKeySession, err)
	}
}

func (m *Manager) emit(ev Event) {
	if m.notify != nil {
		m.notify(ev)
	}
}
