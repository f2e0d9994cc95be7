package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hobbysprout/sprout/internal/gateway"
)

type stubStorage struct {
	entries map[string]string
}

func newStubStorage() *stubStorage { return &stubStorage{entries: map[string]string{}} }

func (s *stubStorage) Get(key string) (string, bool, error) {
	v, ok := s.entries[key]
	return v, ok, nil
}
func (s *stubStorage) Set(key, value string) error { s.entries[key] = value; return nil }
func (s *stubStorage) Delete(key string) error     { delete(s.entries, key); return nil }

type stubCaller struct {
	calls     []string
	responses map[string]string
	errs      map[string]error
}

func newStubCaller() *stubCaller {
	return &stubCaller{responses: map[string]string{}, errs: map[string]error{}}
}

func (c *stubCaller) Call(ctx context.Context, concept, action string, payload any) (json.RawMessage, error) {
	key := concept + "/" + action
	c.calls = append(c.calls, key)
	if err, ok := c.errs[key]; ok {
		return nil, err
	}
	if res, ok := c.responses[key]; ok {
		return json.RawMessage(res), nil
	}
	return json.RawMessage(`{}`), nil
}

func TestAuthenticatePersistsSession(t *testing.T) {
	store := newStubStorage()
	caller := newStubCaller()
	caller.responses["PasswordAuthentication/authenticate"] = `{"user":"u1","session":"tok1"}`
	m := NewManager(caller, store, nil)

	if err := m.Authenticate(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if !m.IsAuthenticated() {
		t.Fatalf("expected authenticated manager")
	}
	if got := m.Current(); got.UserID != "u1" || got.Username != "alice" || got.Token != "tok1" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if store.entries[StorageKeySession] != "tok1" {
		t.Fatalf("token not persisted under canonical key: %+v", store.entries)
	}
	var identity Session
	if err := json.Unmarshal([]byte(store.entries[StorageKeyUser]), &identity); err != nil {
		t.Fatalf("identity entry not valid JSON: %v", err)
	}
	if identity.UserID != "u1" || identity.Username != "alice" {
		t.Fatalf("unexpected identity entry: %+v", identity)
	}
}

func TestAuthenticateFailureLeavesNoSession(t *testing.T) {
	store := newStubStorage()
	caller := newStubCaller()
	caller.errs["PasswordAuthentication/authenticate"] = gateway.NewDomainError("PasswordAuthentication", "authenticate", "bad credentials")
	m := NewManager(caller, store, nil)

	if err := m.Authenticate(context.Background(), "alice", "wrong"); err == nil {
		t.Fatalf("expected error")
	}
	if m.IsAuthenticated() {
		t.Fatalf("failed authenticate must not leave a session")
	}
	if len(store.entries) != 0 {
		t.Fatalf("failed authenticate must not persist anything: %+v", store.entries)
	}
}

func TestRegisterDirectSession(t *testing.T) {
	caller := newStubCaller()
	caller.responses["PasswordAuthentication/register"] = `{"user":"u2","session":"tok2"}`
	m := NewManager(caller, newStubStorage(), nil)

	if err := m.Register(context.Background(), "bob", "pw"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if !m.IsAuthenticated() || m.Current().UserID != "u2" {
		t.Fatalf("expected session from register response")
	}
	for _, call := range caller.calls {
		if call == "PasswordAuthentication/authenticate" {
			t.Fatalf("register with direct session must not chain to authenticate")
		}
	}
}

func TestRegisterChainsToAuthenticate(t *testing.T) {
	caller := newStubCaller()
	caller.responses["PasswordAuthentication/register"] = `{}`
	caller.responses["PasswordAuthentication/authenticate"] = `{"user":"u3","session":"tok3"}`
	m := NewManager(caller, newStubStorage(), nil)

	if err := m.Register(context.Background(), "carol", "pw"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if got := m.Current(); got == nil || got.Token != "tok3" {
		t.Fatalf("expected session from chained authenticate, got %+v", got)
	}
	want := []string{"PasswordAuthentication/register", "PasswordAuthentication/authenticate"}
	if len(caller.calls) != 2 || caller.calls[0] != want[0] || caller.calls[1] != want[1] {
		t.Fatalf("unexpected call order: %v", caller.calls)
	}
}

func TestLogoutAlwaysClears(t *testing.T) {
	store := newStubStorage()
	caller := newStubCaller()
	caller.responses["PasswordAuthentication/authenticate"] = `{"user":"u1","session":"tok1"}`
	caller.errs["PasswordAuthentication/logout"] = gateway.NewTransportError("PasswordAuthentication", "logout", "connection refused")

	var events []Event
	m := NewManager(caller, store, func(ev Event) { events = append(events, ev) })
	if err := m.Authenticate(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	m.Logout(context.Background())
	if m.IsAuthenticated() {
		t.Fatalf("logout must clear the session even when the remote call fails")
	}
	if len(store.entries) != 0 {
		t.Fatalf("logout must clear storage: %+v", store.entries)
	}
	if len(events) != 1 || events[0] != EventNavigateLogin {
		t.Fatalf("expected one navigate-login event, got %v", events)
	}
}

func TestRestoreReinstatesSession(t *testing.T) {
	store := newStubStorage()
	store.entries[StorageKeyUser] = `{"id":"u9","username":"dave"}`
	store.entries[StorageKeySession] = "tok9"

	m := NewManager(newStubCaller(), store, nil)
	if err := m.Restore(); err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if got := m.Current(); got == nil || got.UserID != "u9" || got.Token != "tok9" {
		t.Fatalf("unexpected restored session: %+v", got)
	}
}

func TestRestoreClearsHalfPersistedPair(t *testing.T) {
	store := newStubStorage()
	store.entries[StorageKeyUser] = `{"id":"u9","username":"dave"}`
	// token entry missing

	m := NewManager(newStubCaller(), store, nil)
	if err := m.Restore(); err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if m.IsAuthenticated() {
		t.Fatalf("half-persisted session must not authenticate")
	}
	if len(store.entries) != 0 {
		t.Fatalf("half-persisted pair must be cleared: %+v", store.entries)
	}
}

func TestHandleAuthRejectedClearsOnce(t *testing.T) {
	store := newStubStorage()
	caller := newStubCaller()
	caller.responses["PasswordAuthentication/authenticate"] = `{"user":"u1","session":"tok1"}`

	var events []Event
	m := NewManager(caller, store, func(ev Event) { events = append(events, ev) })
	if err := m.Authenticate(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	m.HandleAuthRejected()
	m.HandleAuthRejected()

	if m.IsAuthenticated() || len(store.entries) != 0 {
		t.Fatalf("rejection must clear session and storage")
	}
	if len(events) != 1 || events[0] != EventNavigateLogin {
		t.Fatalf("expected exactly one navigate-login event, got %v", events)
	}
}
