// Package session owns the authenticated identity, its bearer credential, and
// the durable storage both live in. Nothing else writes the storage keys
// defined here.
package session

import (
	"context"
	"encoding/json"
)

// Canonical storage keys. The source history of this product renamed these
// back and forth; they are constants now so every component agrees.
const (
	StorageKeyUser    = "user"
	StorageKeySession = "session"
)

// Storage is durable client-local key/value storage.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Caller is the slice of the gateway the manager needs.
type Caller interface {
	Call(ctx context.Context, concept, action string, payload any) (json.RawMessage, error)
}

// Event asks the presentation layer to do something the data layer must not
// do itself.
type Event int

const (
	// EventNavigateLogin means the session is gone and the login surface
	// should be shown.
	EventNavigateLogin Event = iota + 1
)

// Notifier receives session events. May be nil.
type Notifier func(Event)

// Session is the authenticated identity plus bearer credential. The token is
// persisted separately from the identity object.
type Session struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Token    string `json:"-"`
}
