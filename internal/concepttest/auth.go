package concepttest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	ID        string
	Username  string
	PassHash  []byte
	CreatedAt time.Time
}

type sessionClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

const sessionTTL = 30 * 24 * time.Hour

func (s *Server) signSession(uid string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) authenticateRequest(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", errors.New("missing bearer token")
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	t, err := jwt.ParseWithClaims(tok, &sessionClaims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	c, ok := t.Claims.(*sessionClaims)
	if !ok || !t.Valid || c.UID == "" {
		return "", errors.New("invalid token")
	}
	if _, known := s.usersByID[c.UID]; !known {
		return "", errors.New("unknown user")
	}
	return c.UID, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, payload map[string]any) {
	username := str(payload, "username")
	password := str(payload, "password")
	if username == "" || password == "" {
		writeJSON(w, http.StatusOK, errBody("username/password required"))
		return
	}
	if _, exists := s.users[username]; exists {
		writeJSON(w, http.StatusOK, errBody("username already exists"))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		writeJSON(w, http.StatusOK, errBody("hash failure"))
		return
	}
	u := &user{ID: newID("u"), Username: username, PassHash: hash, CreatedAt: s.now()}
	s.users[username] = u
	s.usersByID[u.ID] = u
	if s.CreateProfileOnRegister {
		s.profiles[u.ID] = &profileRec{}
	}
	token, err := s.signSession(u.ID)
	if err != nil {
		writeJSON(w, http.StatusOK, errBody("sign failure"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user": u.ID, "session": token})
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, payload map[string]any) {
	username := str(payload, "username")
	password := str(payload, "password")
	u, ok := s.users[username]
	if !ok {
		writeJSON(w, http.StatusOK, errBody("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		writeJSON(w, http.StatusOK, errBody("invalid credentials"))
		return
	}
	token, err := s.signSession(u.ID)
	if err != nil {
		writeJSON(w, http.StatusOK, errBody("sign failure"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user": u.ID, "session": token})
}
