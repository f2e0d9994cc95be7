// Package concepttest is an in-memory HobbySprout backend speaking the
// concept-action convention, for exercising the client against real HTTP
// semantics: bearer auth, domain error payloads, 401s and slow responses.
package concepttest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Server struct {
	mu sync.Mutex

	secret []byte
	now    func() time.Time

	users     map[string]*user // by username
	usersByID map[string]*user
	profiles  map[string]*profileRec  // by user id
	hobbies   map[string][]*hobbyRec  // by user id
	goals     map[string][]*goalRec   // by user id
	questions []question
	responses map[string]map[string]string // user id -> question id -> text

	// CreateProfileOnRegister mirrors the production reaction that
	// provisions a profile after signup. Off by default so the fresh-account
	// path stays reachable.
	CreateProfileOnRegister bool
	// MaxActiveHobbies caps simultaneously active hobbies; 0 means no cap.
	MaxActiveHobbies int
	// Delay is applied to every request before handling.
	Delay time.Duration

	failures map[string]string // concept/action -> error message, consumed once
}

func NewServer() *Server {
	return &Server{
		secret:    []byte(uuid.NewString()),
		now:       func() time.Time { return time.Now().UTC() },
		users:     map[string]*user{},
		usersByID: map[string]*user{},
		profiles:  map[string]*profileRec{},
		hobbies:   map[string][]*hobbyRec{},
		goals:     map[string][]*goalRec{},
		questions: defaultQuestions(),
		responses: map[string]map[string]string{},
		failures:  map[string]string{},
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/{concept}/{action}", s.dispatch)
	return r
}

// FailNext makes the next call to concept/action answer with a domain error.
func (s *Server) FailNext(concept, action, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[concept+"/"+action] = msg
}

var public = map[string]bool{
	"PasswordAuthentication/register":     true,
	"PasswordAuthentication/authenticate": true,
	"PasswordAuthentication/logout":       true,
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
	concept := chi.URLParam(r, "concept")
	action := chi.URLParam(r, "action")
	key := concept + "/" + action

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errBody("malformed request body"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if msg, ok := s.failures[key]; ok {
		delete(s.failures, key)
		writeJSON(w, http.StatusOK, errBody(msg))
		return
	}

	var uid string
	if !public[key] {
		id, err := s.authenticateRequest(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errBody("invalid session"))
			return
		}
		uid = id
	}

	switch key {
	case "PasswordAuthentication/register":
		s.handleRegister(w, payload)
	case "PasswordAuthentication/authenticate":
		s.handleAuthenticate(w, payload)
	case "PasswordAuthentication/logout":
		writeJSON(w, http.StatusOK, map[string]any{})

	case "MilestoneTracker/createGoal":
		s.handleCreateGoal(w, uid, payload)
	case "MilestoneTracker/_getGoals":
		s.handleGetGoals(w, uid)
	case "MilestoneTracker/_getSteps":
		s.handleGetSteps(w, uid, payload)
	case "MilestoneTracker/addStep":
		s.handleAddStep(w, uid, payload)
	case "MilestoneTracker/generateSteps":
		s.handleGenerateSteps(w, uid, payload, false)
	case "MilestoneTracker/regenerateSteps":
		s.handleGenerateSteps(w, uid, payload, true)
	case "MilestoneTracker/completeStep":
		s.handleCompleteStep(w, uid, payload)
	case "MilestoneTracker/removeStep":
		s.handleRemoveStep(w, uid, payload)
	case "MilestoneTracker/closeGoal":
		s.handleCloseGoal(w, uid, payload)

	case "UserProfile/createProfile":
		s.handleCreateProfile(w, uid)
	case "UserProfile/_getUserProfile":
		s.handleGetProfile(w, uid)
	case "UserProfile/setName":
		s.handleSetName(w, uid, payload)
	case "UserProfile/setImage":
		s.handleSetImage(w, uid, payload)
	case "UserProfile/setHobby":
		s.handleSetHobby(w, uid, payload)
	case "UserProfile/closeHobby":
		s.handleCloseHobby(w, uid, payload)
	case "UserProfile/_getUserHobbies":
		s.handleGetHobbies(w, uid, false)
	case "UserProfile/_getActiveHobbies":
		s.handleGetHobbies(w, uid, true)

	case "QuizMatchmaker/_getQuestions":
		s.handleGetQuestions(w)
	case "QuizMatchmaker/submitResponse":
		s.handleSubmitResponse(w, uid, payload)
	case "QuizMatchmaker/generateHobbyMatch":
		s.handleGenerateHobbyMatch(w, uid)

	default:
		writeJSON(w, http.StatusNotFound, errBody("unknown action "+key))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func str(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return strings.TrimSpace(v)
}

func newID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
