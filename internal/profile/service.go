// Package profile synchronizes display attributes and hobby membership with
// the UserProfile concept.
package profile

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/hobbysprout/sprout/internal/gateway"
)

const concept = "UserProfile"

type Profile struct {
	Name  string
	Image string
}

// Hobby is one membership entry; deactivated hobbies stay in the set.
type Hobby struct {
	Name   string
	Active bool
}

type Caller interface {
	Call(ctx context.Context, concept, action string, payload any) (json.RawMessage, error)
}

type Service struct {
	gw Caller

	profile *Profile
	hobbies []Hobby
	loading bool
	lastErr string
}

func NewService(gw Caller) *Service {
	return &Service{gw: gw}
}

type profileWire struct {
	DisplayName string `json:"displayname"`
	Profile     string `json:"profile"`
}

type hobbyWire struct {
	Hobby  string `json:"hobby"`
	Active bool   `json:"active"`
}

// LoadProfile fetches the profile and, when one exists, the full hobby set.
// Profile creation is a server-side reaction to registration, so a missing
// profile on a fresh account is presented as an empty local profile, not an
// error, and never triggers a create from here.
func (s *Service) LoadProfile(ctx context.Context) error {
	defer s.begin()()
	raw, err := s.gw.Call(ctx, concept, "_getUserProfile", nil)
	if err != nil {
		return s.fail(err)
	}
	var wire []profileWire
	if err := gateway.ObjectList(raw, concept, "_getUserProfile", "profiles", &wire); err != nil {
		return s.fail(err)
	}
	if len(wire) == 0 {
		s.profile = &Profile{}
		s.hobbies = nil
		return nil
	}
	s.profile = &Profile{Name: wire[0].DisplayName, Image: wire[0].Profile}
	if err := s.loadHobbies(ctx); err != nil {
		// A hobby load failure should not take the profile down with it.
		log.Printf("profile: load hobbies: %v", err)
		s.hobbies = nil
	}
	return nil
}

// CreateProfile provisions an empty profile. Racing the server-side creation
// is fine: "already exists" counts as success.
func (s *Service) CreateProfile(ctx context.Context) error {
	defer s.begin()()
	if err := s.createProfile(ctx); err != nil {
		return s.fail(err)
	}
	return nil
}

// SetName updates the display name and patches only that field locally. A
// "not found" rejection provisions the profile and retries once.
func (s *Service) SetName(ctx context.Context, name string) error {
	defer s.begin()()
	payload := map[string]string{"displayname": name}
	if _, err := s.gw.Call(ctx, concept, "setName", payload); err != nil {
		if !isDomainWith(err, "not found") {
			return s.fail(err)
		}
		if err := s.createProfile(ctx); err != nil {
			return s.fail(err)
		}
		if _, err := s.gw.Call(ctx, concept, "setName", payload); err != nil {
			return s.fail(err)
		}
	}
	if s.profile == nil {
		s.profile = &Profile{}
	}
	s.profile.Name = name
	return nil
}

// SetImage updates the profile image and patches only that field locally.
func (s *Service) SetImage(ctx context.Context, image string) error {
	defer s.begin()()
	if _, err := s.gw.Call(ctx, concept, "setImage", map[string]string{"profile": image}); err != nil {
		return s.fail(err)
	}
	if s.profile == nil {
		s.profile = &Profile{}
	}
	s.profile.Image = image
	return nil
}

// SetHobby adds or re-activates a hobby. The list is reloaded afterwards
// because activation rules (like active-hobby limits) live server-side only.
func (s *Service) SetHobby(ctx context.Context, hobby string) error {
	defer s.begin()()
	if _, err := s.gw.Call(ctx, concept, "setHobby", map[string]string{"hobby": hobby}); err != nil {
		return s.fail(err)
	}
	if err := s.loadHobbies(ctx); err != nil {
		return s.fail(err)
	}
	return nil
}

// CloseHobby deactivates a hobby without removing it, then reloads the list.
func (s *Service) CloseHobby(ctx context.Context, hobby string) error {
	defer s.begin()()
	if _, err := s.gw.Call(ctx, concept, "closeHobby", map[string]string{"hobby": hobby}); err != nil {
		return s.fail(err)
	}
	if err := s.loadHobbies(ctx); err != nil {
		return s.fail(err)
	}
	return nil
}

// SetHobbyActive is SetHobby with an optimistic local patch so a toggle
// renders immediately. Acceptable for hobbies: activation has no cascading
// completion logic, and the reload reconciles the patch anyway.
func (s *Service) SetHobbyActive(ctx context.Context, hobby string) error {
	s.patchHobby(hobby, true)
	return s.SetHobby(ctx, hobby)
}

// SetHobbyInactive is CloseHobby with an optimistic local patch.
func (s *Service) SetHobbyInactive(ctx context.Context, hobby string) error {
	s.patchHobby(hobby, false)
	return s.CloseHobby(ctx, hobby)
}

// Clear resets all synchronized state, e.g. on logout.
func (s *Service) Clear() {
	s.profile = nil
	s.hobbies = nil
	s.lastErr = ""
}

func (s *Service) HasProfile() bool { return s.profile != nil }

// Profile returns a copy of the loaded profile, or an empty one.
func (s *Service) Profile() Profile {
	if s.profile == nil {
		return Profile{}
	}
	return *s.profile
}

// Hobbies returns a copy of the full hobby set, active and inactive.
func (s *Service) Hobbies() []Hobby {
	out := make([]Hobby, len(s.hobbies))
	copy(out, s.hobbies)
	return out
}

// ActiveHobbies returns the names of currently active hobbies.
func (s *Service) ActiveHobbies() []string {
	var out []string
	for _, h := range s.hobbies {
		if h.Active {
			out = append(out, h.Name)
		}
	}
	return out
}

func (s *Service) Loading() bool { return s.loading }
func (s *Service) Err() string   { return s.lastErr }

func (s *Service) begin() func() {
	s.loading = true
	s.lastErr = ""
	return func() { s.loading = false }
}

func (s *Service) fail(err error) error {
	s.lastErr = err.Error()
	return err
}

func (s *Service) createProfile(ctx context.Context) error {
	if _, err := s.gw.Call(ctx, concept, "createProfile", nil); err != nil {
		if !isDomainWith(err, "already exists") {
			return err
		}
	}
	if s.profile == nil {
		s.profile = &Profile{}
	}
	return nil
}

func (s *Service) loadHobbies(ctx context.Context) error {
	raw, err := s.gw.Call(ctx, concept, "_getUserHobbies", nil)
	if err != nil {
		return err
	}
	var wire []hobbyWire
	if err := gateway.ObjectList(raw, concept, "_getUserHobbies", "hobbies", &wire); err != nil {
		return err
	}
	hobbies := make([]Hobby, 0, len(wire))
	for _, w := range wire {
		hobbies = append(hobbies, Hobby{Name: w.Hobby, Active: w.Active})
	}
	s.hobbies = hobbies
	return nil
}

func (s *Service) patchHobby(name string, active bool) {
	for i := range s.hobbies {
		if s.hobbies[i].Name == name {
			s.hobbies[i].Active = active
			return
		}
	}
	if active {
		s.hobbies = append(s.hobbies, Hobby{Name: name, Active: true})
	}
}

func isDomainWith(err error, substr string) bool {
	ce, ok := gateway.AsCallError(err)
	return ok && ce.Code == gateway.ErrorDomain && strings.Contains(ce.Message, substr)
}
