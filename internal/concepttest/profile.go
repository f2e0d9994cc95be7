package concepttest

import "net/http"

type profileRec struct {
	DisplayName string
	Image       string
}

type hobbyRec struct {
	Name   string
	Active bool
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, uid string) {
	if _, exists := s.profiles[uid]; exists {
		writeJSON(w, http.StatusOK, errBody("profile already exists"))
		return
	}
	s.profiles[uid] = &profileRec{}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, uid string) {
	p, ok := s.profiles[uid]
	if !ok {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, []map[string]string{{
		"displayname": p.DisplayName,
		"profile":     p.Image,
	}})
}

func (s *Server) handleSetName(w http.ResponseWriter, uid string, payload map[string]any) {
	p, ok := s.profiles[uid]
	if !ok {
		writeJSON(w, http.StatusOK, errBody("profile not found"))
		return
	}
	p.DisplayName = str(payload, "displayname")
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleSetImage(w http.ResponseWriter, uid string, payload map[string]any) {
	p, ok := s.profiles[uid]
	if !ok {
		writeJSON(w, http.StatusOK, errBody("profile not found"))
		return
	}
	p.Image = str(payload, "profile")
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleSetHobby(w http.ResponseWriter, uid string, payload map[string]any) {
	name := str(payload, "hobby")
	if name == "" {
		writeJSON(w, http.StatusOK, errBody("hobby required"))
		return
	}
	var existing *hobbyRec
	active := 0
	for _, h := range s.hobbies[uid] {
		if h.Active {
			active++
		}
		if h.Name == name {
			existing = h
		}
	}
	if existing == nil || !existing.Active {
		if s.MaxActiveHobbies > 0 && active >= s.MaxActiveHobbies {
			writeJSON(w, http.StatusOK, errBody("active hobby limit reached"))
			return
		}
	}
	if existing != nil {
		existing.Active = true
	} else {
		s.hobbies[uid] = append(s.hobbies[uid], &hobbyRec{Name: name, Active: true})
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleCloseHobby(w http.ResponseWriter, uid string, payload map[string]any) {
	name := str(payload, "hobby")
	for _, h := range s.hobbies[uid] {
		if h.Name == name {
			h.Active = false
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
	}
	writeJSON(w, http.StatusOK, errBody("hobby not found"))
}

func (s *Server) handleGetHobbies(w http.ResponseWriter, uid string, activeOnly bool) {
	out := make([]map[string]any, 0, len(s.hobbies[uid]))
	for _, h := range s.hobbies[uid] {
		if activeOnly && !h.Active {
			continue
		}
		out = append(out, map[string]any{"hobby": h.Name, "active": h.Active})
	}
	writeJSON(w, http.StatusOK, out)
}
