package concepttest

import (
	"net/http"
	"sort"
	"strings"
)

type question struct {
	ID      string
	Text    string
	Options []string
}

func defaultQuestions() []question {
	return []question{
		{ID: "q1", Text: "Do you prefer being indoors or outdoors?", Options: []string{"indoors", "outdoors"}},
		{ID: "q2", Text: "Do you enjoy working with your hands?", Options: []string{"yes", "no"}},
		{ID: "q3", Text: "Would you rather create something or compete?", Options: []string{"create", "compete"}},
		{ID: "q4", Text: "Do you like activities with music or movement?", Options: []string{"music", "movement", "neither"}},
		{ID: "q5", Text: "Do you prefer doing things alone or in a group?", Options: []string{"alone", "group"}},
	}
}

// hobbyKeywords drives the deterministic match: one point per keyword
// occurrence across all responses, ties broken alphabetically.
var hobbyKeywords = map[string][]string{
	"gardening":   {"outdoors", "hands", "create", "alone"},
	"woodworking": {"hands", "create", "indoors", "alone"},
	"dancing":     {"movement", "music", "group"},
	"guitar":      {"music", "create", "indoors"},
	"chess":       {"indoors", "compete", "alone"},
	"football":    {"outdoors", "compete", "group", "movement"},
}

func (s *Server) handleGetQuestions(w http.ResponseWriter) {
	out := make([]map[string]any, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, map[string]any{"id": q.ID, "text": q.Text, "options": q.Options})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, uid string, payload map[string]any) {
	questionID := str(payload, "question")
	known := false
	for _, q := range s.questions {
		if q.ID == questionID {
			known = true
			break
		}
	}
	if !known {
		writeJSON(w, http.StatusOK, errBody("unknown question"))
		return
	}
	if s.responses[uid] == nil {
		s.responses[uid] = map[string]string{}
	}
	s.responses[uid][questionID] = str(payload, "response")
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleGenerateHobbyMatch(w http.ResponseWriter, uid string) {
	recorded := s.responses[uid]
	if len(recorded) == 0 {
		writeJSON(w, http.StatusOK, errBody("no responses submitted"))
		return
	}
	var all []string
	for _, text := range recorded {
		all = append(all, strings.ToLower(text))
	}
	blob := strings.Join(all, " ")

	hobbies := make([]string, 0, len(hobbyKeywords))
	for h := range hobbyKeywords {
		hobbies = append(hobbies, h)
	}
	sort.Strings(hobbies)

	best, bestScore := hobbies[0], -1
	for _, h := range hobbies {
		score := 0
		for _, kw := range hobbyKeywords[h] {
			score += strings.Count(blob, kw)
		}
		if score > bestScore {
			best, bestScore = h, score
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"hobby": best, "score": bestScore})
}
