package concepttest

import (
	"fmt"
	"net/http"
	"time"
)

type goalRec struct {
	ID          string
	Description string
	Hobby       string
	IsActive    bool
	Completed   bool
	CreatedAt   time.Time
	Steps       []*stepRec
}

type stepRec struct {
	ID          string
	Description string
	Start       time.Time
	Completion  *time.Time
	IsComplete  bool
}

func (s *Server) findGoal(uid, goalID string) *goalRec {
	for _, g := range s.goals[uid] {
		if g.ID == goalID {
			return g
		}
	}
	return nil
}

func (s *Server) findStep(uid, stepID string) (*goalRec, *stepRec) {
	for _, g := range s.goals[uid] {
		for _, st := range g.Steps {
			if st.ID == stepID {
				return g, st
			}
		}
	}
	return nil, nil
}

// recomputeCompletion applies the server-side rule: a goal with steps is
// completed when every step is complete, and completion deactivates it.
func recomputeCompletion(g *goalRec) {
	done := len(g.Steps) > 0
	for _, st := range g.Steps {
		if !st.IsComplete {
			done = false
			break
		}
	}
	g.Completed = done
	if done {
		g.IsActive = false
	}
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, uid string, payload map[string]any) {
	description := str(payload, "description")
	hobby := str(payload, "hobby")
	if description == "" || hobby == "" {
		writeJSON(w, http.StatusOK, errBody("description/hobby required"))
		return
	}
	g := &goalRec{
		ID:          newID("g"),
		Description: description,
		Hobby:       hobby,
		IsActive:    true,
		CreatedAt:   s.now(),
	}
	s.goals[uid] = append(s.goals[uid], g)
	writeJSON(w, http.StatusOK, map[string]string{"goal": g.ID})
}

func (s *Server) handleGetGoals(w http.ResponseWriter, uid string) {
	out := make([]map[string]any, 0, len(s.goals[uid]))
	for _, g := range s.goals[uid] {
		out = append(out, map[string]any{
			"id":          g.ID,
			"description": g.Description,
			"hobby":       g.Hobby,
			"isActive":    g.IsActive,
			"completed":   g.Completed,
			"createdAt":   g.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

func (s *Server) handleGetSteps(w http.ResponseWriter, uid string, payload map[string]any) {
	g := s.findGoal(uid, str(payload, "goalId"))
	if g == nil {
		writeJSON(w, http.StatusOK, errBody("goal not found"))
		return
	}
	out := make([]map[string]any, 0, len(g.Steps))
	for _, st := range g.Steps {
		row := map[string]any{
			"id":          st.ID,
			"description": st.Description,
			"start":       st.Start.Format(time.RFC3339),
			"isComplete":  st.IsComplete,
		}
		if st.Completion != nil {
			row["completion"] = st.Completion.Format(time.RFC3339)
		}
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, map[string]any{"steps": out})
}

func (s *Server) handleAddStep(w http.ResponseWriter, uid string, payload map[string]any) {
	g := s.findGoal(uid, str(payload, "goalId"))
	if g == nil {
		writeJSON(w, http.StatusOK, errBody("goal not found"))
		return
	}
	description := str(payload, "description")
	if description == "" {
		writeJSON(w, http.StatusOK, errBody("description required"))
		return
	}
	st := &stepRec{ID: newID("s"), Description: description, Start: s.now()}
	g.Steps = append(g.Steps, st)
	recomputeCompletion(g)
	writeJSON(w, http.StatusOK, map[string]string{"step": st.ID})
}

func (s *Server) handleGenerateSteps(w http.ResponseWriter, uid string, payload map[string]any, replace bool) {
	g := s.findGoal(uid, str(payload, "goalId"))
	if g == nil {
		writeJSON(w, http.StatusOK, errBody("goal not found"))
		return
	}
	if !replace && len(g.Steps) > 0 {
		writeJSON(w, http.StatusOK, errBody("steps already generated"))
		return
	}
	g.Steps = nil
	phases := []string{"Research", "Practice", "Review"}
	ids := make([]string, 0, len(phases))
	base := s.now()
	for i, phase := range phases {
		st := &stepRec{
			ID:          newID("s"),
			Description: fmt.Sprintf("%s: %s", phase, g.Description),
			// staggered starts keep the display order deterministic
			Start: base.Add(time.Duration(i) * time.Second),
		}
		g.Steps = append(g.Steps, st)
		ids = append(ids, st.ID)
	}
	recomputeCompletion(g)
	writeJSON(w, http.StatusOK, map[string]any{"steps": ids})
}

func (s *Server) handleCompleteStep(w http.ResponseWriter, uid string, payload map[string]any) {
	g, st := s.findStep(uid, str(payload, "stepId"))
	if st == nil {
		writeJSON(w, http.StatusOK, errBody("step not found"))
		return
	}
	if !st.IsComplete {
		st.IsComplete = true
		now := s.now()
		st.Completion = &now
	}
	recomputeCompletion(g)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleRemoveStep(w http.ResponseWriter, uid string, payload map[string]any) {
	stepID := str(payload, "stepId")
	g, st := s.findStep(uid, stepID)
	if st == nil {
		writeJSON(w, http.StatusOK, errBody("step not found"))
		return
	}
	kept := make([]*stepRec, 0, len(g.Steps)-1)
	for _, other := range g.Steps {
		if other.ID != stepID {
			kept = append(kept, other)
		}
	}
	g.Steps = kept
	recomputeCompletion(g)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleCloseGoal(w http.ResponseWriter, uid string, payload map[string]any) {
	g := s.findGoal(uid, str(payload, "goalId"))
	if g == nil {
		writeJSON(w, http.StatusOK, errBody("goal not found"))
		return
	}
	g.IsActive = false
	writeJSON(w, http.StatusOK, map[string]any{})
}
