package milestone

import (
	"time"

	"github.com/hobbysprout/sprout/internal/gateway"
)

// Goal fields arrive under two historical spellings (id/goalId and so on);
// both are accepted, the prefixed one wins. Anything beyond these is a decode
// error upstream.
type goalWire struct {
	ID           string `json:"id"`
	GoalID       string `json:"goalId"`
	Description  string `json:"description"`
	GoalDesc     string `json:"goalDescription"`
	Hobby        string `json:"hobby"`
	GoalHobby    string `json:"goalHobby"`
	IsActive     *bool  `json:"isActive"`
	GoalIsActive *bool  `json:"goalIsActive"`
	Completed    *bool  `json:"completed"`
	CreatedAt    string `json:"createdAt"`
}

func (w goalWire) toGoal(now time.Time) Goal {
	g := Goal{
		ID:          firstNonEmpty(w.GoalID, w.ID),
		Description: firstNonEmpty(w.GoalDesc, w.Description),
		Hobby:       firstNonEmpty(w.GoalHobby, w.Hobby),
		IsActive:    true,
		CreatedAt:   now,
	}
	switch {
	case w.GoalIsActive != nil:
		g.IsActive = *w.GoalIsActive
	case w.IsActive != nil:
		g.IsActive = *w.IsActive
	}
	if w.Completed != nil {
		g.Completed = *w.Completed
	}
	if t, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
		g.CreatedAt = t
	}
	if g.Completed {
		g.IsActive = false
	}
	return g
}

type stepWire struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Start       string  `json:"start"`
	Completion  *string `json:"completion"`
	IsComplete  bool    `json:"isComplete"`
}

func (w stepWire) toStep(action string) (Step, error) {
	st := Step{ID: w.ID, Description: w.Description, IsComplete: w.IsComplete}
	if t, err := time.Parse(time.RFC3339, w.Start); err == nil {
		st.Start = t
	}
	if w.Completion != nil && *w.Completion != "" {
		t, err := time.Parse(time.RFC3339, *w.Completion)
		if err != nil {
			return Step{}, gateway.NewDecodeError(concept, action, "step "+w.ID+": bad completion timestamp")
		}
		st.Completion = &t
	}
	if st.IsComplete != (st.Completion != nil) {
		return Step{}, gateway.NewDecodeError(concept, action, "step "+w.ID+": isComplete disagrees with completion")
	}
	return st, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
