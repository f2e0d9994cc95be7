// Package milestone synchronizes a user's goals and the steps of the
// currently selected goal with the MilestoneTracker concept.
//
// Reconciliation is reload-after-mutate: after any state-changing call the
// service reloads canonical state from the server instead of trusting a local
// patch. The one exception is RemoveStep with no current goal, where there is
// no canonical list to reload.
package milestone

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/hobbysprout/sprout/internal/gateway"
)

const concept = "MilestoneTracker"

// Goal states: active (isActive, !completed), completed (completed, !isActive)
// and closed (!isActive, !completed). A completed goal is never active.
type Goal struct {
	ID          string
	Description string
	Hobby       string
	IsActive    bool
	Completed   bool
	CreatedAt   time.Time
}

// Step belongs to exactly one goal, addressed by goalId on the wire.
// Completion is set if and only if IsComplete is true.
type Step struct {
	ID          string
	Description string
	Start       time.Time
	Completion  *time.Time
	IsComplete  bool
}

// Caller is the slice of the gateway the service needs.
type Caller interface {
	Call(ctx context.Context, concept, action string, payload any) (json.RawMessage, error)
}

// Service owns the goal list and the step list of the current goal. It is
// driven from a single goroutine; callers serialize operations the way a UI
// disables its controls while Loading is true.
type Service struct {
	gw Caller

	goals   []Goal
	current *Goal
	steps   []Step
	loading bool
	lastErr string

	now func() time.Time
}

func NewService(gw Caller) *Service {
	return &Service{gw: gw, now: func() time.Time { return time.Now().UTC() }}
}

// LoadGoals fetches all goals and selects the current one: the first goal
// that is active and not completed.
func (s *Service) LoadGoals(ctx context.Context) error {
	defer s.begin()()
	if err := s.loadGoals(ctx); err != nil {
		return s.fail(err)
	}
	return nil
}

// CreateGoal creates a goal and reloads the goal list; the returned goal is
// the server's version of the new entity.
func (s *Service) CreateGoal(ctx context.Context, description, hobby string) (Goal, error) {
	defer s.begin()()
	raw, err := s.gw.Call(ctx, concept, "createGoal", map[string]string{
		"description": description,
		"hobby":       hobby,
	})
	if err != nil {
		return Goal{}, s.fail(err)
	}
	id, err := gateway.StringField(raw, concept, "createGoal", "goal")
	if err != nil {
		return Goal{}, s.fail(err)
	}
	if err := s.loadGoals(ctx); err != nil {
		return Goal{}, s.fail(err)
	}
	for _, g := range s.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return Goal{}, s.fail(gateway.NewDecodeError(concept, "createGoal", "created goal missing from reload"))
}

// LoadGoal selects a goal from the loaded list and fetches its steps.
func (s *Service) LoadGoal(ctx context.Context, goalID string) error {
	defer s.begin()()
	var found *Goal
	for i := range s.goals {
		if s.goals[i].ID == goalID {
			g := s.goals[i]
			found = &g
			break
		}
	}
	if found == nil {
		return s.fail(errors.New("goal not found"))
	}
	s.current = found
	if err := s.loadSteps(ctx, goalID); err != nil {
		return s.fail(err)
	}
	return nil
}

// LoadSteps fetches the ordered step list for a goal.
func (s *Service) LoadSteps(ctx context.Context, goalID string) error {
	defer s.begin()()
	if err := s.loadSteps(ctx, goalID); err != nil {
		return s.fail(err)
	}
	return nil
}

// AddStep appends a step to a goal and returns the new step id.
func (s *Service) AddStep(ctx context.Context, goalID, description string) (string, error) {
	defer s.begin()()
	raw, err := s.gw.Call(ctx, concept, "addStep", map[string]string{
		"goalId":      goalID,
		"description": description,
	})
	if err != nil {
		return "", s.fail(err)
	}
	id, err := gateway.StringField(raw, concept, "addStep", "step")
	if err != nil {
		return "", s.fail(err)
	}
	if err := s.loadSteps(ctx, goalID); err != nil {
		return "", s.fail(err)
	}
	return id, nil
}

// GenerateSteps asks the server to generate a step plan for the goal.
func (s *Service) GenerateSteps(ctx context.Context, goalID string) error {
	return s.generate(ctx, goalID, "generateSteps")
}

// RegenerateSteps replaces the goal's entire step list with a fresh plan.
func (s *Service) RegenerateSteps(ctx context.Context, goalID string) error {
	return s.generate(ctx, goalID, "regenerateSteps")
}

func (s *Service) generate(ctx context.Context, goalID, action string) error {
	defer s.begin()()
	if _, err := s.gw.Call(ctx, concept, action, map[string]string{"goalId": goalID}); err != nil {
		return s.fail(err)
	}
	if err := s.loadSteps(ctx, goalID); err != nil {
		return s.fail(err)
	}
	return nil
}

// CompleteStep marks a step complete. The reload afterwards picks up the
// server's recomputation of the owning goal, so finishing the last step
// flips the goal to completed.
func (s *Service) CompleteStep(ctx context.Context, stepID string) error {
	defer s.begin()()
	if _, err := s.gw.Call(ctx, concept, "completeStep", map[string]string{"stepId": stepID}); err != nil {
		return s.fail(err)
	}
	if s.current != nil {
		if err := s.loadSteps(ctx, s.current.ID); err != nil {
			return s.fail(err)
		}
	}
	return nil
}

// RemoveStep deletes a step. With a current goal selected the step list is
// reloaded; without one the local list is filtered instead.
func (s *Service) RemoveStep(ctx context.Context, stepID string) error {
	defer s.begin()()
	if _, err := s.gw.Call(ctx, concept, "removeStep", map[string]string{"stepId": stepID}); err != nil {
		return s.fail(err)
	}
	if s.current == nil {
		kept := make([]Step, 0, len(s.steps))
		for _, st := range s.steps {
			if st.ID != stepID {
				kept = append(kept, st)
			}
		}
		s.steps = kept
		return nil
	}
	if err := s.loadSteps(ctx, s.current.ID); err != nil {
		return s.fail(err)
	}
	return nil
}

// CloseGoal deactivates a goal regardless of its completion state. A closed
// current goal also drops the current selection and its steps.
func (s *Service) CloseGoal(ctx context.Context, goalID string) error {
	defer s.begin()()
	if _, err := s.gw.Call(ctx, concept, "closeGoal", map[string]string{"goalId": goalID}); err != nil {
		return s.fail(err)
	}
	if s.current != nil && s.current.ID == goalID {
		s.current = nil
		s.steps = nil
	}
	if err := s.loadGoals(ctx); err != nil {
		return s.fail(err)
	}
	return nil
}

// DeleteGoal is the historical name for CloseGoal.
func (s *Service) DeleteGoal(ctx context.Context, goalID string) error {
	return s.CloseGoal(ctx, goalID)
}

// ClearCurrent drops the current goal selection and its steps.
func (s *Service) ClearCurrent() {
	s.current = nil
	s.steps = nil
}

// Clear resets all synchronized state, e.g. on logout.
func (s *Service) Clear() {
	s.goals = nil
	s.current = nil
	s.steps = nil
	s.lastErr = ""
}

// Goals returns a copy of the loaded goal list.
func (s *Service) Goals() []Goal {
	out := make([]Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

// CurrentGoal returns a copy of the current goal, or nil.
func (s *Service) CurrentGoal() *Goal {
	if s.current == nil {
		return nil
	}
	g := *s.current
	return &g
}

// Steps returns a copy of the current step list, ordered by start time.
func (s *Service) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Progress is the completed share of the current step list in whole percent,
// 0 when there are no steps.
func (s *Service) Progress() int {
	if len(s.steps) == 0 {
		return 0
	}
	done := 0
	for _, st := range s.steps {
		if st.IsComplete {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(s.steps))))
}

func (s *Service) Loading() bool { return s.loading }

// Err is the last failure message, for display; empty after a clean operation.
func (s *Service) Err() string { return s.lastErr }

func (s *Service) begin() func() {
	s.loading = true
	s.lastErr = ""
	return func() { s.loading = false }
}

func (s *Service) fail(err error) error {
	s.lastErr = err.Error()
	return err
}

func (s *Service) loadGoals(ctx context.Context) error {
	raw, err := s.gw.Call(ctx, concept, "_getGoals", nil)
	if err != nil {
		return err
	}
	var wire []goalWire
	if err := gateway.ObjectList(raw, concept, "_getGoals", "goals", &wire); err != nil {
		return err
	}
	now := s.now()
	goals := make([]Goal, 0, len(wire))
	for _, w := range wire {
		goals = append(goals, w.toGoal(now))
	}
	s.goals = goals

	previous := ""
	if s.current != nil {
		previous = s.current.ID
	}
	s.current = nil
	for i := range s.goals {
		if s.goals[i].IsActive && !s.goals[i].Completed {
			g := s.goals[i]
			s.current = &g
			break
		}
	}
	// Steps describe the previously selected goal; drop them unless the
	// selection survived the reload.
	if s.current == nil || s.current.ID != previous {
		s.steps = nil
	}
	return nil
}

func (s *Service) loadSteps(ctx context.Context, goalID string) error {
	raw, err := s.gw.Call(ctx, concept, "_getSteps", map[string]string{"goalId": goalID})
	if err != nil {
		return err
	}
	var wire []stepWire
	if err := gateway.ObjectList(raw, concept, "_getSteps", "steps", &wire); err != nil {
		return err
	}
	steps := make([]Step, 0, len(wire))
	for _, w := range wire {
		st, err := w.toStep("_getSteps")
		if err != nil {
			return err
		}
		steps = append(steps, st)
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Start.Before(steps[j].Start) })
	s.steps = steps

	// Mirror the server's completion rule onto the goal list: a goal with
	// steps is completed when every step is, and a completed goal is never
	// active. Current-goal selection changes only on the next LoadGoals.
	allComplete := len(steps) > 0
	for _, st := range steps {
		if !st.IsComplete {
			allComplete = false
			break
		}
	}
	for i := range s.goals {
		if s.goals[i].ID != goalID {
			continue
		}
		s.goals[i].Completed = allComplete
		if allComplete {
			s.goals[i].IsActive = false
		}
		if s.current != nil && s.current.ID == goalID {
			g := s.goals[i]
			s.current = &g
		}
		break
	}
	return nil
}
