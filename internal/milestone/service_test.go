package milestone

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/hobbysprout/sprout/internal/gateway"
)

// stubCaller answers scripted responses per concept/action; queued responses
// are consumed in order before the static fallback.
type stubCaller struct {
	calls  []string
	queues map[string][]string
	static map[string]string
	errs   map[string]error
}

func newStubCaller() *stubCaller {
	return &stubCaller{
		queues: map[string][]string{},
		static: map[string]string{},
		errs:   map[string]error{},
	}
}

func (c *stubCaller) Call(ctx context.Context, concept, action string, payload any) (json.RawMessage, error) {
	key := concept + "/" + action
	c.calls = append(c.calls, key)
	if err, ok := c.errs[key]; ok {
		return nil, err
	}
	if q := c.queues[key]; len(q) > 0 {
		c.queues[key] = q[1:]
		return json.RawMessage(q[0]), nil
	}
	if res, ok := c.static[key]; ok {
		return json.RawMessage(res), nil
	}
	return json.RawMessage(`{}`), nil
}

func (c *stubCaller) enqueue(key, raw string) {
	c.queues[key] = append(c.queues[key], raw)
}

func (c *stubCaller) count(key string) int {
	n := 0
	for _, call := range c.calls {
		if call == key {
			n++
		}
	}
	return n
}

func TestLoadGoalsSelectsCurrent(t *testing.T) {
	caller := newStubCaller()
	caller.static["MilestoneTracker/_getGoals"] = `{"goals":[
		{"id":"g1","description":"closed","hobby":"music","isActive":false,"completed":false},
		{"goalId":"g2","goalDescription":"done","goalHobby":"music","goalIsActive":true,"completed":true},
		{"id":"g3","description":"learn guitar","hobby":"music","isActive":true,"completed":false},
		{"id":"g4","description":"also active","hobby":"art","isActive":true,"completed":false}
	]}`
	svc := NewService(caller)

	if err := svc.LoadGoals(context.Background()); err != nil {
		t.Fatalf("LoadGoals returned error: %v", err)
	}
	goals := svc.Goals()
	if len(goals) != 4 {
		t.Fatalf("expected 4 goals, got %d", len(goals))
	}
	// current = first active, not-completed goal
	cur := svc.CurrentGoal()
	if cur == nil || cur.ID != "g3" {
		t.Fatalf("expected g3 current, got %+v", cur)
	}
	// a completed goal reported active is normalized to inactive
	if goals[1].ID != "g2" || !goals[1].Completed || goals[1].IsActive {
		t.Fatalf("completed goal must not be active: %+v", goals[1])
	}
	if svc.Loading() {
		t.Fatalf("loading flag must reset")
	}
}

func TestLoadGoalsBareArray(t *testing.T) {
	caller := newStubCaller()
	caller.static["MilestoneTracker/_getGoals"] = `[{"id":"g1","description":"d","hobby":"h","isActive":true,"completed":false}]`
	svc := NewService(caller)

	if err := svc.LoadGoals(context.Background()); err != nil {
		t.Fatalf("LoadGoals returned error: %v", err)
	}
	if cur := svc.CurrentGoal(); cur == nil || cur.ID != "g1" {
		t.Fatalf("expected g1 current, got %+v", cur)
	}
}

func TestLoadGoalsUnknownShape(t *testing.T) {
	caller := newStubCaller()
	caller.static["MilestoneTracker/_getGoals"] = `{"items":[]}`
	svc := NewService(caller)

	err := svc.LoadGoals(context.Background())
	if !gateway.IsDecode(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if svc.Err() == "" {
		t.Fatalf("failure must be recorded for display")
	}
	if svc.Loading() {
		t.Fatalf("loading flag must reset on failure")
	}
}

func TestCreateGoalReloadsFromServer(t *testing.T) {
	caller := newStubCaller()
	caller.static["MilestoneTracker/createGoal"] = `{"goal":"g9"}`
	caller.static["MilestoneTracker/_getGoals"] = `{"goals":[
		{"id":"g9","description":"Learn guitar","hobby":"music","isActive":true,"completed":false}
	]}`
	svc := NewService(caller)

	goal, err := svc.CreateGoal(context.Background(), "Learn guitar", "music")
	if err != nil {
		t.Fatalf("CreateGoal returned error: %v", err)
	}
	if goal.ID != "g9" || goal.Description != "Learn guitar" || goal.Hobby != "music" {
		t.Fatalf("unexpected goal: %+v", goal)
	}
	if !goal.IsActive || goal.Completed {
		t.Fatalf("new goal must be active: %+v", goal)
	}
	if caller.count("MilestoneTracker/_getGoals") != 1 {
		t.Fatalf("create must reload canonical state, calls: %v", caller.calls)
	}
	if cur := svc.CurrentGoal(); cur == nil || cur.ID != "g9" {
		t.Fatalf("expected new goal selected, got %+v", cur)
	}
}

func TestStepOrderingAndProgress(t *testing.T) {
	caller := newStubCaller()
	caller.static["MilestoneTracker/_getGoals"] = `{"goals":[{"id":"g1","description":"d","hobby":"h","isActive":true,"completed":false}]}`
	caller.static["MilestoneTracker/_getSteps"] = `{"steps":[
		{"id":"s3","description":"third","start":"2026-03-01T00:00:00Z","isComplete":false},
		{"id":"s1","description":"first","start":"2026-01-01T00:00:00Z","completion":"2026-01-02T00:00:00Z","isComplete":true},
		{"id":"s2","description":"second","start":"2026-02-01T00:00:00Z","completion":"2026-02-02T00:00:00Z","isComplete":true}
	]}`
	svc := NewService(caller)
	if err := svc.LoadGoals(context.Background()); err != nil {
		t.Fatalf("LoadGoals: %v", err)
	}
	if err := svc.LoadGoal(context.Background(), "g1"); err != nil {
		t.Fatalf("LoadGoal: %v", err)
	}

	steps := svc.Steps()
	if len(steps) != 3 || steps[0].ID != "s1" || steps[1].ID != "s2" || steps[2].ID != "s3" {
		t.Fatalf("steps not ordered by start: %+v", steps)
	}
	if got := svc.Progress(); got != 67 {
		t.Fatalf("expected 67%% progress, got %d", got)
	}
}

func TestProgressRounding(t *testing.T) {
	cases := []struct {
		total, done, want int
	}{
		{0, 0, 0},
		{1, 0, 0},
		{1, 1, 100},
		{3, 1, 33},
		{3, 2, 67},
		{6, 1, 17},
		{8, 3, 38},
	}
	for _, tc := range cases {
		caller := newStubCaller()
		steps := ""
		for i := 0; i < tc.total; i++ {
			if i > 0 {
				steps += ","
			}
			if i < tc.done {
				steps += fmt.Sprintf(`{"id":"s%d","description":"x","start":"2026-01-0%dT00:00:00Z","completion":"2026-01-09T00:00:00Z","isComplete":true}`, i, i+1)
			} else {
				steps += fmt.Sprintf(`{"id":"s%d","description":"x","start":"2026-01-0%dT00:00:00Z","isComplete":false}`, i, i+1)
			}
		}
		caller.static["MilestoneTracker/_getSteps"] = `{"steps":[` + steps + `]}`
		svc := NewService(caller)
		if err := svc.LoadSteps(context.Background(), "g1"); err != nil {
			t.Fatalf("LoadSteps: %v", err)
		}
		if got := svc.Progress(); got != tc.want {
			t.Fatalf("progress(%d/%d) = %d, want %d", tc.done, tc.total, got, tc.want)
		}
	}
}

func TestStepInvariantViolationIsDecodeError(t *testing.T) {
	caller := newStubCaller()
	caller.static["MilestoneTracker/_getSteps"] = `{"steps":[
		{"id":"s1","description":"x","start":"2026-01-01T00:00:00Z","isComplete":true}
	]}`
	svc := NewService(caller)
	if err := svc.LoadSteps(context.Background(), "g1"); !gateway.IsDecode(err) {
		t.Fatalf("expected decode error for isComplete without completion, got %v", err)
	}
}

func TestCompleteLastStepCompletesGoal(t *testing.T) {
	caller := newStubCaller()
	caller.enqueue("MilestoneTracker/_getGoals", `{"goals":[{"id":"g1","description":"d","hobby":"h","isActive":true,"completed":false}]}`)
	caller.enqueue("MilestoneTracker/_getSteps", `{"steps":[
		{"id":"s1","description":"a","start":"2026-01-01T00:00:00Z","completion":"2026-01-02T00:00:00Z","isComplete":true},
		{"id":"s2","description":"b","start":"2026-01-03T00:00:00Z","completion":"2026-01-04T00:00:00Z","isComplete":true},
		{"id":"s3","description":"c","start":"2026-01-05T00:00:00Z","isComplete":false}
	]}`)
	// reload after completeStep: every step done
	caller.enqueue("MilestoneTracker/_getSteps", `{"steps":[
		{"id":"s1","description":"a","start":"2026-01-01T00:00:00Z","completion":"2026-01-02T00:00:00Z","isComplete":true},
		{"id":"s2","description":"b","start":"2026-01-03T00:00:00Z","completion":"2026-01-04T00:00:00Z","isComplete":true},
		{"id":"s3","description":"c","start":"2026-01-05T00:00:00Z","completion":"2026-01-06T00:00:00Z","isComplete":true}
	]}`)
	// next LoadGoals reflects the server's own recomputation
	caller.enqueue("MilestoneTracker/_getGoals", `{"goals":[{"id":"g1","description":"d","hobby":"h","isActive":false,"completed":true}]}`)

	svc := NewService(caller)
	if err := svc.LoadGoals(context.Background()); err != nil {
		t.Fatalf("LoadGoals: %v", err)
	}
	if err := svc.LoadGoal(context.Background(), "g1"); err != nil {
		t.Fatalf("LoadGoal: %v", err)
	}
	if err := svc.CompleteStep(context.Background(), "s3"); err != nil {
		t.Fatalf("CompleteStep: %v", err)
	}

	goals := svc.Goals()
	if !goals[0].Completed || goals[0].IsActive {
		t.Fatalf("goal must transition to completed and inactive: %+v", goals[0])
	}
	if got := svc.Progress(); got != 100 {
		t.Fatalf("expected 100%% progress, got %d", got)
	}

	// completed goal is excluded from current selection on the next load
	if err := svc.LoadGoals(context.Background()); err != nil {
		t.Fatalf("LoadGoals: %v", err)
	}
	if cur := svc.CurrentGoal(); cur != nil {
		t.Fatalf("completed goal must not be current, got %+v", cur)
	}
	if len(svc.Steps()) != 0 {
		t.Fatalf("steps of a dropped selection must be cleared")
	}
}

func TestRemoveStepReloadsWithCurrentGoal(t *testing.T) {
	caller := newStubCaller()
	caller.static["MilestoneTracker/_getGoals"] = `{"goals":[{"id":"g1","description":"d","hobby":"h","isActive":true,"completed":false}]}`
	caller.enqueue("MilestoneTracker/_getSteps", `{"steps":[
		{"id":"s1","description":"a","start":"2026-01-01T00:00:00Z","isComplete":false},
		{"id":"s2","description":"b","start":"2026-01-02T00:00:00Z","isComplete":false}
	]}`)
	caller.enqueue("MilestoneTracker/_getSteps", `{"steps":[
		{"id":"s2","description":"b","start":"2026-01-02T00:00:00Z","isComplete":false}
	]}`)

	svc := NewService(caller)
	if err := svc.LoadGoals(context.Background()); err != nil {
		t.Fatalf("LoadGoals: %v", err)
	}
	if err := svc.LoadGoal(context.Background(), "g1"); err != nil {
		t.Fatalf("LoadGoal: %v", err)
	}
	if err := svc.RemoveStep(context.Background(), "s1"); err != nil {
		t.Fatalf("RemoveStep: %v", err)
	}
	if caller.count("MilestoneTracker/_getSteps") != 2 {
		t.Fatalf("remove with a current goal must reload steps, calls: %v", caller.calls)
	}
	if steps := svc.Steps(); len(steps) != 1 || steps[0].ID != "s2" {
		t.Fatalf("unexpected steps after reload: %+v", steps)
	}
}

func TestRemoveStepFallsBackToLocalFilter(t *testing.T) {
	caller := newStubCaller()
	caller.static["MilestoneTracker/_getSteps"] = `{"steps":[
		{"id":"s1","description":"a","start":"2026-01-01T00:00:00Z","isComplete":false},
		{"id":"s2","description":"b","start":"2026-01-02T00:00:00Z","isComplete":false}
	]}`
	svc := NewService(caller)
	if err := svc.LoadSteps(context.Background(), "g1"); err != nil {
		t.Fatalf("LoadSteps: %v", err)
	}
	// no current goal selected
	if err := svc.RemoveStep(context.Background(), "s1"); err != nil {
		t.Fatalf("RemoveStep: %v", err)
	}
	if caller.count("MilestoneTracker/_getSteps") != 1 {
		t.Fatalf("remove without a current goal must not reload, calls: %v", caller.calls)
	}
	if steps := svc.Steps(); len(steps) != 1 || steps[0].ID != "s2" {
		t.Fatalf("unexpected steps after local filter: %+v", steps)
	}
}

func TestCloseGoalClearsSelection(t *testing.T) {
	caller := newStubCaller()
	caller.enqueue("MilestoneTracker/_getGoals", `{"goals":[{"id":"g1","description":"d","hobby":"h","isActive":true,"completed":false}]}`)
	caller.static["MilestoneTracker/_getSteps"] = `{"steps":[{"id":"s1","description":"a","start":"2026-01-01T00:00:00Z","isComplete":false}]}`
	caller.enqueue("MilestoneTracker/_getGoals", `{"goals":[{"id":"g1","description":"d","hobby":"h","isActive":false,"completed":false}]}`)

	svc := NewService(caller)
	if err := svc.LoadGoals(context.Background()); err != nil {
		t.Fatalf("LoadGoals: %v", err)
	}
	if err := svc.LoadGoal(context.Background(), "g1"); err != nil {
		t.Fatalf("LoadGoal: %v", err)
	}
	if err := svc.CloseGoal(context.Background(), "g1"); err != nil {
		t.Fatalf("CloseGoal: %v", err)
	}
	if cur := svc.CurrentGoal(); cur != nil {
		t.Fatalf("closed goal must not stay current: %+v", cur)
	}
	if len(svc.Steps()) != 0 {
		t.Fatalf("steps must be cleared with the selection")
	}
	// closed, not completed: retained in history
	goals := svc.Goals()
	if len(goals) != 1 || goals[0].IsActive || goals[0].Completed {
		t.Fatalf("closed goal state wrong: %+v", goals)
	}
}

func TestMutationErrorRecordsAndRethrows(t *testing.T) {
	caller := newStubCaller()
	caller.errs["MilestoneTracker/completeStep"] = gateway.NewTransportError("MilestoneTracker", "completeStep", "connection refused")
	svc := NewService(caller)

	err := svc.CompleteStep(context.Background(), "s1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if svc.Err() == "" {
		t.Fatalf("error must be recorded for display")
	}
	if svc.Loading() {
		t.Fatalf("loading flag must reset on failure")
	}
}
