// Package quiz drives one attempt at the QuizMatchmaker questionnaire: a
// fixed, server-supplied question list, a cursor over it, and the recorded
// free-text responses. Nothing here is persisted; a restart discards it.
package quiz

import (
	"context"
	"encoding/json"
	"math"

	"github.com/hobbysprout/sprout/internal/gateway"
)

const concept = "QuizMatchmaker"

type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type HobbyMatch struct {
	Hobby string `json:"hobby"`
	Score int    `json:"score"`
}

type Caller interface {
	Call(ctx context.Context, concept, action string, payload any) (json.RawMessage, error)
}

type Runner struct {
	gw Caller

	questions []Question
	cursor    int
	responses map[string]string
	matches   []HobbyMatch
	completed bool
	loading   bool
	lastErr   string
}

func NewRunner(gw Caller) *Runner {
	return &Runner{gw: gw, responses: map[string]string{}}
}

// LoadQuestions fetches the question list once, at quiz start, and rewinds
// the cursor.
func (r *Runner) LoadQuestions(ctx context.Context) error {
	defer r.begin()()
	raw, err := r.gw.Call(ctx, concept, "_getQuestions", nil)
	if err != nil {
		return r.fail(err)
	}
	var questions []Question
	if err := gateway.ObjectList(raw, concept, "_getQuestions", "questions", &questions); err != nil {
		return r.fail(err)
	}
	r.questions = questions
	r.cursor = 0
	r.completed = false
	return nil
}

// SubmitResponse records a free-text answer. Resubmitting for the same
// question overwrites the stored response instead of duplicating it.
func (r *Runner) SubmitResponse(ctx context.Context, questionID, text string) error {
	defer r.begin()()
	if _, err := r.gw.Call(ctx, concept, "submitResponse", map[string]string{
		"question": questionID,
		"response": text,
	}); err != nil {
		return r.fail(err)
	}
	r.responses[questionID] = text
	return nil
}

// GenerateHobbyMatch asks the server for the final match and marks the quiz
// completed. Meaningful only after the questions are answered; that gate is
// the caller's.
func (r *Runner) GenerateHobbyMatch(ctx context.Context) (HobbyMatch, error) {
	defer r.begin()()
	raw, err := r.gw.Call(ctx, concept, "generateHobbyMatch", nil)
	if err != nil {
		return HobbyMatch{}, r.fail(err)
	}
	var match HobbyMatch
	if err := gateway.Object(raw, concept, "generateHobbyMatch", &match); err != nil {
		return HobbyMatch{}, r.fail(err)
	}
	if match.Hobby == "" {
		return HobbyMatch{}, r.fail(gateway.NewDecodeError(concept, "generateHobbyMatch", "response missing hobby"))
	}
	r.matches = []HobbyMatch{match}
	r.completed = true
	return match, nil
}

// Current returns the question under the cursor, or nil past either end.
func (r *Runner) Current() *Question {
	if r.cursor < 0 || r.cursor >= len(r.questions) {
		return nil
	}
	q := r.questions[r.cursor]
	return &q
}

func (r *Runner) Total() int { return len(r.questions) }

// Progress is the cursor position in whole percent, 0 with no questions.
func (r *Runner) Progress() int {
	if len(r.questions) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.cursor) / float64(len(r.questions))))
}

// Next advances the cursor; it reports whether it moved.
func (r *Runner) Next() bool {
	if r.cursor >= len(r.questions)-1 {
		return false
	}
	r.cursor++
	return true
}

// Previous rewinds the cursor; it reports whether it moved.
func (r *Runner) Previous() bool {
	if r.cursor <= 0 {
		return false
	}
	r.cursor--
	return true
}

// GoTo jumps to a question index; it reports whether the index was valid.
func (r *Runner) GoTo(index int) bool {
	if index < 0 || index >= len(r.questions) {
		return false
	}
	r.cursor = index
	return true
}

// ResponseFor returns the recorded response for a question, or "".
func (r *Runner) ResponseFor(questionID string) string {
	return r.responses[questionID]
}

// HasResponded reports whether the current question has a recorded response.
func (r *Runner) HasResponded() bool {
	q := r.Current()
	if q == nil {
		return false
	}
	_, ok := r.responses[q.ID]
	return ok
}

// Answered counts recorded responses.
func (r *Runner) Answered() int { return len(r.responses) }

func (r *Runner) Matches() []HobbyMatch {
	out := make([]HobbyMatch, len(r.matches))
	copy(out, r.matches)
	return out
}

func (r *Runner) Completed() bool { return r.completed }
func (r *Runner) Loading() bool   { return r.loading }
func (r *Runner) Err() string     { return r.lastErr }

// Restart clears responses, matches and the completed flag but keeps the
// loaded question list.
func (r *Runner) Restart() {
	r.cursor = 0
	r.responses = map[string]string{}
	r.matches = nil
	r.completed = false
	r.lastErr = ""
}

// Clear is a full reset including the question list.
func (r *Runner) Clear() {
	r.questions = nil
	r.Restart()
}

func (r *Runner) begin() func() {
	r.loading = true
	r.lastErr = ""
	return func() { r.loading = false }
}

func (r *Runner) fail(err error) error {
	r.lastErr = err.Error()
	return err
}
