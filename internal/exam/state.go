package exam

import (
	"encoding/json"
	"time"
)

// ModuleState is the mutable, client-held state of one active module:
// answers, flags and per-question dwell time. It is snapshotted into the
// per-device session store after every mutation so a reload restores the
// exact position, and it is the source of the raw tuples sent to the store
// on submit.
type ModuleState struct {
	TestID    string           `json:"test_id"`
	Module    int              `json:"module"`
	Questions []ModuleQuestion `json:"questions"`
	Current   int              `json:"current"` // 1-based question number
	Timer     TimerState       `json:"timer"`
	ReviewAt  int              `json:"review_at,omitempty"` // last question viewed from review

	// enteredAtMs anchors dwell-time accounting for the current question.
	// Serialized so a reload does not lose the open interval.
	EnteredAtMs int64 `json:"entered_at_ms"`
}

// NewModuleState initializes state for a freshly begun module: every
// question unanswered, unflagged, zero time, cursor on question 1.
func NewModuleState(testID string, module int, questions []Question, timer TimerState, now time.Time) *ModuleState {
	qs := make([]ModuleQuestion, len(questions))
	for i, q := range questions {
		qs[i] = ModuleQuestion{Number: q.Number, Status: StatusUnanswered}
	}
	return &ModuleState{
		TestID:      testID,
		Module:      module,
		Questions:   qs,
		Current:     1,
		Timer:       timer,
		EnteredAtMs: now.UnixMilli(),
	}
}

// RestoreModuleState rebuilds state from a session snapshot and re-anchors
// dwell accounting at now, so time while the page was gone is not billed to
// the question that happened to be open.
func RestoreModuleState(data []byte, now time.Time) (*ModuleState, error) {
	var s ModuleState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Current < 1 {
		s.Current = 1
	}
	s.EnteredAtMs = now.UnixMilli()
	return &s, nil
}

func (s *ModuleState) Snapshot() ([]byte, error) {
	return json.Marshal(s)
}

func (s *ModuleState) question(n int) *ModuleQuestion {
	for i := range s.Questions {
		if s.Questions[i].Number == n {
			return &s.Questions[i]
		}
	}
	return nil
}

// Answer records the user's answer for a question. Status is untouched: it
// belongs to server-side validation.
func (s *ModuleState) Answer(n int, value string) {
	if q := s.question(n); q != nil {
		q.UserAnswer = value
	}
}

// ToggleFlag flips the review flag on a question.
func (s *ModuleState) ToggleFlag(n int) {
	if q := s.question(n); q != nil {
		q.Flagged = !q.Flagged
	}
}

// GoTo moves the cursor to question n, clamped to [1, len]. The wall-clock
// time spent on the question being left is flushed into its accumulator
// first; dwell time only ever grows.
func (s *ModuleState) GoTo(n int, now time.Time) {
	if n < 1 {
		n = 1
	}
	if n > len(s.Questions) {
		n = len(s.Questions)
	}
	s.FlushDwell(now)
	s.Current = n
}

// FlushDwell folds the open interval since the current question was entered
// into its TimeSpentSec and re-anchors. Called on every navigation and on
// unmount so the last question's dwell is not lost.
func (s *ModuleState) FlushDwell(now time.Time) {
	elapsed := int((now.UnixMilli() - s.EnteredAtMs) / 1000)
	if elapsed > 0 {
		if q := s.question(s.Current); q != nil {
			q.TimeSpentSec += elapsed
		}
	}
	s.EnteredAtMs = now.UnixMilli()
}

// Counts summarizes the module for the review screen.
func (s *ModuleState) Counts() (answered, flagged, unanswered int) {
	for _, q := range s.Questions {
		if q.Flagged {
			flagged++
		}
		if q.UserAnswer != "" {
			answered++
		} else {
			unanswered++
		}
	}
	return
}

// RawAnswers produces the tuples handed to the store's validate-and-persist
// operation. No status: correctness is computed only on the trusted side.
func (s *ModuleState) RawAnswers() []RawAnswer {
	out := make([]RawAnswer, len(s.Questions))
	for i, q := range s.Questions {
		out[i] = RawAnswer{
			Number:       q.Number,
			UserAnswer:   q.UserAnswer,
			TimeSpentSec: q.TimeSpentSec,
		}
	}
	return out
}
