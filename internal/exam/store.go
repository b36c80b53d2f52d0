package exam

import (
	"context"
	"fmt"
)

// RawAnswer is the untrusted per-question tuple sent on submit. Correctness
// is deliberately absent; the store computes it from the canonical bank.
type RawAnswer struct {
	Number       int    `json:"number"`
	UserAnswer   string `json:"user_answer"`
	TimeSpentSec int    `json:"time_spent_sec"`
}

// QuestionBank serves canonical question sets, ordered by question number.
type QuestionBank interface {
	// QuestionsByModule returns the full questions (answer keys included)
	// for one module of a test, or ErrNotFound.
	QuestionsByModule(ctx context.Context, testID string, module int) ([]Question, error)
}

// AttemptStore is the authoritative persistence boundary for attempts.
type AttemptStore interface {
	// GetAttempt returns the attempt keyed by (userID, testID), or
	// ErrNotFound.
	GetAttempt(ctx context.Context, userID, testID string) (Attempt, error)

	// CreateAttempt creates an in-progress attempt. Called lazily on first
	// module submission only.
	CreateAttempt(ctx context.Context, userID, testID string) (Attempt, error)

	// SubmitModule validates and persists one module submission. It is the
	// single authority for correctness: it loads the canonical questions,
	// classifies each as multiple-choice or free-response and computes the
	// status server-side. The write is all-or-nothing per module, and a
	// module already completed is left untouched (the call returns the
	// stored attempt unchanged). Failures wrap ErrValidationFailed.
	SubmitModule(ctx context.Context, userID, testID string, module int, answers []RawAnswer, totalTimeSec int) (Attempt, error)

	// Finalize stamps the scaled scores and flips the attempt to complete.
	// Idempotent: finalizing an already-complete attempt returns the stored
	// scores rather than recomputing or erroring, tolerating the
	// double-submission race.
	Finalize(ctx context.Context, userID, testID string, totalTimeSec int, score Score) (Attempt, error)
}

// validateModule builds the validated module record from canonical questions
// and raw answers. One record entry per canonical question; answers for
// unknown question numbers are dropped, missing answers are unanswered.
// Shared by every AttemptStore implementation so memory and SQL agree.
func validateModule(module int, questions []Question, answers []RawAnswer, totalTimeSec int) (ModuleRecord, error) {
	if len(questions) == 0 {
		return ModuleRecord{}, fmt.Errorf("module %d has no questions: %w", module, ErrValidationFailed)
	}
	byNumber := make(map[int]RawAnswer, len(answers))
	for _, a := range answers {
		byNumber[a.Number] = a
	}
	rec := ModuleRecord{
		Module:       module,
		Questions:    make([]ModuleQuestion, len(questions)),
		Completed:    true,
		TotalTimeSec: totalTimeSec,
	}
	for i, q := range questions {
		raw := byNumber[q.Number]
		rec.Questions[i] = ModuleQuestion{
			Number:       q.Number,
			UserAnswer:   raw.UserAnswer,
			TimeSpentSec: raw.TimeSpentSec,
			Status:       AnswerStatus(raw.UserAnswer, q.CorrectAnswer, Classify(q)),
		}
	}
	return rec, nil
}
