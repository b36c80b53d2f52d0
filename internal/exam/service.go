package exam

import (
	"context"
	"fmt"
)

// Service is the trusted submission pipeline: validate-and-persist one
// module, check completion, finalize when all four modules are in, and
// resolve the post-submit route. It runs behind the HTTP boundary; the
// orchestrator drives it from the client side, and its output is the only
// correctness anybody gets to keep.
type Service struct {
	bank    QuestionBank
	store   AttemptStore
	profile string
}

func NewService(bank QuestionBank, store AttemptStore) *Service {
	return &Service{bank: bank, store: store, profile: "sat.v1"}
}

// SubmitResult is what a successful module submission hands back to the UI.
type SubmitResult struct {
	Attempt Attempt `json:"attempt"`
	Route   Route   `json:"route"`
}

// Questions returns the student-safe question set for a module: ordered,
// answer keys stripped. ErrQuestionsUnavailable when the set is missing or
// empty.
func (s *Service) Questions(ctx context.Context, testID string, module int) ([]Question, error) {
	qs, err := s.bank.QuestionsByModule(ctx, testID, module)
	if err != nil || len(qs) == 0 {
		return nil, fmt.Errorf("test %s module %d: %w", testID, module, ErrQuestionsUnavailable)
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		q.CorrectAnswer = ""
		// A single-entry options array on a math question is the free
		// response key in disguise; never serve it.
		if Classify(qs[i]) == FreeResponse {
			q.Options = nil
		}
		out[i] = q
	}
	return out, nil
}

// SubmitModule validates and persists one module, finalizes the attempt when
// it was the last outstanding module, and returns the route the UI should
// take next.
func (s *Service) SubmitModule(ctx context.Context, userID, testID string, module int, answers []RawAnswer, totalTimeSec int) (*SubmitResult, error) {
	attempt, err := s.store.SubmitModule(ctx, userID, testID, module, answers, totalTimeSec)
	if err != nil {
		return nil, err
	}

	if attempt.AllModulesComplete() && attempt.Status != AttemptComplete {
		score := ScoreAttempt(attempt.Modules)
		totalTime := 0
		for _, rec := range attempt.Modules {
			totalTime += rec.TotalTimeSec
		}
		attempt, err = s.store.Finalize(ctx, userID, testID, totalTime, score)
		if err != nil {
			return nil, err
		}
	}

	return &SubmitResult{
		Attempt: attempt,
		Route:   RouteAfter(s.profile, module, attempt),
	}, nil
}

// SectionResult is the partial results view: one section's raw and scaled
// score, available as soon as both of that section's modules are complete,
// before the whole attempt finalizes. This is what the early reading-results
// shortcut and the math-only results route render.
type SectionResult struct {
	Section Section `json:"section"`
	Raw     int     `json:"raw"`
	Scaled  int     `json:"scaled"`
}

// SectionResults computes one section's scores from the stored attempt.
// ErrNotFound until both of the section's modules are complete.
func (s *Service) SectionResults(ctx context.Context, userID, testID string, section Section) (SectionResult, error) {
	a, err := s.store.GetAttempt(ctx, userID, testID)
	if err != nil {
		return SectionResult{}, err
	}
	lo, hi := 1, 2
	if section == SectionMath {
		lo, hi = 3, 4
	}
	if !a.ModuleComplete(lo) || !a.ModuleComplete(hi) {
		return SectionResult{}, fmt.Errorf("section %s incomplete: %w", section, ErrNotFound)
	}
	raw := RawScore(a.Modules, section)
	return SectionResult{Section: section, Raw: raw, Scaled: ScaledScore(raw, section)}, nil
}

// EarlyReadingResults reports whether both reading modules are complete, the
// module-3 intro's "view Reading & Writing results" shortcut. Informational
// only; it never gates progression.
func (s *Service) EarlyReadingResults(ctx context.Context, userID, testID string) bool {
	a, err := s.store.GetAttempt(ctx, userID, testID)
	if err != nil {
		return false
	}
	return a.ModuleComplete(1) && a.ModuleComplete(2)
}
