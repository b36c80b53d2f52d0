package exam

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process QuestionBank + AttemptStore + ResultsStore.
// Backs tests and the offline/demo mode; the SQL store is the production
// path.
type MemoryStore struct {
	mu        sync.RWMutex
	questions map[string]map[int][]Question // testID -> module -> ordered questions
	attempts  map[string]Attempt            // userID|testID -> attempt
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		questions: map[string]map[int][]Question{},
		attempts:  map[string]Attempt{},
	}
}

func attemptKey(userID, testID string) string { return userID + "|" + testID }

// PutQuestions installs the canonical question set for one module.
func (m *MemoryStore) PutQuestions(testID string, module int, qs []Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.questions[testID] == nil {
		m.questions[testID] = map[int][]Question{}
	}
	cp := make([]Question, len(qs))
	copy(cp, qs)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Number < cp[j].Number })
	m.questions[testID][module] = cp
}

func (m *MemoryStore) QuestionsByModule(_ context.Context, testID string, module int) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qs := m.questions[testID][module]
	if len(qs) == 0 {
		return nil, fmt.Errorf("questions for %s module %d: %w", testID, module, ErrNotFound)
	}
	out := make([]Question, len(qs))
	copy(out, qs)
	return out, nil
}

func (m *MemoryStore) GetAttempt(_ context.Context, userID, testID string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[attemptKey(userID, testID)]
	if !ok {
		return Attempt{}, fmt.Errorf("attempt for %s/%s: %w", userID, testID, ErrNotFound)
	}
	return copyAttempt(a), nil
}

func (m *MemoryStore) CreateAttempt(_ context.Context, userID, testID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.attempts[attemptKey(userID, testID)]; ok {
		return copyAttempt(a), nil
	}
	a := Attempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		TestID:    testID,
		Status:    AttemptInProgress,
		Modules:   map[int]ModuleRecord{},
		StartedAt: time.Now().Unix(),
	}
	m.attempts[attemptKey(userID, testID)] = a
	return copyAttempt(a), nil
}

func (m *MemoryStore) SubmitModule(ctx context.Context, userID, testID string, module int, answers []RawAnswer, totalTimeSec int) (Attempt, error) {
	questions, err := m.QuestionsByModule(ctx, testID, module)
	if err != nil {
		return Attempt{}, fmt.Errorf("load questions: %w", ErrValidationFailed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := attemptKey(userID, testID)
	a, ok := m.attempts[key]
	if !ok {
		a = Attempt{
			ID:        uuid.NewString(),
			UserID:    userID,
			TestID:    testID,
			Status:    AttemptInProgress,
			Modules:   map[int]ModuleRecord{},
			StartedAt: time.Now().Unix(),
		}
	}
	// Completed modules are immutable; a duplicate submit is a no-op.
	if rec, ok := a.Modules[module]; ok && rec.Completed {
		m.attempts[key] = a
		return copyAttempt(a), nil
	}
	rec, err := validateModule(module, questions, answers, totalTimeSec)
	if err != nil {
		return Attempt{}, err
	}
	a.Modules[module] = rec
	m.attempts[key] = a
	return copyAttempt(a), nil
}

func (m *MemoryStore) Finalize(_ context.Context, userID, testID string, totalTimeSec int, score Score) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := attemptKey(userID, testID)
	a, ok := m.attempts[key]
	if !ok {
		return Attempt{}, fmt.Errorf("attempt for %s/%s: %w", userID, testID, ErrNotFound)
	}
	if a.Status == AttemptComplete {
		return copyAttempt(a), nil
	}
	a.Status = AttemptComplete
	a.TotalTimeSec = totalTimeSec
	a.ReadingScaled = score.ReadingScaled
	a.MathScaled = score.MathScaled
	a.TotalScore = score.Total
	a.FinalizedAt = time.Now().Unix()
	m.attempts[key] = a
	return copyAttempt(a), nil
}

func (m *MemoryStore) Leaderboard(_ context.Context, testID string, limit, offset int) ([]LeaderboardEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []LeaderboardEntry
	for _, a := range m.attempts {
		if a.TestID != testID || a.Status != AttemptComplete {
			continue
		}
		rows = append(rows, LeaderboardEntry{
			UserID:        a.UserID,
			TotalScore:    a.TotalScore,
			ReadingScaled: a.ReadingScaled,
			MathScaled:    a.MathScaled,
			TotalTimeSec:  a.TotalTimeSec,
			FinalizedAt:   a.FinalizedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		return rows[i].TotalTimeSec < rows[j].TotalTimeSec
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *MemoryStore) AttemptsByUser(_ context.Context, userID string) ([]AttemptSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []AttemptSummary
	for _, a := range m.attempts {
		if a.UserID != userID {
			continue
		}
		rows = append(rows, AttemptSummary{
			TestID:        a.TestID,
			Status:        a.Status,
			ReadingScaled: a.ReadingScaled,
			MathScaled:    a.MathScaled,
			TotalScore:    a.TotalScore,
			TotalTimeSec:  a.TotalTimeSec,
			StartedAt:     a.StartedAt,
			FinalizedAt:   a.FinalizedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StartedAt > rows[j].StartedAt })
	return rows, nil
}

func copyAttempt(a Attempt) Attempt {
	out := a
	out.Modules = make(map[int]ModuleRecord, len(a.Modules))
	for k, rec := range a.Modules {
		qs := make([]ModuleQuestion, len(rec.Questions))
		copy(qs, rec.Questions)
		rec.Questions = qs
		out.Modules[k] = rec
	}
	return out
}
