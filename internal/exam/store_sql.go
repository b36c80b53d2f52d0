package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	syncx "github.com/aaron-veronese/RealSAT-sub000/internal/sync"
)

// SQLStore implements QuestionBank, AttemptStore and ResultsStore over
// database/sql. Placeholders are written $1-style, valid for both the pgx
// and modernc sqlite drivers. Module records live in a JSON column, so one
// UPDATE makes a module submission all-or-nothing.
type SQLStore struct {
	db     *sql.DB
	events *syncx.EventRepo
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, events: syncx.NewEventRepo(db)}
}

func (s *SQLStore) QuestionsByModule(ctx context.Context, testID string, module int) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT test_id, module, number, section, content_json, options_json, correct_answer
		 FROM questions WHERE test_id=$1 AND module=$2 ORDER BY number`,
		testID, module)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		var contentJSON, optionsJSON string
		if err := rows.Scan(&q.TestID, &q.Module, &q.Number, &q.Section, &contentJSON, &optionsJSON, &q.CorrectAnswer); err != nil {
			return nil, err
		}
		if contentJSON != "" {
			if err := json.Unmarshal([]byte(contentJSON), &q.Content); err != nil {
				return nil, fmt.Errorf("question %s/%d/%d content: %w", testID, module, q.Number, err)
			}
		}
		if optionsJSON != "" {
			if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
				return nil, fmt.Errorf("question %s/%d/%d options: %w", testID, module, q.Number, err)
			}
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("questions for %s module %d: %w", testID, module, ErrNotFound)
	}
	return out, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, userID, testID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, test_id, status, modules_json, total_time_sec,
		        reading_scaled, math_scaled, total_score, started_at, COALESCE(finalized_at, 0)
		 FROM attempts WHERE user_id=$1 AND test_id=$2`,
		userID, testID)
	return scanAttempt(row)
}

func (s *SQLStore) CreateAttempt(ctx context.Context, userID, testID string) (Attempt, error) {
	if a, err := s.GetAttempt(ctx, userID, testID); err == nil {
		return a, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Attempt{}, err
	}
	a := Attempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		TestID:    testID,
		Status:    AttemptInProgress,
		Modules:   map[int]ModuleRecord{},
		StartedAt: time.Now().Unix(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, user_id, test_id, status, modules_json, total_time_sec,
		                       reading_scaled, math_scaled, total_score, started_at)
		 VALUES ($1,$2,$3,$4,$5,0,0,0,0,$6)`,
		a.ID, a.UserID, a.TestID, a.Status, "{}", a.StartedAt); err != nil {
		return Attempt{}, fmt.Errorf("insert attempt: %v: %w", err, ErrAttemptCreateFailed)
	}
	return a, nil
}

func (s *SQLStore) SubmitModule(ctx context.Context, userID, testID string, module int, answers []RawAnswer, totalTimeSec int) (Attempt, error) {
	questions, err := s.QuestionsByModule(ctx, testID, module)
	if err != nil {
		return Attempt{}, fmt.Errorf("load canonical questions: %v: %w", err, ErrValidationFailed)
	}

	a, err := s.GetAttempt(ctx, userID, testID)
	if errors.Is(err, ErrNotFound) {
		a, err = s.CreateAttempt(ctx, userID, testID)
	}
	if err != nil {
		return Attempt{}, err
	}

	// Completed modules are immutable; a duplicate submit returns the
	// stored attempt untouched.
	if rec, ok := a.Modules[module]; ok && rec.Completed {
		return a, nil
	}

	rec, err := validateModule(module, questions, answers, totalTimeSec)
	if err != nil {
		return Attempt{}, err
	}
	a.Modules[module] = rec

	buf, err := json.Marshal(a.Modules)
	if err != nil {
		return Attempt{}, fmt.Errorf("encode modules: %v: %w", err, ErrValidationFailed)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET modules_json=$1 WHERE id=$2`,
		string(buf), a.ID); err != nil {
		return Attempt{}, fmt.Errorf("persist module %d: %v: %w", module, err, ErrValidationFailed)
	}

	if err := s.events.Append(ctx, syncx.TypeModuleSubmitted, a.ID, map[string]any{
		"module": module, "correct": rec.CorrectCount(), "total_time_sec": totalTimeSec,
	}); err != nil {
		log.Printf("event append (module submitted): %v", err)
	}
	return a, nil
}

func (s *SQLStore) Finalize(ctx context.Context, userID, testID string, totalTimeSec int, score Score) (Attempt, error) {
	a, err := s.GetAttempt(ctx, userID, testID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == AttemptComplete {
		return a, nil
	}
	now := time.Now().Unix()
	// Guarded update keeps finalize idempotent under a duplicate in-flight
	// call: only the first writer flips the status.
	res, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET status=$1, total_time_sec=$2, reading_scaled=$3,
		        math_scaled=$4, total_score=$5, finalized_at=$6
		 WHERE id=$7 AND status=$8`,
		AttemptComplete, totalTimeSec, score.ReadingScaled, score.MathScaled,
		score.Total, now, a.ID, AttemptInProgress)
	if err != nil {
		return Attempt{}, fmt.Errorf("finalize attempt: %v: %w", err, ErrValidationFailed)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Lost the race; return whatever is stored.
		return s.GetAttempt(ctx, userID, testID)
	}

	if err := s.events.Append(ctx, syncx.TypeAttemptFinalized, a.ID, score); err != nil {
		log.Printf("event append (attempt finalized): %v", err)
	}
	return s.GetAttempt(ctx, userID, testID)
}

func (s *SQLStore) Leaderboard(ctx context.Context, testID string, limit, offset int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, total_score, reading_scaled, math_scaled, total_time_sec, COALESCE(finalized_at, 0)
		 FROM attempts WHERE test_id=$1 AND status=$2
		 ORDER BY total_score DESC, total_time_sec ASC
		 LIMIT $3 OFFSET $4`,
		testID, AttemptComplete, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardEntry
	rank := offset
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.TotalScore, &e.ReadingScaled, &e.MathScaled, &e.TotalTimeSec, &e.FinalizedAt); err != nil {
			return nil, err
		}
		rank++
		e.Rank = rank
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) AttemptsByUser(ctx context.Context, userID string) ([]AttemptSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT test_id, status, reading_scaled, math_scaled, total_score, total_time_sec,
		        started_at, COALESCE(finalized_at, 0)
		 FROM attempts WHERE user_id=$1 ORDER BY started_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttemptSummary
	for rows.Next() {
		var a AttemptSummary
		if err := rows.Scan(&a.TestID, &a.Status, &a.ReadingScaled, &a.MathScaled, &a.TotalScore,
			&a.TotalTimeSec, &a.StartedAt, &a.FinalizedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var modulesJSON string
	err := row.Scan(&a.ID, &a.UserID, &a.TestID, &a.Status, &modulesJSON, &a.TotalTimeSec,
		&a.ReadingScaled, &a.MathScaled, &a.TotalScore, &a.StartedAt, &a.FinalizedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, fmt.Errorf("attempt: %w", ErrNotFound)
	}
	if err != nil {
		return Attempt{}, err
	}
	if modulesJSON == "" {
		modulesJSON = "{}"
	}
	if err := json.Unmarshal([]byte(modulesJSON), &a.Modules); err != nil {
		return Attempt{}, fmt.Errorf("decode attempt %s modules: %w", a.ID, err)
	}
	if a.Modules == nil {
		a.Modules = map[int]ModuleRecord{}
	}
	return a, nil
}
