package exam_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaron-veronese/RealSAT-sub000/internal/db"
	"github.com/aaron-veronese/RealSAT-sub000/internal/exam"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

func insertQuestions(t *testing.T, dbh *sql.DB, testID string, module, count int) {
	t.Helper()
	ctx := context.Background()
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO exams (id, title, created_at) VALUES ($1,$2,$3)
		 ON CONFLICT (id) DO NOTHING`,
		testID, "Practice Test", time.Now().Unix())
	require.NoError(t, err)

	for n := 1; n <= count; n++ {
		content, _ := json.Marshal([]exam.ContentBlock{
			{Type: "text", Body: json.RawMessage(fmt.Sprintf(`"question %d"`, n))},
		})
		options, _ := json.Marshal([]string{"A", "B", "C", "D"})
		_, err := dbh.ExecContext(ctx,
			`INSERT INTO questions (test_id, module, number, section, content_json, options_json, correct_answer)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			testID, module, n, string(exam.ModuleSection(module)), string(content), string(options), "A")
		require.NoError(t, err)
	}
}

func sqlRawAnswers(count, correct int) []exam.RawAnswer {
	out := make([]exam.RawAnswer, count)
	for i := range out {
		ans := "B"
		if i < correct {
			ans = "A"
		}
		out[i] = exam.RawAnswer{Number: i + 1, UserAnswer: ans, TimeSpentSec: 20}
	}
	return out
}

func TestSQLQuestionsRoundTrip(t *testing.T) {
	dbh := openTestDB(t)
	store := exam.NewSQLStore(dbh)
	ctx := context.Background()
	insertQuestions(t, dbh, "sat-1", 1, 3)

	qs, err := store.QuestionsByModule(ctx, "sat-1", 1)
	require.NoError(t, err)
	require.Len(t, qs, 3)
	for i, q := range qs {
		assert.Equal(t, i+1, q.Number) // ordered
		assert.Equal(t, exam.SectionReading, q.Section)
		assert.Equal(t, "A", q.CorrectAnswer)
		require.Len(t, q.Content, 1)
		assert.Equal(t, "text", q.Content[0].Type)
		assert.Equal(t, []string{"A", "B", "C", "D"}, q.Options)
	}

	_, err = store.QuestionsByModule(ctx, "sat-1", 2)
	assert.ErrorIs(t, err, exam.ErrNotFound)
}

func TestSQLLazyAttemptCreation(t *testing.T) {
	dbh := openTestDB(t)
	store := exam.NewSQLStore(dbh)
	ctx := context.Background()
	insertQuestions(t, dbh, "sat-1", 1, 27)

	_, err := store.GetAttempt(ctx, "u1", "sat-1")
	require.ErrorIs(t, err, exam.ErrNotFound)

	a, err := store.SubmitModule(ctx, "u1", "sat-1", 1, sqlRawAnswers(27, 10), 1500)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, exam.AttemptInProgress, a.Status)
	require.True(t, a.ModuleComplete(1))
	assert.Equal(t, 10, a.Modules[1].CorrectCount())
	assert.Equal(t, 1500, a.Modules[1].TotalTimeSec)

	got, err := store.GetAttempt(ctx, "u1", "sat-1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, 10, got.Modules[1].CorrectCount())
}

func TestSQLDuplicateSubmitIsNoop(t *testing.T) {
	dbh := openTestDB(t)
	store := exam.NewSQLStore(dbh)
	ctx := context.Background()
	insertQuestions(t, dbh, "sat-1", 1, 27)

	first, err := store.SubmitModule(ctx, "u1", "sat-1", 1, sqlRawAnswers(27, 10), 1500)
	require.NoError(t, err)

	again, err := store.SubmitModule(ctx, "u1", "sat-1", 1, sqlRawAnswers(27, 27), 100)
	require.NoError(t, err)
	assert.Equal(t, first.Modules[1], again.Modules[1])
}

func TestSQLSubmitWithoutQuestions(t *testing.T) {
	dbh := openTestDB(t)
	store := exam.NewSQLStore(dbh)

	_, err := store.SubmitModule(context.Background(), "u1", "ghost", 1, sqlRawAnswers(27, 0), 100)
	assert.ErrorIs(t, err, exam.ErrValidationFailed)
}

func TestSQLFinalizeIdempotent(t *testing.T) {
	dbh := openTestDB(t)
	store := exam.NewSQLStore(dbh)
	ctx := context.Background()
	insertQuestions(t, dbh, "sat-1", 1, 27)

	_, err := store.SubmitModule(ctx, "u1", "sat-1", 1, sqlRawAnswers(27, 10), 1500)
	require.NoError(t, err)

	score := exam.Score{ReadingScaled: 644, MathScaled: 677, Total: 1320}
	a, err := store.Finalize(ctx, "u1", "sat-1", 7800, score)
	require.NoError(t, err)
	assert.Equal(t, exam.AttemptComplete, a.Status)
	assert.Equal(t, 1320, a.TotalScore)
	assert.NotZero(t, a.FinalizedAt)

	// A second finalize with different numbers returns the stored scores.
	again, err := store.Finalize(ctx, "u1", "sat-1", 1, exam.Score{Total: 400})
	require.NoError(t, err)
	assert.Equal(t, 1320, again.TotalScore)
	assert.Equal(t, 7800, again.TotalTimeSec)
	assert.Equal(t, a.FinalizedAt, again.FinalizedAt)
}

func TestSQLLeaderboardOrdering(t *testing.T) {
	dbh := openTestDB(t)
	store := exam.NewSQLStore(dbh)
	ctx := context.Background()
	insertQuestions(t, dbh, "sat-1", 1, 2)

	finalize := func(user string, total, timeSec int) {
		_, err := store.SubmitModule(ctx, user, "sat-1", 1, sqlRawAnswers(2, 1), timeSec)
		require.NoError(t, err)
		_, err = store.Finalize(ctx, user, "sat-1", timeSec, exam.Score{Total: total})
		require.NoError(t, err)
	}
	finalize("alice", 1400, 8000)
	finalize("bob", 1200, 7000)
	finalize("carol", 1400, 7500) // same score as alice, faster

	// dave never finished; excluded.
	_, err := store.SubmitModule(ctx, "dave", "sat-1", 1, sqlRawAnswers(2, 2), 100)
	require.NoError(t, err)

	rows, err := store.Leaderboard(ctx, "sat-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "carol", rows[0].UserID)
	assert.Equal(t, "alice", rows[1].UserID)
	assert.Equal(t, "bob", rows[2].UserID)
	for i, r := range rows {
		assert.Equal(t, i+1, r.Rank)
	}

	// Offset carries the rank forward.
	page, err := store.Leaderboard(ctx, "sat-1", 10, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "alice", page[0].UserID)
	assert.Equal(t, 2, page[0].Rank)
}

func TestSQLAttemptsByUser(t *testing.T) {
	dbh := openTestDB(t)
	store := exam.NewSQLStore(dbh)
	ctx := context.Background()
	insertQuestions(t, dbh, "sat-1", 1, 2)
	insertQuestions(t, dbh, "sat-2", 1, 2)

	_, err := store.SubmitModule(ctx, "u1", "sat-1", 1, sqlRawAnswers(2, 1), 100)
	require.NoError(t, err)
	_, err = store.SubmitModule(ctx, "u1", "sat-2", 1, sqlRawAnswers(2, 2), 100)
	require.NoError(t, err)
	_, err = store.SubmitModule(ctx, "u2", "sat-1", 1, sqlRawAnswers(2, 0), 100)
	require.NoError(t, err)

	rows, err := store.AttemptsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, exam.AttemptInProgress, r.Status)
	}
}

func TestSQLEventLogAudit(t *testing.T) {
	dbh := openTestDB(t)
	store := exam.NewSQLStore(dbh)
	ctx := context.Background()
	insertQuestions(t, dbh, "sat-1", 1, 2)

	a, err := store.SubmitModule(ctx, "u1", "sat-1", 1, sqlRawAnswers(2, 1), 100)
	require.NoError(t, err)
	_, err = store.Finalize(ctx, "u1", "sat-1", 100, exam.Score{Total: 800})
	require.NoError(t, err)

	var n int
	err = dbh.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_log WHERE key=$1`, a.ID).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
