package exam_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aaron-veronese/RealSAT-sub000/internal/exam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawAnswers builds a module's submission with the first correct answers
// right ("A") and the rest wrong.
func rawAnswers(module, correct int) []exam.RawAnswer {
	n := exam.QuestionsPerModule(module)
	out := make([]exam.RawAnswer, n)
	for i := range out {
		ans := "B"
		if i < correct {
			ans = "A"
		}
		out[i] = exam.RawAnswer{Number: i + 1, UserAnswer: ans, TimeSpentSec: 30}
	}
	return out
}

func TestQuestionsStripAnswerKeys(t *testing.T) {
	ctx := context.Background()
	store := exam.NewMemoryStore()
	seedModule(store, "sat-1", 1)
	store.PutQuestions("sat-1", 3, []exam.Question{
		{TestID: "sat-1", Module: 3, Number: 1, Section: exam.SectionMath, Options: []string{"42"}, CorrectAnswer: "42"},
		{TestID: "sat-1", Module: 3, Number: 2, Section: exam.SectionMath, Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "C"},
	})
	svc := exam.NewService(store, store)

	qs, err := svc.Questions(ctx, "sat-1", 1)
	require.NoError(t, err)
	require.Len(t, qs, 27)
	for _, q := range qs {
		assert.Empty(t, q.CorrectAnswer)
	}

	math, err := svc.Questions(ctx, "sat-1", 3)
	require.NoError(t, err)
	// Free-response key hidden inside a single-entry options array must not
	// reach the client.
	assert.Nil(t, math[0].Options)
	assert.Empty(t, math[0].CorrectAnswer)
	assert.Len(t, math[1].Options, 4)

	_, err = svc.Questions(ctx, "sat-1", 2)
	assert.ErrorIs(t, err, exam.ErrQuestionsUnavailable)
}

func TestFullTestFinalizesAndScores(t *testing.T) {
	ctx := context.Background()
	store := exam.NewMemoryStore()
	seedAll(store, "sat-1")
	svc := exam.NewService(store, store)

	// 20+20 reading, 18+17 math: raw 40/54 and 35/44.
	res, err := svc.SubmitModule(ctx, "u1", "sat-1", 1, rawAnswers(1, 20), 1900)
	require.NoError(t, err)
	assert.Equal(t, exam.Route{Kind: exam.RouteModuleIntro, Module: 2}, res.Route)
	assert.Equal(t, exam.AttemptInProgress, res.Attempt.Status)

	res, err = svc.SubmitModule(ctx, "u1", "sat-1", 2, rawAnswers(2, 20), 1850)
	require.NoError(t, err)
	assert.Equal(t, exam.Route{Kind: exam.RouteModuleIntro, Module: 3}, res.Route)

	res, err = svc.SubmitModule(ctx, "u1", "sat-1", 3, rawAnswers(3, 18), 2000)
	require.NoError(t, err)
	assert.Equal(t, exam.Route{Kind: exam.RouteModuleIntro, Module: 4}, res.Route)

	res, err = svc.SubmitModule(ctx, "u1", "sat-1", 4, rawAnswers(4, 17), 2050)
	require.NoError(t, err)
	assert.Equal(t, exam.Route{Kind: exam.RouteFullResults}, res.Route)

	a := res.Attempt
	assert.Equal(t, exam.AttemptComplete, a.Status)
	assert.Equal(t, 644, a.ReadingScaled)
	assert.Equal(t, 677, a.MathScaled)
	assert.Equal(t, 1320, a.TotalScore)
	assert.Equal(t, 1900+1850+2000+2050, a.TotalTimeSec)
	assert.NotZero(t, a.FinalizedAt)
}

func TestMathOnlyCompletionRoutesToMathResults(t *testing.T) {
	ctx := context.Background()
	store := exam.NewMemoryStore()
	seedAll(store, "sat-1")
	svc := exam.NewService(store, store)

	_, err := svc.SubmitModule(ctx, "u1", "sat-1", 3, rawAnswers(3, 10), 1000)
	require.NoError(t, err)
	res, err := svc.SubmitModule(ctx, "u1", "sat-1", 4, rawAnswers(4, 10), 1000)
	require.NoError(t, err)

	assert.Equal(t, exam.Route{Kind: exam.RouteMathResults}, res.Route)
	// Reading still outstanding: no finalize, no scores.
	assert.Equal(t, exam.AttemptInProgress, res.Attempt.Status)
	assert.Zero(t, res.Attempt.TotalScore)
}

func TestResubmitCompletedModuleIsNoop(t *testing.T) {
	ctx := context.Background()
	store := exam.NewMemoryStore()
	seedAll(store, "sat-1")
	svc := exam.NewService(store, store)

	first, err := svc.SubmitModule(ctx, "u1", "sat-1", 1, rawAnswers(1, 20), 1000)
	require.NoError(t, err)

	again, err := svc.SubmitModule(ctx, "u1", "sat-1", 1, rawAnswers(1, 27), 500)
	require.NoError(t, err)
	assert.Equal(t, first.Attempt.Modules[1], again.Attempt.Modules[1])
	assert.Equal(t, 20, again.Attempt.Modules[1].CorrectCount())
}

func TestSectionResults(t *testing.T) {
	ctx := context.Background()
	store := exam.NewMemoryStore()
	seedAll(store, "sat-1")
	svc := exam.NewService(store, store)

	_, err := svc.SubmitModule(ctx, "u1", "sat-1", 1, rawAnswers(1, 20), 1000)
	require.NoError(t, err)
	_, err = svc.SectionResults(ctx, "u1", "sat-1", exam.SectionReading)
	assert.ErrorIs(t, err, exam.ErrNotFound, "one module is not a section result")

	_, err = svc.SubmitModule(ctx, "u1", "sat-1", 2, rawAnswers(2, 20), 1000)
	require.NoError(t, err)

	res, err := svc.SectionResults(ctx, "u1", "sat-1", exam.SectionReading)
	require.NoError(t, err)
	assert.Equal(t, 40, res.Raw)
	assert.Equal(t, 644, res.Scaled)

	// Math still outstanding.
	_, err = svc.SectionResults(ctx, "u1", "sat-1", exam.SectionMath)
	assert.ErrorIs(t, err, exam.ErrNotFound)
}

func TestEarlyReadingResults(t *testing.T) {
	ctx := context.Background()
	store := exam.NewMemoryStore()
	seedAll(store, "sat-1")
	svc := exam.NewService(store, store)

	// No attempt yet.
	assert.False(t, svc.EarlyReadingResults(ctx, "u1", "sat-1"))

	_, err := svc.SubmitModule(ctx, "u1", "sat-1", 1, rawAnswers(1, 20), 1000)
	require.NoError(t, err)
	assert.False(t, svc.EarlyReadingResults(ctx, "u1", "sat-1"))

	_, err = svc.SubmitModule(ctx, "u1", "sat-1", 2, rawAnswers(2, 20), 1000)
	require.NoError(t, err)
	assert.True(t, svc.EarlyReadingResults(ctx, "u1", "sat-1"))
}

func TestSubmitUnknownModuleQuestions(t *testing.T) {
	ctx := context.Background()
	store := exam.NewMemoryStore()
	svc := exam.NewService(store, store)

	_, err := svc.SubmitModule(ctx, "u1", "ghost", 1, rawAnswers(1, 0), 100)
	assert.True(t, errors.Is(err, exam.ErrValidationFailed))
}
