package exam

import "context"

// LeaderboardEntry is one row of the per-test ranking of finalized attempts.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	TotalScore    int    `json:"total_score"`
	ReadingScaled int    `json:"reading_scaled"`
	MathScaled    int    `json:"math_scaled"`
	TotalTimeSec  int    `json:"total_time_sec"`
	FinalizedAt   int64  `json:"finalized_at"`
}

// AttemptSummary is the progress-view row: one attempt, scores included only
// once finalized.
type AttemptSummary struct {
	TestID        string        `json:"test_id"`
	Status        AttemptStatus `json:"status"`
	ReadingScaled int           `json:"reading_scaled,omitempty"`
	MathScaled    int           `json:"math_scaled,omitempty"`
	TotalScore    int           `json:"total_score,omitempty"`
	TotalTimeSec  int           `json:"total_time_sec,omitempty"`
	StartedAt     int64         `json:"started_at"`
	FinalizedAt   int64         `json:"finalized_at,omitempty"`
}

// ResultsStore is the read surface consumed by dashboards. Plain data
// contracts; rendering is out of scope.
type ResultsStore interface {
	// Leaderboard ranks finalized attempts for a test by total score
	// descending, ties broken by total time ascending.
	Leaderboard(ctx context.Context, testID string, limit, offset int) ([]LeaderboardEntry, error)

	// AttemptsByUser lists a user's attempts, most recent first.
	AttemptsByUser(ctx context.Context, userID string) ([]AttemptSummary, error)
}
