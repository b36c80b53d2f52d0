package http

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aaron-veronese/RealSAT-sub000/internal/auth"
	"github.com/aaron-veronese/RealSAT-sub000/internal/exam"
	"github.com/aaron-veronese/RealSAT-sub000/internal/report"
)

// ReportHandler streams the PDF score report for the caller's finalized
// attempt.
// GET /attempts/{testID}/report
func ReportHandler(store exam.AttemptStore, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		testID := chi.URLParam(r, "testID")
		a, err := store.GetAttempt(r.Context(), userID, testID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if a.Status != exam.AttemptComplete {
			http.Error(w, "attempt not finalized", http.StatusConflict)
			return
		}

		title := testID
		err = db.QueryRowContext(r.Context(), `SELECT title FROM exams WHERE id=$1`, testID).Scan(&title)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "load exam", http.StatusInternalServerError)
			return
		}

		pdf, err := report.ScoreReport(a, title)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="score-report.pdf"`)
		_, _ = w.Write(pdf)
	}
}
