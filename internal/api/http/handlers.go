package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aaron-veronese/RealSAT-sub000/internal/auth"
	"github.com/aaron-veronese/RealSAT-sub000/internal/bank"
	"github.com/aaron-veronese/RealSAT-sub000/internal/exam"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exam.ErrNotFound), errors.Is(err, exam.ErrQuestionsUnavailable):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, exam.ErrValidationFailed), errors.Is(err, exam.ErrAttemptCreateFailed):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// ModuleQuestionsHandler serves the student-safe question set for a module.
// GET /exams/{testID}/modules/{module}/questions
func ModuleQuestionsHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		module, err := strconv.Atoi(chi.URLParam(r, "module"))
		if err != nil || module < 1 || module > exam.ModuleCount {
			http.Error(w, "module must be 1..4", http.StatusBadRequest)
			return
		}
		qs, err := svc.Questions(r.Context(), chi.URLParam(r, "testID"), module)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, qs)
	}
}

// ImportExamHandler installs a schema-validated exam package.
// POST /exams (teacher/admin)
func ImportExamHandler(imp *bank.Importer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ex, err := bank.ParseExam(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := imp.Import(r.Context(), ex); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"test_id": ex.TestID})
	}
}

// SubmitModuleHandler runs the trusted submission pipeline for one module
// and returns the post-submit route. The caller's identity comes from the
// token, never the body.
// POST /attempts/{testID}/modules/{module}/submit
func SubmitModuleHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		module, err := strconv.Atoi(chi.URLParam(r, "module"))
		if err != nil || module < 1 || module > exam.ModuleCount {
			http.Error(w, "module must be 1..4", http.StatusBadRequest)
			return
		}
		var req struct {
			Answers      []exam.RawAnswer `json:"answers"`
			TotalTimeSec int              `json:"total_time_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		userID := auth.SubjectFromContext(r.Context())
		res, err := svc.SubmitModule(r.Context(), userID, chi.URLParam(r, "testID"), module, req.Answers, req.TotalTimeSec)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, res)
	}
}

// SectionResultsHandler returns one section's partial results once both of
// its modules are complete.
// GET /attempts/{testID}/results/{section}
func SectionResultsHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section := exam.Section(chi.URLParam(r, "section"))
		if section != exam.SectionReading && section != exam.SectionMath {
			http.Error(w, "section must be reading or math", http.StatusBadRequest)
			return
		}
		userID := auth.SubjectFromContext(r.Context())
		res, err := svc.SectionResults(r.Context(), userID, chi.URLParam(r, "testID"), section)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, res)
	}
}

// GetAttemptHandler returns the caller's own attempt for a test.
// GET /attempts/{testID}
func GetAttemptHandler(store exam.AttemptStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		a, err := store.GetAttempt(r.Context(), userID, chi.URLParam(r, "testID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, a)
	}
}

// LeaderboardHandler ranks finalized attempts for a test.
// GET /leaderboard?test_id=...&limit=...&offset=...
func LeaderboardHandler(results exam.ResultsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID := r.URL.Query().Get("test_id")
		if testID == "" {
			http.Error(w, "test_id required", http.StatusBadRequest)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		rows, err := results.Leaderboard(r.Context(), testID, limit, offset)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, rows)
	}
}

// UserAttemptsHandler lists a user's attempts for the progress view.
// GET /users/{userID}/attempts (own, or results:view-all)
func UserAttemptsHandler(results exam.ResultsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := results.AttemptsByUser(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, rows)
	}
}
