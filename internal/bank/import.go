// Package bank loads exam packages into the question store. An exam package
// is a JSON document carrying all four modules of one test; it is validated
// against a schema and the exam-format invariants before anything is
// written.
package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aaron-veronese/RealSAT-sub000/internal/exam"
)

// Exam is one importable test package.
type Exam struct {
	TestID    string          `json:"test_id"`
	Title     string          `json:"title"`
	Questions []exam.Question `json:"questions"`
}

// ParseExam reads, schema-validates and invariant-checks an exam package.
func ParseExam(r io.Reader) (Exam, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Exam{}, err
	}
	if err := validateSchema(raw); err != nil {
		return Exam{}, err
	}
	var ex Exam
	if err := json.Unmarshal(raw, &ex); err != nil {
		return Exam{}, fmt.Errorf("decode exam package: %w", err)
	}
	for i := range ex.Questions {
		ex.Questions[i].TestID = ex.TestID
	}
	if err := checkInvariants(ex); err != nil {
		return Exam{}, err
	}
	return ex, nil
}

// checkInvariants enforces the fixed exam format: per module, contiguous
// 1-based numbering, the fixed question count (27 reading / 22 math) and a
// section matching the module number.
func checkInvariants(ex Exam) error {
	byModule := map[int][]exam.Question{}
	for _, q := range ex.Questions {
		if q.Module < 1 || q.Module > exam.ModuleCount {
			return fmt.Errorf("question %d: module %d out of range", q.Number, q.Module)
		}
		byModule[q.Module] = append(byModule[q.Module], q)
	}
	for m := 1; m <= exam.ModuleCount; m++ {
		qs := byModule[m]
		want := exam.QuestionsPerModule(m)
		if len(qs) != want {
			return fmt.Errorf("module %d: got %d questions, want %d", m, len(qs), want)
		}
		seen := make(map[int]bool, len(qs))
		for _, q := range qs {
			if q.Section != exam.ModuleSection(m) {
				return fmt.Errorf("module %d question %d: section %s, want %s", m, q.Number, q.Section, exam.ModuleSection(m))
			}
			if q.Number < 1 || q.Number > want {
				return fmt.Errorf("module %d: question number %d out of range", m, q.Number)
			}
			if seen[q.Number] {
				return fmt.Errorf("module %d: duplicate question number %d", m, q.Number)
			}
			seen[q.Number] = true
		}
	}
	return nil
}

// Importer upserts exam packages into the SQL question store.
type Importer struct{ db *sql.DB }

func NewImporter(db *sql.DB) *Importer { return &Importer{db: db} }

func (i *Importer) Import(ctx context.Context, ex Exam) error {
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exams (id, title, created_at) VALUES ($1,$2,$3)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title`,
		ex.TestID, ex.Title, time.Now().Unix()); err != nil {
		return fmt.Errorf("upsert exam %s: %w", ex.TestID, err)
	}

	for _, q := range ex.Questions {
		contentJSON, err := json.Marshal(q.Content)
		if err != nil {
			return err
		}
		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (test_id, module, number, section, content_json, options_json, correct_answer)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 ON CONFLICT (test_id, module, number) DO UPDATE SET
			   section=EXCLUDED.section, content_json=EXCLUDED.content_json,
			   options_json=EXCLUDED.options_json, correct_answer=EXCLUDED.correct_answer`,
			q.TestID, q.Module, q.Number, q.Section, string(contentJSON), string(optionsJSON), q.CorrectAnswer); err != nil {
			return fmt.Errorf("upsert question %s/%d/%d: %w", q.TestID, q.Module, q.Number, err)
		}
	}
	return tx.Commit()
}
