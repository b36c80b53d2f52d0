// Package report renders a printable score report for a finalized attempt.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/aaron-veronese/RealSAT-sub000/internal/exam"
)

// ScoreReport renders a one-page PDF: section scores, total, and a
// per-module breakdown of correct/incorrect/unanswered counts and time.
// The attempt must be finalized.
func ScoreReport(a exam.Attempt, title string) ([]byte, error) {
	if a.Status != exam.AttemptComplete {
		return nil, fmt.Errorf("attempt %s is not finalized", a.ID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Score Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, title, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, time.Unix(a.FinalizedAt, 0).UTC().Format("January 2, 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, fmt.Sprintf("Total Score: %d", a.TotalScore), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("Reading & Writing: %d", a.ReadingScaled), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Math: %d", a.MathScaled), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Total Time: %s", formatDuration(a.TotalTimeSec)), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	for _, w := range []struct {
		label string
		width float64
	}{{"Module", 30}, {"Section", 35}, {"Correct", 25}, {"Incorrect", 25}, {"Unanswered", 30}, {"Time", 30}} {
		pdf.CellFormat(w.width, 8, w.label, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	var modules []int
	for m := range a.Modules {
		modules = append(modules, m)
	}
	sort.Ints(modules)
	for _, m := range modules {
		rec := a.Modules[m]
		correct, incorrect, unanswered := 0, 0, 0
		for _, q := range rec.Questions {
			switch q.Status {
			case exam.StatusCorrect:
				correct++
			case exam.StatusIncorrect:
				incorrect++
			default:
				unanswered++
			}
		}
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", m), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, string(exam.ModuleSection(m)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", correct), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", incorrect), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", unanswered), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, formatDuration(rec.TotalTimeSec), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDuration(sec int) string {
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
