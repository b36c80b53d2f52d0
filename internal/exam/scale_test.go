package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaledScore_RangeAndMonotonic(t *testing.T) {
	for _, sec := range []struct {
		section Section
		maxRaw  int
	}{{SectionReading, MaxRawReading}, {SectionMath, MaxRawMath}} {
		prev := 0
		for raw := 0; raw <= sec.maxRaw; raw++ {
			got := ScaledScore(raw, sec.section)
			assert.GreaterOrEqual(t, got, 200, "section %s raw %d", sec.section, raw)
			assert.LessOrEqual(t, got, 800, "section %s raw %d", sec.section, raw)
			assert.GreaterOrEqual(t, got, prev, "section %s must be non-decreasing at raw %d", sec.section, raw)
			prev = got
		}
		assert.Equal(t, 200, ScaledScore(0, sec.section))
		assert.Equal(t, 800, ScaledScore(sec.maxRaw, sec.section))
	}
}

func TestScaledScore_ClampsOutOfRange(t *testing.T) {
	assert.Equal(t, 200, ScaledScore(-3, SectionReading))
	assert.Equal(t, 800, ScaledScore(99, SectionMath))
}

func TestCompositeTotal_MultipleOfTen(t *testing.T) {
	for r := 200; r <= 800; r += 7 {
		for m := 200; m <= 800; m += 13 {
			assert.Zero(t, CompositeTotal(r, m)%10, "total for %d+%d", r, m)
		}
	}
}

func TestScoreAttempt_Scenario(t *testing.T) {
	// 40/54 reading, 35/44 math -> 644 / 677 -> 1320.
	modules := map[int]ModuleRecord{
		1: recordWithCorrect(1, 20, 27),
		2: recordWithCorrect(2, 20, 27),
		3: recordWithCorrect(3, 18, 22),
		4: recordWithCorrect(4, 17, 22),
	}
	got := ScoreAttempt(modules)
	assert.Equal(t, 644, got.ReadingScaled)
	assert.Equal(t, 677, got.MathScaled)
	assert.Equal(t, 1320, got.Total)
}

func TestScoreAttempt_Deterministic(t *testing.T) {
	modules := map[int]ModuleRecord{
		1: recordWithCorrect(1, 27, 27),
		2: recordWithCorrect(2, 27, 27),
		3: recordWithCorrect(3, 22, 22),
		4: recordWithCorrect(4, 22, 22),
	}
	first := ScoreAttempt(modules)
	assert.Equal(t, Score{ReadingScaled: 800, MathScaled: 800, Total: 1600}, first)
	assert.Equal(t, first, ScoreAttempt(modules), "same input must yield same output")
}

// recordWithCorrect builds a validated record with the given number of
// correct answers out of total.
func recordWithCorrect(module, correct, total int) ModuleRecord {
	rec := ModuleRecord{Module: module, Completed: true}
	for n := 1; n <= total; n++ {
		st := StatusIncorrect
		if n <= correct {
			st = StatusCorrect
		}
		rec.Questions = append(rec.Questions, ModuleQuestion{Number: n, Status: st})
	}
	return rec
}
