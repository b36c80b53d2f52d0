package exam

import "math"

// Score is the scaled outcome of a finished attempt.
type Score struct {
	ReadingScaled int `json:"reading_scaled"`
	MathScaled    int `json:"math_scaled"`
	Total         int `json:"total"`
}

// RawScore counts validated-correct questions across the given records for
// one section. Reading spans modules 1-2, math spans 3-4.
func RawScore(modules map[int]ModuleRecord, section Section) int {
	raw := 0
	for m, rec := range modules {
		if ModuleSection(m) == section {
			raw += rec.CorrectCount()
		}
	}
	return raw
}

// ScaledScore maps a raw section score onto the standardized 200-800 band:
// round(200 + raw/maxRaw * 600). Raw is clamped to [0, maxRaw] so the result
// is always in range.
func ScaledScore(raw int, section Section) int {
	maxRaw := MaxRawReading
	if section == SectionMath {
		maxRaw = MaxRawMath
	}
	if raw < 0 {
		raw = 0
	}
	if raw > maxRaw {
		raw = maxRaw
	}
	return int(math.Round(200 + float64(raw)/float64(maxRaw)*600))
}

// CompositeTotal rounds the sum of the two section scores to the nearest 10,
// matching standardized-test convention.
func CompositeTotal(readingScaled, mathScaled int) int {
	return int(math.Round(float64(readingScaled+mathScaled)/10)) * 10
}

// ScoreAttempt converts four validated module records into scaled section
// scores and the composite total. Pure and deterministic: same records, same
// score, regardless of call order or prior state.
func ScoreAttempt(modules map[int]ModuleRecord) Score {
	reading := ScaledScore(RawScore(modules, SectionReading), SectionReading)
	mathScaled := ScaledScore(RawScore(modules, SectionMath), SectionMath)
	return Score{
		ReadingScaled: reading,
		MathScaled:    mathScaled,
		Total:         CompositeTotal(reading, mathScaled),
	}
}
