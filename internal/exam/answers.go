package exam

import (
	"math"
	"strconv"
	"strings"
)

// Kind classifies how a question is answered.
type Kind string

const (
	MultipleChoice Kind = "multiple_choice"
	FreeResponse   Kind = "free_response"
)

// numericTol absorbs floating-point rounding when comparing free-response
// values (e.g. "1/3" vs "0.3333").
const numericTol = 1e-4

// Classify returns the answer kind for a question. No options means free
// response. Math questions with a single options entry are also free
// response: the bank uses a one-element array to mean "this entry is the
// correct value, not a choice".
func Classify(q Question) Kind {
	if len(q.Options) == 0 {
		return FreeResponse
	}
	if q.Section == SectionMath && len(q.Options) == 1 {
		return FreeResponse
	}
	return MultipleChoice
}

// IsCorrect decides whether a user answer matches the canonical correct
// answer. A blank or whitespace-only answer is never correct (it is
// unanswered, not incorrect).
//
// Multiple choice compares the option value exactly, case-sensitive.
// Free response tries numeric evaluation of both sides, accepting plain
// decimals and a/b fractions; if either side fails to parse it falls back to
// exact trimmed string equality.
//
// The same function runs in the review UI (advisory) and in the store's
// validate-and-persist step (authoritative); keeping one implementation is
// what keeps the two from disagreeing.
func IsCorrect(userAnswer, correctAnswer string, kind Kind) bool {
	if strings.TrimSpace(userAnswer) == "" {
		return false
	}
	if kind == MultipleChoice {
		return userAnswer == correctAnswer
	}
	uv, uok := parseNumeric(userAnswer)
	cv, cok := parseNumeric(correctAnswer)
	if uok && cok {
		return math.Abs(uv-cv) <= numericTol
	}
	return strings.TrimSpace(userAnswer) == strings.TrimSpace(correctAnswer)
}

// AnswerStatus is IsCorrect lifted into the three-way status used by module
// records.
func AnswerStatus(userAnswer, correctAnswer string, kind Kind) Status {
	if strings.TrimSpace(userAnswer) == "" {
		return StatusUnanswered
	}
	if IsCorrect(userAnswer, correctAnswer, kind) {
		return StatusCorrect
	}
	return StatusIncorrect
}

// parseNumeric parses a plain decimal or an a/b fraction. A zero denominator
// or anything else unparseable reports false, which sends IsCorrect down the
// string-equality fallback.
func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if num, den, found := strings.Cut(s, "/"); found {
		n, errN := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, errD := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if errN != nil || errD != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
