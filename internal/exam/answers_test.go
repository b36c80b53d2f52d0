package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		section Section
		options []string
		want    Kind
	}{
		{"reading with four options", SectionReading, []string{"A", "B", "C", "D"}, MultipleChoice},
		{"math with four options", SectionMath, []string{"A", "B", "C", "D"}, MultipleChoice},
		{"reading no options", SectionReading, nil, FreeResponse},
		{"math no options", SectionMath, nil, FreeResponse},
		// A single entry on a math question is the answer key itself, not a choice.
		{"math single entry", SectionMath, []string{"42"}, FreeResponse},
		{"reading single entry stays choice", SectionReading, []string{"A"}, MultipleChoice},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := Question{Section: tc.section, Options: tc.options}
			assert.Equal(t, tc.want, Classify(q))
		})
	}
}

func TestIsCorrect_MultipleChoice(t *testing.T) {
	assert.True(t, IsCorrect("B", "B", MultipleChoice))
	assert.False(t, IsCorrect("b", "B", MultipleChoice), "choice match is case-sensitive")
	assert.False(t, IsCorrect("A", "B", MultipleChoice))
	assert.False(t, IsCorrect("", "B", MultipleChoice), "blank answer is unanswered, never correct")
	assert.False(t, IsCorrect("   ", "B", MultipleChoice), "whitespace-only is unanswered")
}

func TestIsCorrect_FreeResponse(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		correct string
		want    bool
	}{
		{"exact decimal", "0.5", "0.5", true},
		{"fraction equals decimal", "1/2", "0.5", true},
		{"decimal equals fraction", "0.5", "1/2", true},
		{"within tolerance", "0.33333", "1/3", true},
		{"outside tolerance", "0.3", "1/3", false},
		{"negative fraction", "-3/4", "-0.75", true},
		{"whitespace around fraction", " 1 / 2 ", "0.5", true},
		{"zero denominator falls back to string compare", "1/0", "5", false},
		{"zero denominator exact string still matches", "1/0", "1/0", true},
		{"non-numeric falls back to exact string", "x+1", "x+1", true},
		{"non-numeric trimmed string", "  x+1 ", "x+1", true},
		{"non-numeric mismatch", "x+2", "x+1", false},
		{"blank is never correct", "", "0", false},
		{"whitespace-only is never correct", "  ", "0", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsCorrect(tc.user, tc.correct, FreeResponse))
		})
	}
}

func TestAnswerStatus(t *testing.T) {
	assert.Equal(t, StatusUnanswered, AnswerStatus("", "B", MultipleChoice))
	assert.Equal(t, StatusUnanswered, AnswerStatus("  ", "B", MultipleChoice))
	assert.Equal(t, StatusCorrect, AnswerStatus("B", "B", MultipleChoice))
	assert.Equal(t, StatusIncorrect, AnswerStatus("C", "B", MultipleChoice))
	assert.Equal(t, StatusCorrect, AnswerStatus("2/4", "0.5", FreeResponse))
}
