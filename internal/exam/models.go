package exam

import "encoding/json"

type Section string

const (
	SectionReading Section = "reading"
	SectionMath    Section = "math"
)

// Status of a single question within a module record. It is written exactly
// once, by the store's validate-and-persist step. Anything the client
// computes for review highlighting is advisory and never stored.
type Status string

const (
	StatusUnanswered Status = "unanswered"
	StatusCorrect    Status = "correct"
	StatusIncorrect  Status = "incorrect"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptComplete   AttemptStatus = "complete"
)

// ModuleCount is fixed by the exam format: two reading/writing modules
// followed by two math modules.
const ModuleCount = 4

const (
	MaxRawReading = 54
	MaxRawMath    = 44
)

// ModuleSection maps a module number (1..4) to its section.
func ModuleSection(module int) Section {
	if module <= 2 {
		return SectionReading
	}
	return SectionMath
}

// QuestionsPerModule returns the fixed question count: 27 for the
// reading/writing modules, 22 for math.
func QuestionsPerModule(module int) int {
	if module <= 2 {
		return 27
	}
	return 22
}

// ModuleDurationSec returns the time limit: 32 minutes for modules 1-2,
// 35 minutes for modules 3-4.
func ModuleDurationSec(module int) int {
	if module <= 2 {
		return 32 * 60
	}
	return 35 * 60
}

// ContentBlock is one typed chunk of question content (text, diagram,
// table). The body is opaque to the exam engine; rendering belongs to the
// frontend.
type ContentBlock struct {
	Type string          `json:"type"`
	Body json.RawMessage `json:"body,omitempty"`
}

// Question is the canonical bank entry. CorrectAnswer is stripped before a
// question is served to students.
type Question struct {
	TestID        string         `json:"test_id"`
	Module        int            `json:"module"`
	Number        int            `json:"number"` // 1-based, contiguous within a module
	Content       []ContentBlock `json:"content,omitempty"`
	Options       []string       `json:"options,omitempty"` // empty => free response
	CorrectAnswer string         `json:"correct_answer,omitempty"`
	Section       Section        `json:"section"`
}

// ModuleQuestion is the per-question result inside a module record.
type ModuleQuestion struct {
	Number       int    `json:"number"`
	UserAnswer   string `json:"user_answer,omitempty"`
	Flagged      bool   `json:"flagged,omitempty"`
	TimeSpentSec int    `json:"time_spent_sec"`
	Status       Status `json:"status"`
}

// ModuleRecord is one validated module submission. Once Completed is set the
// record is immutable.
type ModuleRecord struct {
	Module       int              `json:"module"`
	Questions    []ModuleQuestion `json:"questions"`
	Completed    bool             `json:"completed"`
	TotalTimeSec int              `json:"total_time_sec"`
}

// CorrectCount returns the number of validated-correct questions.
func (m ModuleRecord) CorrectCount() int {
	n := 0
	for _, q := range m.Questions {
		if q.Status == StatusCorrect {
			n++
		}
	}
	return n
}

// Attempt is one user's record of taking one test, keyed by (UserID, TestID).
// It is created lazily on the first module submission, never on module start,
// so abandoned intros leave nothing behind.
type Attempt struct {
	ID      string               `json:"id"`
	UserID  string               `json:"user_id"`
	TestID  string               `json:"test_id"`
	Status  AttemptStatus        `json:"status"`
	Modules map[int]ModuleRecord `json:"modules"`

	// Populated only when all four modules are complete and validated.
	TotalTimeSec  int `json:"total_time_sec"`
	ReadingScaled int `json:"reading_scaled"`
	MathScaled    int `json:"math_scaled"`
	TotalScore    int `json:"total_score"`

	StartedAt   int64 `json:"started_at"`
	FinalizedAt int64 `json:"finalized_at,omitempty"`
}

func (a Attempt) ModuleComplete(module int) bool {
	rec, ok := a.Modules[module]
	return ok && rec.Completed
}

func (a Attempt) AllModulesComplete() bool {
	for m := 1; m <= ModuleCount; m++ {
		if !a.ModuleComplete(m) {
			return false
		}
	}
	return true
}
