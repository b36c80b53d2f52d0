package exam

import "errors"

// All failures in the exam flow are local-recoverable: the worst case is the
// user submits again. Handlers and the orchestrator match on these with
// errors.Is.
var (
	// ErrNotFound covers missing exams, attempts and users.
	ErrNotFound = errors.New("not found")

	// ErrQuestionsUnavailable means the question set for a module could not
	// be loaded or was empty. The user is sent back to the module intro with
	// a retry action.
	ErrQuestionsUnavailable = errors.New("questions unavailable")

	// ErrValidationFailed means a module submission could not be validated
	// or persisted. The module stays unsubmitted and local answers are kept.
	ErrValidationFailed = errors.New("validation failed")

	// ErrAttemptCreateFailed means the lazy attempt-record creation on first
	// submission failed. Handled the same way as ErrValidationFailed.
	ErrAttemptCreateFailed = errors.New("attempt create failed")

	// ErrSubmitNotConfirmed is returned by Orchestrator.Submit when
	// unanswered questions remain and the caller has not confirmed. Time
	// expiry bypasses confirmation.
	ErrSubmitNotConfirmed = errors.New("submit not confirmed")
)
