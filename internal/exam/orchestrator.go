package exam

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aaron-veronese/RealSAT-sub000/internal/session"
)

// Phase of the module state machine:
// intro -> active -> review -> submitting -> done, with review able to
// return to active. Terminal routing (next intro or a results view) is
// carried in the SubmitResult; the orchestrator itself ends at done.
type Phase string

const (
	PhaseIntro      Phase = "intro"
	PhaseActive     Phase = "active"
	PhaseReview     Phase = "review"
	PhaseSubmitting Phase = "submitting"
	PhaseDone       Phase = "done"
)

type Clock func() time.Time

// Orchestrator drives one user's pass through one module: begin, timed
// answering, review, validated submission and the route onward. It owns the
// ephemeral session keys for the module and is the only writer of them.
//
// The model is single-threaded and event-driven (UI events plus a <=1 Hz
// tick); the only race that matters — manual submit against timer expiry —
// is settled by the single-flight submit guard, so no locking is needed.
type Orchestrator struct {
	svc   *Service
	cache session.Store
	clock Clock

	userID string
	testID string
	module int

	phase      Phase
	state      *ModuleState
	submitting bool
}

type OrchestratorOption func(*Orchestrator)

// WithClock substitutes the time source. Tests drive the timer with it.
func WithClock(c Clock) OrchestratorOption {
	return func(o *Orchestrator) { o.clock = c }
}

func NewOrchestrator(svc *Service, cache session.Store, userID, testID string, module int, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		svc:    svc,
		cache:  cache,
		clock:  time.Now,
		userID: userID,
		testID: testID,
		module: module,
		phase:  PhaseIntro,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Phase() Phase        { return o.phase }
func (o *Orchestrator) State() *ModuleState { return o.state }

func (o *Orchestrator) key(field string) string {
	return session.Key(o.userID, o.testID, o.module, field)
}

// IntroInfo is what the module intro screen shows.
type IntroInfo struct {
	Module              int  `json:"module"`
	DurationSec         int  `json:"duration_sec"`
	QuestionCount       int  `json:"question_count"`
	EarlyReadingResults bool `json:"early_reading_results,omitempty"`
}

// Intro describes the module about to start. For module 3 it also checks
// whether both reading modules are already complete, to offer the early
// "view Reading & Writing results" shortcut. Informational only.
func (o *Orchestrator) Intro(ctx context.Context) IntroInfo {
	info := IntroInfo{
		Module:        o.module,
		DurationSec:   ModuleDurationSec(o.module),
		QuestionCount: QuestionsPerModule(o.module),
	}
	if o.module == 3 {
		info.EarlyReadingResults = o.svc.EarlyReadingResults(ctx, o.userID, o.testID)
	}
	return info
}

// Begin transitions intro -> active. A session snapshot from a reload is
// restored as-is — same answers, same deadline — so refreshing never grants
// fresh time. Otherwise the question set is loaded (ErrQuestionsUnavailable
// sends the user back to intro with a retry) and a fresh state is anchored
// to a deadline fixed now.
func (o *Orchestrator) Begin(ctx context.Context) error {
	if o.phase != PhaseIntro {
		return fmt.Errorf("begin module in phase %s", o.phase)
	}
	now := o.clock()

	if snap, ok := o.cache.Get(o.key("snapshot")); ok {
		if st, err := RestoreModuleState(snap, now); err == nil {
			o.state = st
			o.phase = PhaseActive
			return nil
		}
		// Corrupted snapshot: drop it and start clean below. The deadline
		// key still applies.
		o.cache.Remove(o.key("snapshot"))
	}

	qs, err := o.svc.Questions(ctx, o.testID, o.module)
	if err != nil {
		return err
	}

	timer := StartTimer(now, o.module)
	if raw, ok := o.cache.Get(o.key("deadline")); ok {
		var saved TimerState
		if json.Unmarshal(raw, &saved) == nil && saved.EndEpochMs > 0 {
			timer = saved
		}
	} else {
		buf, _ := json.Marshal(timer)
		o.cache.Set(o.key("deadline"), buf)
	}

	o.state = NewModuleState(o.testID, o.module, qs, timer, now)
	o.saveSnapshot()
	o.phase = PhaseActive
	return nil
}

// AnswerQuestion records an answer while the module is active.
func (o *Orchestrator) AnswerQuestion(n int, value string) {
	if o.phase != PhaseActive {
		return
	}
	o.state.Answer(n, value)
	o.saveSnapshot()
}

func (o *Orchestrator) ToggleFlag(n int) {
	if o.phase != PhaseActive {
		return
	}
	o.state.ToggleFlag(n)
	o.saveSnapshot()
}

// GoTo moves to a question, clamped to the module's range, flushing dwell
// time for the question being left.
func (o *Orchestrator) GoTo(n int) {
	if o.phase != PhaseActive {
		return
	}
	o.state.GoTo(n, o.clock())
	o.saveSnapshot()
}

// GoToReview transitions active -> review. The current question is
// remembered so leaving review returns to the same place after a reload.
func (o *Orchestrator) GoToReview() {
	if o.phase != PhaseActive {
		return
	}
	o.state.FlushDwell(o.clock())
	o.state.ReviewAt = o.state.Current
	o.cache.Set(o.key("review_at"), []byte(fmt.Sprintf("%d", o.state.Current)))
	o.saveSnapshot()
	o.phase = PhaseReview
}

// ReturnToQuestion goes back from review to a specific question with all
// state preserved.
func (o *Orchestrator) ReturnToQuestion(n int) {
	if o.phase != PhaseReview {
		return
	}
	o.phase = PhaseActive
	o.state.GoTo(n, o.clock())
	o.saveSnapshot()
}

// ReviewCounts summarizes answered/flagged/unanswered for the review screen.
func (o *Orchestrator) ReviewCounts() (answered, flagged, unanswered int) {
	if o.state == nil {
		return 0, 0, 0
	}
	return o.state.Counts()
}

func (o *Orchestrator) RemainingSec() int {
	if o.state == nil {
		return 0
	}
	return o.state.Timer.RemainingSec(o.clock())
}

// Tick is the <=1 Hz timer callback. When remaining time hits zero during
// active or review it force-submits with no confirmation. A second tick
// after expiry is absorbed by the single-flight guard.
func (o *Orchestrator) Tick(ctx context.Context) (*SubmitResult, error) {
	if o.phase != PhaseActive && o.phase != PhaseReview {
		return nil, nil
	}
	if !o.state.Timer.Expired(o.clock()) {
		return nil, nil
	}
	return o.submit(ctx)
}

// Submit is the user-initiated submission from review. With unanswered
// questions remaining it refuses until confirmed=true, surfacing
// ErrSubmitNotConfirmed so the UI shows the unanswered-count warning.
// Time expiry never comes through here.
func (o *Orchestrator) Submit(ctx context.Context, confirmed bool) (*SubmitResult, error) {
	if o.phase == PhaseSubmitting || o.phase == PhaseDone {
		// Lost the race against timer expiry: the expiry submission already
		// ran or is running, the click is a no-op.
		return nil, nil
	}
	if o.phase != PhaseReview {
		return nil, fmt.Errorf("submit in phase %s", o.phase)
	}
	if !confirmed {
		if _, _, unanswered := o.state.Counts(); unanswered > 0 {
			return nil, fmt.Errorf("%d unanswered: %w", unanswered, ErrSubmitNotConfirmed)
		}
	}
	return o.submit(ctx)
}

// submit runs the single-flight submission. The loser of a manual-vs-expiry
// race gets (nil, nil), not an error. On failure the phase reverts to
// review with local answers and session keys intact, so a retry loses
// nothing; session keys are cleared only after the persist is confirmed.
func (o *Orchestrator) submit(ctx context.Context) (*SubmitResult, error) {
	if o.submitting {
		return nil, nil
	}
	o.submitting = true
	o.phase = PhaseSubmitting

	now := o.clock()
	o.state.FlushDwell(now)
	// Module time is wall clock from the fixed start, not the sum of
	// per-question dwell, which undercounts idle time.
	totalTime := o.state.Timer.ElapsedSec(now)

	res, err := o.svc.SubmitModule(ctx, o.userID, o.testID, o.module, o.state.RawAnswers(), totalTime)
	if err != nil {
		o.phase = PhaseReview
		o.submitting = false
		return nil, err
	}

	o.cache.Remove(o.key("snapshot"))
	o.cache.Remove(o.key("deadline"))
	o.cache.Remove(o.key("review_at"))
	o.phase = PhaseDone
	return res, nil
}

// Unmount flushes the open dwell interval and snapshots, for
// navigation-away mid-module. The timer keeps counting; resuming later
// reflects true elapsed time.
func (o *Orchestrator) Unmount() {
	if o.phase != PhaseActive && o.phase != PhaseReview {
		return
	}
	o.state.FlushDwell(o.clock())
	o.saveSnapshot()
}

func (o *Orchestrator) saveSnapshot() {
	if buf, err := o.state.Snapshot(); err == nil {
		o.cache.Set(o.key("snapshot"), buf)
	}
}
