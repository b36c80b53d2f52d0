package exam

import "time"

// TimerState is the wall-clock deadline for one module attempt. EndEpochMs
// is fixed once at module start and never extended; it lives in the
// per-device session store so a page reload mid-module resumes the same
// deadline instead of granting fresh time.
type TimerState struct {
	StartEpochMs int64 `json:"start_epoch_ms"`
	EndEpochMs   int64 `json:"end_epoch_ms"`
}

// StartTimer fixes the deadline for a module beginning at now.
func StartTimer(now time.Time, module int) TimerState {
	start := now.UnixMilli()
	return TimerState{
		StartEpochMs: start,
		EndEpochMs:   start + int64(ModuleDurationSec(module))*1000,
	}
}

// RemainingSec returns max(0, floor((end-now)/1000)). Never negative.
func (t TimerState) RemainingSec(now time.Time) int {
	ms := t.EndEpochMs - now.UnixMilli()
	if ms <= 0 {
		return 0
	}
	return int(ms / 1000)
}

// Expired reports whether the deadline has passed.
func (t TimerState) Expired(now time.Time) bool {
	return now.UnixMilli() >= t.EndEpochMs
}

// ElapsedSec is the wall-clock time since module start. Module total time is
// derived from this, not from summing per-question dwell times, which
// undercount idle gaps.
func (t TimerState) ElapsedSec(now time.Time) int {
	ms := now.UnixMilli() - t.StartEpochMs
	if ms <= 0 {
		return 0
	}
	return int(ms / 1000)
}
