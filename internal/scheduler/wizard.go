package scheduler

import (
	"fmt"
	"sync"
	"time"
)

type Step string

const (
	StepDate    Step = "date"
	StepHours   Step = "hours"
	StepConfirm Step = "confirm"
)

func ParseStep(s string) (Step, error) {
	switch Step(s) {
	case StepDate, StepHours, StepConfirm:
		return Step(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
}

// Timer is the handle of a scheduled transition.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Wizard tracks the booking step and the onboarding flag of a session. A committed
// date schedules an advance to the hours step; navigating manually first cancels it.
type Wizard struct {
	delay     time.Duration
	afterFunc AfterFunc

	mu             sync.Mutex
	step           Step
	pending        Timer
	seq            uint64
	seenOnboarding bool
}

func NewWizard(delay time.Duration, hasSeenOnboarding bool, afterFunc AfterFunc) *Wizard {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}

	return &Wizard{
		delay:          delay,
		afterFunc:      afterFunc,
		step:           StepDate,
		seenOnboarding: hasSeenOnboarding,
	}
}

// DateCommitted schedules the advance from the date step to the hours step.
func (w *Wizard) DateCommitted() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepDate {
		return
	}

	w.cancelLocked()
	w.seq++
	seq := w.seq

	if w.delay <= 0 {
		w.step = StepHours
		return
	}

	w.pending = w.afterFunc(w.delay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		if w.seq != seq || w.step != StepDate {
			return
		}
		w.step = StepHours
		w.pending = nil
	})
}

// Navigate moves to step and cancels any scheduled advance.
func (w *Wizard) Navigate(step Step) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.cancelLocked()
	w.step = step
}

func (w *Wizard) cancelLocked() {
	w.seq++
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
}

func (w *Wizard) AdvancePending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.pending != nil
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.step
}

func (w *Wizard) ShowOnboarding() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return !w.seenOnboarding
}

func (w *Wizard) CompleteOnboarding() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seenOnboarding = true
}

func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.cancelLocked()
}
