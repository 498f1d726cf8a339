package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestWizardAdvancesAfterDelay(t *testing.T) {
	clock := &manualClock{}
	w := NewWizard(800*time.Millisecond, false, clock.AfterFunc)

	w.DateCommitted()
	if w.Step() != StepDate || !w.AdvancePending() {
		t.Fatalf("step = %s, pending = %v", w.Step(), w.AdvancePending())
	}
	if clock.delays[0] != 800*time.Millisecond {
		t.Errorf("delay = %v", clock.delays[0])
	}

	clock.fireLast()

	if w.Step() != StepHours {
		t.Errorf("step = %s, want hours", w.Step())
	}
	if w.AdvancePending() {
		t.Error("advance still pending")
	}
}

func TestWizardManualNavigationCancelsAdvance(t *testing.T) {
	clock := &manualClock{}
	w := NewWizard(time.Second, true, clock.AfterFunc)

	w.DateCommitted()
	w.Navigate(StepConfirm)

	if !clock.timers[0].stopped {
		t.Error("timer not stopped")
	}

	// A callback that already started racing the cancel must not move the wizard.
	clock.funcs[0]()

	if w.Step() != StepConfirm {
		t.Errorf("step = %s, want confirm", w.Step())
	}
}

func TestWizardRecommitReschedules(t *testing.T) {
	clock := &manualClock{}
	w := NewWizard(time.Second, true, clock.AfterFunc)

	w.DateCommitted()
	w.DateCommitted()

	if len(clock.timers) != 2 || !clock.timers[0].stopped {
		t.Fatalf("timers = %+v", clock.timers)
	}

	clock.funcs[0]()
	if w.Step() != StepDate {
		t.Error("superseded timer advanced the wizard")
	}

	clock.fireLast()
	if w.Step() != StepHours {
		t.Errorf("step = %s", w.Step())
	}
}

func TestWizardRealTimer(t *testing.T) {
	w := NewWizard(10*time.Millisecond, true, nil)
	w.DateCommitted()

	deadline := time.Now().Add(2 * time.Second)
	for w.Step() != StepHours {
		if time.Now().After(deadline) {
			t.Fatal("wizard never advanced")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWizardOnboarding(t *testing.T) {
	w := NewWizard(0, false, nil)
	if !w.ShowOnboarding() {
		t.Error("new visitor should see onboarding")
	}
	w.CompleteOnboarding()
	if w.ShowOnboarding() {
		t.Error("onboarding shown after completion")
	}

	if NewWizard(0, true, nil).ShowOnboarding() {
		t.Error("returning visitor sees onboarding")
	}
}

func TestWizardZeroDelayAdvancesImmediately(t *testing.T) {
	w := NewWizard(0, true, nil)
	w.DateCommitted()
	if w.Step() != StepHours {
		t.Errorf("step = %s", w.Step())
	}
}

func TestParseStep(t *testing.T) {
	if s, err := ParseStep("hours"); err != nil || s != StepHours {
		t.Errorf("ParseStep(hours) = %v, %v", s, err)
	}
	if _, err := ParseStep("payment"); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("err = %v", err)
	}
}
