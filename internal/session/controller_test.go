package session

import (
	"testing"
	"time"

	"github.com/velsh/presshold/internal/model"
	"github.com/velsh/presshold/internal/sequence"
)

func testConfig() model.Config {
	return model.Config{
		Levels:     2,
		Policy:     "dwell",
		DwellMs:    750,
		CooldownMs: 3000,
	}
}

func newTestController(t *testing.T, cfg model.Config) *Controller {
	t.Helper()
	return NewController(cfg, sequence.NewSeeded(42))
}

func TestStartDefersUntilConnected(t *testing.T) {
	ctrl := newTestController(t, testConfig())

	if !ctrl.Start() {
		t.Fatalf("expected start to request a connection while disconnected")
	}
	if ctrl.State() != StateNotStarted {
		t.Fatalf("expected deferred activation, got %v", ctrl.State())
	}

	// No evaluation happens before the connection is up.
	target, _ := ctrl.CurrentTarget()
	if outcome := ctrl.HandleTelemetry(press(target.KeyCode, 0.9), time.Unix(0, 0)); outcome != nil {
		t.Fatalf("expected telemetry ignored before activation, got %+v", outcome)
	}
	if ctrl.Stats().TotalAttempts != 0 {
		t.Fatalf("expected no attempts recorded before activation")
	}

	ctrl.SetConnected(true)
	if ctrl.State() != StateActive {
		t.Fatalf("expected activation on connect, got %v", ctrl.State())
	}
}

func TestStartWhileConnected(t *testing.T) {
	ctrl := newTestController(t, testConfig())
	ctrl.SetConnected(true)
	if ctrl.Start() {
		t.Fatalf("expected no connection request while connected")
	}
	if ctrl.State() != StateActive {
		t.Fatalf("expected active state, got %v", ctrl.State())
	}
}

func TestAttemptFlowRecordsStats(t *testing.T) {
	ctrl := newTestController(t, testConfig())
	ctrl.SetConnected(true)
	ctrl.Start()

	target, ok := ctrl.CurrentTarget()
	if !ok {
		t.Fatalf("expected a current target")
	}
	t0 := time.Unix(100, 0)
	analog := float64(target.TargetPressure) / 100

	ctrl.HandleTelemetry(press(target.KeyCode, analog), t0)
	outcome := ctrl.HandleTelemetry(press(target.KeyCode, analog), t0.Add(750*time.Millisecond))
	if outcome == nil || !outcome.Success {
		t.Fatalf("expected a perfect hit, got %+v", outcome)
	}

	stats := ctrl.Stats()
	if stats.TotalAttempts != 1 || stats.SuccessfulHits != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.AccuracyPercent != 100 {
		t.Fatalf("expected 100%% accuracy, got %f", stats.AccuracyPercent)
	}

	// Index advances only after the cooldown deadline.
	if ctrl.Index() != 0 {
		t.Fatalf("expected index unchanged during cooldown")
	}
	ctrl.TimeTick(t0.Add(750*time.Millisecond + 2999*time.Millisecond))
	if ctrl.Index() != 0 {
		t.Fatalf("expected index unchanged before deadline")
	}
	ctrl.TimeTick(t0.Add(750*time.Millisecond + 3000*time.Millisecond))
	if ctrl.Index() != 1 {
		t.Fatalf("expected index 1 after cooldown, got %d", ctrl.Index())
	}
	if ctrl.Phase() != PhaseIdle {
		t.Fatalf("expected idle phase for new target, got %v", ctrl.Phase())
	}
}

func TestPausePreservesHoldProgress(t *testing.T) {
	ctrl := newTestController(t, testConfig())
	ctrl.SetConnected(true)
	ctrl.Start()

	target, _ := ctrl.CurrentTarget()
	t0 := time.Unix(100, 0)
	analog := float64(target.TargetPressure) / 100

	ctrl.HandleTelemetry(press(target.KeyCode, analog), t0)
	ctrl.HandleTelemetry(press(target.KeyCode, analog), t0.Add(400*time.Millisecond))
	if ctrl.Phase() != PhaseHolding {
		t.Fatalf("expected holding phase, got %v", ctrl.Phase())
	}

	generation := ctrl.Generation()
	ctrl.Pause(t0.Add(500 * time.Millisecond))
	if ctrl.State() != StatePaused {
		t.Fatalf("expected paused state, got %v", ctrl.State())
	}
	if ctrl.Generation() == generation {
		t.Fatalf("expected pause to invalidate scheduled ticks")
	}
	if outcome := ctrl.HandleTelemetry(press(target.KeyCode, analog), t0.Add(5*time.Second)); outcome != nil {
		t.Fatalf("expected telemetry ignored while paused, got %+v", outcome)
	}

	ctrl.Resume(t0.Add(20 * time.Second))
	// 500ms of hold was done before the pause, so 250ms remain.
	outcome := ctrl.HandleTelemetry(press(target.KeyCode, analog), t0.Add(20*time.Second+200*time.Millisecond))
	if outcome != nil {
		t.Fatalf("expected dwell not yet expired after resume, got %+v", outcome)
	}
	outcome = ctrl.HandleTelemetry(press(target.KeyCode, analog), t0.Add(20*time.Second+300*time.Millisecond))
	if outcome == nil {
		t.Fatalf("expected resolution once the preserved dwell expires")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	ctrl := newTestController(t, testConfig())
	ctrl.SetConnected(true)
	ctrl.Start()

	target, _ := ctrl.CurrentTarget()
	t0 := time.Unix(100, 0)
	ctrl.HandleTelemetry(press(target.KeyCode, 0.2), t0)
	ctrl.HandleTelemetry(press(target.KeyCode, 0.2), t0.Add(750*time.Millisecond))
	if ctrl.Stats().TotalAttempts != 1 {
		t.Fatalf("expected one recorded attempt")
	}

	for i := 0; i < 2; i++ {
		ctrl.Reset()
		stats := ctrl.Stats()
		if stats != (model.RunningStats{}) {
			t.Fatalf("reset %d: expected zeroed stats, got %+v", i, stats)
		}
		if ctrl.State() != StateNotStarted {
			t.Fatalf("reset %d: expected not-started state, got %v", i, ctrl.State())
		}
		if ctrl.Phase() != PhaseIdle {
			t.Fatalf("reset %d: expected idle evaluator, got %v", i, ctrl.Phase())
		}
		if ctrl.Index() != 0 {
			t.Fatalf("reset %d: expected index 0, got %d", i, ctrl.Index())
		}
		if len(ctrl.Sequence()) != sequence.Length {
			t.Fatalf("reset %d: expected full-length sequence", i)
		}
	}
}

func TestCompletion(t *testing.T) {
	cfg := testConfig()
	cfg.Policy = "peak"
	cfg.CooldownMs = 100
	ctrl := newTestController(t, cfg)
	ctrl.SetConnected(true)
	ctrl.Start()

	now := time.Unix(100, 0)
	for i := 0; i < sequence.Length; i++ {
		target, ok := ctrl.CurrentTarget()
		if !ok {
			t.Fatalf("attempt %d: expected a current target", i)
		}
		analog := float64(target.TargetPressure) / 100
		ctrl.HandleTelemetry(press(target.KeyCode, analog), now)
		now = now.Add(10 * time.Millisecond)
		outcome := ctrl.HandleTelemetry(released(target.KeyCode, 0), now)
		if outcome == nil || !outcome.Success {
			t.Fatalf("attempt %d: expected a hit, got %+v", i, outcome)
		}
		now = now.Add(200 * time.Millisecond)
		ctrl.TimeTick(now)
	}

	if ctrl.State() != StateCompleted {
		t.Fatalf("expected completed state, got %v", ctrl.State())
	}
	stats := ctrl.Stats()
	if stats.TotalAttempts != sequence.Length || stats.SuccessfulHits != sequence.Length {
		t.Fatalf("unexpected final stats: %+v", stats)
	}
	if stats.AccuracyPercent != 100 {
		t.Fatalf("expected final accuracy 100, got %f", stats.AccuracyPercent)
	}
	if _, ok := ctrl.CurrentTarget(); ok {
		t.Fatalf("expected no current target after completion")
	}
}

func TestRegenerateSwitchesLevels(t *testing.T) {
	ctrl := newTestController(t, testConfig())
	ctrl.Regenerate(3)
	allowed := map[int]struct{}{30: {}, 60: {}, 100: {}}
	for i, spec := range ctrl.Sequence() {
		if _, ok := allowed[spec.TargetPressure]; !ok {
			t.Fatalf("target %d: pressure %d not in 3-level set", i, spec.TargetPressure)
		}
	}
	if ctrl.State() != StateNotStarted {
		t.Fatalf("expected regenerate to reset the session, got %v", ctrl.State())
	}
}
