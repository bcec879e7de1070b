// Package session implements the attempt state machine and drill lifecycle.
package session

import (
	"math"
	"time"

	"github.com/velsh/presshold/internal/model"
)

// Timing and scoring constants for attempt evaluation.
const (
	DefaultDwell    = 750 * time.Millisecond
	DefaultCooldown = 3000 * time.Millisecond

	// TolerancePoints is the maximum deviation still counted as a hit.
	TolerancePoints = 10.0
	// WrongKeyPenalty is the deviation recorded for a decoy press.
	WrongKeyPenalty = 100.0
)

// Phase is the per-attempt evaluation state.
type Phase int

// Evaluation phases.
const (
	PhaseIdle Phase = iota
	PhaseHolding
	PhaseCooldown
)

// HoldPolicy tracks target-key contact across telemetry updates and decides
// when the attempt resolves and with which pressure percentage.
type HoldPolicy interface {
	// Observe consumes one update for the target key. It returns the pressure
	// percentage to judge and whether the attempt resolved on this update.
	Observe(analog float64, pressed bool, now time.Time) (pressurePct float64, resolved bool)
	// Holding reports whether the key is currently considered held.
	Holding() bool
	// Shift moves any internal deadline forward, used on pause/resume.
	Shift(d time.Duration)
	// Reset discards all tracking state.
	Reset()
}

// DwellPolicy resolves an attempt once the target key has been held
// continuously for a minimum dwell duration, judging the pressure sampled at
// dwell expiry. A release before expiry silently returns to idle.
type DwellPolicy struct {
	dwell     time.Duration
	holdStart time.Time
	holding   bool
}

// NewDwellPolicy returns a dwell-based hold policy.
func NewDwellPolicy(dwell time.Duration) *DwellPolicy {
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	return &DwellPolicy{dwell: dwell}
}

// Observe implements HoldPolicy.
func (p *DwellPolicy) Observe(analog float64, pressed bool, now time.Time) (float64, bool) {
	if !pressed {
		p.holding = false
		return 0, false
	}
	if !p.holding {
		p.holding = true
		p.holdStart = now
		return 0, false
	}
	if now.Sub(p.holdStart) >= p.dwell {
		return analog * 100, true
	}
	return 0, false
}

// Holding implements HoldPolicy.
func (p *DwellPolicy) Holding() bool { return p.holding }

// Shift implements HoldPolicy.
func (p *DwellPolicy) Shift(d time.Duration) {
	if p.holding {
		p.holdStart = p.holdStart.Add(d)
	}
}

// Reset implements HoldPolicy.
func (p *DwellPolicy) Reset() {
	p.holding = false
	p.holdStart = time.Time{}
}

// PeakPolicy tracks the maximum analog value for as long as the key stays
// pressed and resolves on release, judging the peak.
type PeakPolicy struct {
	holding bool
	peak    float64
}

// NewPeakPolicy returns a peak-on-release hold policy.
func NewPeakPolicy() *PeakPolicy {
	return &PeakPolicy{}
}

// Observe implements HoldPolicy.
func (p *PeakPolicy) Observe(analog float64, pressed bool, _ time.Time) (float64, bool) {
	if pressed {
		p.holding = true
		if analog > p.peak {
			p.peak = analog
		}
		return 0, false
	}
	if !p.holding {
		return 0, false
	}
	pct := p.peak * 100
	p.holding = false
	p.peak = 0
	return pct, true
}

// Holding implements HoldPolicy.
func (p *PeakPolicy) Holding() bool { return p.holding }

// Shift implements HoldPolicy. Peak tracking carries no deadline.
func (p *PeakPolicy) Shift(time.Duration) {}

// Reset implements HoldPolicy.
func (p *PeakPolicy) Reset() {
	p.holding = false
	p.peak = 0
}

// Evaluator judges attempts for one target at a time. Exactly one attempt is
// live; SetTarget discards it and starts the next.
type Evaluator struct {
	policy        HoldPolicy
	cooldown      time.Duration
	target        model.TargetSpec
	phase         Phase
	cooldownUntil time.Time
}

// NewEvaluator returns an evaluator using the given hold policy.
func NewEvaluator(policy HoldPolicy, cooldown time.Duration) *Evaluator {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Evaluator{policy: policy, cooldown: cooldown}
}

// SetTarget installs the next target and clears all attempt state.
func (e *Evaluator) SetTarget(target model.TargetSpec) {
	e.target = target
	e.phase = PhaseIdle
	e.cooldownUntil = time.Time{}
	e.policy.Reset()
}

// Target returns the target currently under evaluation.
func (e *Evaluator) Target() model.TargetSpec { return e.target }

// Phase returns the current evaluation phase.
func (e *Evaluator) Phase() Phase { return e.phase }

// CooldownRemaining reports the time left before the sequence may advance.
func (e *Evaluator) CooldownRemaining(now time.Time) time.Duration {
	if e.phase != PhaseCooldown {
		return 0
	}
	remaining := e.cooldownUntil.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Shift moves all live deadlines forward by d, used on pause/resume.
func (e *Evaluator) Shift(d time.Duration) {
	if e.phase == PhaseCooldown {
		e.cooldownUntil = e.cooldownUntil.Add(d)
	}
	e.policy.Shift(d)
}

// Tick consumes one snapshot set in arrival order. It returns the attempt
// outcome if the attempt resolved on this update, and advance=true once a
// cooldown deadline has passed. During cooldown all telemetry is ignored.
func (e *Evaluator) Tick(snaps []model.KeySnapshot, now time.Time) (*model.AttemptOutcome, bool) {
	if e.phase == PhaseCooldown {
		return nil, e.Expire(now)
	}

	// Decoy presses short-circuit the attempt regardless of target-key state.
	for _, snap := range snaps {
		if snap.Pressed && snap.KeyCode != e.target.KeyCode {
			return e.resolve(model.AttemptOutcome{
				KeyCode:          e.target.KeyCode,
				DeviationPercent: WrongKeyPenalty,
				Success:          false,
				Reason:           model.WrongKey,
			}, now), false
		}
	}

	analog := 0.0
	pressed := false
	for _, snap := range snaps {
		if snap.KeyCode == e.target.KeyCode {
			analog = snap.AnalogValue
			pressed = snap.Pressed
		}
	}

	pct, resolved := e.policy.Observe(analog, pressed, now)
	if resolved {
		deviation := math.Abs(pct - float64(e.target.TargetPressure))
		return e.resolve(model.AttemptOutcome{
			KeyCode:          e.target.KeyCode,
			DeviationPercent: deviation,
			Success:          deviation <= TolerancePoints,
			Reason:           reasonFor(deviation),
		}, now), false
	}

	if e.policy.Holding() {
		e.phase = PhaseHolding
	} else {
		e.phase = PhaseIdle
	}
	return nil, false
}

// Expire checks only the cooldown deadline against now. It lets the sequence
// advance on a wall-clock tick even when no telemetry is flowing.
func (e *Evaluator) Expire(now time.Time) bool {
	if e.phase != PhaseCooldown {
		return false
	}
	if now.Before(e.cooldownUntil) {
		return false
	}
	e.phase = PhaseIdle
	e.cooldownUntil = time.Time{}
	e.policy.Reset()
	return true
}

func (e *Evaluator) resolve(outcome model.AttemptOutcome, now time.Time) *model.AttemptOutcome {
	e.phase = PhaseCooldown
	e.cooldownUntil = now.Add(e.cooldown)
	e.policy.Reset()
	return &outcome
}

func reasonFor(deviation float64) model.Reason {
	if deviation <= TolerancePoints {
		return model.Perfect
	}
	return model.WrongPressure
}
