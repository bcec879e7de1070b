package session

import (
	"time"

	"github.com/velsh/presshold/internal/model"
	"github.com/velsh/presshold/internal/sequence"
	"github.com/velsh/presshold/internal/stats"
)

// State is the session lifecycle state.
type State int

// Session states.
const (
	StateNotStarted State = iota
	StateActive
	StatePaused
	StateCompleted
)

// String returns a display label for the state.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Controller owns the drill sequence, the current index, the evaluator and
// the aggregator. It is the only component with lifecycle authority.
type Controller struct {
	cfg    model.Config
	gen    *sequence.Generator
	levels []int

	seq   model.Sequence
	idx   int
	state State
	eval  *Evaluator
	agg   *stats.Aggregator

	connected    bool
	pendingStart bool
	pausedAt     time.Time

	// generation invalidates scheduled wall-clock ticks from before a
	// pause or reset, so a stale timer can never advance fresh state.
	generation int
}

// NewController builds a controller with a freshly generated sequence.
func NewController(cfg model.Config, gen *sequence.Generator) *Controller {
	c := &Controller{
		cfg:    cfg,
		gen:    gen,
		levels: sequence.Levels(cfg.Levels),
		agg:    stats.NewAggregator(),
	}
	c.eval = NewEvaluator(policyFor(cfg), time.Duration(cfg.CooldownMs)*time.Millisecond)
	c.regenerate()
	return c
}

func policyFor(cfg model.Config) HoldPolicy {
	if cfg.Policy == "peak" {
		return NewPeakPolicy()
	}
	return NewDwellPolicy(time.Duration(cfg.DwellMs) * time.Millisecond)
}

// Start activates the session. When the bridge is not yet connected it
// reports needsConnect=true and defers activation until SetConnected(true);
// no evaluation happens before then.
func (c *Controller) Start() (needsConnect bool) {
	if c.state != StateNotStarted {
		return false
	}
	if !c.connected {
		c.pendingStart = true
		return true
	}
	c.state = StateActive
	return false
}

// SetConnected records the bridge connection state and completes a deferred
// start once the connection is up.
func (c *Controller) SetConnected(connected bool) {
	c.connected = connected
	if connected && c.pendingStart && c.state == StateNotStarted {
		c.pendingStart = false
		c.state = StateActive
	}
}

// Connected reports the last known bridge connection state.
func (c *Controller) Connected() bool { return c.connected }

// Pause freezes attempt evaluation in place. In-flight hold and cooldown
// deadlines are preserved and shifted on resume.
func (c *Controller) Pause(now time.Time) {
	if c.state != StateActive {
		return
	}
	c.state = StatePaused
	c.pausedAt = now
	c.generation++
}

// Resume reactivates a paused session, shifting live deadlines forward by
// the paused duration so no timer fires for time spent paused.
func (c *Controller) Resume(now time.Time) {
	if c.state != StatePaused {
		return
	}
	c.eval.Shift(now.Sub(c.pausedAt))
	c.state = StateActive
}

// Reset regenerates the sequence, zeroes all stats, clears evaluator state
// and returns to NotStarted.
func (c *Controller) Reset() {
	c.regenerate()
	c.agg.Reset()
	c.state = StateNotStarted
	c.pendingStart = false
	c.generation++
}

// Regenerate switches the level configuration and resets the session.
func (c *Controller) Regenerate(levelCount int) {
	c.cfg.Levels = levelCount
	c.levels = sequence.Levels(levelCount)
	c.Reset()
}

func (c *Controller) regenerate() {
	c.seq = c.gen.Generate(c.levels, sequence.Length)
	c.idx = 0
	c.eval.SetTarget(c.seq[0])
}

// HandleTelemetry consumes one decoded snapshot set. It returns the attempt
// outcome if this update resolved the attempt. Telemetry is ignored unless
// the session is active.
func (c *Controller) HandleTelemetry(snaps []model.KeySnapshot, now time.Time) *model.AttemptOutcome {
	if c.state != StateActive {
		return nil
	}
	outcome, advance := c.eval.Tick(snaps, now)
	if outcome != nil {
		c.agg.Record(c.seq[c.idx].Key, *outcome)
		return outcome
	}
	if advance {
		c.advance()
	}
	return nil
}

// TimeTick evaluates wall-clock deadlines only. The caller stamps scheduled
// ticks with Generation(); a tick from before a pause or reset must be
// dropped instead of delivered here.
func (c *Controller) TimeTick(now time.Time) {
	if c.state != StateActive {
		return
	}
	if c.eval.Expire(now) {
		c.advance()
	}
}

func (c *Controller) advance() {
	c.idx++
	if c.idx >= len(c.seq) {
		c.state = StateCompleted
		return
	}
	c.eval.SetTarget(c.seq[c.idx])
}

// Generation returns the current timer generation.
func (c *Controller) Generation() int { return c.generation }

// State returns the session state.
func (c *Controller) State() State { return c.state }

// Index returns the current sequence position.
func (c *Controller) Index() int { return c.idx }

// Sequence returns the active drill sequence.
func (c *Controller) Sequence() model.Sequence { return c.seq }

// CurrentTarget returns the target under evaluation, if the drill is not
// complete.
func (c *Controller) CurrentTarget() (model.TargetSpec, bool) {
	if c.idx >= len(c.seq) {
		return model.TargetSpec{}, false
	}
	return c.seq[c.idx], true
}

// Phase returns the evaluator phase for the live attempt.
func (c *Controller) Phase() Phase { return c.eval.Phase() }

// CooldownRemaining reports time left in the post-resolution cooldown.
func (c *Controller) CooldownRemaining(now time.Time) time.Duration {
	return c.eval.CooldownRemaining(now)
}

// Stats returns the running session totals.
func (c *Controller) Stats() model.RunningStats { return c.agg.Totals() }

// KeyAggregates returns per-key totals for the completion view.
func (c *Controller) KeyAggregates() []model.KeyAggregate { return c.agg.KeyAggregates() }

// Deviations returns the per-attempt deviation history.
func (c *Controller) Deviations() []float64 { return c.agg.Deviations() }

// Levels returns the allowed target pressures for the active configuration.
func (c *Controller) Levels() []int {
	return append([]int(nil), c.levels...)
}
