// Package model defines shared data structures.
package model

// Config defines practice settings.
type Config struct {
	BridgeURL  string
	Levels     int
	Policy     string
	DwellMs    int
	CooldownMs int
}

// KeySnapshot is one decoded per-key telemetry record. The full set of
// snapshots in a payload replaces the previous set, it is never merged.
type KeySnapshot struct {
	KeyCode     int
	AnalogValue float64
	Pressed     bool
}

// TargetSpec is one element of a drill sequence. Immutable once generated.
type TargetSpec struct {
	Key            rune
	KeyCode        int
	TargetPressure int
}

// Sequence is an ordered drill of pressure targets.
type Sequence []TargetSpec

// Reason classifies a resolved attempt.
type Reason int

// Attempt outcome reasons.
const (
	Perfect Reason = iota
	WrongPressure
	WrongKey
)

// String returns a display label for the reason.
func (r Reason) String() string {
	switch r {
	case Perfect:
		return "perfect"
	case WrongPressure:
		return "wrong pressure"
	case WrongKey:
		return "wrong key"
	default:
		return "unknown"
	}
}

// AttemptOutcome is the judgment for one completed attempt.
type AttemptOutcome struct {
	KeyCode          int
	DeviationPercent float64
	Success          bool
	Reason           Reason
}

// RunningStats holds incrementally maintained session totals.
type RunningStats struct {
	TotalAttempts           int
	SuccessfulHits          int
	AccuracyPercent         float64
	AverageDeviationPercent float64
}

// KeyAggregate accumulates outcomes for a single practice key.
type KeyAggregate struct {
	Key          rune
	Attempts     int
	Hits         int
	DeviationSum float64
}

// AverageDeviation returns the mean deviation for the key.
func (a KeyAggregate) AverageDeviation() float64 {
	if a.Attempts == 0 {
		return 0
	}
	return a.DeviationSum / float64(a.Attempts)
}
