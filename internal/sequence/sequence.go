// Package sequence builds randomized pressure drill sequences.
package sequence

import (
	"math/rand"
	"time"

	"github.com/velsh/presshold/internal/model"
)

// Length is the fixed number of targets per drill.
const Length = 20

// HomeRow is the fixed practice key set. Key codes are USB HID usage IDs.
var HomeRow = []model.TargetSpec{
	{Key: 'a', KeyCode: 4},
	{Key: 's', KeyCode: 22},
	{Key: 'd', KeyCode: 7},
	{Key: 'f', KeyCode: 9},
	{Key: 'j', KeyCode: 13},
	{Key: 'k', KeyCode: 14},
	{Key: 'l', KeyCode: 15},
}

var (
	twoLevels   = []int{50, 100}
	threeLevels = []int{30, 60, 100}
)

// Levels returns the allowed target pressures for a level count.
// Only 2- and 3-level drills are supported; anything else falls back to 2.
func Levels(count int) []int {
	if count == 3 {
		return append([]int(nil), threeLevels...)
	}
	return append([]int(nil), twoLevels...)
}

// Generator produces randomized target sequences.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate picks a key and a target pressure uniformly at random for each of
// length elements. Repeats are allowed. Each call produces an independent
// sequence, not a continuation.
func (g *Generator) Generate(levels []int, length int) model.Sequence {
	seq := make(model.Sequence, 0, length)
	for i := 0; i < length; i++ {
		spec := HomeRow[g.rnd.Intn(len(HomeRow))]
		spec.TargetPressure = levels[g.rnd.Intn(len(levels))]
		seq = append(seq, spec)
	}
	return seq
}
