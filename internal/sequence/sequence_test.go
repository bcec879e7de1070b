package sequence

import "testing"

func TestGenerateLengthAndMembership(t *testing.T) {
	gen := NewSeeded(42)
	levels := Levels(3)
	seq := gen.Generate(levels, Length)
	if len(seq) != 20 {
		t.Fatalf("expected 20 targets, got %d", len(seq))
	}
	allowed := map[int]struct{}{30: {}, 60: {}, 100: {}}
	codes := map[int]rune{}
	for _, spec := range HomeRow {
		codes[spec.KeyCode] = spec.Key
	}
	for i, spec := range seq {
		if _, ok := allowed[spec.TargetPressure]; !ok {
			t.Fatalf("target %d: pressure %d not in 3-level set", i, spec.TargetPressure)
		}
		key, ok := codes[spec.KeyCode]
		if !ok {
			t.Fatalf("target %d: key code %d not in home row", i, spec.KeyCode)
		}
		if key != spec.Key {
			t.Fatalf("target %d: key %q does not match code %d", i, spec.Key, spec.KeyCode)
		}
	}
}

func TestGenerateIsRestartable(t *testing.T) {
	gen := NewSeeded(7)
	levels := Levels(2)
	first := gen.Generate(levels, Length)
	second := gen.Generate(levels, Length)
	if len(first) != Length || len(second) != Length {
		t.Fatalf("expected full-length sequences, got %d and %d", len(first), len(second))
	}
	for i, spec := range second {
		if spec.TargetPressure != 50 && spec.TargetPressure != 100 {
			t.Fatalf("target %d: pressure %d not in 2-level set", i, spec.TargetPressure)
		}
	}
}

func TestLevels(t *testing.T) {
	two := Levels(2)
	if len(two) != 2 || two[0] != 50 || two[1] != 100 {
		t.Fatalf("unexpected 2-level set: %v", two)
	}
	three := Levels(3)
	if len(three) != 3 || three[0] != 30 || three[1] != 60 || three[2] != 100 {
		t.Fatalf("unexpected 3-level set: %v", three)
	}
}
