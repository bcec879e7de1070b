// Package monitor dumps the decoded telemetry stream for diagnostics.
package monitor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/velsh/presshold/internal/bridge"
	"github.com/velsh/presshold/internal/model"
	"github.com/velsh/presshold/internal/sequence"
	"github.com/velsh/presshold/internal/telemetry"
)

const labelWidth = 8

// Run connects the bridge and prints one line per decoded snapshot until the
// context is cancelled. Useful for verifying the bridge feed without
// starting a drill.
func Run(ctx context.Context, brd *bridge.Bridge, out io.Writer, width int) error {
	brd.Connect()
	defer brd.Disconnect()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-brd.Events():
			if err := printEvent(out, ev, width); err != nil {
				return err
			}
		}
	}
}

func printEvent(out io.Writer, ev bridge.Event, width int) error {
	switch ev.Kind {
	case bridge.EventStatus:
		_, err := fmt.Fprintf(out, "bridge %s\n", ev.Status)
		return err
	case bridge.EventTelemetry:
		for _, snap := range telemetry.Decode(ev.Payload) {
			if _, err := fmt.Fprintln(out, FormatSnapshot(snap, width)); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatSnapshot renders one snapshot as a labeled pressure bar sized to the
// terminal width.
func FormatSnapshot(snap model.KeySnapshot, width int) string {
	barWidth := width - labelWidth - 12
	if barWidth < 10 {
		barWidth = 10
	}
	filled := int(snap.AnalogValue*float64(barWidth) + 0.5)
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	state := "up"
	if snap.Pressed {
		state = "down"
	}
	return fmt.Sprintf("%s %s %3.0f%% %s", padLabel(keyLabel(snap.KeyCode), labelWidth), bar, snap.AnalogValue*100, state)
}

func keyLabel(keyCode int) string {
	for _, spec := range sequence.HomeRow {
		if spec.KeyCode == keyCode {
			return string(spec.Key)
		}
	}
	return fmt.Sprintf("key %d", keyCode)
}

func padLabel(label string, width int) string {
	gap := width - runewidth.StringWidth(label)
	if gap <= 0 {
		return label
	}
	return label + strings.Repeat(" ", gap)
}
