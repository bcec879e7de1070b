package tui

import "strings"

const (
	barFilled = '█'
	barEmpty  = '░'
	barMarker = '┃'
)

// renderTargetBar draws a pressure gauge of the given cell width with a
// marker at the target pressure. The marker cell wins over fill so the
// target stays visible at any pressure.
func renderTargetBar(analog float64, targetPct, width int) string {
	if width <= 0 {
		return ""
	}
	if analog < 0 {
		analog = 0
	}
	if analog > 1 {
		analog = 1
	}
	filled := int(analog*float64(width) + 0.5)
	markerIdx := int(float64(targetPct) / 100 * float64(width-1))
	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == markerIdx:
			b.WriteRune(barMarker)
		case i < filled:
			b.WriteRune(barFilled)
		default:
			b.WriteRune(barEmpty)
		}
	}
	return b.String()
}
