// Package telemetry decodes the hardware bridge wire format.
package telemetry

import (
	"regexp"
	"strconv"

	"github.com/velsh/presshold/internal/model"
)

// A payload is a concatenation of groups `(keyCode:analogValue:pressedFlag)`
// with no delimiter between groups. keyCode and pressedFlag are non-negative
// integers, analogValue is a decimal in [0,1]. A pressedFlag of 1 means the
// key is down.
var groupRe = regexp.MustCompile(`\((\d+):(\d+(?:\.\d+)?):(\d+)\)`)

// Decode parses a raw payload into the snapshot set it encodes. Decoding is
// total: malformed or out-of-range groups are skipped, and a payload with no
// valid groups yields an empty set, which downstream reads as "no keys
// currently pressed".
func Decode(payload string) []model.KeySnapshot {
	matches := groupRe.FindAllStringSubmatch(payload, -1)
	if len(matches) == 0 {
		return nil
	}
	snaps := make([]model.KeySnapshot, 0, len(matches))
	for _, m := range matches {
		keyCode, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		analog, err := strconv.ParseFloat(m[2], 64)
		if err != nil || analog < 0 || analog > 1 {
			continue
		}
		flag, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		snaps = append(snaps, model.KeySnapshot{
			KeyCode:     keyCode,
			AnalogValue: analog,
			Pressed:     flag == 1,
		})
	}
	return snaps
}
