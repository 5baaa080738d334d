package analysis

import (
	"fmt"
	"math"
)

// EmptyDuration is shown in place of a duration when no track is selected.
const EmptyDuration = "0:00"

// FormatDuration renders milliseconds as m:ss, truncating partial seconds.
// Minutes do not wrap into hours: a 62 minute track reads 62:05, not 2:05.
func FormatDuration(ms float64) string {
	if ms < 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return EmptyDuration
	}
	secs := int64(ms / 1000)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// TempoCategory buckets a tempo in beats per minute.
func TempoCategory(bpm float64) string {
	switch {
	case bpm < 80:
		return "Slow (0-80)"
	case bpm < 110:
		return "Medium (80-110)"
	default:
		return "Fast (110+)"
	}
}
