// Package retention decides when archived media may be deleted for good.
// The admin countdown and the delete guard both call into it.
package retention

import (
	"math"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/constants"
)

// Days is the retention period in whole days.
var Days = int(constants.RetentionPeriod / (24 * time.Hour))

// DaysSince counts whole days elapsed from archivedAt to now, rounding down.
func DaysSince(archivedAt, now time.Time) int {
	return int(math.Floor(now.Sub(archivedAt).Hours() / 24))
}

func EligibleForDeletion(archivedAt *time.Time, now time.Time) bool {
	return archivedAt != nil && DaysSince(*archivedAt, now) >= Days
}

// DaysRemaining is zero once eligible and the full period when not archived.
func DaysRemaining(archivedAt *time.Time, now time.Time) int {
	if archivedAt == nil {
		return Days
	}
	remaining := Days - DaysSince(*archivedAt, now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
