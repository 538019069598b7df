package dispatch

import (
	"time"

	"github.com/chrisdamba/foodispatch/internal/models"
)

// PartnerAvailableAt reports whether a partner can take work at instant t.
// The partner must have toggled themselves available AND be inside at least
// one scheduled window for t's weekday. Windows are half-open: a partner is
// on shift at StartTime and off shift at EndTime.
//
// A partner with no windows at all is treated as off duty regardless of the
// availability flag, and any malformed window is skipped, so the answer is
// a conservative false whenever data is missing.
func PartnerAvailableAt(partner models.Partner, windows []models.AvailabilityWindow, t time.Time) bool {
	if !partner.IsAvailable || len(windows) == 0 {
		return false
	}
	day := t.Weekday()
	clock := models.ClockString(t)
	for _, w := range windows {
		if w.Validate() != nil {
			continue
		}
		if w.DayOfWeek == day && w.StartTime <= clock && clock < w.EndTime {
			return true
		}
	}
	return false
}
