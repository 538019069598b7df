package models

import (
	"fmt"
	"time"
)

type Partner struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	VehicleType     string    `json:"vehicle_type"`
	CurrentLocation Location  `json:"current_location"`
	IsAvailable     bool      `json:"is_available"`
	Rating          float64   `json:"rating"`
	TotalDeliveries int       `json:"total_deliveries"`
	LastUpdateTime  time.Time `json:"last_update_time"`
}

// PartnerInfo is the public projection of a partner carried in events and
// tracking responses.
type PartnerInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Vehicle string `json:"vehicle"`
}

func (p Partner) Info() PartnerInfo {
	return PartnerInfo{ID: p.ID, Name: p.Name, Vehicle: p.VehicleType}
}

// PartnerPatch holds the optional fields a partial partner update may touch.
type PartnerPatch struct {
	Location    *Location
	IsAvailable *bool
	Rating      *float64
}

func (p Partner) ApplyPatch(patch PartnerPatch) Partner {
	if patch.Location != nil {
		p.CurrentLocation = *patch.Location
	}
	if patch.IsAvailable != nil {
		p.IsAvailable = *patch.IsAvailable
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	return p
}

// AvailabilityWindow is a weekly recurring working window. Times are
// zero-padded 24-hour "HH:MM" strings; under that format lexicographic
// comparison orders them correctly.
type AvailabilityWindow struct {
	PartnerID string       `json:"partner_id"`
	DayOfWeek time.Weekday `json:"day_of_week"`
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
}

// Validate rejects malformed windows. Overlapping windows for the same day
// are allowed; they only widen availability and cannot corrupt matching.
func (w AvailabilityWindow) Validate() error {
	if w.DayOfWeek < time.Sunday || w.DayOfWeek > time.Saturday {
		return fmt.Errorf("availability window: invalid day of week %d", w.DayOfWeek)
	}
	if !validClock(w.StartTime) || !validClock(w.EndTime) {
		return fmt.Errorf("availability window: times must be zero-padded HH:MM, got %q-%q", w.StartTime, w.EndTime)
	}
	if w.StartTime >= w.EndTime {
		return fmt.Errorf("availability window: start %q must precede end %q", w.StartTime, w.EndTime)
	}
	return nil
}

func validClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	hh := (int(s[0]-'0'))*10 + int(s[1]-'0')
	mm := (int(s[3]-'0'))*10 + int(s[4]-'0')
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return hh >= 0 && hh < 24 && mm >= 0 && mm < 60
}

// ClockString formats an instant as the "HH:MM" form used by availability
// windows.
func ClockString(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
