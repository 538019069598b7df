package dispatch

import (
	"testing"
	"time"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/stretchr/testify/assert"
)

// 2024-01-08 was a Monday.
var monday10am = time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

func window(day time.Weekday, start, end string) models.AvailabilityWindow {
	return models.AvailabilityWindow{PartnerID: "partner_1", DayOfWeek: day, StartTime: start, EndTime: end}
}

func TestPartnerAvailableAt(t *testing.T) {
	online := models.Partner{ID: "partner_1", IsAvailable: true}
	offline := models.Partner{ID: "partner_1", IsAvailable: false}
	onShift := []models.AvailabilityWindow{window(time.Monday, "09:00", "17:00")}

	tests := []struct {
		name    string
		partner models.Partner
		windows []models.AvailabilityWindow
		at      time.Time
		want    bool
	}{
		{"online and on shift", online, onShift, monday10am, true},
		{"offline flag wins over schedule", offline, onShift, monday10am, false},
		{"no schedule means off duty", online, nil, monday10am, false},
		{"wrong day", online, []models.AvailabilityWindow{window(time.Tuesday, "09:00", "17:00")}, monday10am, false},
		{"before shift start", online, onShift, monday10am.Add(-2 * time.Hour), false},
		{"exactly at shift start", online, onShift, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), true},
		{"exactly at shift end is off shift", online, onShift, time.Date(2024, 1, 8, 17, 0, 0, 0, time.UTC), false},
		{"one minute before end", online, onShift, time.Date(2024, 1, 8, 16, 59, 0, 0, time.UTC), true},
		{"second window covers the instant", online, []models.AvailabilityWindow{
			window(time.Monday, "06:00", "08:00"),
			window(time.Monday, "09:30", "12:00"),
		}, monday10am, true},
		{"malformed window is skipped", online, []models.AvailabilityWindow{
			window(time.Monday, "9:00", "17:00"), // not zero-padded
		}, monday10am, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PartnerAvailableAt(tt.partner, tt.windows, tt.at))
		})
	}
}
