package factories

import (
	"math"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

var fake = faker.New()

var vehicleTypes = []string{"Motorbike", "Bicycle", "Car", "Small Van"}

type PartnerFactory struct{}

func (pf *PartnerFactory) CreatePartner(config *models.Config) models.Partner {
	// Calculate city bounds
	latRange := config.UrbanRadius / 111.0 // Approx. conversion from km to degrees
	lngRange := latRange / math.Cos(config.CityLat*math.Pi/180.0)

	lat := config.CityLat + (fake.Float64(6, -1000, 1000)/1000.0)*latRange
	lng := config.CityLng + (fake.Float64(6, -1000, 1000)/1000.0)*lngRange

	return models.Partner{
		ID:          "partner_" + cuid.New(),
		Name:        fake.Person().Name(),
		Phone:       fake.Phone().Number(),
		VehicleType: vehicleTypes[fake.IntBetween(0, len(vehicleTypes)-1)],
		CurrentLocation: models.Location{
			Lat: lat,
			Lng: lng,
		},
		IsAvailable:     true,
		Rating:          fake.Float64(1, 3, 5),
		TotalDeliveries: fake.IntBetween(0, 500),
	}
}

// CreateWeekdayWindows returns a standard working week for a partner:
// one window per weekday plus an optional weekend shift.
func (pf *PartnerFactory) CreateWeekdayWindows(partnerID string) []models.AvailabilityWindow {
	windows := make([]models.AvailabilityWindow, 0, 7)
	for day := 1; day <= 5; day++ {
		windows = append(windows, models.AvailabilityWindow{
			PartnerID: partnerID,
			DayOfWeek: weekday(day),
			StartTime: "09:00",
			EndTime:   "17:00",
		})
	}
	if fake.Boolean().Bool() {
		windows = append(windows, models.AvailabilityWindow{
			PartnerID: partnerID,
			DayOfWeek: weekday(6),
			StartTime: "10:00",
			EndTime:   "20:00",
		})
	}
	return windows
}

// CreateAllDayWindows covers every day of the week, for partners that are
// always on shift.
func (pf *PartnerFactory) CreateAllDayWindows(partnerID string) []models.AvailabilityWindow {
	windows := make([]models.AvailabilityWindow, 0, 7)
	for day := 0; day <= 6; day++ {
		windows = append(windows, models.AvailabilityWindow{
			PartnerID: partnerID,
			DayOfWeek: weekday(day),
			StartTime: "00:00",
			EndTime:   "23:59",
		})
	}
	return windows
}
