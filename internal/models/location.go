package models

import (
	"fmt"
	"math"
)

type Location struct {
	Lat float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lng float64 `json:"lng" parquet:"name=lng,type=DOUBLE"`
}

// PlaneDistance is the flat-plane distance between two coordinates, in
// degrees. Good enough at city scale; matching only compares distances
// against each other, so no geodesic correction is applied.
func PlaneDistance(a, b Location) float64 {
	dx := a.Lat - b.Lat
	dy := a.Lng - b.Lng
	return math.Sqrt(dx*dx + dy*dy)
}

func (l *Location) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		_, err := fmt.Sscanf(string(v), "POINT(%f %f)", &l.Lng, &l.Lat)
		return err
	case string:
		_, err := fmt.Sscanf(v, "POINT(%f %f)", &l.Lng, &l.Lat)
		return err
	default:
		return fmt.Errorf("unsupported type for Location: %T", value)
	}
}
