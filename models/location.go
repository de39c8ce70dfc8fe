package models

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Location is a value type embedded in User and Report. Coordinates follow
// GeoJSON order: [longitude, latitude].
type Location struct {
	Address     string     `bson:"address,omitempty" json:"address,omitempty"`
	City        string     `bson:"city" json:"city"`
	State       string     `bson:"state" json:"state"`
	Coordinates *[]float64 `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// Normalize uppercases the state code and trims surrounding whitespace.
// Call before Validate on any write path.
func (l *Location) Normalize() {
	l.Address = strings.TrimSpace(l.Address)
	l.City = strings.TrimSpace(l.City)
	l.State = strings.ToUpper(strings.TrimSpace(l.State))
}

// Validate checks the city/state requirements and coordinate bounds.
func (l *Location) Validate() error {
	if l.City == "" {
		return fmt.Errorf("location.city is required")
	}
	if len(l.State) != 2 {
		return fmt.Errorf("location.state must be a 2-letter code")
	}
	for _, r := range l.State {
		if !unicode.IsLetter(r) {
			return fmt.Errorf("location.state must be a 2-letter code")
		}
	}
	if l.Coordinates != nil {
		coords := *l.Coordinates
		if len(coords) != 2 {
			return fmt.Errorf("location.coordinates must be [longitude, latitude]")
		}
		lon, lat := coords[0], coords[1]
		if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
			return fmt.Errorf("location.coordinates must be finite numbers")
		}
		if lon < -180 || lon > 180 {
			return fmt.Errorf("longitude must be between -180 and 180")
		}
		if lat < -90 || lat > 90 {
			return fmt.Errorf("latitude must be between -90 and 90")
		}
	}
	return nil
}
