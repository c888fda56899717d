package fraud

import (
	"math"
	"time"
)

// earthRadiusKm is the mean Earth radius used for great-circle distance.
const earthRadiusKm = 6371.0

// GeoLocation is a resolved position for an IP address.
type GeoLocation struct {
	Country   string  `json:"country"` // ISO 3166-1 alpha-2
	Region    string  `json:"region"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	IsVPN     bool    `json:"is_vpn"`
	IsTor     bool    `json:"is_tor"`
}

// LocationRecord is one entry of a user's location history.
type LocationRecord struct {
	Location  GeoLocation `json:"location"`
	Timestamp time.Time   `json:"timestamp"`
}

// DistanceKm returns the great-circle distance to other in kilometers,
// computed with the haversine formula.
func (g GeoLocation) DistanceKm(other GeoLocation) float64 {
	lat1 := g.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := (other.Latitude - g.Latitude) * math.Pi / 180
	dLon := (other.Longitude - g.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
