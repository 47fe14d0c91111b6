// Package geo computes great-circle distances between patients and trial sites.
package geo

import (
	"math"

	"github.com/synaptica-ai/trialmatch/pkg/common/models"
)

// EarthRadiusMiles is the mean radius used by Haversine.
const EarthRadiusMiles = 3959.0

type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Haversine returns the great-circle distance between a and b in miles.
func Haversine(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Geocode resolves free-text state input to the state's centroid. Unresolvable
// input reports ok=false, which callers treat as "no location".
func Geocode(state string) (Point, bool) {
	s, ok := LookupState(state)
	if !ok {
		return Point{}, false
	}
	return s.Point(), true
}

// NearestSite returns the smallest distance from origin to any recruiting site
// that has coordinates. Sites without coordinates are skipped; ok is false when
// no site qualifies.
func NearestSite(origin Point, sites []models.Site) (float64, bool) {
	best := math.Inf(1)
	for _, site := range sites {
		if !site.IsRecruiting() || !site.HasCoordinates() {
			continue
		}
		d := Haversine(origin, Point{Latitude: *site.Latitude, Longitude: *site.Longitude})
		if d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// WithinRadius reports whether a trial at distance d survives a radius filter.
// Without a resolved distance the filter does not apply.
func WithinRadius(d *float64, radius float64) bool {
	if d == nil || radius <= 0 {
		return true
	}
	return *d <= radius
}
