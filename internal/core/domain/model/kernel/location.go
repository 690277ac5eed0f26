package kernel

import (
	"errors"
	"fmt"
	"math"

	"routeplanner/internal/pkg/errs"
	"routeplanner/internal/pkg/guard"
)

const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0

	earthRadiusKm = 6371.0
)

// ErrLocationIsNotConstructed is returned when a zero-value Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError("location must be created via NewLocation")

// Location is an immutable geocoordinate. On the planning grid the same pair
// is read as planar (x = Lat, y = Lng) coordinates, see DistanceMetric.
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewLocation validates latitude/longitude bounds and rejects NaN and infinities.
//
//	depot, _ := kernel.NewLocation(0, 0)
//	stop, _ := kernel.NewLocation(1, 1)
func NewLocation(lat, lng float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLng(lng)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// MustNewLocation panics on invalid coordinates; intended for fixtures.
func MustNewLocation(lat, lng float64) Location {
	loc, err := NewLocation(lat, lng)
	if err != nil {
		panic(err)
	}
	return loc
}

func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l Location) Lat() float64 {
	return l.lat
}

func (l Location) Lng() float64 {
	return l.lng
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%g,%g)", l.lat, l.lng)
}

func (l Location) IsEqual(other Location) bool {
	return l.lat == other.lat && l.lng == other.lng
}

func (l *Location) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}
	l.lat = lat
	return nil
}

func (l *Location) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lng", lng, LongitudeMin, LongitudeMax)
	}
	l.lng = lng
	return nil
}

// DistanceMetric selects how the distance between two locations is measured.
type DistanceMetric int

const (
	// Euclidean treats coordinates as points on a planar grid.
	Euclidean DistanceMetric = iota
	// Haversine treats coordinates as real-world degrees and returns kilometers.
	Haversine
)

// ParseDistanceMetric accepts "euclidean" (also the empty string) and "haversine".
func ParseDistanceMetric(s string) (DistanceMetric, error) {
	switch s {
	case "", "euclidean":
		return Euclidean, nil
	case "haversine":
		return Haversine, nil
	default:
		return Euclidean, errs.NewValueIsInvalidErrorWithCause("distance metric", fmt.Errorf("%q is not supported", s))
	}
}

func (m DistanceMetric) String() string {
	if m == Haversine {
		return "haversine"
	}
	return "euclidean"
}

// Distance measures from a to b. Both locations must be constructed.
func (m DistanceMetric) Distance(a, b Location) (float64, error) {
	if err := errors.Join(a.Validate(), b.Validate()); err != nil {
		return 0, err
	}

	if m == Haversine {
		return haversineKm(a.lat, a.lng, b.lat, b.lng), nil
	}
	return math.Hypot(a.lat-b.lat, a.lng-b.lng), nil
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
