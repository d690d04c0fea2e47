// Package geo normalizes site coordinates into canonical WGS84 degrees.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned for values outside the legal range
// or an unsupported coordinate system.
var ErrInvalidCoordinate = errors.New("geo: invalid coordinate")

// System identifies the coordinate system of a raw input pair.
type System string

const (
	// WGS84 is latitude/longitude in decimal degrees.
	WGS84 System = "wgs84"
	// WGS84Radians is latitude/longitude in radians.
	WGS84Radians System = "wgs84_radians"
	// WebMercator is EPSG:3857 easting/northing in meters.
	WebMercator System = "web_mercator"
)

// Point is a canonical WGS84 position in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Validate checks the point against WGS84 bounds.
func (p Point) Validate() error {
	if !isFinite(p.Lat) || !isFinite(p.Lon) {
		return fmt.Errorf("%w: non-finite value", ErrInvalidCoordinate)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, p.Lon)
	}
	return nil
}

// semiMajorAxis is the WGS84 ellipsoid radius used by EPSG:3857.
const semiMajorAxis = 6378137.0

// Normalize converts a raw coordinate pair in the given system to a
// canonical point. For WGS84 and WGS84Radians a is latitude and b is
// longitude; for WebMercator a is easting and b is northing.
func Normalize(sys System, a, b float64) (Point, error) {
	if !isFinite(a) || !isFinite(b) {
		return Point{}, fmt.Errorf("%w: non-finite value", ErrInvalidCoordinate)
	}

	var p Point
	switch sys {
	case WGS84:
		p = Point{Lat: a, Lon: b}
	case WGS84Radians:
		p = Point{Lat: a * 180 / math.Pi, Lon: b * 180 / math.Pi}
	case WebMercator:
		p = Point{
			Lat: 180 / math.Pi * (2*math.Atan(math.Exp(b/semiMajorAxis)) - math.Pi/2),
			Lon: a / semiMajorAxis * 180 / math.Pi,
		}
	default:
		return Point{}, fmt.Errorf("%w: unknown system %q", ErrInvalidCoordinate, sys)
	}

	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// earthRadiusKm is the mean radius used for great-circle distances.
const earthRadiusKm = 6371.0

// Distance returns the great-circle distance between two points in
// kilometers (haversine).
func Distance(a, b Point) float64 {
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
