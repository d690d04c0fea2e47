package geo

import (
	"errors"
	"math"
	"testing"
)

func TestNormalize_WGS84Passthrough(t *testing.T) {
	p, err := Normalize(WGS84, 27.539, 71.916)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.Lat != 27.539 || p.Lon != 71.916 {
		t.Fatalf("expected passthrough, got %+v", p)
	}
}

func TestNormalize_Radians(t *testing.T) {
	p, err := Normalize(WGS84Radians, math.Pi/4, math.Pi/2)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if math.Abs(p.Lat-45) > 1e-9 || math.Abs(p.Lon-90) > 1e-9 {
		t.Fatalf("expected 45,90, got %+v", p)
	}
}

func TestNormalize_WebMercator(t *testing.T) {
	// Easting of the 90th meridian at the equator.
	p, err := Normalize(WebMercator, semiMajorAxis*math.Pi/2, 0)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if math.Abs(p.Lat) > 1e-9 || math.Abs(p.Lon-90) > 1e-9 {
		t.Fatalf("expected 0,90, got %+v", p)
	}

	// Northing of 45N on the prime meridian: R*ln(tan(67.5 degrees)).
	p, err = Normalize(WebMercator, 0, semiMajorAxis*math.Log(math.Tan(3*math.Pi/8)))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if math.Abs(p.Lat-45) > 1e-9 || math.Abs(p.Lon) > 1e-9 {
		t.Fatalf("expected 45,0, got %+v", p)
	}
}

func TestNormalize_Invalid(t *testing.T) {
	cases := []struct {
		name string
		sys  System
		a, b float64
	}{
		{"lat out of range", WGS84, 91, 0},
		{"lon out of range", WGS84, 0, 181},
		{"nan", WGS84, math.NaN(), 0},
		{"inf", WGS84, 0, math.Inf(1)},
		{"unknown system", System("utm"), 1, 2},
		{"radians out of range", WGS84Radians, math.Pi, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Normalize(tc.sys, tc.a, tc.b); !errors.Is(err, ErrInvalidCoordinate) {
				t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	bhadla := Point{Lat: 27.539, Lon: 71.916}
	jaisalmer := Point{Lat: 26.920, Lon: 70.900}

	d := Distance(bhadla, jaisalmer)
	if d < 100 || d > 150 {
		t.Fatalf("expected ~120 km, got %.1f", d)
	}
	if Distance(bhadla, bhadla) != 0 {
		t.Fatalf("expected zero distance to self")
	}
	if math.Abs(Distance(bhadla, jaisalmer)-Distance(jaisalmer, bhadla)) > 1e-9 {
		t.Fatalf("expected symmetric distance")
	}
}
