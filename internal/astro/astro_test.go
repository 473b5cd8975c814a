package astro

import (
	"math"
	"testing"
)

func TestAppToAbsMagRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		appMag   float64
		distance float64
	}{
		{name: "Sirius", appMag: -1.46, distance: 8.6},
		{name: "faint distant star", appMag: 11.2, distance: 4000},
		{name: "at one parsec", appMag: 5.0, distance: LyPerParsec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abs := AppToAbsMag(tt.appMag, tt.distance)
			back := AbsToAppMag(abs, tt.distance)
			if math.Abs(back-tt.appMag) > 1e-9 {
				t.Errorf("round trip: got %f, want %f", back, tt.appMag)
			}
		})
	}
}

func TestAppToAbsMagAtTenParsecs(t *testing.T) {
	// At 10 parsecs apparent and absolute magnitude coincide by definition.
	abs := AppToAbsMag(4.83, 10*LyPerParsec)
	if math.Abs(abs-4.83) > 1e-9 {
		t.Errorf("AppToAbsMag at 10pc = %f, want 4.83", abs)
	}
}

func TestEquatorialToCelestialCartDistance(t *testing.T) {
	// The rotation must preserve distance from the origin.
	tests := []struct {
		ra, dec, dist float64
	}{
		{0, 0, 10},
		{101.287, -16.716, 8.6},
		{279.234, 38.784, 25.04},
		{350, -89, 1000},
	}

	for _, tt := range tests {
		x, y, z := EquatorialToCelestialCart(tt.ra, tt.dec, tt.dist)
		d := math.Sqrt(x*x + y*y + z*z)
		if math.Abs(d-tt.dist) > 1e-9*tt.dist {
			t.Errorf("EquatorialToCelestialCart(%f, %f, %f): |v| = %f", tt.ra, tt.dec, tt.dist, d)
		}
	}
}

func TestCelestialToEquatorialRoundTrip(t *testing.T) {
	tests := []struct {
		ra, dec, dist float64
	}{
		{0, 0, 10},
		{90, 0, 5},
		{101.287, -16.716, 8.6},
		{279.234, 38.784, 25.04},
		{213.915, 19.182, 36.7},
	}

	for _, tt := range tests {
		x, y, z := EquatorialToCelestialCart(tt.ra, tt.dec, tt.dist)
		ra, dec, dist := CelestialToEquatorial(x, y, z)
		if math.Abs(ra-tt.ra) > 1e-6 || math.Abs(dec-tt.dec) > 1e-6 || math.Abs(dist-tt.dist) > 1e-6 {
			t.Errorf("round trip (%f, %f, %f) = (%f, %f, %f)", tt.ra, tt.dec, tt.dist, ra, dec, dist)
		}
	}
}

func TestCelestialToEquatorialOrigin(t *testing.T) {
	ra, dec, dist := CelestialToEquatorial(0, 0, 0)
	if ra != 0 || dec != 0 || dist != 0 {
		t.Errorf("origin = (%f, %f, %f), want zeros", ra, dec, dist)
	}
}
