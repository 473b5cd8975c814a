// Package astro holds the small set of astronomical conversions needed to
// place catalog objects in rectangular space and relate apparent to absolute
// magnitudes. Distances are in light years unless noted otherwise.
package astro

import "math"

const (
	// KmPerLy is the number of kilometers in one light year.
	KmPerLy = 9460730472580.8

	// LyPerParsec converts parsecs to light years.
	LyPerParsec = 3.26167

	// J2000Obliquity is the obliquity of the ecliptic at epoch J2000, in degrees.
	J2000Obliquity = 23.4392911

	// DegPerHourAngle converts right ascension hour angles to degrees.
	DegPerHourAngle = 15.0
)

// AppToAbsMag converts an apparent magnitude observed at the given distance
// (light years) to an absolute magnitude.
func AppToAbsMag(appMag, distanceLy float64) float64 {
	return appMag + 5 - 5*math.Log10(distanceLy/LyPerParsec)
}

// AbsToAppMag converts an absolute magnitude to the apparent magnitude at the
// given distance (light years).
func AbsToAppMag(absMag, distanceLy float64) float64 {
	return absMag - 5 + 5*math.Log10(distanceLy/LyPerParsec)
}

// EquatorialToCelestialCart converts equatorial spherical coordinates
// (right ascension and declination in degrees, distance in light years) to
// rectangular coordinates in the ecliptic frame. The frame is rotated about
// the x axis by the J2000 obliquity, matching the layout used by the binary
// star catalog.
func EquatorialToCelestialCart(raDeg, decDeg, distance float64) (x, y, z float64) {
	theta := raDeg/180*math.Pi + math.Pi
	phi := (decDeg/90 - 1) * math.Pi / 2

	xe := math.Cos(theta) * math.Sin(phi) * distance
	ye := math.Cos(phi) * distance
	ze := -math.Sin(theta) * math.Sin(phi) * distance

	sinO, cosO := math.Sincos(J2000Obliquity / 180 * math.Pi)
	return xe, cosO*ye + sinO*ze, -sinO*ye + cosO*ze
}

// CelestialToEquatorial is the inverse of EquatorialToCelestialCart. It
// recovers right ascension and declination in degrees plus the distance in
// light years from a rectangular ecliptic-frame position. Used when a Modify
// definition overrides only part of a position.
func CelestialToEquatorial(x, y, z float64) (raDeg, decDeg, distance float64) {
	sinO, cosO := math.Sincos(J2000Obliquity / 180 * math.Pi)
	ye := cosO*y - sinO*z
	ze := sinO*y + cosO*z

	distance = math.Sqrt(x*x + ye*ye + ze*ze)
	if distance == 0 {
		return 0, 0, 0
	}

	// Forward mapping uses phi in [-pi, 0] with sin(phi) <= 0.
	phi := -math.Acos(clamp(ye/distance, -1, 1))
	theta := math.Atan2(ze, -x)

	raDeg = (theta - math.Pi) / math.Pi * 180
	for raDeg < 0 {
		raDeg += 360
	}
	decDeg = (phi/(math.Pi/2) + 1) * 90
	return raDeg, decDeg, distance
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
