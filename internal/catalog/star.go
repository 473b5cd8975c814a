// Package catalog defines the star catalog data model: catalog numbers,
// star records, stellar classification, shared detail records, and readers
// for the binary catalog and cross-index file formats.
package catalog

import "math"

// CatalogNumber is the stable numeric identity of an object in the merged
// catalog. Numbers at or below MaxHipparcosNumber are HIPPARCOS identifiers;
// larger values are packed Tycho designations.
type CatalogNumber uint32

// InvalidCatalogNumber marks a missing or unresolved identity.
const InvalidCatalogNumber CatalogNumber = 0xFFFFFFFF

// MaxHipparcosNumber is the largest catalog number printed as a HIP
// designation; anything above it unpacks as TYC.
const MaxHipparcosNumber CatalogNumber = 999999

// Vec3 is a single-precision position in the ecliptic frame, in light years.
type Vec3 struct {
	X, Y, Z float32
}

// Sub returns v - u.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{v.X - u.X, v.Y - u.Y, v.Z - u.Z}
}

// Add returns v + u.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{v.X + u.X, v.Y + u.Y, v.Z + u.Z}
}

// Dot returns the dot product of v and u.
func (v Vec3) Dot(u Vec3) float32 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Length returns |v|.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Star is a single catalog object: an identity, a position, an absolute
// magnitude, and a shared-or-exclusive details record. Barycenter links are
// attached during database finalization and are non-owning.
type Star struct {
	number     CatalogNumber
	position   Vec3
	absMag     float32
	extinction float32
	details    *StarDetails

	barycenter *Star
	orbiters   []*Star
}

// Number returns the star's catalog number.
func (s *Star) Number() CatalogNumber { return s.number }

// SetNumber assigns the star's catalog number.
func (s *Star) SetNumber(n CatalogNumber) { s.number = n }

// Position returns the star's rectangular position in light years.
func (s *Star) Position() Vec3 { return s.position }

// SetPosition assigns the star's position.
func (s *Star) SetPosition(p Vec3) { s.position = p }

// AbsoluteMagnitude returns the star's absolute magnitude.
func (s *Star) AbsoluteMagnitude() float32 { return s.absMag }

// SetAbsoluteMagnitude assigns the star's absolute magnitude.
func (s *Star) SetAbsoluteMagnitude(m float32) { s.absMag = m }

// Extinction returns the per-light-year extinction coefficient.
func (s *Star) Extinction() float32 { return s.extinction }

// SetExtinction assigns the per-light-year extinction coefficient.
func (s *Star) SetExtinction(e float32) { s.extinction = e }

// Details returns the star's details record.
func (s *Star) Details() *StarDetails { return s.details }

// SetDetails assigns the star's details record.
func (s *Star) SetDetails(d *StarDetails) { s.details = d }

// OrbitBarycenter returns the star this star orbits, or nil.
func (s *Star) OrbitBarycenter() *Star { return s.barycenter }

// SetOrbitBarycenter assigns the star this star orbits.
func (s *Star) SetOrbitBarycenter(b *Star) { s.barycenter = b }

// AddOrbitingStar records a star orbiting this one.
func (s *Star) AddOrbitingStar(o *Star) { s.orbiters = append(s.orbiters, o) }

// OrbitingStars returns the stars orbiting this one.
func (s *Star) OrbitingStars() []*Star { return s.orbiters }
