package catalog

import "fmt"

// Knowledge bits record which detail fields were set explicitly rather than
// derived from the spectral class. A Modify definition must not clobber an
// explicitly set field with a derived one.
const (
	KnowRadius uint32 = 1 << iota
	KnowTexture
	KnowRotation
)

// StarDetails holds the physical and classification attributes of a star,
// separable from its catalog identity. A shared details record is a template
// used by every star of the same classification and must never be mutated;
// customization requires an exclusive clone.
type StarDetails struct {
	shared bool

	spectralType         string
	temperature          float32
	bolometricCorrection float32
	radius               float32
	texture              string
	geometry             string
	infoURL              string
	semiAxes             [3]float32
	orbit                any
	rotationModel        any
	knowledge            uint32
	visible              bool
}

// Shared reports whether this record is a shared template.
func (d *StarDetails) Shared() bool { return d.shared }

// Clone returns an exclusively owned deep copy of the record.
func (d *StarDetails) Clone() *StarDetails {
	c := *d
	c.shared = false
	return &c
}

// SpectralType returns the spectral type string, e.g. "G2V".
func (d *StarDetails) SpectralType() string { return d.spectralType }

// SetSpectralType assigns the spectral type string.
func (d *StarDetails) SetSpectralType(s string) { d.spectralType = s }

// Temperature returns the effective temperature in kelvin.
func (d *StarDetails) Temperature() float32 { return d.temperature }

// SetTemperature assigns the effective temperature.
func (d *StarDetails) SetTemperature(t float32) { d.temperature = t }

// BolometricCorrection returns the bolometric magnitude correction.
func (d *StarDetails) BolometricCorrection() float32 { return d.bolometricCorrection }

// SetBolometricCorrection assigns the bolometric magnitude correction.
func (d *StarDetails) SetBolometricCorrection(bc float32) { d.bolometricCorrection = bc }

// Radius returns the explicit radius in kilometers, or 0 when derived.
func (d *StarDetails) Radius() float32 { return d.radius }

// SetRadius assigns an explicit radius.
func (d *StarDetails) SetRadius(r float32) { d.radius = r }

// Texture returns the surface texture resource name.
func (d *StarDetails) Texture() string { return d.texture }

// SetTexture assigns the surface texture resource name.
func (d *StarDetails) SetTexture(t string) { d.texture = t }

// Geometry returns the 3-D model resource name.
func (d *StarDetails) Geometry() string { return d.geometry }

// SetGeometry assigns the 3-D model resource name.
func (d *StarDetails) SetGeometry(g string) { d.geometry = g }

// InfoURL returns the reference link for the star.
func (d *StarDetails) InfoURL() string { return d.infoURL }

// SetInfoURL assigns the reference link.
func (d *StarDetails) SetInfoURL(u string) { d.infoURL = u }

// SemiAxes returns the ellipsoid semi-axes for non-spherical stars.
func (d *StarDetails) SemiAxes() [3]float32 { return d.semiAxes }

// SetSemiAxes assigns the ellipsoid semi-axes.
func (d *StarDetails) SetSemiAxes(a [3]float32) { d.semiAxes = a }

// Orbit returns the opaque orbit handle, or nil.
func (d *StarDetails) Orbit() any { return d.orbit }

// SetOrbit assigns the opaque orbit handle.
func (d *StarDetails) SetOrbit(o any) { d.orbit = o }

// RotationModel returns the opaque rotation model handle, or nil.
func (d *StarDetails) RotationModel() any { return d.rotationModel }

// SetRotationModel assigns the opaque rotation model handle.
func (d *StarDetails) SetRotationModel(rm any) { d.rotationModel = rm }

// Knowledge returns the explicit-field bits.
func (d *StarDetails) Knowledge() uint32 { return d.knowledge }

// AddKnowledge marks detail fields as explicitly set.
func (d *StarDetails) AddKnowledge(bits uint32) { d.knowledge |= bits }

// Visible reports whether the object should be drawn at all. Barycenter
// placeholders are invisible.
func (d *StarDetails) Visible() bool { return d.visible }

// Approximate effective temperatures in kelvin by spectral class, scaled
// down slightly for later subclasses.
var classTemperatures = map[SpectralClass]float32{
	ClassO:  42000,
	ClassB:  30000,
	ClassA:  9800,
	ClassF:  7300,
	ClassG:  5800,
	ClassK:  5000,
	ClassM:  3800,
	ClassR:  3500,
	ClassS:  3000,
	ClassN:  2600,
	ClassWC: 54000,
	ClassWN: 50000,
	ClassL:  1900,
	ClassT:  1300,
	ClassC:  3000,
}

func newSharedDetails(sc StellarClass) *StarDetails {
	d := &StarDetails{
		shared:       true,
		spectralType: sc.String(),
		visible:      true,
		semiAxes:     [3]float32{1, 1, 1},
	}

	switch sc.Kind {
	case KindWhiteDwarf:
		d.temperature = 10000
	case KindNeutronStar:
		d.temperature = 600000
	case KindBlackHole:
		d.temperature = 0
	default:
		base, ok := classTemperatures[sc.Class]
		if !ok {
			base = 5000
		}
		if sc.Subclass <= 9 {
			// Subclass 0 is the hottest within a class.
			base -= base * 0.05 * float32(sc.Subclass)
		}
		d.temperature = base
	}

	return d
}

// DetailsCache builds and deduplicates shared details records. Stars with
// the same packed classification share one template.
type DetailsCache struct {
	shared     map[uint16]*StarDetails
	barycenter *StarDetails
}

// NewDetailsCache creates an empty details cache.
func NewDetailsCache() *DetailsCache {
	return &DetailsCache{shared: make(map[uint16]*StarDetails)}
}

// FromClass returns the shared details template for a classification.
func (c *DetailsCache) FromClass(sc StellarClass) *StarDetails {
	code := sc.PackV1()
	if d, ok := c.shared[code]; ok {
		return d
	}
	d := newSharedDetails(sc)
	c.shared[code] = d
	return d
}

// FromPacked returns the shared details for a 16-bit packed classification,
// or an error when the code does not decode.
func (c *DetailsCache) FromPacked(code uint16) (*StarDetails, error) {
	sc, ok := UnpackV1(code)
	if !ok {
		return nil, fmt.Errorf("bad packed spectral type 0x%04x", code)
	}
	return c.FromClass(sc), nil
}

// FromSpectralType parses a spectral type string and returns the shared
// details for it.
func (c *DetailsCache) FromSpectralType(s string) (*StarDetails, error) {
	sc, err := ParseSpectralType(s)
	if err != nil {
		return nil, err
	}
	return c.FromClass(sc), nil
}

// Barycenter returns the shared placeholder details used for massless
// barycenter objects: invisible, with no physical attributes.
func (c *DetailsCache) Barycenter() *StarDetails {
	if c.barycenter == nil {
		c.barycenter = &StarDetails{
			shared:       true,
			spectralType: "Bary",
			semiAxes:     [3]float32{1, 1, 1},
			visible:      false,
		}
	}
	return c.barycenter
}
