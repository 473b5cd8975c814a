package stardb

import (
	"fmt"
	"io"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/nightsky-software/stardb-go/internal/astro"
	"github.com/nightsky-software/stardb-go/internal/catalog"
	"github.com/nightsky-software/stardb-go/internal/logger"
	"github.com/nightsky-software/stardb-go/internal/stcl"
)

type disposition int

const (
	dispositionAdd disposition = iota
	dispositionReplace
	dispositionModify
)

// barycenterAbsMag makes barycenter placeholders faint enough to sink to
// the bottom of the octree; they are invisible anyway.
const barycenterAbsMag = 30.0

// LoadSTC reads a textual star definition file from r and applies each
// definition against the staged catalog. A structurally malformed stream
// aborts the whole file; a definition that fails validation is logged and
// skipped, and loading continues with the next one.
func (db *StarDatabase) LoadSTC(r io.Reader) error {
	if db.staging == nil {
		return fmt.Errorf("star database already finished")
	}

	tok := stcl.NewTokenizer(r)
	p := stcl.NewParser(tok)

	for {
		t := tok.NextToken()
		if t == stcl.TokenEnd {
			return nil
		}
		if t == stcl.TokenError {
			return fmt.Errorf("line %d: %s", tok.LineNumber(), tok.Err())
		}

		disp := dispositionAdd
		isBarycenter := false

		if t == stcl.TokenName {
			switch tok.Text() {
			case "Add":
				t = tok.NextToken()
			case "Replace":
				disp = dispositionReplace
				t = tok.NextToken()
			case "Modify":
				disp = dispositionModify
				t = tok.NextToken()
			}
		}

		if t == stcl.TokenName {
			switch tok.Text() {
			case "Star":
				t = tok.NextToken()
			case "Barycenter":
				isBarycenter = true
				t = tok.NextToken()
			default:
				return fmt.Errorf("line %d: unexpected object type %q", tok.LineNumber(), tok.Text())
			}
		}

		number := catalog.InvalidCatalogNumber
		if t == stcl.TokenNumber {
			v := tok.Number()
			if v < 0 || v != math.Trunc(v) || v >= float64(catalog.InvalidCatalogNumber) {
				return fmt.Errorf("line %d: bad catalog number %v", tok.LineNumber(), v)
			}
			number = catalog.CatalogNumber(v)
			t = tok.NextToken()
		}

		var nameList string
		if t == stcl.TokenString {
			nameList = tok.Text()
			t = tok.NextToken()
		}

		if t != stcl.TokenBeginGroup {
			return fmt.Errorf("line %d: expected definition body", tok.LineNumber())
		}
		tok.PushBack()

		// The body is parsed before the disposition outcome is decided;
		// a malformed body always aborts the file.
		body, err := p.ReadValue()
		if err != nil {
			return err
		}

		if err := db.applyDefinition(disp, isBarycenter, number, nameList, body.Hash(), tok.LineNumber()); err != nil {
			return err
		}
	}
}

func (db *StarDatabase) applyDefinition(disp disposition, isBarycenter bool, number catalog.CatalogNumber, nameList string, h *stcl.Hash, line int) error {
	firstName := ""
	if nameList != "" {
		firstName = strings.Split(nameList, ":")[0]
	}

	var star *catalog.Star
	switch disp {
	case dispositionAdd:
		// A name alone never targets an existing star; only an explicit
		// number merges under Add.
		if number == catalog.InvalidCatalogNumber {
			number = db.assignAutoNumber()
		} else if s, ok := db.findWhileLoading(number); ok {
			star = s
		}
	case dispositionReplace, dispositionModify:
		if number == catalog.InvalidCatalogNumber && firstName != "" {
			number = db.CatalogNumberByName(firstName)
		}
		if number != catalog.InvalidCatalogNumber {
			if s, ok := db.findWhileLoading(number); ok {
				star = s
			}
		} else if disp == dispositionReplace {
			// Replace with nothing to replace still creates the star.
			number = db.assignAutoNumber()
		}
	}

	if star == nil && disp == dispositionModify {
		logger.Get().Warn("modify of nonexistent star skipped",
			zap.Uint32("number", uint32(number)),
			zap.String("name", firstName),
			zap.Int("line", line))
		return nil
	}

	isNew := star == nil
	if isNew {
		star = &catalog.Star{}
		star.SetNumber(number)
	}

	if err := db.buildStar(star, h, isBarycenter, disp == dispositionModify, line); err != nil {
		// A bad definition only loses itself; the rest of the file still
		// loads.
		logger.Get().Warn("bad star definition skipped",
			zap.Uint32("number", uint32(number)),
			zap.Error(err))
		return nil
	}

	if isNew {
		db.staging.stcStars[number] = star
	}

	// A names string replaces every earlier name for the object.
	if nameList != "" {
		db.names.Erase(star.Number())
		for _, n := range strings.Split(nameList, ":") {
			db.names.Add(star.Number(), n)
		}
	}
	return nil
}

// buildStar populates a star from a definition body. With modify set,
// absent keys keep the star's current values; otherwise absent keys reset
// to defaults.
func (db *StarDatabase) buildStar(s *catalog.Star, h *stcl.Hash, isBarycenter, modify bool, line int) error {
	var details *catalog.StarDetails
	if st, ok := h.GetString("SpectralType"); ok {
		d, err := db.details.FromSpectralType(st)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		details = d
	} else if isBarycenter {
		details = db.details.Barycenter()
	}

	cur := s.Details()
	switch {
	case details == nil:
		if cur == nil {
			return fmt.Errorf("line %d: missing SpectralType", line)
		}
		details = cur
	case modify && cur != nil && !cur.Shared():
		// Reclassifying an already customized star mutates the exclusive
		// record in place, overwriting only the class-derived fields.
		cur.SetSpectralType(details.SpectralType())
		cur.SetTemperature(details.Temperature())
		cur.SetBolometricCorrection(details.BolometricCorrection())
		if cur.Knowledge()&catalog.KnowRadius == 0 {
			cur.SetRadius(details.Radius())
		}
		if cur.Knowledge()&catalog.KnowTexture == 0 {
			cur.SetTexture(details.Texture())
		}
		if cur.Knowledge()&catalog.KnowRotation == 0 {
			cur.SetRotationModel(details.RotationModel())
		}
		details = cur
	}
	s.SetDetails(details)

	// Shared templates are immutable; the first customization clones.
	exclusive := func() *catalog.StarDetails {
		if s.Details().Shared() {
			s.SetDetails(s.Details().Clone())
		}
		return s.Details()
	}

	if v, ok := h.GetString("Texture"); ok {
		exclusive().SetTexture(v)
		exclusive().AddKnowledge(catalog.KnowTexture)
	}
	if v, ok := h.GetString("Mesh"); ok {
		exclusive().SetGeometry(v)
	}
	if v, ok := h.GetLength("Radius", 1); ok {
		exclusive().SetRadius(float32(v))
		exclusive().AddKnowledge(catalog.KnowRadius)
	}
	if v, ok := h.GetNumber("Temperature"); ok {
		if v <= 0 {
			return fmt.Errorf("line %d: Temperature must be positive", line)
		}
		d := exclusive()
		d.SetTemperature(float32(v))
		d.SetBolometricCorrection(bolometricCorrection(v))
	}
	if v, ok := h.GetNumber("BoloCorrection"); ok {
		exclusive().SetBolometricCorrection(float32(v))
	}
	if v, ok := h.GetString("InfoURL"); ok {
		exclusive().SetInfoURL(v)
	}
	if v, ok := h.GetVector3("SemiAxes"); ok {
		exclusive().SetSemiAxes([3]float32{float32(v[0]), float32(v[1]), float32(v[2])})
	}
	if v, ok := h.Get("EllipticalOrbit"); ok {
		exclusive().SetOrbit(v)
	}
	if v, ok := h.Get("UniformRotation"); ok {
		exclusive().SetRotationModel(v)
		exclusive().AddKnowledge(catalog.KnowRotation)
	}

	baryStar, baryNumber, err := db.resolveBarycenter(h, line)
	if err != nil {
		return err
	}

	// Spherical position: Modify starts from the star's current place so a
	// partial override keeps the other components.
	var ra, dec, dist float64
	if modify {
		p := s.Position()
		ra, dec, dist = astro.CelestialToEquatorial(float64(p.X), float64(p.Y), float64(p.Z))
	}
	if v, ok := h.GetAngle("RA"); ok {
		ra = v
	} else if !modify && baryStar == nil {
		return fmt.Errorf("line %d: missing RA", line)
	}
	if v, ok := h.GetAngle("Dec"); ok {
		dec = v
	} else if !modify && baryStar == nil {
		return fmt.Errorf("line %d: missing Dec", line)
	}
	if v, ok := h.GetLength("Distance", 1); ok {
		dist = v
	} else if !modify && baryStar == nil {
		return fmt.Errorf("line %d: missing Distance", line)
	}

	if baryStar != nil {
		s.SetPosition(baryStar.Position())
	} else {
		x, y, z := astro.EquatorialToCelestialCart(ra, dec, dist)
		s.SetPosition(catalog.Vec3{X: float32(x), Y: float32(y), Z: float32(z)})
	}

	extinction, hasExtinction := h.GetNumber("Extinction")

	if isBarycenter {
		s.SetAbsoluteMagnitude(barycenterAbsMag)
	} else if v, ok := h.GetNumber("AbsMag"); ok {
		s.SetAbsoluteMagnitude(float32(v))
	} else if v, ok := h.GetNumber("AppMag"); ok {
		// The apparent magnitude is observed from the origin, so the
		// distance there must be meaningful; for orbiting stars that is
		// the barycenter's distance.
		d := float64(s.Position().Length())
		if d < 1e-5 {
			return fmt.Errorf("line %d: AppMag requires a nonzero distance", line)
		}
		s.SetAbsoluteMagnitude(float32(astro.AppToAbsMag(v-extinction, d)))
	} else if !modify {
		return fmt.Errorf("line %d: missing AbsMag or AppMag", line)
	} else if hasExtinction {
		// Extinction alone dims the star's current absolute magnitude.
		s.SetAbsoluteMagnitude(s.AbsoluteMagnitude() - float32(extinction))
	}

	if hasExtinction {
		if d := s.Position().Length(); d > 0 {
			s.SetExtinction(float32(extinction) / d)
		}
	}

	if baryStar != nil {
		db.queueBarycenter(s.Number(), baryNumber)
	}
	return nil
}

// resolveBarycenter handles an OrbitBarycenter key given as a name or a
// number. The referenced object must already be staged.
func (db *StarDatabase) resolveBarycenter(h *stcl.Hash, line int) (*catalog.Star, catalog.CatalogNumber, error) {
	number := catalog.InvalidCatalogNumber
	if v, ok := h.GetString("OrbitBarycenter"); ok {
		number = db.CatalogNumberByName(v)
		if number == catalog.InvalidCatalogNumber {
			return nil, number, fmt.Errorf("line %d: OrbitBarycenter %q does not resolve", line, v)
		}
	} else if v, ok := h.GetNumber("OrbitBarycenter"); ok {
		if v < 0 || v != math.Trunc(v) || v >= float64(catalog.InvalidCatalogNumber) {
			return nil, number, fmt.Errorf("line %d: bad OrbitBarycenter number %v", line, v)
		}
		number = catalog.CatalogNumber(v)
	} else {
		return nil, number, nil
	}

	star, ok := db.findWhileLoading(number)
	if !ok {
		return nil, number, fmt.Errorf("line %d: OrbitBarycenter %d refers to an unknown object", line, number)
	}
	return star, number, nil
}

// queueBarycenter records an orbit link for resolution at Finish, replacing
// any earlier link for the same star.
func (db *StarDatabase) queueBarycenter(star, barycenter catalog.CatalogNumber) {
	for i := range db.staging.barycenters {
		if db.staging.barycenters[i].star == star {
			db.staging.barycenters[i].barycenter = barycenter
			return
		}
	}
	db.staging.barycenters = append(db.staging.barycenters, barycenterRef{star: star, barycenter: barycenter})
}

// bolometricCorrection approximates the bolometric magnitude correction for
// an effective temperature, from a quartic fit in log10(T/10000).
func bolometricCorrection(temperature float64) float32 {
	logT := math.Log10(temperature) - 4
	bc := -8.499*math.Pow(logT, 4) + 13.421*math.Pow(logT, 3) -
		8.131*logT*logT - 3.901*logT - 0.438
	return float32(bc)
}
