package catalog

import (
	"fmt"
	"strings"
)

// StarKind distinguishes normal stars from stellar remnants.
type StarKind uint8

const (
	KindNormalStar StarKind = iota
	KindWhiteDwarf
	KindNeutronStar
	KindBlackHole
)

// SpectralClass is the broad spectral classification letter.
type SpectralClass uint8

const (
	ClassO SpectralClass = iota
	ClassB
	ClassA
	ClassF
	ClassG
	ClassK
	ClassM
	ClassR
	ClassS
	ClassN
	ClassWC
	ClassWN
	ClassUnknown
	ClassL
	ClassT
	ClassC
)

// LuminosityClass is the Yerkes luminosity classification.
type LuminosityClass uint8

const (
	LumIa0 LuminosityClass = iota
	LumIa
	LumIb
	LumII
	LumIII
	LumIV
	LumV
	LumVI
	LumUnknown
)

// SubclassUnknown marks a spectral type with no numeric subclass.
const SubclassUnknown uint8 = 10

// StellarClass is the full classification of a star: kind, spectral class,
// numeric subclass (0-9 or SubclassUnknown), and luminosity class.
type StellarClass struct {
	Kind       StarKind
	Class      SpectralClass
	Subclass   uint8
	Luminosity LuminosityClass
}

// PackV1 encodes the classification into the 16-bit format used by the
// binary catalog: kind in the top nibble, then class, subclass, luminosity.
func (sc StellarClass) PackV1() uint16 {
	return uint16(sc.Kind)<<12 |
		uint16(sc.Class)<<8 |
		uint16(sc.Subclass)<<4 |
		uint16(sc.Luminosity)
}

// UnpackV1 decodes a 16-bit packed classification. It reports false for
// field values outside the valid ranges.
func UnpackV1(code uint16) (StellarClass, bool) {
	sc := StellarClass{
		Kind:       StarKind(code >> 12 & 0xF),
		Class:      SpectralClass(code >> 8 & 0xF),
		Subclass:   uint8(code >> 4 & 0xF),
		Luminosity: LuminosityClass(code & 0xF),
	}

	if sc.Kind > KindBlackHole || sc.Subclass > SubclassUnknown || sc.Luminosity > LumUnknown {
		return StellarClass{}, false
	}
	return sc, true
}

var classLetters = map[SpectralClass]string{
	ClassO:  "O",
	ClassB:  "B",
	ClassA:  "A",
	ClassF:  "F",
	ClassG:  "G",
	ClassK:  "K",
	ClassM:  "M",
	ClassR:  "R",
	ClassS:  "S",
	ClassN:  "N",
	ClassWC: "WC",
	ClassWN: "WN",
	ClassL:  "L",
	ClassT:  "T",
	ClassC:  "C",
}

var luminosityLabels = map[LuminosityClass]string{
	LumIa0: "I-a0",
	LumIa:  "Ia",
	LumIb:  "Ib",
	LumII:  "II",
	LumIII: "III",
	LumIV:  "IV",
	LumV:   "V",
	LumVI:  "VI",
}

// String renders the classification in conventional notation, e.g. "G2V".
func (sc StellarClass) String() string {
	switch sc.Kind {
	case KindWhiteDwarf:
		if sc.Subclass <= 9 {
			return fmt.Sprintf("WD%d", sc.Subclass)
		}
		return "WD"
	case KindNeutronStar:
		return "Q"
	case KindBlackHole:
		return "X"
	}

	letter, ok := classLetters[sc.Class]
	if !ok {
		return "?"
	}
	s := letter
	if sc.Subclass <= 9 {
		s += fmt.Sprintf("%d", sc.Subclass)
	}
	if lum, ok := luminosityLabels[sc.Luminosity]; ok {
		s += lum
	}
	return s
}

// ParseSpectralType parses a conventional spectral type string such as
// "G2V", "M5III", "WD", or "Q". Unparseable strings yield an error; a
// recognized class letter with no subclass or luminosity parses to
// SubclassUnknown / LumUnknown.
func ParseSpectralType(s string) (StellarClass, error) {
	sc := StellarClass{
		Kind:       KindNormalStar,
		Class:      ClassUnknown,
		Subclass:   SubclassUnknown,
		Luminosity: LumUnknown,
	}

	t := strings.TrimSpace(s)
	if t == "" {
		return sc, fmt.Errorf("empty spectral type")
	}

	switch {
	case t == "Q":
		sc.Kind = KindNeutronStar
		return sc, nil
	case t == "X":
		sc.Kind = KindBlackHole
		return sc, nil
	case strings.HasPrefix(t, "WD") || strings.HasPrefix(t, "D"):
		sc.Kind = KindWhiteDwarf
		rest := strings.TrimLeft(t, "WDABCOQZVX")
		if len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
			sc.Subclass = rest[0] - '0'
		}
		return sc, nil
	case strings.HasPrefix(t, "WC"):
		sc.Class = ClassWC
		t = t[2:]
	case strings.HasPrefix(t, "WN"):
		sc.Class = ClassWN
		t = t[2:]
	default:
		classes := map[byte]SpectralClass{
			'O': ClassO, 'B': ClassB, 'A': ClassA, 'F': ClassF,
			'G': ClassG, 'K': ClassK, 'M': ClassM, 'R': ClassR,
			'S': ClassS, 'N': ClassN, 'L': ClassL, 'T': ClassT,
			'C': ClassC, '?': ClassUnknown,
		}
		cl, ok := classes[t[0]]
		if !ok {
			return sc, fmt.Errorf("unrecognized spectral class %q", s)
		}
		sc.Class = cl
		t = t[1:]
	}

	if len(t) > 0 && t[0] >= '0' && t[0] <= '9' {
		sc.Subclass = t[0] - '0'
		t = t[1:]
		// Ignore decimal subclasses like "G2.5".
		if len(t) > 1 && t[0] == '.' && t[1] >= '0' && t[1] <= '9' {
			t = t[2:]
		}
	}

	t = strings.TrimLeft(t, " -")
	luminosities := []struct {
		label string
		class LuminosityClass
	}{
		// Longest labels first so "III" is not read as "II".
		{"I-a0", LumIa0}, {"Ia0", LumIa0}, {"Ia-0", LumIa0},
		{"III", LumIII}, {"Ib", LumIb}, {"Ia", LumIa},
		{"II", LumII}, {"IV", LumIV}, {"VI", LumVI},
		{"V", LumV}, {"I", LumIb},
	}
	for _, l := range luminosities {
		if strings.HasPrefix(t, l.label) {
			sc.Luminosity = l.class
			break
		}
	}

	return sc, nil
}
