package catalog

import "testing"

func TestPackUnpackV1(t *testing.T) {
	tests := []StellarClass{
		{Kind: KindNormalStar, Class: ClassG, Subclass: 2, Luminosity: LumV},
		{Kind: KindNormalStar, Class: ClassO, Subclass: 0, Luminosity: LumIa},
		{Kind: KindNormalStar, Class: ClassM, Subclass: 9, Luminosity: LumUnknown},
		{Kind: KindNormalStar, Class: ClassWC, Subclass: SubclassUnknown, Luminosity: LumUnknown},
		{Kind: KindWhiteDwarf, Class: ClassUnknown, Subclass: 4, Luminosity: LumUnknown},
		{Kind: KindNeutronStar, Class: ClassUnknown, Subclass: SubclassUnknown, Luminosity: LumUnknown},
	}

	for _, sc := range tests {
		t.Run(sc.String(), func(t *testing.T) {
			got, ok := UnpackV1(sc.PackV1())
			if !ok {
				t.Fatalf("UnpackV1(%#04x) rejected", sc.PackV1())
			}
			if got != sc {
				t.Errorf("round trip = %+v, want %+v", got, sc)
			}
		})
	}
}

func TestUnpackV1Invalid(t *testing.T) {
	tests := []struct {
		name string
		code uint16
	}{
		{"bad subclass", uint16(ClassG)<<8 | 0xF<<4 | uint16(LumV)},
		{"bad luminosity", uint16(ClassG)<<8 | 2<<4 | 0xF},
		{"all bits", 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := UnpackV1(tt.code); ok {
				t.Errorf("UnpackV1(%#04x) accepted, want reject", tt.code)
			}
		})
	}
}

func TestParseSpectralType(t *testing.T) {
	tests := []struct {
		input string
		want  StellarClass
	}{
		{"G2V", StellarClass{KindNormalStar, ClassG, 2, LumV}},
		{"M5III", StellarClass{KindNormalStar, ClassM, 5, LumIII}},
		{"A0Ia", StellarClass{KindNormalStar, ClassA, 0, LumIa}},
		{"K", StellarClass{KindNormalStar, ClassK, SubclassUnknown, LumUnknown}},
		{"B8", StellarClass{KindNormalStar, ClassB, 8, LumUnknown}},
		{"WC7", StellarClass{KindNormalStar, ClassWC, 7, LumUnknown}},
		{"Q", StellarClass{KindNeutronStar, ClassUnknown, SubclassUnknown, LumUnknown}},
		{"X", StellarClass{KindBlackHole, ClassUnknown, SubclassUnknown, LumUnknown}},
		{"F5IV", StellarClass{KindNormalStar, ClassF, 5, LumIV}},
		{"G2.5V", StellarClass{KindNormalStar, ClassG, 2, LumV}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSpectralType(tt.input)
			if err != nil {
				t.Fatalf("ParseSpectralType(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSpectralType(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSpectralTypeWhiteDwarf(t *testing.T) {
	got, err := ParseSpectralType("WD")
	if err != nil {
		t.Fatalf("ParseSpectralType(WD): %v", err)
	}
	if got.Kind != KindWhiteDwarf {
		t.Errorf("kind = %v, want white dwarf", got.Kind)
	}
}

func TestParseSpectralTypeInvalid(t *testing.T) {
	for _, input := range []string{"", "  ", "z9"} {
		if _, err := ParseSpectralType(input); err == nil {
			t.Errorf("ParseSpectralType(%q) succeeded, want error", input)
		}
	}
}

func TestDetailsCacheSharing(t *testing.T) {
	cache := NewDetailsCache()

	a, err := cache.FromSpectralType("G2V")
	if err != nil {
		t.Fatal(err)
	}
	b, err := cache.FromSpectralType("G2V")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("equal spectral types must share one details record")
	}
	if !a.Shared() {
		t.Error("cache details must be marked shared")
	}

	clone := a.Clone()
	if clone.Shared() {
		t.Error("clone must be exclusive")
	}
	clone.SetTexture("custom.jpg")
	if a.Texture() != "" {
		t.Error("mutating a clone must not touch the shared template")
	}
}

func TestBarycenterDetails(t *testing.T) {
	cache := NewDetailsCache()
	d := cache.Barycenter()
	if d.Visible() {
		t.Error("barycenter details must be invisible")
	}
	if d != cache.Barycenter() {
		t.Error("barycenter details must be a single shared record")
	}
}
