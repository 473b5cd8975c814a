package script

import (
	"testing"

	"github.com/nightsky-software/stardb-go/internal/catalog"
)

func testStar(t *testing.T, number catalog.CatalogNumber, absMag float32, spectral string) *catalog.Star {
	t.Helper()
	sc, err := catalog.ParseSpectralType(spectral)
	if err != nil {
		t.Fatalf("ParseSpectralType(%q): %v", spectral, err)
	}
	s := &catalog.Star{}
	s.SetNumber(number)
	s.SetPosition(catalog.Vec3{X: 1, Y: 2, Z: 3})
	s.SetAbsoluteMagnitude(absMag)
	s.SetDetails(catalog.NewDetailsCache().FromClass(sc))
	return s
}

func TestFilterByMagnitude(t *testing.T) {
	f, err := NewFilterFromString(`
		stardb.accept_star = function(star)
			return star.absmag < 6.0
		end
	`)
	if err != nil {
		t.Fatalf("NewFilterFromString: %v", err)
	}
	defer f.Close()

	bright := testStar(t, 1, 1.5, "G2V")
	faint := testStar(t, 2, 11.0, "M5V")

	if ok, err := f.Accept(bright, ""); err != nil || !ok {
		t.Errorf("bright star: %v, %v", ok, err)
	}
	if ok, err := f.Accept(faint, ""); err != nil || ok {
		t.Errorf("faint star: %v, %v", ok, err)
	}
}

func TestFilterSeesFields(t *testing.T) {
	f, err := NewFilterFromString(`
		stardb.accept_star = function(star)
			return star.number == 32349
				and star.spectral == "A0V"
				and star.name == "Sirius"
				and star.x == 1 and star.y == 2 and star.z == 3
		end
	`)
	if err != nil {
		t.Fatalf("NewFilterFromString: %v", err)
	}
	defer f.Close()

	s := testStar(t, 32349, 1.43, "A0V")
	if ok, err := f.Accept(s, "Sirius"); err != nil || !ok {
		t.Errorf("Accept = %v, %v", ok, err)
	}
	if ok, _ := f.Accept(testStar(t, 5, 3, "K0V"), "Other"); ok {
		t.Error("filter accepted a star that fails every predicate")
	}
}

func TestFilterWithoutCallbackAcceptsAll(t *testing.T) {
	f, err := NewFilterFromString(`local x = 1`)
	if err != nil {
		t.Fatalf("NewFilterFromString: %v", err)
	}
	defer f.Close()

	if ok, err := f.Accept(testStar(t, 1, 15, "M9V"), ""); err != nil || !ok {
		t.Errorf("Accept = %v, %v; missing callback must accept", ok, err)
	}
}

func TestFilterErrors(t *testing.T) {
	if _, err := NewFilterFromString(`this is not lua`); err == nil {
		t.Error("bad script must fail to load")
	}

	f, err := NewFilterFromString(`
		stardb.accept_star = function(star)
			error("boom")
		end
	`)
	if err != nil {
		t.Fatalf("NewFilterFromString: %v", err)
	}
	defer f.Close()

	if _, err := f.Accept(testStar(t, 1, 1, "G2V"), ""); err == nil {
		t.Error("callback error must surface")
	}
}
