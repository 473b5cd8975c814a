// Package stardb assembles star catalogs from binary files, cross-index
// files, and textual definitions into one queryable database. Loading is a
// staged lifecycle: any number of load calls, then a single Finish that
// resolves deferred references, builds the spatial index, and freezes the
// database for queries.
package stardb

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nightsky-software/stardb-go/internal/catalog"
	"github.com/nightsky-software/stardb-go/internal/logger"
	"github.com/nightsky-software/stardb-go/internal/names"
	"github.com/nightsky-software/stardb-go/internal/octree"
)

// Catalog identifies a secondary catalog with its own cross-index table.
type Catalog int

const (
	HenryDraper Catalog = iota
	Gliese
	SAO
	MaxCatalog
)

// String returns the catalog's conventional abbreviation.
func (c Catalog) String() string {
	switch c {
	case HenryDraper:
		return "HD"
	case Gliese:
		return "Gliese"
	case SAO:
		return "SAO"
	default:
		return fmt.Sprintf("catalog(%d)", int(c))
	}
}

// ParseCatalog maps a manifest key to a Catalog.
func ParseCatalog(s string) (Catalog, error) {
	switch strings.ToUpper(s) {
	case "HD":
		return HenryDraper, nil
	case "GLIESE":
		return Gliese, nil
	case "SAO":
		return SAO, nil
	default:
		return 0, fmt.Errorf("unknown cross-index catalog %q", s)
	}
}

const (
	// The octree root cell is offset from the origin so the solar
	// neighborhood does not straddle the first octant split.
	rootCenterCoord = 1000.0

	// firstAutoNumber is the catalog number handed to the first definition
	// that arrives without one; later assignments count down from it.
	firstAutoNumber = catalog.InvalidCatalogNumber - 1
)

type barycenterRef struct {
	star       catalog.CatalogNumber
	barycenter catalog.CatalogNumber
}

// staging holds load-time state. It exists only between construction and
// Finish; queries never touch it.
type staging struct {
	// Stars from binary catalogs, with a by-number index kept sorted so
	// later definition files can target them.
	binStars []*catalog.Star

	// Stars created by definition files, keyed by number.
	stcStars map[catalog.CatalogNumber]*catalog.Star

	// Orbit references recorded during loading, linked at Finish.
	barycenters []barycenterRef

	nextAuto catalog.CatalogNumber
}

// StarDatabase is the merged star catalog: a contiguous star array owned by
// the spatial index, an identity index over it, per-catalog cross-index
// tables, and a name resolver.
type StarDatabase struct {
	stars        []catalog.Star
	tree         *octree.Tree
	index        []*catalog.Star
	crossIndexes [MaxCatalog]catalog.CrossIndex
	names        names.Resolver
	details      *catalog.DetailsCache

	staging *staging
}

// New creates an empty database in the loading state. The resolver may be
// pre-populated with star names.
func New(resolver names.Resolver) *StarDatabase {
	return &StarDatabase{
		names:   resolver,
		details: catalog.NewDetailsCache(),
		staging: &staging{
			stcStars: make(map[catalog.CatalogNumber]*catalog.Star),
			nextAuto: firstAutoNumber,
		},
	}
}

// Names returns the database's name resolver.
func (db *StarDatabase) Names() names.Resolver { return db.names }

// Len returns the number of stars after Finish.
func (db *StarDatabase) Len() int { return len(db.stars) }

// At returns the star at array position i.
func (db *StarDatabase) At(i int) *catalog.Star { return &db.stars[i] }

// LoadBinary reads a binary star catalog from r and stages its stars. A
// decode error discards the whole file.
func (db *StarDatabase) LoadBinary(r io.Reader) error {
	if db.staging == nil {
		return fmt.Errorf("star database already finished")
	}

	stars, err := catalog.ReadStars(r, db.details)
	if err != nil {
		return err
	}

	db.staging.binStars = append(db.staging.binStars, stars...)
	sort.Slice(db.staging.binStars, func(i, j int) bool {
		return db.staging.binStars[i].Number() < db.staging.binStars[j].Number()
	})

	logger.Get().Info("loaded binary star catalog",
		zap.Int("stars", len(stars)),
		zap.Int("staged", len(db.staging.binStars)))
	return nil
}

// LoadCrossIndex reads the cross-index table for a secondary catalog from r.
// Loading the same catalog twice replaces the earlier table.
func (db *StarDatabase) LoadCrossIndex(cat Catalog, r io.Reader) error {
	if db.staging == nil {
		return fmt.Errorf("star database already finished")
	}
	if cat < 0 || cat >= MaxCatalog {
		return fmt.Errorf("cross-index catalog out of range: %d", cat)
	}

	xindex, err := catalog.ReadCrossIndex(r)
	if err != nil {
		return fmt.Errorf("%s cross index: %w", cat, err)
	}

	db.crossIndexes[cat] = xindex
	logger.Get().Info("loaded cross index",
		zap.Stringer("catalog", cat),
		zap.Int("entries", len(xindex)))
	return nil
}

// findWhileLoading locates a staged star by number during loading, before
// the final index exists.
func (db *StarDatabase) findWhileLoading(n catalog.CatalogNumber) (*catalog.Star, bool) {
	st := db.staging
	i := sort.Search(len(st.binStars), func(i int) bool {
		return st.binStars[i].Number() >= n
	})
	if i < len(st.binStars) && st.binStars[i].Number() == n {
		return st.binStars[i], true
	}
	if s, ok := st.stcStars[n]; ok {
		return s, true
	}
	return nil, false
}

// assignAutoNumber hands out the next synthetic catalog number, counting
// down from just below InvalidCatalogNumber to stay clear of real
// designations.
func (db *StarDatabase) assignAutoNumber() catalog.CatalogNumber {
	n := db.staging.nextAuto
	db.staging.nextAuto--
	return n
}

// Finish resolves deferred barycenter references, builds the spatial index,
// and freezes the database. It may be called once; the load methods reject
// further calls afterwards.
func (db *StarDatabase) Finish() error {
	if db.staging == nil {
		return fmt.Errorf("star database already finished")
	}
	st := db.staging

	all := make([]*catalog.Star, 0, len(st.binStars)+len(st.stcStars))
	all = append(all, st.binStars...)
	for _, s := range st.stcStars {
		all = append(all, s)
	}

	center := catalog.Vec3{X: rootCenterCoord, Y: rootCenterCoord, Z: rootCenterCoord}
	db.tree = octree.Build(all, center, octree.DefaultRootSize)
	db.stars = db.tree.Stars

	db.index = make([]*catalog.Star, len(db.stars))
	for i := range db.stars {
		db.index[i] = &db.stars[i]
	}
	sort.Slice(db.index, func(i, j int) bool {
		return db.index[i].Number() < db.index[j].Number()
	})

	var unresolved []string
	for _, ref := range st.barycenters {
		star, okS := db.Find(ref.star)
		bary, okB := db.Find(ref.barycenter)
		if !okS || !okB {
			unresolved = append(unresolved,
				fmt.Sprintf("star %d orbiting %d", ref.star, ref.barycenter))
			continue
		}
		star.SetOrbitBarycenter(bary)
		bary.AddOrbitingStar(star)
	}

	db.staging = nil

	if len(unresolved) > 0 {
		return fmt.Errorf("unresolved barycenters: %s", strings.Join(unresolved, "; "))
	}

	logger.Get().Info("star database finished",
		zap.Int("stars", len(db.stars)),
		zap.Int("octree_nodes", db.tree.CountNodes()))
	return nil
}

// Find returns the star with the given catalog number. Valid after Finish.
func (db *StarDatabase) Find(n catalog.CatalogNumber) (*catalog.Star, bool) {
	i := sort.Search(len(db.index), func(i int) bool {
		return db.index[i].Number() >= n
	})
	if i < len(db.index) && db.index[i].Number() == n {
		return db.index[i], true
	}
	return nil, false
}

// FindByName resolves a name or designation and returns the star it
// identifies.
func (db *StarDatabase) FindByName(name string) (*catalog.Star, bool) {
	n := db.CatalogNumberByName(name)
	if n == catalog.InvalidCatalogNumber {
		return nil, false
	}
	return db.Find(n)
}

// CatalogNumberByName resolves a display name or a designation string to a
// catalog number. Lookups are tried in order: the name resolver, a "#"
// literal number, a HIP designation, a packed TYC designation, then HD and
// SAO designations through the cross-index tables. Returns
// InvalidCatalogNumber when nothing matches.
func (db *StarDatabase) CatalogNumberByName(name string) catalog.CatalogNumber {
	if n, ok := db.names.Resolve(name); ok {
		return n
	}

	if rest, ok := strings.CutPrefix(name, "#"); ok {
		if n, ok := parseCatalogNumber(rest); ok {
			return n
		}
		return catalog.InvalidCatalogNumber
	}

	if rest, ok := strings.CutPrefix(name, "HIP "); ok {
		if n, ok := parseCatalogNumber(rest); ok {
			return n
		}
		return catalog.InvalidCatalogNumber
	}

	if rest, ok := strings.CutPrefix(name, "TYC "); ok {
		if n, ok := parseTycho(rest); ok {
			return n
		}
		return catalog.InvalidCatalogNumber
	}

	if rest, ok := strings.CutPrefix(name, "HD "); ok {
		if hd, ok := parseCatalogNumber(rest); ok {
			if n, ok := db.crossIndexes[HenryDraper].FindPrimary(hd); ok {
				return n
			}
		}
		return catalog.InvalidCatalogNumber
	}

	if rest, ok := strings.CutPrefix(name, "SAO "); ok {
		if sao, ok := parseCatalogNumber(rest); ok {
			if n, ok := db.crossIndexes[SAO].FindPrimary(sao); ok {
				return n
			}
		}
	}

	return catalog.InvalidCatalogNumber
}

// SearchCrossIndex maps a secondary-catalog number to the primary identity.
func (db *StarDatabase) SearchCrossIndex(cat Catalog, secondary catalog.CatalogNumber) (catalog.CatalogNumber, bool) {
	if cat < 0 || cat >= MaxCatalog {
		return catalog.InvalidCatalogNumber, false
	}
	return db.crossIndexes[cat].FindPrimary(secondary)
}

// SecondaryNumber maps a primary identity back to its number in a secondary
// catalog.
func (db *StarDatabase) SecondaryNumber(cat Catalog, primary catalog.CatalogNumber) (catalog.CatalogNumber, bool) {
	if cat < 0 || cat >= MaxCatalog {
		return catalog.InvalidCatalogNumber, false
	}
	return db.crossIndexes[cat].FindSecondary(primary)
}

// StarName returns the preferred display name for a star: its first
// registered name, or its catalog designation.
func (db *StarDatabase) StarName(s *catalog.Star) string {
	if ns := db.names.Names(s.Number()); len(ns) > 0 {
		return ns[0]
	}
	return FormatCatalogNumber(s.Number())
}

// StarNameList returns up to max names and designations for a star, joined
// by " / ": registered names first, then the HIP or TYC designation, then HD
// and SAO numbers from the cross indexes.
func (db *StarDatabase) StarNameList(s *catalog.Star, max int) string {
	var parts []string
	for _, n := range db.names.Names(s.Number()) {
		if len(parts) >= max {
			break
		}
		parts = append(parts, n)
	}

	if len(parts) < max && s.Number() != catalog.InvalidCatalogNumber {
		parts = append(parts, FormatCatalogNumber(s.Number()))
	}
	if len(parts) < max {
		if hd, ok := db.SecondaryNumber(HenryDraper, s.Number()); ok {
			parts = append(parts, fmt.Sprintf("HD %d", hd))
		}
	}
	if len(parts) < max {
		if sao, ok := db.SecondaryNumber(SAO, s.Number()); ok {
			parts = append(parts, fmt.Sprintf("SAO %d", sao))
		}
	}

	return strings.Join(parts, " / ")
}

// Completions returns registered names beginning with prefix.
func (db *StarDatabase) Completions(prefix string) []string {
	return db.names.Completions(prefix)
}

// FindVisibleStars emits every star inside the view frustum at or brighter
// than limitingMag. Valid after Finish.
func (db *StarDatabase) FindVisibleStars(pos catalog.Vec3, orientation octree.Quat, fovY, aspect, limitingMag float32, emit func(*catalog.Star)) {
	if db.tree == nil {
		return
	}
	db.tree.ProcessVisibleStars(pos, orientation, fovY, aspect, limitingMag, emit)
}

// FindCloseStars emits every star within radius light years of pos. Valid
// after Finish.
func (db *StarDatabase) FindCloseStars(pos catalog.Vec3, radius float32, emit func(*catalog.Star)) {
	if db.tree == nil {
		return
	}
	db.tree.ProcessCloseStars(pos, radius, emit)
}

// FormatCatalogNumber renders a catalog number as its designation: "HIP n"
// for numbers in HIPPARCOS range, otherwise the unpacked "TYC a-b-c" form.
func FormatCatalogNumber(n catalog.CatalogNumber) string {
	if n <= catalog.MaxHipparcosNumber {
		return fmt.Sprintf("HIP %d", n)
	}
	tyc3 := n / 1000000000
	n -= tyc3 * 1000000000
	tyc2 := n / 10000
	tyc1 := n % 10000
	return fmt.Sprintf("TYC %d-%d-%d", tyc1, tyc2, tyc3)
}

func parseCatalogNumber(s string) (catalog.CatalogNumber, bool) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || catalog.CatalogNumber(v) == catalog.InvalidCatalogNumber {
		return catalog.InvalidCatalogNumber, false
	}
	return catalog.CatalogNumber(v), true
}

// parseTycho packs a "tyc1-tyc2-tyc3" designation into a single catalog
// number: tyc3*1e9 + tyc2*1e4 + tyc1.
func parseTycho(s string) (catalog.CatalogNumber, bool) {
	fields := strings.Split(s, "-")
	if len(fields) != 3 {
		return catalog.InvalidCatalogNumber, false
	}
	var tyc [3]uint64
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return catalog.InvalidCatalogNumber, false
		}
		tyc[i] = v
	}
	packed := tyc[2]*1000000000 + tyc[1]*10000 + tyc[0]
	if packed > uint64(catalog.InvalidCatalogNumber) {
		return catalog.InvalidCatalogNumber, false
	}
	return catalog.CatalogNumber(packed), true
}
