package catalog

import "sort"

// CrossIndexEntry maps one secondary-catalog number to a primary identity.
type CrossIndexEntry struct {
	Secondary CatalogNumber
	Primary   CatalogNumber
}

// CrossIndex is the complete mapping table for one secondary catalog,
// sorted by secondary number. It is built once at load time and never
// mutated afterwards.
type CrossIndex []CrossIndexEntry

func (x CrossIndex) sort() {
	sort.Slice(x, func(i, j int) bool { return x[i].Secondary < x[j].Secondary })
}

// FindPrimary returns the primary identity mapped to a secondary number.
func (x CrossIndex) FindPrimary(secondary CatalogNumber) (CatalogNumber, bool) {
	i := sort.Search(len(x), func(i int) bool { return x[i].Secondary >= secondary })
	if i < len(x) && x[i].Secondary == secondary {
		return x[i].Primary, true
	}
	return InvalidCatalogNumber, false
}

// FindSecondary returns the secondary number mapped to a primary identity.
// The table is sorted by secondary number, so this is a linear scan; it is
// only used when assembling display name lists.
func (x CrossIndex) FindSecondary(primary CatalogNumber) (CatalogNumber, bool) {
	for _, e := range x {
		if e.Primary == primary {
			return e.Secondary, true
		}
	}
	return InvalidCatalogNumber, false
}
