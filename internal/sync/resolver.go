package sync

import (
	"github.com/complytools/cacsync/internal/logging"
	"github.com/complytools/cacsync/internal/oscal"
)

// CatalogResolver correlates the two identifier schemes: a CaC control id is
// the external label an OSCAL catalog control declares, so resolving a
// catalog yields the label -> OSCAL id map the sync tasks need.
//
// Load may be called repeatedly to accumulate mappings from multiple
// resolved catalogs; a later load overwrites an earlier mapping for the same
// label.
type CatalogResolver struct {
	ids   map[string]string
	order []string
}

// NewCatalogResolver returns an empty resolver.
func NewCatalogResolver() *CatalogResolver {
	return &CatalogResolver{ids: make(map[string]string)}
}

// Load records the label mapping of every control in the catalog, recursing
// through groups and sub-controls. Controls without a label are skipped; a
// catalog with no labels at all is not an error and simply adds nothing.
func (r *CatalogResolver) Load(catalog *oscal.Catalog) {
	for _, ctrl := range catalog.AllControls() {
		label := ctrl.Label()
		if label == "" {
			continue
		}
		if _, seen := r.ids[label]; !seen {
			r.order = append(r.order, label)
		}
		r.ids[label] = ctrl.ID
	}
	logging.Debug("catalog labels loaded",
		logging.Operation("resolve"),
		logging.Count(len(r.ids)),
	)
}

// OscalID returns the OSCAL control id mapped to a CaC control id.
func (r *CatalogResolver) OscalID(cacID string) (string, bool) {
	id, ok := r.ids[cacID]
	return id, ok
}

// CacIDs returns the known CaC control ids in first-seen order.
func (r *CatalogResolver) CacIDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of known mappings.
func (r *CatalogResolver) Len() int {
	return len(r.ids)
}
