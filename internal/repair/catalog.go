package repair

import "strings"

// CatalogMaterial is the read-only view of one catalog material that the
// draft editor needs. The live catalog is owned elsewhere; drafts never
// mutate it.
type CatalogMaterial struct {
	ID            string
	Name          string
	SKU           string
	Stock         float64
	RetailPrice   float64
	PurchasePrice float64
}

// Catalog is a snapshot of the materials catalog, injected into draft
// operations so they stay deterministic and unit-testable.
type Catalog []CatalogMaterial

// FindByName looks a material up by name, case-insensitively.
func (c Catalog) FindByName(name string) (CatalogMaterial, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, m := range c {
		if strings.ToLower(m.Name) == needle {
			return m, true
		}
	}
	return CatalogMaterial{}, false
}
