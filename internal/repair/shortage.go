package repair

// ShortageInfo describes one material line whose requested quantity cannot be
// covered by current stock, or that is unknown to the catalog entirely.
// InStock is what remains available to this line after other draft lines of
// the same material took their share, never negative.
type ShortageInfo struct {
	MaterialName string  `json:"material_name"`
	Needed       float64 `json:"needed"`
	InStock      float64 `json:"in_stock"`
	Shortage     float64 `json:"shortage"`
	IsNew        bool    `json:"is_new"`
}

// Shortages recomputes the outstanding shortages of the draft against the
// live catalog. Lines of the same material share the catalog stock: a line's
// availability is the catalog stock minus what earlier lines already claimed.
// The result backs both the add-time warning and the persistent banner.
func (d *Draft) Shortages(catalog Catalog) []ShortageInfo {
	var out []ShortageInfo
	claimed := make(map[string]float64)

	for _, line := range d.Order.MaterialsUsed {
		mat, found := catalog.FindByName(line.MaterialName)
		if !found {
			out = append(out, ShortageInfo{
				MaterialName: line.MaterialName,
				Needed:       line.Quantity,
				InStock:      0,
				Shortage:     line.Quantity,
				IsNew:        true,
			})
			continue
		}

		available := mat.Stock - claimed[mat.ID]
		claimed[mat.ID] += line.Quantity
		if line.Quantity <= available {
			continue
		}
		out = append(out, ShortageInfo{
			MaterialName: mat.Name,
			Needed:       line.Quantity,
			InStock:      max(available, 0),
			Shortage:     line.Quantity - available,
		})
	}
	return out
}
