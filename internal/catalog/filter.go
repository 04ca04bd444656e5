package catalog

// FilterByPrice keeps records priced within [min, max]. A max of 0 or
// less means no upper bound.
func FilterByPrice(records []ProductRecord, min, max float64) []ProductRecord {
	out := make([]ProductRecord, 0, len(records))
	for _, r := range records {
		if r.Price < min {
			continue
		}
		if max > 0 && r.Price > max {
			continue
		}
		out = append(out, r)
	}
	return out
}
