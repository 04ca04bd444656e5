package catalog

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// cleanText collapses runs of whitespace (including no-break spaces)
// and returns the NFC form of the trimmed text
func cleanText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// parseFlag coerces a marker such as "1", "true", "yes" or "in stock"
func parseFlag(raw string) (bool, bool) {
	switch strings.ToLower(cleanText(raw)) {
	case "1", "true", "yes", "y", "on", "oui", "vrai",
		"in stock", "en stock", "available", "disponible":
		return true, true
	case "0", "false", "no", "n", "off", "non", "faux",
		"out of stock", "rupture de stock", "épuisé", "unavailable", "indisponible":
		return false, true
	}
	return false, false
}
