package api

import "strings"

// KnownCategories is the fixed navigation set, in display order.
var KnownCategories = []string{
	"Kolonial",
	"Drikkevarer",
	"Mejeri",
	"Baby og småbørn",
	"Personlig pleje",
	"Husholdning",
	"Frugt & grønt",
	"Nemt & hurtigt",
	"Køl",
	"Frost",
	"Ost m.v.",
	"Brød & Bavinchi",
	"Kød, fisk & fjerkræ",
	"Kiosk",
	"Slik",
}

// categorySlugs maps ASCII URL names to display names.
var categorySlugs = map[string]string{
	"Kolonial":              "Kolonial",
	"Drikkevarer":           "Drikkevarer",
	"Mejeri":                "Mejeri",
	"Baby_og_smaaboern":     "Baby og småbørn",
	"Personlig_pleje":       "Personlig pleje",
	"Husholdning":           "Husholdning",
	"Frugt_og_groent":       "Frugt & grønt",
	"Nemt_og_hurtigt":       "Nemt & hurtigt",
	"Koel":                  "Køl",
	"Frost":                 "Frost",
	"Ost_mv":                "Ost m.v.",
	"Broed_og_Bavinchi":     "Brød & Bavinchi",
	"Koed_fisk_og_fjerkrae": "Kød, fisk & fjerkræ",
	"Kiosk":                 "Kiosk",
	"Slik":                  "Slik",
}

// ResolveCategory accepts a display name or its slug, with an optional
// .html suffix, and returns the display name.
func ResolveCategory(name string) (string, bool) {
	name = strings.TrimSuffix(name, ".html")
	if display, ok := categorySlugs[name]; ok {
		return display, true
	}
	for _, known := range KnownCategories {
		if known == name {
			return known, true
		}
	}
	return "", false
}

// CategorySlug is the inverse of ResolveCategory for known categories.
func CategorySlug(display string) string {
	for slug, name := range categorySlugs {
		if name == display {
			return slug
		}
	}
	return ""
}
