package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PricingVersion selects which set of rate tables prices an estimate.
type PricingVersion string

const (
	// PricingWizard holds the rates shown in the client wizard steps. It is the
	// default book.
	PricingWizard PricingVersion = "wizard"
	// PricingCatalog holds the rates of the standalone calculation utilities
	// used by the back office.
	PricingCatalog PricingVersion = "catalog"
)

// PricingVersions lists the built-in versions.
var PricingVersions = []PricingVersion{PricingWizard, PricingCatalog}

var ErrUnknownPricingVersion = errors.New("unknown pricing version")

// ParsePricingVersion returns the version named by s. An empty string selects
// the wizard book.
func ParsePricingVersion(s string) (PricingVersion, error) {
	switch PricingVersion(strings.ToLower(strings.TrimSpace(s))) {
	case "", PricingWizard:
		return PricingWizard, nil
	case PricingCatalog:
		return PricingCatalog, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPricingVersion, s)
}

// Category identifies one rate table.
type Category string

const (
	CategoryBaseConstruction Category = "base_construction"
	CategoryBaseRenovation   Category = "base_renovation"
	CategoryBaseExtension    Category = "base_extension"
	CategoryRoofing          Category = "roofing"
	CategoryFloorTile        Category = "floor_tile"
	CategoryParquet          Category = "parquet"
	CategorySoftFloor        Category = "soft_floor"
	CategoryPaint            Category = "paint"
	CategoryInsulation       Category = "insulation"
	CategoryFacade           Category = "facade"
	CategoryHeating          Category = "heating"
	CategoryElectrical       Category = "electrical"
	CategoryPlumbing         Category = "plumbing"
	CategoryAirConditioning  Category = "air_conditioning"
	CategoryVentilation      Category = "ventilation"
	CategoryKitchen          Category = "kitchen"
	CategoryBathroomUnit     Category = "bathroom_unit"
	CategoryBathroomM2       Category = "bathroom_m2"
	CategoryWindow           Category = "window"
	CategoryDoor             Category = "door"
	CategoryPool             Category = "pool"
	CategoryAnnex            Category = "annex"
	CategoryTerrace          Category = "terrace"
	CategoryFence            Category = "fence"
	CategoryLandscaping      Category = "landscaping"
	CategoryDriveway         Category = "driveway"
	CategoryEcoOption        Category = "eco_option"
)

// CategoryInfo describes how a category is quantified.
type CategoryInfo struct {
	Label string
	Unit  string
}

// Units used on line items.
const (
	UnitSquareMeter = "m²"
	UnitEach        = "u"
	UnitLinearMeter = "ml"
	UnitLumpSum     = "forfait"
)

var categoryInfo = map[Category]CategoryInfo{
	CategoryBaseConstruction: {"Gros œuvre (construction)", UnitSquareMeter},
	CategoryBaseRenovation:   {"Rénovation", UnitSquareMeter},
	CategoryBaseExtension:    {"Extension", UnitSquareMeter},
	CategoryRoofing:          {"Couverture", UnitSquareMeter},
	CategoryFloorTile:        {"Carrelage", UnitSquareMeter},
	CategoryParquet:          {"Parquet", UnitSquareMeter},
	CategorySoftFloor:        {"Sols souples", UnitSquareMeter},
	CategoryPaint:            {"Peinture", UnitSquareMeter},
	CategoryInsulation:       {"Isolation", UnitSquareMeter},
	CategoryFacade:           {"Façade", UnitSquareMeter},
	CategoryHeating:          {"Chauffage", UnitSquareMeter},
	CategoryElectrical:       {"Électricité", UnitSquareMeter},
	CategoryPlumbing:         {"Plomberie", UnitSquareMeter},
	CategoryAirConditioning:  {"Climatisation", UnitSquareMeter},
	CategoryVentilation:      {"Ventilation", UnitEach},
	CategoryKitchen:          {"Cuisine", UnitEach},
	CategoryBathroomUnit:     {"Salle de bain", UnitEach},
	CategoryBathroomM2:       {"Salle de bain (surface)", UnitSquareMeter},
	CategoryWindow:           {"Menuiseries", UnitEach},
	CategoryDoor:             {"Portes", UnitEach},
	CategoryPool:             {"Piscine", UnitEach},
	CategoryAnnex:            {"Aménagements extérieurs", UnitLumpSum},
	CategoryTerrace:          {"Terrasse", UnitSquareMeter},
	CategoryFence:            {"Clôture", UnitLinearMeter},
	CategoryLandscaping:      {"Espaces verts", UnitSquareMeter},
	CategoryDriveway:         {"Allée", UnitSquareMeter},
	CategoryEcoOption:        {"Solutions écologiques", UnitEach},
}

// Lots priced as a share of the base cost rather than from a rate table.
const (
	CategoryStructural Category = "structural"
)

var lotInfo = map[Category]CategoryInfo{
	CategoryStructural: {"Structure et fondations", UnitLumpSum},
}

// Info returns the label and unit of c. Unknown categories get their raw name.
func (c Category) Info() CategoryInfo {
	if info, ok := categoryInfo[c]; ok {
		return info
	}
	if info, ok := lotInfo[c]; ok {
		return info
	}
	return CategoryInfo{Label: string(c), Unit: UnitEach}
}

// Known reports whether c is a priced category.
func (c Category) Known() bool {
	_, ok := categoryInfo[c]
	return ok
}

// Categories returns every known category in lexical order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryInfo))
	for c := range categoryInfo {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RateTable maps a normalised type key to a cost per unit.
type RateTable map[string]float64

// RateBook groups the rate tables of one pricing version. A RateBook is
// read-only once built; WithOverrides returns a copy.
type RateBook struct {
	Version PricingVersion
	tables  map[Category]RateTable
}

// RateOverride replaces a single rate of a version.
type RateOverride struct {
	Version  PricingVersion `json:"pricing_version"`
	Category Category       `json:"category"`
	Type     string         `json:"type"`
	Rate     float64        `json:"rate"`
}

var builtinBooks = map[PricingVersion]*RateBook{
	PricingWizard:  newRateBook(PricingWizard, wizardTables),
	PricingCatalog: newRateBook(PricingCatalog, catalogTables()),
}

func newRateBook(version PricingVersion, tables map[Category]RateTable) *RateBook {
	b := &RateBook{Version: version, tables: make(map[Category]RateTable, len(tables))}
	for c, t := range tables {
		nt := make(RateTable, len(t))
		for k, v := range t {
			nt[NormalizeKey(k)] = v
		}
		b.tables[c] = nt
	}
	return b
}

// RateBookFor returns the built-in book of version.
func RateBookFor(version PricingVersion) (*RateBook, error) {
	b, ok := builtinBooks[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPricingVersion, version)
	}
	return b, nil
}

// DefaultRates returns the wizard book.
func DefaultRates() *RateBook {
	return builtinBooks[PricingWizard]
}

// Rate looks up the per-unit rate of typ in category c. Unknown categories and
// types rate at 0.
func (b *RateBook) Rate(c Category, typ string) float64 {
	if b == nil {
		return 0
	}
	return b.tables[c][NormalizeKey(typ)]
}

// Has reports whether typ has a rate in category c.
func (b *RateBook) Has(c Category, typ string) bool {
	if b == nil {
		return false
	}
	_, ok := b.tables[c][NormalizeKey(typ)]
	return ok
}

// Types lists the keys of category c in lexical order.
func (b *RateBook) Types(c Category) []string {
	if b == nil {
		return nil
	}
	return sortedKeys(b.tables[c])
}

// Table returns a copy of category c's table.
func (b *RateBook) Table(c Category) RateTable {
	out := RateTable{}
	if b == nil {
		return out
	}
	for k, v := range b.tables[c] {
		out[k] = v
	}
	return out
}

// WithOverrides returns a copy of b with the overrides of b's version applied.
// Overrides for other versions, unknown categories or negative rates are
// ignored.
func (b *RateBook) WithOverrides(overrides []RateOverride) *RateBook {
	out := &RateBook{Version: b.Version, tables: make(map[Category]RateTable, len(b.tables))}
	for c, t := range b.tables {
		out.tables[c] = make(RateTable, len(t))
		for k, v := range t {
			out.tables[c][k] = v
		}
	}
	for _, o := range overrides {
		if o.Version != b.Version || !o.Category.Known() || o.Rate < 0 || !isFinite(o.Rate) {
			continue
		}
		key := NormalizeKey(o.Type)
		if key == "" {
			continue
		}
		if out.tables[o.Category] == nil {
			out.tables[o.Category] = RateTable{}
		}
		out.tables[o.Category][key] = o.Rate
	}
	return out
}

// RateDiscrepancy records a (category, type) priced differently by two books.
// A side missing the type reports Missing on that side.
type RateDiscrepancy struct {
	Category     Category `json:"category"`
	Type         string   `json:"type"`
	Left         float64  `json:"left"`
	Right        float64  `json:"right"`
	MissingLeft  bool     `json:"missing_left,omitempty"`
	MissingRight bool     `json:"missing_right,omitempty"`
}

// CompareRateBooks lists every rate that differs between a and b, ordered by
// category then type.
func CompareRateBooks(a, b *RateBook) []RateDiscrepancy {
	if a == nil {
		a = &RateBook{}
	}
	if b == nil {
		b = &RateBook{}
	}
	var out []RateDiscrepancy
	for _, c := range Categories() {
		keys := map[string]struct{}{}
		for k := range a.tables[c] {
			keys[k] = struct{}{}
		}
		for k := range b.tables[c] {
			keys[k] = struct{}{}
		}
		for _, k := range sortedKeys(keys) {
			left, inLeft := a.tables[c][k]
			right, inRight := b.tables[c][k]
			if inLeft && inRight && left == right {
				continue
			}
			out = append(out, RateDiscrepancy{
				Category:     c,
				Type:         k,
				Left:         left,
				Right:        right,
				MissingLeft:  !inLeft,
				MissingRight: !inRight,
			})
		}
	}
	return out
}

// Inconsistency documents a pricing rule that differs between two code paths
// and is kept as-is rather than reconciled.
type Inconsistency struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// KnownInconsistencies lists the formula-level divergences the engine keeps.
func KnownInconsistencies() []Inconsistency {
	return []Inconsistency{
		{
			Key:         "wall-area-factor",
			Description: fmt.Sprintf("painting wall area uses surface × %.1f; the facade uses × %.1f for new construction", WallHeightFactor, ConstructionFacadeFactor),
		},
		{
			Key:         "bathroom-formula",
			Description: "bathroom cost is a flat rate per bathroom in the wizard steps and bathrooms × surface × rate per m² in the estimation aggregate",
		},
		{
			Key:         "dual-aggregation",
			Description: "the step ledger total and CalculateEstimation price overlapping scopes and are not reconciled",
		},
	}
}

// NormalizeKey folds a type name to its table key: accents removed,
// lowercase, spaces and underscores replaced by hyphens.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", "-", " ", "-", "'", "-").Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}
