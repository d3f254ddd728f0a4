package services

// Per-category cost functions. Every function is total: an unknown type rates
// at 0 and the quantity is coerced with EnsureNumber, negative quantities
// pricing as zero. The package-level functions use the wizard book; the
// RateBook methods price against an explicit version.

// Project types.
const (
	ProjectConstruction = "construction"
	ProjectRenovation   = "renovation"
	ProjectExtension    = "extension"
)

// Wall area factors and reference thicknesses.
const (
	WallHeightFactor               = 2.5
	ConstructionFacadeFactor       = 2.8
	ReferenceInsulationThicknessMM = 100.0
	ReferenceFacadeThicknessMM     = 140.0
)

// UnitCost multiplies the rate of typ in category c by quantity.
func (b *RateBook) UnitCost(c Category, typ string, quantity any) float64 {
	return b.Rate(c, typ) * nonNegative(quantity)
}

// BaseRatePerM2 returns the per-m² base rate for a project. The construction
// type selects a row of the project table and falls back to the table
// default; an unknown project type rates at 0.
func (b *RateBook) BaseRatePerM2(projectType, constructionType string) float64 {
	c, ok := baseCategory(projectType)
	if !ok {
		return 0
	}
	if constructionType != "" && b.Has(c, constructionType) {
		return b.Rate(c, constructionType)
	}
	return b.Rate(c, "default")
}

// BaseCost prices the gross floor area of the project.
func (b *RateBook) BaseCost(projectType, constructionType string, surface any) float64 {
	return b.BaseRatePerM2(projectType, constructionType) * nonNegative(surface)
}

// CalculateBaseCost prices the gross floor area with the wizard book.
func CalculateBaseCost(projectType, constructionType string, surface any) float64 {
	return DefaultRates().BaseCost(projectType, constructionType, surface)
}

// ── Roofing ────────────────────────────────────────────────────────────

// CalculateRoofingCost prices area m² of roofing material roofingType.
func CalculateRoofingCost(roofingType string, area any) float64 {
	return DefaultRates().UnitCost(CategoryRoofing, roofingType, area)
}

// ── Flooring ───────────────────────────────────────────────────────────

func CalculateFloorTileCost(tileType string, area any) float64 {
	return DefaultRates().UnitCost(CategoryFloorTile, tileType, area)
}

func CalculateParquetCost(parquetType string, area any) float64 {
	return DefaultRates().UnitCost(CategoryParquet, parquetType, area)
}

func CalculateSoftFloorCost(softFloorType string, area any) float64 {
	return DefaultRates().UnitCost(CategorySoftFloor, softFloorType, area)
}

// FlooringSplit allocates the floor surface between tiles, parquet and soft
// floors. The percentages are expected to sum to 100; that is checked when the
// flooring step is validated, not here.
type FlooringSplit struct {
	TileType            string
	TilePercentage      float64
	ParquetType         string
	ParquetPercentage   float64
	SoftFloorType       string
	SoftFloorPercentage float64
}

// FlooringSplitCost prices each share of surface with its own material.
func (b *RateBook) FlooringSplitCost(surface any, split FlooringSplit) float64 {
	area := nonNegative(surface)
	return b.UnitCost(CategoryFloorTile, split.TileType, area*share(split.TilePercentage)) +
		b.UnitCost(CategoryParquet, split.ParquetType, area*share(split.ParquetPercentage)) +
		b.UnitCost(CategorySoftFloor, split.SoftFloorType, area*share(split.SoftFloorPercentage))
}

func CalculateFlooringSplitCost(surface any, split FlooringSplit) float64 {
	return DefaultRates().FlooringSplitCost(surface, split)
}

// ── Painting ───────────────────────────────────────────────────────────

// WallArea estimates the paintable wall area of a floor surface.
func WallArea(surface any) float64 {
	return nonNegative(surface) * WallHeightFactor
}

// CalculatePaintingCost prices wallArea m² of paintType.
func CalculatePaintingCost(paintType string, wallArea any) float64 {
	return DefaultRates().UnitCost(CategoryPaint, paintType, wallArea)
}

// PaintSplit allocates the wall area between plain paint, decorative paint
// and wallpaper. BasicPaintType defaults to "standard".
type PaintSplit struct {
	BasicPaintType       string
	BasicPercentage      float64
	DecorativePercentage float64
	WallpaperPercentage  float64
}

// PaintingSplitCost weights each finish by its share of the wall area.
func (b *RateBook) PaintingSplitCost(surface any, split PaintSplit) float64 {
	wall := WallArea(surface)
	basic := split.BasicPaintType
	if basic == "" {
		basic = "standard"
	}
	return b.UnitCost(CategoryPaint, basic, wall*share(split.BasicPercentage)) +
		b.UnitCost(CategoryPaint, "decorative", wall*share(split.DecorativePercentage)) +
		b.UnitCost(CategoryPaint, "wallpaper", wall*share(split.WallpaperPercentage))
}

func CalculatePaintingSplitCost(surface any, split PaintSplit) float64 {
	return DefaultRates().PaintingSplitCost(surface, split)
}

// ── Insulation ─────────────────────────────────────────────────────────

// InsulationCost prices area m² of insulation scaled by thickness relative to
// the 100 mm reference. A missing or non-positive thickness uses the reference.
func (b *RateBook) InsulationCost(insulationType string, area, thicknessMM any) float64 {
	return b.UnitCost(CategoryInsulation, insulationType, area) *
		thicknessFactor(thicknessMM, ReferenceInsulationThicknessMM)
}

func CalculateInsulationCost(insulationType string, area, thicknessMM any) float64 {
	return DefaultRates().InsulationCost(insulationType, area, thicknessMM)
}

// ── Facade ─────────────────────────────────────────────────────────────

// FacadeWallArea estimates the facade area. New construction uses a taller
// wall factor than renovation and extension work.
func FacadeWallArea(surface any, projectType string) float64 {
	if NormalizeKey(projectType) == ProjectConstruction {
		return nonNegative(surface) * ConstructionFacadeFactor
	}
	return nonNegative(surface) * WallHeightFactor
}

// FacadeCost prices area m² of facade finish. The thickness multiplier only
// applies to external thermal insulation ("ite"), against a 140 mm reference.
func (b *RateBook) FacadeCost(facadeType string, area, thicknessMM any) float64 {
	cost := b.UnitCost(CategoryFacade, facadeType, area)
	if NormalizeKey(facadeType) == "ite" {
		cost *= thicknessFactor(thicknessMM, ReferenceFacadeThicknessMM)
	}
	return cost
}

func CalculateFacadeCost(facadeType string, area, thicknessMM any) float64 {
	return DefaultRates().FacadeCost(facadeType, area, thicknessMM)
}

// FacadeSplit allocates the facade area between render, cladding and stone.
type FacadeSplit struct {
	RenderPercentage   float64
	CladdingType       string
	CladdingPercentage float64
	StonePercentage    float64
}

// FacadeSplitCost weights each facade finish by its share of the facade area.
func (b *RateBook) FacadeSplitCost(surface any, projectType string, split FacadeSplit) float64 {
	area := FacadeWallArea(surface, projectType)
	cladding := split.CladdingType
	if cladding == "" {
		cladding = "bardage-bois"
	}
	return b.UnitCost(CategoryFacade, "enduit", area*share(split.RenderPercentage)) +
		b.UnitCost(CategoryFacade, cladding, area*share(split.CladdingPercentage)) +
		b.UnitCost(CategoryFacade, "pierre", area*share(split.StonePercentage))
}

// ── Technical systems ──────────────────────────────────────────────────

func CalculateHeatingCost(heatingType string, area any) float64 {
	return DefaultRates().UnitCost(CategoryHeating, heatingType, area)
}

func CalculateElectricalCost(electricalType string, area any) float64 {
	return DefaultRates().UnitCost(CategoryElectrical, electricalType, area)
}

func CalculatePlumbingCost(plumbingType string, area any) float64 {
	return DefaultRates().UnitCost(CategoryPlumbing, plumbingType, area)
}

func CalculateAirConditioningCost(acType string, area any) float64 {
	return DefaultRates().UnitCost(CategoryAirConditioning, acType, area)
}

func CalculateVentilationCost(ventilationType string, units any) float64 {
	return DefaultRates().UnitCost(CategoryVentilation, ventilationType, units)
}

// ── Kitchen, bathroom, joinery ─────────────────────────────────────────

func CalculateKitchenCost(kitchenType string, count any) float64 {
	return DefaultRates().UnitCost(CategoryKitchen, kitchenType, count)
}

// CalculateBathroomCost prices count bathrooms at a flat rate per bathroom
// (premium: 6000 € each). The aggregate estimation prices bathrooms by area
// instead, see CalculateBathroomAreaCost.
func CalculateBathroomCost(bathroomType string, count any) float64 {
	return DefaultRates().UnitCost(CategoryBathroomUnit, bathroomType, count)
}

// CalculateBathroomAreaCost prices bathrooms × bathroomSurface × costPerSqM.
func CalculateBathroomAreaCost(bathrooms, bathroomSurface, costPerSqM any) float64 {
	return nonNegative(bathrooms) * nonNegative(bathroomSurface) * nonNegative(costPerSqM)
}

func CalculateWindowsCost(windowType string, count any) float64 {
	return DefaultRates().UnitCost(CategoryWindow, windowType, count)
}

func CalculateDoorsCost(doorType string, count any) float64 {
	return DefaultRates().UnitCost(CategoryDoor, doorType, count)
}

// ── Exterior and landscaping ───────────────────────────────────────────

func CalculatePoolCost(poolType string, count any) float64 {
	return DefaultRates().UnitCost(CategoryPool, poolType, count)
}

// CalculateAnnexCost prices lump-sum exterior items (jacuzzi, carport, ...).
func CalculateAnnexCost(annexType string, count any) float64 {
	return DefaultRates().UnitCost(CategoryAnnex, annexType, count)
}

func CalculateTerraceCost(terraceType string, area any) float64 {
	return DefaultRates().UnitCost(CategoryTerrace, terraceType, area)
}

// CalculateFenceCost prices length linear metres of fencing.
func CalculateFenceCost(fenceType string, length any) float64 {
	return DefaultRates().UnitCost(CategoryFence, fenceType, length)
}

func CalculateLandscapingCost(landscapingType string, area any) float64 {
	return DefaultRates().UnitCost(CategoryLandscaping, landscapingType, area)
}

func CalculateDrivewayCost(drivewayType string, area any) float64 {
	return DefaultRates().UnitCost(CategoryDriveway, drivewayType, area)
}

// ── Eco options ────────────────────────────────────────────────────────

// EcoOptionsCost sums the lump-sum cost of each selected eco option. Unknown
// options cost nothing; duplicates are counted once.
func (b *RateBook) EcoOptionsCost(options []string) float64 {
	seen := make(map[string]bool, len(options))
	var total float64
	for _, o := range options {
		key := NormalizeKey(o)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		total += b.Rate(CategoryEcoOption, key)
	}
	return total
}

func CalculateEcoOptionsCost(options []string) float64 {
	return DefaultRates().EcoOptionsCost(options)
}

// share converts a percentage to a fraction, clamping to [0, 1].
func share(percentage float64) float64 {
	switch {
	case !isFinite(percentage) || percentage <= 0:
		return 0
	case percentage >= 100:
		return 1
	}
	return percentage / 100
}

func thicknessFactor(thicknessMM any, reference float64) float64 {
	t := EnsureNumber(thicknessMM)
	if t <= 0 {
		return 1
	}
	return t / reference
}
