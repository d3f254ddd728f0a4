package services

// Option is one choice of a wizard select field.
type Option struct {
	Value string  `json:"value"`
	Label string  `json:"label"`
	Rate  float64 `json:"rate,omitempty"`
}

// ProjectTypeOptions lists the project types of the project step.
var ProjectTypeOptions = []Option{
	{Value: ProjectConstruction, Label: "Construction neuve"},
	{Value: ProjectRenovation, Label: "Rénovation"},
	{Value: ProjectExtension, Label: "Extension"},
}

// EcoLevelOptions lists the eco levels with their display names.
var EcoLevelOptions = []Option{
	{Value: EcoNone, Label: "Aucun"},
	{Value: EcoMinimal, Label: "Minimal"},
	{Value: EcoModerate, Label: "Modéré"},
	{Value: EcoExtensive, Label: "Étendu"},
}

// fieldCategories maps each priced select field of the wizard to its rate
// table.
var fieldCategories = map[string]Category{
	"roofingType":         CategoryRoofing,
	"insulationType":      CategoryInsulation,
	"claddingType":        CategoryFacade,
	"tileType":            CategoryFloorTile,
	"parquetType":         CategoryParquet,
	"softFloorType":       CategorySoftFloor,
	"basicPaintType":      CategoryPaint,
	"heatingType":         CategoryHeating,
	"electricalType":      CategoryElectrical,
	"plumbingType":        CategoryPlumbing,
	"airConditioningType": CategoryAirConditioning,
	"ventilationType":     CategoryVentilation,
	"kitchenType":         CategoryKitchen,
	"bathroomType":        CategoryBathroomUnit,
	"windowType":          CategoryWindow,
	"doorType":            CategoryDoor,
	"poolType":            CategoryPool,
	"annexes":             CategoryAnnex,
	"terraceType":         CategoryTerrace,
	"fenceType":           CategoryFence,
	"landscapingType":     CategoryLandscaping,
	"drivewayType":        CategoryDriveway,
	"ecoOptions":          CategoryEcoOption,
}

// FieldOptions returns the choices of every select field of the wizard,
// priced with book. Construction types depend on the project type and are
// keyed "constructionType.<projectType>".
func FieldOptions(book *RateBook) map[string][]Option {
	out := map[string][]Option{
		"projectType": ProjectTypeOptions,
		"ecoLevel":    EcoLevelOptions,
	}
	for field, c := range fieldCategories {
		out[field] = rateOptions(book, c)
	}
	for _, p := range ProjectTypeOptions {
		c, _ := baseCategory(p.Value)
		var opts []Option
		for _, o := range rateOptions(book, c) {
			if o.Value != "default" {
				opts = append(opts, o)
			}
		}
		out["constructionType."+p.Value] = opts
	}
	for _, field := range []string{"foundationType", "wallType"} {
		var opts []Option
		for _, k := range sortedKeys(structuralRule.options[field]) {
			opts = append(opts, Option{Value: k, Label: TitleCase(k)})
		}
		out[field] = opts
	}
	return out
}

func rateOptions(book *RateBook, c Category) []Option {
	types := book.Types(c)
	opts := make([]Option, 0, len(types))
	for _, typ := range types {
		opts = append(opts, Option{Value: typ, Label: TitleCase(typ), Rate: book.Rate(c, typ)})
	}
	return opts
}
