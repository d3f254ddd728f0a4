package services

import "math"

// Ratio-of-subtotal budgets. Each lot is estimated as ratio × baseCost ×
// the product of the multipliers of the selected options, floored at
// surface × minimum rate per m².

type ratioRule struct {
	ratio        float64
	minRatePerM2 float64
	// flags maps a boolean form field to the multiplier applied when it is set.
	flags map[string]float64
	// options maps an enum form field to per-value multipliers.
	options map[string]map[string]float64
}

func (r ratioRule) modifier(form FormData) float64 {
	m := 1.0
	for _, field := range sortedKeys(r.flags) {
		if form.Bool(field) {
			m *= r.flags[field]
		}
	}
	for _, field := range sortedKeys(r.options) {
		if v, ok := r.options[field][NormalizeKey(form.String(field))]; ok {
			m *= v
		}
	}
	return m
}

func (r ratioRule) apply(form FormData, baseCost any, extra float64) float64 {
	computed := r.ratio * nonNegative(baseCost) * r.modifier(form) * extra
	floor := nonNegative(form["surface"]) * r.minRatePerM2
	return math.Max(computed, floor)
}

var (
	structuralRule = ratioRule{
		ratio:        0.25,
		minRatePerM2: 300,
		flags:        map[string]float64{"hasBasement": 1.25},
		options: map[string]map[string]float64{
			"foundationType": {"semelles-filantes": 1.0, "radier": 1.15, "pieux": 1.3},
			"wallType":       {"brique": 1.0, "parpaing": 1.0, "ossature-bois": 0.95, "beton": 1.1, "pierre": 1.3},
		},
	}
	technicalRule = ratioRule{
		ratio:        0.18,
		minRatePerM2: 120,
		flags:        map[string]float64{"hasAirConditioning": 1.15},
		options: map[string]map[string]float64{
			"heatingType":     {"pompe-a-chaleur": 1.2, "plancher-chauffant": 1.1, "chaudiere-granules": 1.1},
			"electricalType":  {"domotique": 1.25},
			"ventilationType": {"vmc-double-flux": 1.1},
		},
	}
	finishingRule = ratioRule{
		ratio:        0.22,
		minRatePerM2: 150,
		options: map[string]map[string]float64{
			"kitchenType":  {"premium": 1.4, "luxe": 1.7},
			"bathroomType": {"premium": 1.3, "luxe": 1.5},
			"parquetType":  {"massif": 1.1},
			"paintType":    {"decorative": 1.1},
		},
	}
	externalRule = ratioRule{
		ratio:        0.08,
		minRatePerM2: 40,
		flags: map[string]float64{
			"hasPool":        1.5,
			"hasJacuzzi":     1.1,
			"hasCarport":     1.1,
			"hasLandscaping": 1.2,
			"hasTerrace":     1.1,
		},
	}
)

// CalculateStructuralCosts estimates the structural lot. Each storey above the
// ground floor adds 10 %.
func CalculateStructuralCosts(form FormData, baseCost any) float64 {
	floors := form.Number("floors", 1)
	extra := 1.0
	if floors > 1 {
		extra += 0.1 * (math.Floor(floors) - 1)
	}
	return structuralRule.apply(form, baseCost, extra)
}

// CalculateTechnicalCosts estimates the technical systems lot.
func CalculateTechnicalCosts(form FormData, baseCost any) float64 {
	return technicalRule.apply(form, baseCost, 1)
}

// CalculateFinishingCosts estimates the finishing lot.
func CalculateFinishingCosts(form FormData, baseCost any) float64 {
	return finishingRule.apply(form, baseCost, 1)
}

// CalculateExternalCosts estimates exterior works.
func CalculateExternalCosts(form FormData, baseCost any) float64 {
	return externalRule.apply(form, baseCost, 1)
}

// BudgetBreakdown is the lot-level budget of a project.
type BudgetBreakdown struct {
	Base              float64  `json:"base"`
	Structural        float64  `json:"structural"`
	Technical         float64  `json:"technical"`
	Finishing         float64  `json:"finishing"`
	External          float64  `json:"external"`
	ConstructionTotal float64  `json:"construction_total"`
	EcoSurcharge      float64  `json:"eco_surcharge"`
	Fees              FeeCosts `json:"fees"`
	Total             float64  `json:"total"`
}

// CalculateBudgetBreakdown prices form with the wizard book and the default
// fee schedule.
func CalculateBudgetBreakdown(form FormData) BudgetBreakdown {
	return BudgetBreakdownWith(DefaultRates(), DefaultFeeSchedule(), form)
}

// BudgetBreakdownWith builds the lot budget: base cost, the four ratio lots,
// the eco surcharge on the construction total, then fees on the construction
// total. A client with an architect is not charged the architect fee.
func BudgetBreakdownWith(book *RateBook, schedule FeeSchedule, form FormData) BudgetBreakdown {
	schedule = schedule.forClient(form.Bool("hasArchitect"))
	base := book.BaseCost(form.String("projectType"), form.String("constructionType"), form["surface"])
	b := BudgetBreakdown{
		Base:       base,
		Structural: CalculateStructuralCosts(form, base),
		Technical:  CalculateTechnicalCosts(form, base),
		Finishing:  CalculateFinishingCosts(form, base),
		External:   CalculateExternalCosts(form, base),
	}
	b.ConstructionTotal = b.Base + b.Structural + b.Technical + b.Finishing + b.External
	b.EcoSurcharge = b.ConstructionTotal * EcoCoefficient(form.String("ecoLevel"))
	b.Fees = schedule.Apply(b.ConstructionTotal)
	b.Total = b.ConstructionTotal + b.EcoSurcharge + b.Fees.Total
	return b
}
