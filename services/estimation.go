package services

// Eco levels.
const (
	EcoNone      = "none"
	EcoMinimal   = "minimal"
	EcoModerate  = "moderate"
	EcoExtensive = "extensive"
)

var ecoCoefficients = map[string]float64{
	EcoNone:      0,
	EcoMinimal:   0.05,
	EcoModerate:  0.10,
	EcoExtensive: 0.20,
}

// EcoLevels lists the accepted eco levels.
var EcoLevels = []string{EcoNone, EcoMinimal, EcoModerate, EcoExtensive}

// EcoCoefficient returns the surcharge rate of an eco level. Unknown or empty
// levels carry no surcharge.
func EcoCoefficient(level string) float64 {
	return ecoCoefficients[NormalizeKey(level)]
}

// Defaults used by the aggregate estimation when the form leaves them out.
const (
	DefaultBathroomSurface = 6.0
	DefaultWindowCount     = 0.0
)

// EstimationParts is the itemised result of CalculateEstimation.
type EstimationParts struct {
	Base     float64 `json:"base"`
	Kitchen  float64 `json:"kitchen"`
	Bathroom float64 `json:"bathroom"`
	Windows  float64 `json:"windows"`
	Eco      float64 `json:"eco"`
	Total    float64 `json:"total"`
}

// CalculateEstimation is the simplified aggregate: base cost + kitchen +
// bathrooms (by area) + windows, plus the eco options when
// includeEcoSolutions is set. It uses the wizard book.
func CalculateEstimation(form FormData) float64 {
	return CalculateEstimationWith(DefaultRates(), form)
}

// CalculateEstimationWith is CalculateEstimation against an explicit book.
func CalculateEstimationWith(book *RateBook, form FormData) float64 {
	return EstimationWith(book, form).Total
}

// EstimationWith computes the aggregate estimation against book.
func EstimationWith(book *RateBook, form FormData) EstimationParts {
	var p EstimationParts
	p.Base = book.BaseCost(form.String("projectType"), form.String("constructionType"), form["surface"])

	if kitchen := form.String("kitchenType"); kitchen != "" {
		p.Kitchen = book.UnitCost(CategoryKitchen, kitchen, form.Number("kitchenCount", 1))
	}

	if bathroom := form.String("bathroomType"); bathroom != "" {
		p.Bathroom = CalculateBathroomAreaCost(
			form.Number("bathrooms", 1),
			form.Number("bathroomSurface", DefaultBathroomSurface),
			book.Rate(CategoryBathroomM2, bathroom),
		)
	}

	p.Windows = book.UnitCost(CategoryWindow, form.String("windowType"), form.Number("windowCount", DefaultWindowCount))

	if form.Bool("includeEcoSolutions") {
		p.Eco = book.EcoOptionsCost(form.Strings("ecoOptions"))
	}

	p.Total = p.Base + p.Kitchen + p.Bathroom + p.Windows + p.Eco
	return p
}
