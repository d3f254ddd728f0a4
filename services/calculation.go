package services

// Calculation is the stateless pricing of a whole wizard form.
type Calculation struct {
	PricingVersion  PricingVersion  `json:"pricing_version"`
	Estimation      EstimationParts `json:"estimation"`
	Breakdown       BudgetBreakdown `json:"breakdown"`
	Fees            FeeCosts        `json:"fees"`
	EcoLevel        string          `json:"eco_level"`
	EcoCoefficient  float64         `json:"eco_coefficient"`
	EstimationWords string          `json:"estimation_words"`
}

// Calculate prices form against book with the given fee schedule. Fees are
// charged on the aggregate estimation, without the architect fee when the
// form says the client has one.
func Calculate(book *RateBook, schedule FeeSchedule, form FormData) Calculation {
	schedule = schedule.forClient(form.Bool("hasArchitect"))
	estimation := EstimationWith(book, form)
	eco := NormalizeKey(form.String("ecoLevel"))
	return Calculation{
		PricingVersion:  book.Version,
		Estimation:      estimation,
		Breakdown:       BudgetBreakdownWith(book, schedule, form),
		Fees:            schedule.Apply(estimation.Total),
		EcoLevel:        eco,
		EcoCoefficient:  EcoCoefficient(eco),
		EstimationWords: AmountToWords(estimation.Total),
	}
}
