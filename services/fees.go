package services

// FeeSchedule holds the fee percentages applied to a construction total, as
// fractions (0.08 = 8 %).
type FeeSchedule struct {
	Architect         float64 `yaml:"architect" json:"architect"`
	Engineering       float64 `yaml:"engineering" json:"engineering"`
	ProjectManagement float64 `yaml:"project_management" json:"project_management"`
	OfficialFees      float64 `yaml:"official_fees" json:"official_fees"`
	Inspection        float64 `yaml:"inspection" json:"inspection"`
	Permits           float64 `yaml:"permits" json:"permits"`
	Insurance         float64 `yaml:"insurance" json:"insurance"`
	Contingency       float64 `yaml:"contingency" json:"contingency"`
	Taxes             float64 `yaml:"taxes" json:"taxes"`
	TechnicalStudies  float64 `yaml:"technical_studies" json:"technical_studies"`
	Other             float64 `yaml:"other" json:"other"`
}

// DefaultFeeSchedule returns the standard schedule: architect 8 %,
// engineering 4 %, project management 5 %, official fees 1 %, inspection 2 %,
// permits 2 %, insurance 1 %, contingency 5 %, VAT 20 %, technical studies 2 %
// and other 1 %.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		Architect:         0.08,
		Engineering:       0.04,
		ProjectManagement: 0.05,
		OfficialFees:      0.01,
		Inspection:        0.02,
		Permits:           0.02,
		Insurance:         0.01,
		Contingency:       0.05,
		Taxes:             0.20,
		TechnicalStudies:  0.02,
		Other:             0.01,
	}
}

// FeeCosts is the fee breakdown of a construction total. Amounts are not
// rounded.
type FeeCosts struct {
	Architect         float64 `json:"architect"`
	Engineering       float64 `json:"engineering"`
	ProjectManagement float64 `json:"project_management"`
	OfficialFees      float64 `json:"official_fees"`
	Inspection        float64 `json:"inspection"`
	Permits           float64 `json:"permits"`
	Insurance         float64 `json:"insurance"`
	Contingency       float64 `json:"contingency"`
	Taxes             float64 `json:"taxes"`
	TechnicalStudies  float64 `json:"technical_studies"`
	Other             float64 `json:"other"`
	Total             float64 `json:"total"`
}

// FeeLine is one named fee, used when rendering the breakdown.
type FeeLine struct {
	Label      string
	Percentage float64
	Amount     float64
}

// WithoutArchitect returns s with the architect fee removed. Quotes use it
// when the client already retains an architect.
func (s FeeSchedule) WithoutArchitect() FeeSchedule {
	s.Architect = 0
	return s
}

// forClient is s, or s without the architect fee when hasArchitect is set.
func (s FeeSchedule) forClient(hasArchitect bool) FeeSchedule {
	if hasArchitect {
		return s.WithoutArchitect()
	}
	return s
}

// Apply computes every fee as constructionTotal × percentage. A negative or
// invalid total yields zero fees.
func (s FeeSchedule) Apply(constructionTotal any) FeeCosts {
	base := nonNegative(constructionTotal)
	fees := FeeCosts{
		Architect:         base * s.Architect,
		Engineering:       base * s.Engineering,
		ProjectManagement: base * s.ProjectManagement,
		OfficialFees:      base * s.OfficialFees,
		Inspection:        base * s.Inspection,
		Permits:           base * s.Permits,
		Insurance:         base * s.Insurance,
		Contingency:       base * s.Contingency,
		Taxes:             base * s.Taxes,
		TechnicalStudies:  base * s.TechnicalStudies,
		Other:             base * s.Other,
	}
	fees.Total = fees.Sum()
	return fees
}

// CalculateFeeCosts applies the default fee schedule. The fees depend on the
// construction total only; form is not read.
func CalculateFeeCosts(constructionTotal any, form FormData) FeeCosts {
	return DefaultFeeSchedule().Apply(constructionTotal)
}

// Sum adds every named fee.
func (f FeeCosts) Sum() float64 {
	return f.Architect + f.Engineering + f.ProjectManagement + f.OfficialFees +
		f.Inspection + f.Permits + f.Insurance + f.Contingency + f.Taxes +
		f.TechnicalStudies + f.Other
}

// Lines lists the fees in display order alongside their schedule percentage.
func (f FeeCosts) Lines(s FeeSchedule) []FeeLine {
	return []FeeLine{
		{"Architecte", s.Architect, f.Architect},
		{"Bureau d'études structure", s.Engineering, f.Engineering},
		{"Maîtrise d'œuvre", s.ProjectManagement, f.ProjectManagement},
		{"Frais administratifs", s.OfficialFees, f.OfficialFees},
		{"Contrôle technique", s.Inspection, f.Inspection},
		{"Permis et autorisations", s.Permits, f.Permits},
		{"Assurance dommages-ouvrage", s.Insurance, f.Insurance},
		{"Imprévus", s.Contingency, f.Contingency},
		{"TVA", s.Taxes, f.Taxes},
		{"Études techniques", s.TechnicalStudies, f.TechnicalStudies},
		{"Divers", s.Other, f.Other},
	}
}
