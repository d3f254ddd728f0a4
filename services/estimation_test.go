package services

import (
	"math"
	"testing"
)

func estimationForm() FormData {
	return FormData{
		"projectType":         "construction",
		"surface":             100,
		"kitchenType":         "standard",
		"bathroomType":        "premium",
		"bathrooms":           2,
		"windowType":          "pvc",
		"windowCount":         8,
		"includeEcoSolutions": true,
		"ecoOptions":          []any{"panneaux-solaires"},
		"ecoLevel":            "moderate",
	}
}

func TestEstimationWith(t *testing.T) {
	p := EstimationWith(DefaultRates(), estimationForm())

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"base", p.Base, 180000},
		{"kitchen", p.Kitchen, 10000},
		{"bathroom by area", p.Bathroom, 21600},
		{"windows", p.Windows, 3600},
		{"eco", p.Eco, 12000},
		{"total", p.Total, 227200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 0.01 {
				t.Errorf("got %.2f, want %.2f", tt.got, tt.want)
			}
		})
	}
}

func TestCalculateEstimation_EcoSolutionsOptIn(t *testing.T) {
	form := estimationForm()
	form["includeEcoSolutions"] = false
	if got := CalculateEstimation(form); math.Abs(got-215200) > 0.01 {
		t.Errorf("expected eco options to be ignored, got %.2f", got)
	}
}

func TestCalculateEstimation_CatalogWindows(t *testing.T) {
	catalog, _ := RateBookFor(PricingCatalog)
	p := EstimationWith(catalog, estimationForm())
	if math.Abs(p.Windows-4000) > 0.01 {
		t.Errorf("expected catalog pvc windows 8 × 500, got %.2f", p.Windows)
	}
}

func TestCalculateEstimationWith(t *testing.T) {
	catalog, _ := RateBookFor(PricingCatalog)
	wizard := CalculateEstimationWith(DefaultRates(), estimationForm())
	if math.Abs(wizard-CalculateEstimation(estimationForm())) > 0.01 {
		t.Errorf("expected the wizard book by default, got %.2f", wizard)
	}
	want := EstimationWith(catalog, estimationForm()).Total
	if got := CalculateEstimationWith(catalog, estimationForm()); math.Abs(got-want) > 0.01 {
		t.Errorf("expected %.2f, got %.2f", want, got)
	}
}

func TestCalculateEstimation_Empty(t *testing.T) {
	if got := CalculateEstimation(FormData{}); got != 0 {
		t.Errorf("expected 0 for an empty form, got %.2f", got)
	}
}

func TestCalculate(t *testing.T) {
	c := Calculate(DefaultRates(), DefaultFeeSchedule(), estimationForm())

	if c.PricingVersion != PricingWizard {
		t.Errorf("expected wizard version, got %q", c.PricingVersion)
	}
	if math.Abs(c.Estimation.Total-227200) > 0.01 {
		t.Errorf("expected estimation 227200, got %.2f", c.Estimation.Total)
	}
	if math.Abs(c.Fees.Total-227200*0.51) > 0.01 {
		t.Errorf("expected fees on the estimation total, got %.2f", c.Fees.Total)
	}
	if c.EcoLevel != "moderate" || c.EcoCoefficient != 0.10 {
		t.Errorf("unexpected eco level %q / %v", c.EcoLevel, c.EcoCoefficient)
	}
	if c.Breakdown.Base != c.Estimation.Base {
		t.Errorf("breakdown base %.2f differs from estimation base %.2f", c.Breakdown.Base, c.Estimation.Base)
	}
	want := "deux cent vingt-sept mille deux cents euros"
	if c.EstimationWords != want {
		t.Errorf("expected words %q, got %q", want, c.EstimationWords)
	}
}
