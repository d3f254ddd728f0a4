package services

import (
	"math"
	"testing"
)

func TestCalculateBudgetBreakdown(t *testing.T) {
	form := FormData{
		"projectType": "construction",
		"surface":     100,
		"ecoLevel":    "moderate",
	}
	b := CalculateBudgetBreakdown(form)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"base", b.Base, 180000},
		{"structural", b.Structural, 45000},
		{"technical", b.Technical, 32400},
		{"finishing", b.Finishing, 39600},
		{"external", b.External, 14400},
		{"construction total", b.ConstructionTotal, 311400},
		{"eco surcharge", b.EcoSurcharge, 31140},
		{"fees", b.Fees.Total, 158814},
		{"total", b.Total, 501354},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 0.01 {
				t.Errorf("got %.2f, want %.2f", tt.got, tt.want)
			}
		})
	}
}

func TestStructuralCosts_Modifiers(t *testing.T) {
	base := 100000.0
	tests := []struct {
		name string
		form FormData
		want float64
	}{
		{"plain", FormData{}, 25000},
		{"two floors", FormData{"floors": 2}, 27500},
		{"three floors", FormData{"floors": "3"}, 30000},
		{"basement", FormData{"hasBasement": true}, 31250},
		{"piles", FormData{"foundationType": "pieux"}, 32500},
		{"stone walls", FormData{"wallType": "Pierre"}, 32500},
		{"unknown foundation", FormData{"foundationType": "inconnue"}, 25000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateStructuralCosts(tt.form, base); math.Abs(got-tt.want) > 0.01 {
				t.Errorf("got %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestRatioLots_MinimumPerM2(t *testing.T) {
	form := FormData{"surface": 10}
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"structural", CalculateStructuralCosts(form, 0), 3000},
		{"technical", CalculateTechnicalCosts(form, 0), 1200},
		{"finishing", CalculateFinishingCosts(form, 0), 1500},
		{"external", CalculateExternalCosts(form, 0), 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 0.01 {
				t.Errorf("got %.2f, want %.2f", tt.got, tt.want)
			}
		})
	}
}

func TestExternalCosts_Flags(t *testing.T) {
	form := FormData{"hasPool": true, "hasTerrace": "oui"}
	// 0.08 × 100000 × 1.5 × 1.1
	if got := CalculateExternalCosts(form, 100000); math.Abs(got-13200) > 0.01 {
		t.Errorf("expected 13200, got %.2f", got)
	}
}

func TestTechnicalCosts_Options(t *testing.T) {
	form := FormData{"heatingType": "pompe-a-chaleur", "electricalType": "domotique"}
	// 0.18 × 100000 × 1.2 × 1.25
	if got := CalculateTechnicalCosts(form, 100000); math.Abs(got-27000) > 0.01 {
		t.Errorf("expected 27000, got %.2f", got)
	}
}

func TestBudgetBreakdown_ClientArchitect(t *testing.T) {
	form := FormData{"projectType": "construction", "surface": 100}
	without := CalculateBudgetBreakdown(form)
	form["hasArchitect"] = true
	with := CalculateBudgetBreakdown(form)

	if with.Fees.Architect != 0 {
		t.Errorf("expected no architect fee, got %.2f", with.Fees.Architect)
	}
	if diff := without.Fees.Total - with.Fees.Total; math.Abs(diff-24912) > 0.01 {
		t.Errorf("expected the architect fee of 24912 to be dropped, difference %.2f", diff)
	}
}

func TestBudgetBreakdown_EmptyForm(t *testing.T) {
	b := CalculateBudgetBreakdown(FormData{})
	if b.Total != 0 {
		t.Errorf("expected zero budget for an empty form, got %.2f", b.Total)
	}
}

func TestEcoCoefficient(t *testing.T) {
	tests := []struct {
		level string
		want  float64
	}{
		{"none", 0},
		{"minimal", 0.05},
		{"Moderate", 0.10},
		{"extensive", 0.20},
		{"", 0},
		{"maximal", 0},
	}
	for _, tt := range tests {
		if got := EcoCoefficient(tt.level); got != tt.want {
			t.Errorf("EcoCoefficient(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
