package services

import (
	"errors"
	"math"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func projectContext() ProjectContext {
	return ProjectContext{ProjectType: ProjectConstruction, Surface: 100, Floors: 1}
}

func stepTotal(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Amount
	}
	return sum
}

func TestDecodeStep_UnknownStep(t *testing.T) {
	if _, err := DecodeStep("garage", FormData{}); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("expected ErrUnknownStep, got %v", err)
	}
}

func TestDecodeStep_Pricing(t *testing.T) {
	tests := []struct {
		name string
		key  string
		form FormData
		want float64
	}{
		{"project passive", "project", FormData{"projectType": "construction", "constructionType": "passive", "surface": 100}, 260000},
		{"project unknown construction type", "project", FormData{"projectType": "renovation", "constructionType": "inconnue", "surface": "85"}, 76500},
		{"structure two floors", "structure", FormData{"foundationType": "semelles-filantes"}, 45000},
		{"roofing on surface", "roofing", FormData{"roofingType": "Ardoise"}, 21000},
		{"roofing on roof area", "roofing", FormData{"roofingType": "ardoise", "roofArea": 80}, 16800},
		{"insulation double thickness", "insulation", FormData{"insulationType": "laine-de-verre", "thickness": 200}, 4000},
		{"flooring split", "flooring", FormData{
			"tileType": "gres-cerame", "tilePercentage": 50,
			"parquetType": "massif", "parquetPercentage": 30,
			"softFloorType": "vinyle", "softFloorPercentage": 20,
		}, 6750},
		{"painting default basic type", "painting", FormData{"basicPercentage": 100}, 6250},
		{"technical", "technical", FormData{"heatingType": "pompe-a-chaleur", "electricalType": "standard", "ventilationType": "vmc-hygro"}, 9500 + 11000 + 3200},
		{"kitchen default count", "kitchen", FormData{"kitchenType": "premium"}, 20000},
		{"bathroom flat rate", "bathroom", FormData{"bathroomType": "premium", "bathrooms": 2}, 12000},
		{"windows and doors", "windows", FormData{"windowType": "pvc", "windowCount": 8, "doorType": "entree", "doorCount": 1}, 3600 + 1800},
		{"exterior", "exterior", FormData{"poolType": "coque", "hasJacuzzi": true, "annexes": "jacuzzi", "terraceType": "bois", "terraceArea": 20}, 25000 + 8000 + 2400},
		{"eco options implied", "eco", FormData{"ecoLevel": "moderate", "ecoOptions": []any{"panneaux-solaires"}}, 12000},
		{"eco options excluded", "eco", FormData{"includeEcoSolutions": false, "ecoOptions": []any{"panneaux-solaires"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, err := DecodeStep(tt.key, tt.form)
			if err != nil {
				t.Fatalf("DecodeStep: %v", err)
			}
			ctx := projectContext()
			if p, ok := step.(*ProjectStep); ok {
				ctx = p.Context()
			}
			items, err := PriceStep(step, DefaultRates(), ctx)
			if err != nil {
				t.Fatalf("PriceStep: %v", err)
			}
			if got := stepTotal(items); math.Abs(got-tt.want) > 0.01 {
				t.Errorf("got %.2f, want %.2f", got, tt.want)
			}
			for _, it := range items {
				if it.Step != step.Key() {
					t.Errorf("line %q tagged with step %q, want %q", it.Label, it.Step, step.Key())
				}
			}
		})
	}
}

func TestDecodeStep_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		form  FormData
		field string
	}{
		{"missing project type", "project", FormData{"surface": 100}, "projectType"},
		{"unknown project type", "project", FormData{"projectType": "demolition", "surface": 100}, "projectType"},
		{"zero surface", "project", FormData{"projectType": "construction", "surface": 0}, "surface"},
		{"flooring percentages", "flooring", FormData{"tileType": "faience", "tilePercentage": 50, "parquetType": "massif", "parquetPercentage": 30}, "tilePercentage"},
		{"flooring type required", "flooring", FormData{"tilePercentage": 100}, "tileType"},
		{"painting percentages", "painting", FormData{"basicPercentage": 90}, "basicPercentage"},
		{"facade percentages", "facade", FormData{"renderPercentage": 40, "stonePercentage": 40}, "renderPercentage"},
		{"air conditioning type", "technical", FormData{"hasAirConditioning": true}, "airConditioningType"},
		{"roofing type", "roofing", FormData{}, "roofingType"},
		{"unknown wall type", "structure", FormData{"wallType": "paille"}, "wallType"},
		{"unknown eco level", "eco", FormData{"ecoLevel": "maximal"}, "ecoLevel"},
		{"window type", "windows", FormData{"windowCount": 4}, "windowType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStep(tt.key, tt.form)
			var fieldErrs validation.Errors
			if !errors.As(err, &fieldErrs) {
				t.Fatalf("expected validation.Errors, got %v", err)
			}
			if _, ok := fieldErrs[tt.field]; !ok {
				t.Errorf("expected error on %q, got %v", tt.field, fieldErrs)
			}
		})
	}
}

func TestDecodeStep_PercentageTolerance(t *testing.T) {
	form := FormData{"basicPercentage": 33.33, "decorativePercentage": 33.33, "wallpaperPercentage": 33.34}
	if _, err := DecodeStep("painting", form); err != nil {
		t.Errorf("expected percentages summing to 100 to pass, got %v", err)
	}
}

func TestPriceStep_RequiresProject(t *testing.T) {
	step, err := DecodeStep("roofing", FormData{"roofingType": "ardoise"})
	if err != nil {
		t.Fatalf("DecodeStep: %v", err)
	}
	if _, err := PriceStep(step, DefaultRates(), ProjectContext{}); !errors.Is(err, ErrProjectStepMissing) {
		t.Errorf("expected ErrProjectStepMissing, got %v", err)
	}

	kitchen, _ := DecodeStep("kitchen", FormData{"kitchenType": "basique"})
	if _, err := PriceStep(kitchen, DefaultRates(), ProjectContext{}); err != nil {
		t.Errorf("kitchen must not need the project step, got %v", err)
	}
}

func TestStructureStep_UsesProjectFloors(t *testing.T) {
	step, _ := DecodeStep("structure", FormData{})
	ctx := projectContext()
	ctx.Floors = 2
	items, err := PriceStep(step, DefaultRates(), ctx)
	if err != nil {
		t.Fatalf("PriceStep: %v", err)
	}
	if got := stepTotal(items); math.Abs(got-49500) > 0.01 {
		t.Errorf("expected 49500, got %.2f", got)
	}
}

func TestUnmarshalStep_RoundTripsAnswers(t *testing.T) {
	step, err := UnmarshalStep(StepRoofing, []byte(`{"roofingType":"zinc","roofArea":50}`))
	if err != nil {
		t.Fatalf("UnmarshalStep: %v", err)
	}
	items := step.Price(DefaultRates(), projectContext())
	if got := stepTotal(items); math.Abs(got-8000) > 0.01 {
		t.Errorf("expected 8000, got %.2f", got)
	}

	if _, err := UnmarshalStep(StepRoofing, []byte(`{`)); err == nil {
		t.Error("expected error for truncated payload")
	}
	if _, err := UnmarshalStep("garage", nil); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("expected ErrUnknownStep, got %v", err)
	}
}

func TestNeedsProject(t *testing.T) {
	for _, k := range []StepKey{StepRoofing, StepFlooring, StepTechnical} {
		if !NeedsProject(k) {
			t.Errorf("%s should need the project step", k)
		}
	}
	for _, k := range []StepKey{StepProject, StepKitchen, StepEco} {
		if NeedsProject(k) {
			t.Errorf("%s should not need the project step", k)
		}
	}
}
