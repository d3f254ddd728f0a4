package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"

	"renovestimate/testhelpers"
)

var testNow = time.Date(2026, time.May, 12, 9, 30, 0, 0, time.UTC)

func projectForm(surface float64) FormData {
	return FormData{"projectType": "construction", "surface": surface}
}

func TestCreateEstimate(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	rec, err := CreateEstimate(app, NewEstimate{ClientName: "  Famille Martin ", ClientEmail: "martin@example.fr"}, testNow)
	if err != nil {
		t.Fatalf("CreateEstimate: %v", err)
	}
	if rec.GetString("reference") != "DEV-2026-0001" {
		t.Errorf("expected DEV-2026-0001, got %q", rec.GetString("reference"))
	}
	if rec.GetString("client_name") != "Famille Martin" {
		t.Errorf("expected trimmed client name, got %q", rec.GetString("client_name"))
	}
	if rec.GetString("status") != StatusDraft {
		t.Errorf("expected draft, got %q", rec.GetString("status"))
	}
	if rec.GetString("pricing_version") != string(PricingWizard) {
		t.Errorf("expected wizard version, got %q", rec.GetString("pricing_version"))
	}
	if len(rec.GetString("public_token")) != 36 {
		t.Errorf("expected a uuid token, got %q", rec.GetString("public_token"))
	}

	second, err := CreateEstimate(app, NewEstimate{ClientName: "SCI Les Tilleuls", PricingVersion: PricingCatalog, QuotePrefix: "DEV"}, testNow)
	if err != nil {
		t.Fatalf("CreateEstimate: %v", err)
	}
	if second.GetString("reference") != "DEV-2026-0002" {
		t.Errorf("expected DEV-2026-0002, got %q", second.GetString("reference"))
	}
	if second.GetString("public_token") == rec.GetString("public_token") {
		t.Error("expected distinct tokens")
	}
}

func TestCreateEstimate_UnknownVersion(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	_, err := CreateEstimate(app, NewEstimate{ClientName: "X", PricingVersion: "legacy"}, testNow)
	if !errors.Is(err, ErrUnknownPricingVersion) {
		t.Errorf("expected ErrUnknownPricingVersion, got %v", err)
	}
}

func TestGenerateQuoteNumber(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	rec := testhelpers.CreateTestEstimate(t, app, "Client")
	rec.Set("reference", "DEV-2026-0041")
	if err := app.Save(rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	tests := []struct {
		name   string
		prefix string
		now    time.Time
		want   string
	}{
		{"continues the year", "DEV", testNow, "DEV-2026-0042"},
		{"new year restarts", "DEV", testNow.AddDate(1, 0, 0), "DEV-2027-0001"},
		{"other prefix", "ARC", testNow, "ARC-2026-0001"},
		{"default prefix", "", testNow, "DEV-2026-0042"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateQuoteNumber(app, tt.prefix, tt.now)
			if err != nil {
				t.Fatalf("GenerateQuoteNumber: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateQuoteNumber_LookupError(t *testing.T) {
	// Bootstrapped without collections.Setup: the estimates table is missing.
	app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: t.TempDir()})
	if err := app.Bootstrap(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if ref, err := GenerateQuoteNumber(app, "DEV", testNow); err == nil {
		t.Errorf("expected a lookup error, got reference %q", ref)
	}
}

func TestFindEstimate_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := FindEstimate(app, "missing"); !errors.Is(err, ErrEstimateNotFound) {
		t.Errorf("expected ErrEstimateNotFound, got %v", err)
	}
}

func TestSubmitStep_ProjectThenRoofing(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimate(t, app, "Client")

	res, err := SubmitStep(app, est.Id, "project", projectForm(100))
	if err != nil {
		t.Fatalf("project step: %v", err)
	}
	if math.Abs(res.Amount-180000) > 0.01 {
		t.Errorf("expected project amount 180000, got %.2f", res.Amount)
	}

	res, err = SubmitStep(app, est.Id, "roofing", FormData{"roofingType": "ardoise"})
	if err != nil {
		t.Fatalf("roofing step: %v", err)
	}
	if math.Abs(res.Amount-21000) > 0.01 {
		t.Errorf("expected roofing amount 21000, got %.2f", res.Amount)
	}
	if math.Abs(res.MontantT-201000) > 0.01 {
		t.Errorf("expected running total 201000, got %.2f", res.MontantT)
	}

	stored, err := FindEstimate(app, est.Id)
	if err != nil {
		t.Fatalf("FindEstimate: %v", err)
	}
	if math.Abs(stored.GetFloat("subtotal")-201000) > 0.01 {
		t.Errorf("expected stored subtotal 201000, got %.2f", stored.GetFloat("subtotal"))
	}
}

func TestSubmitStep_ResubmitReplaces(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimate(t, app, "Client")

	for _, typ := range []string{"premium", "basique", "standard"} {
		if _, err := SubmitStep(app, est.Id, "kitchen", FormData{"kitchenType": typ}); err != nil {
			t.Fatalf("kitchen step %s: %v", typ, err)
		}
	}

	ledger, err := LoadLedger(app, est.Id)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if math.Abs(ledger.Subtotal()-10000) > 0.01 {
		t.Errorf("expected one kitchen contribution of 10000, got %.2f", ledger.Subtotal())
	}
	if len(ledger.Steps()) != 1 {
		t.Errorf("expected 1 stored step, got %d", len(ledger.Steps()))
	}
}

func TestSubmitStep_ProjectRepricesDependentSteps(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimate(t, app, "Client")

	steps := []struct {
		key  string
		form FormData
	}{
		{"project", projectForm(100)},
		{"roofing", FormData{"roofingType": "ardoise"}},
		{"kitchen", FormData{"kitchenType": "standard"}},
	}
	for _, st := range steps {
		if _, err := SubmitStep(app, est.Id, st.key, st.form); err != nil {
			t.Fatalf("%s step: %v", st.key, err)
		}
	}

	res, err := SubmitStep(app, est.Id, "project", projectForm(80))
	if err != nil {
		t.Fatalf("project resubmission: %v", err)
	}
	// 80 × 1800 + 80 × 210 + 10000
	if math.Abs(res.MontantT-170800) > 0.01 {
		t.Errorf("expected 170800 after repricing, got %.2f", res.MontantT)
	}
}

func TestSubmitStep_Errors(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimate(t, app, "Client")

	if _, err := SubmitStep(app, est.Id, "roofing", FormData{"roofingType": "ardoise"}); !errors.Is(err, ErrProjectStepMissing) {
		t.Errorf("expected ErrProjectStepMissing, got %v", err)
	}
	if _, err := SubmitStep(app, est.Id, "garage", FormData{}); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("expected ErrUnknownStep, got %v", err)
	}
	if _, err := SubmitStep(app, "missing", "kitchen", FormData{"kitchenType": "standard"}); !errors.Is(err, ErrEstimateNotFound) {
		t.Errorf("expected ErrEstimateNotFound, got %v", err)
	}
}

func TestSubmitStep_EcoLevelSurcharge(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimate(t, app, "Client")

	if _, err := SubmitStep(app, est.Id, "project", projectForm(100)); err != nil {
		t.Fatalf("project step: %v", err)
	}
	res, err := SubmitStep(app, est.Id, "eco", FormData{"ecoLevel": "moderate"})
	if err != nil {
		t.Fatalf("eco step: %v", err)
	}
	if math.Abs(res.Total-198000) > 0.01 {
		t.Errorf("expected total 198000 with 10%% surcharge, got %.2f", res.Total)
	}

	if err := RemoveStep(app, est.Id, "eco"); err != nil {
		t.Fatalf("RemoveStep: %v", err)
	}
	stored, _ := FindEstimate(app, est.Id)
	if stored.GetString("eco_level") != EcoNone {
		t.Errorf("expected eco level reset, got %q", stored.GetString("eco_level"))
	}
	if math.Abs(stored.GetFloat("total")-180000) > 0.01 {
		t.Errorf("expected total 180000, got %.2f", stored.GetFloat("total"))
	}
}

func TestRemoveStep(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimate(t, app, "Client")

	if _, err := SubmitStep(app, est.Id, "kitchen", FormData{"kitchenType": "standard"}); err != nil {
		t.Fatalf("kitchen step: %v", err)
	}
	if err := RemoveStep(app, est.Id, "kitchen"); err != nil {
		t.Fatalf("RemoveStep: %v", err)
	}
	step, err := LoadStep(app, est.Id, StepKitchen)
	if err != nil {
		t.Fatalf("LoadStep: %v", err)
	}
	if step != nil {
		t.Error("expected kitchen step removed")
	}

	// Removing a step that was never submitted is not an error.
	if err := RemoveStep(app, est.Id, "bathroom"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := RemoveStep(app, est.Id, "garage"); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("expected ErrUnknownStep, got %v", err)
	}
}

func TestSubmitEstimate_Locks(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimate(t, app, "Client")

	if _, err := SubmitEstimate(app, est.Id); !errors.Is(err, ErrProjectStepMissing) {
		t.Fatalf("expected ErrProjectStepMissing, got %v", err)
	}

	if _, err := SubmitStep(app, est.Id, "project", projectForm(100)); err != nil {
		t.Fatalf("project step: %v", err)
	}
	rec, err := SubmitEstimate(app, est.Id)
	if err != nil {
		t.Fatalf("SubmitEstimate: %v", err)
	}
	if rec.GetString("status") != StatusSubmitted {
		t.Errorf("expected submitted, got %q", rec.GetString("status"))
	}

	if _, err := SubmitStep(app, est.Id, "kitchen", FormData{"kitchenType": "standard"}); !errors.Is(err, ErrEstimateLocked) {
		t.Errorf("expected ErrEstimateLocked on step submit, got %v", err)
	}
	if err := RemoveStep(app, est.Id, "project"); !errors.Is(err, ErrEstimateLocked) {
		t.Errorf("expected ErrEstimateLocked on step removal, got %v", err)
	}
	if _, err := SubmitEstimate(app, est.Id); !errors.Is(err, ErrEstimateLocked) {
		t.Errorf("expected ErrEstimateLocked on resubmission, got %v", err)
	}
}

func TestRepriceEstimate_AppliesOverrides(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimate(t, app, "Client")

	if _, err := SubmitStep(app, est.Id, "project", projectForm(100)); err != nil {
		t.Fatalf("project step: %v", err)
	}
	if _, err := SubmitStep(app, est.Id, "roofing", FormData{"roofingType": "ardoise"}); err != nil {
		t.Fatalf("roofing step: %v", err)
	}

	testhelpers.CreateTestRateOverride(t, app, "wizard", "roofing", "ardoise", 300)
	if err := RepriceEstimate(app, est.Id); err != nil {
		t.Fatalf("RepriceEstimate: %v", err)
	}

	ledger, err := LoadLedger(app, est.Id)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if got := ledger.StepAmount(StepRoofing); math.Abs(got-30000) > 0.01 {
		t.Errorf("expected roofing repriced at 30000, got %.2f", got)
	}
}

func TestLoadRateBook_Overrides(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestRateOverride(t, app, "catalog", "roofing", "chaume", 200)

	catalog, err := LoadRateBook(app, PricingCatalog)
	if err != nil {
		t.Fatalf("LoadRateBook: %v", err)
	}
	if got := catalog.Rate(CategoryRoofing, "chaume"); got != 200 {
		t.Errorf("expected catalog override 200, got %v", got)
	}

	wizard, err := LoadRateBook(app, PricingWizard)
	if err != nil {
		t.Fatalf("LoadRateBook: %v", err)
	}
	if got := wizard.Rate(CategoryRoofing, "chaume"); got != 190 {
		t.Errorf("expected wizard rate unchanged at 190, got %v", got)
	}
}

func TestBuildEstimateSummary(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimate(t, app, "Famille Martin")

	form := projectForm(100)
	form["hasArchitect"] = true
	if _, err := SubmitStep(app, est.Id, "project", form); err != nil {
		t.Fatalf("project step: %v", err)
	}
	if _, err := SubmitStep(app, est.Id, "kitchen", FormData{"kitchenType": "standard"}); err != nil {
		t.Fatalf("kitchen step: %v", err)
	}

	s, err := BuildEstimateSummary(app, est.Id, DefaultFeeSchedule())
	if err != nil {
		t.Fatalf("BuildEstimateSummary: %v", err)
	}
	if s.ClientName != "Famille Martin" {
		t.Errorf("unexpected client %q", s.ClientName)
	}
	if s.Project == nil || s.Project.Surface != 100 || !s.Project.HasArchitect {
		t.Errorf("unexpected project context %+v", s.Project)
	}
	if len(s.Steps) != 2 || s.Steps[0].Key != StepProject || s.Steps[1].Key != StepKitchen {
		t.Errorf("unexpected steps %+v", s.Steps)
	}
	if len(s.MissingSteps) != len(StepOrder)-2 {
		t.Errorf("expected %d missing steps, got %d", len(StepOrder)-2, len(s.MissingSteps))
	}
	if math.Abs(s.Subtotal-190000) > 0.01 {
		t.Errorf("expected subtotal 190000, got %.2f", s.Subtotal)
	}
	if s.Fees.Architect != 0 {
		t.Errorf("expected no architect fee, got %.2f", s.Fees.Architect)
	}
	if math.Abs(s.GrandTotal-(s.Total+s.Fees.Total)) > 0.01 {
		t.Errorf("grand total %.2f is not total + fees", s.GrandTotal)
	}
}

func TestListEstimates(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestEstimate(t, app, "A")
	testhelpers.CreateTestEstimate(t, app, "B")

	records, err := ListEstimates(app, 10)
	if err != nil {
		t.Fatalf("ListEstimates: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 estimates, got %d", len(records))
	}
}
