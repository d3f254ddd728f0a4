package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"renovestimate/services"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func assertContains(t *testing.T, html string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(html, w) {
			t.Errorf("expected output to contain %q", w)
		}
	}
}

func TestEstimateListContent(t *testing.T) {
	html := render(t, EstimateListContent(EstimateListData{
		Items: []EstimateListItem{{
			Reference:      "DEV-2026-0001",
			ClientName:     "Martin & Fils",
			Status:         services.StatusSubmitted,
			PricingVersion: "wizard",
			Total:          1000,
			Created:        "12/05/2026",
			URL:            "/estimates/abc?token=t",
		}},
		Versions:       []services.PricingVersion{services.PricingWizard, services.PricingCatalog},
		DefaultVersion: services.PricingCatalog,
	}))

	assertContains(t, html,
		`<option value="wizard">wizard</option>`,
		`<option value="catalog" selected>catalog</option>`,
		`<a href="/estimates/abc?token=t">DEV-2026-0001</a>`,
		"Martin &amp; Fils",
		"Validé",
	)
	if strings.Contains(html, "Aucun devis") || strings.Contains(html, "<html") {
		t.Error("expected a table fragment without the page shell")
	}
}

func TestEstimateListContent_Empty(t *testing.T) {
	html := render(t, EstimateListContent(EstimateListData{}))
	assertContains(t, html, `hx-post="/api/estimates"`, "Aucun devis pour le moment.")
	if strings.Contains(html, "<table") {
		t.Error("expected no table without estimates")
	}
}

func summaryData(status string) EstimateSummaryData {
	return EstimateSummaryData{
		Token: "tok",
		Summary: &services.EstimateSummary{
			ID:         "e1",
			Reference:  "DEV-2026-0007",
			ClientName: "Famille <Martin>",
			Status:     status,
			Steps: []services.StepSummary{{
				Key:    services.StepKitchen,
				Label:  "Cuisine",
				Amount: 8000,
				Items: []services.LineItem{{
					Label: "Cuisine standard", Quantity: 1, Unit: "u", UnitRate: 8000, Amount: 8000,
				}},
			}},
			MissingSteps: []services.StepKey{services.StepRoofing},
			Subtotal:     8000,
			Total:        8000,
			GrandTotal:   8000,
		},
	}
}

func TestEstimateSummaryPage(t *testing.T) {
	html := render(t, EstimateSummaryPage(summaryData(services.StatusDraft)))

	assertContains(t, html,
		"<!doctype html>",
		"<title>Devis DEV-2026-0007</title>",
		"<h1>Devis DEV-2026-0007</h1>",
		"Famille &lt;Martin&gt;",
		`href="/estimates/e1/export/excel?token=tok"`,
		`hx-post="/api/estimates/e1/submit?token=tok"`,
		`hx-delete="/api/estimates/e1/steps/kitchen?token=tok"`,
		"Cuisine standard",
		"Étapes non renseignées : "+services.StepRoofing.Label(),
		"<dt>Sous-total travaux</dt>",
		"<dt>Total TTC</dt>",
		`id="toast-container"`,
	)
}

func TestEstimateSummaryContent_Submitted(t *testing.T) {
	html := render(t, EstimateSummaryContent(summaryData(services.StatusSubmitted)))
	if strings.Contains(html, "hx-post") || strings.Contains(html, "hx-delete") {
		t.Error("expected a submitted estimate to offer no edits")
	}
	if strings.Contains(html, "Surcoût écologique") {
		t.Error("expected no eco line without a surcharge")
	}
}
