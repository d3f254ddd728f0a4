package handlers

import (
	"log"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"renovestimate/config"
	"renovestimate/services"
	"renovestimate/templates"
)

// render writes the HTMX partial or the full page.
func render(e *core.RequestEvent, partial, page templ.Component) error {
	if isHTMX(e) {
		return partial.Render(e.Request.Context(), e.Response)
	}
	return page.Render(e.Request.Context(), e.Response)
}

// HandleEstimateList renders the estimate list. Existing estimates are only
// listed for superusers; everyone else gets the creation form.
// Route: GET /estimates
func HandleEstimateList(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := templates.EstimateListData{
			Versions:       services.PricingVersions,
			DefaultVersion: cfg.PricingVersion(),
		}

		if e.HasSuperuserAuth() {
			records, err := services.ListEstimates(app, cfg.Quotes.ListLimit)
			if err != nil {
				log.Printf("estimate_list: could not query estimates: %v", err)
				records = nil
			}
			for _, rec := range records {
				data.Items = append(data.Items, templates.EstimateListItem{
					ID:             rec.Id,
					Reference:      rec.GetString("reference"),
					ClientName:     rec.GetString("client_name"),
					Status:         rec.GetString("status"),
					PricingVersion: rec.GetString("pricing_version"),
					Total:          rec.GetFloat("total"),
					Created:        rec.GetDateTime("created").Time().Format("02/01/2006"),
					URL:            estimatePageURL(rec),
				})
			}
		}

		return render(e, templates.EstimateListContent(data), templates.EstimateListPage(data))
	}
}

// HandleEstimateView renders the priced summary of one estimate.
// Route: GET /estimates/{id}
func HandleEstimateView(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		summary, err := services.BuildEstimateSummary(app, estimateID(e), cfg.Pricing.Fees)
		if err != nil {
			log.Printf("estimate_view: %v", err)
			code, message, _ := errorStatus(err)
			return e.String(code, message)
		}

		data := templates.EstimateSummaryData{
			Summary: summary,
			Token:   requestToken(e.Request),
		}
		if data.Token == "" {
			if rec := GetEstimate(e.Request); rec != nil && e.HasSuperuserAuth() {
				data.Token = rec.GetString("public_token")
			}
		}
		return render(e, templates.EstimateSummaryContent(data), templates.EstimateSummaryPage(data))
	}
}
