package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"renovestimate/config"
	"renovestimate/services"
)

// HandleCalculate prices a full wizard form without storing anything.
// The pricing version comes from ?version=, then the form's pricingVersion,
// then the configured default.
// Route: POST /api/calculate
func HandleCalculate(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		form, err := readFormData(e)
		if err != nil {
			return RespondError(e, http.StatusBadRequest, "Invalid request body", nil)
		}

		raw := e.Request.URL.Query().Get("version")
		if raw == "" {
			raw = form.String("pricingVersion", string(cfg.PricingVersion()))
		}
		version, err := services.ParsePricingVersion(raw)
		if err != nil {
			return HandleServiceError(e, err)
		}
		book, err := services.LoadRateBook(app, version)
		if err != nil {
			return HandleServiceError(e, err)
		}

		return RespondSuccess(e, http.StatusOK, services.Calculate(book, cfg.Pricing.Fees, form), "")
	}
}
