package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"renovestimate/config"
	"renovestimate/services"
)

// maxFormBytes bounds JSON and urlencoded request bodies.
const maxFormBytes = 1 << 20

// readFormData decodes a JSON object or an HTML form body into FormData.
func readFormData(e *core.RequestEvent) (services.FormData, error) {
	mediaType, _, _ := mime.ParseMediaType(e.Request.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		body, err := io.ReadAll(io.LimitReader(e.Request.Body, maxFormBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return services.ParseFormData(body)
	}
	if err := e.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	return services.FormDataFromValues(e.Request.PostForm), nil
}

// estimatePageURL is the summary page of an estimate, carrying its token.
func estimatePageURL(estimate *core.Record) string {
	return fmt.Sprintf("/estimates/%s?token=%s", estimate.Id, url.QueryEscape(estimate.GetString("public_token")))
}

// HandleEstimateCreate creates a draft estimate.
// Route: POST /api/estimates
func HandleEstimateCreate(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		form, err := readFormData(e)
		if err != nil {
			return RespondError(e, http.StatusBadRequest, "Invalid request body", nil)
		}

		in := services.NewEstimate{
			ClientName:     form.String("client_name"),
			ClientEmail:    form.String("client_email"),
			PricingVersion: services.PricingVersion(form.String("pricing_version", string(cfg.PricingVersion()))),
			QuotePrefix:    cfg.Quotes.Prefix,
		}
		estimate, err := services.CreateEstimate(app, in, time.Now())
		if err != nil {
			return HandleServiceError(e, err)
		}

		if isHTMX(e) {
			SetToast(e, "success", fmt.Sprintf("Devis %s créé", estimate.GetString("reference")))
			e.Response.Header().Set("HX-Redirect", estimatePageURL(estimate))
			return e.NoContent(http.StatusCreated)
		}
		return RespondSuccess(e, http.StatusCreated, map[string]any{
			"id":              estimate.Id,
			"reference":       estimate.GetString("reference"),
			"public_token":    estimate.GetString("public_token"),
			"status":          estimate.GetString("status"),
			"pricing_version": estimate.GetString("pricing_version"),
		}, "Estimate created")
	}
}

// HandleEstimateGet returns the priced summary of an estimate.
// Route: GET /api/estimates/{id}
func HandleEstimateGet(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		summary, err := services.BuildEstimateSummary(app, estimateID(e), cfg.Pricing.Fees)
		if err != nil {
			return HandleServiceError(e, err)
		}
		return RespondSuccess(e, http.StatusOK, summary, "")
	}
}

// HandleStepGet returns the stored answers of one step.
// Route: GET /api/estimates/{id}/steps/{step}
func HandleStepGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		key := services.StepKey(services.NormalizeKey(e.Request.PathValue("step")))
		if !key.Valid() {
			return HandleServiceError(e, fmt.Errorf("%w: %q", services.ErrUnknownStep, key))
		}
		step, err := services.LoadStep(app, estimateID(e), key)
		if err != nil {
			return HandleServiceError(e, err)
		}
		if step == nil {
			return RespondError(e, http.StatusNotFound, "Step not submitted", nil)
		}
		return RespondSuccess(e, http.StatusOK, map[string]any{
			"step":    key,
			"label":   key.Label(),
			"answers": step,
		}, "")
	}
}

// HandleStepSubmit validates, prices and stores one wizard step. Resubmitting
// a step replaces its previous lines.
// Route: PUT|POST /api/estimates/{id}/steps/{step}
func HandleStepSubmit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		form, err := readFormData(e)
		if err != nil {
			return RespondError(e, http.StatusBadRequest, "Invalid request body", nil)
		}

		id := estimateID(e)
		result, err := services.SubmitStep(app, id, e.Request.PathValue("step"), form)
		if err != nil {
			return HandleServiceError(e, err)
		}

		if isHTMX(e) {
			SetToast(e, "success", fmt.Sprintf("%s : %s", result.Step.Label(), services.FormatEUR(result.Amount)))
			if estimate := GetEstimate(e.Request); estimate != nil {
				e.Response.Header().Set("HX-Redirect", estimatePageURL(estimate))
			}
			return e.NoContent(http.StatusOK)
		}
		return RespondSuccess(e, http.StatusOK, result, "Step saved")
	}
}

// HandleStepDelete removes the lines of one step.
// Route: DELETE /api/estimates/{id}/steps/{step}
func HandleStepDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		step := e.Request.PathValue("step")
		if err := services.RemoveStep(app, estimateID(e), step); err != nil {
			return HandleServiceError(e, err)
		}

		if isHTMX(e) {
			SetToast(e, "success", "Étape supprimée")
			if estimate := GetEstimate(e.Request); estimate != nil {
				e.Response.Header().Set("HX-Redirect", estimatePageURL(estimate))
			}
			return e.NoContent(http.StatusOK)
		}
		return RespondSuccess(e, http.StatusOK, nil, "Step removed")
	}
}

// HandleEstimateSubmit locks an estimate.
// Route: POST /api/estimates/{id}/submit
func HandleEstimateSubmit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimate, err := services.SubmitEstimate(app, estimateID(e))
		if err != nil {
			return HandleServiceError(e, err)
		}

		if isHTMX(e) {
			SetToast(e, "success", fmt.Sprintf("Devis %s validé", estimate.GetString("reference")))
			e.Response.Header().Set("HX-Redirect", estimatePageURL(estimate))
			return e.NoContent(http.StatusOK)
		}
		return RespondSuccess(e, http.StatusOK, map[string]any{
			"id":        estimate.Id,
			"reference": estimate.GetString("reference"),
			"status":    estimate.GetString("status"),
			"subtotal":  estimate.GetFloat("subtotal"),
			"total":     estimate.GetFloat("total"),
		}, "Estimate submitted")
	}
}
