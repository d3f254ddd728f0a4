package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"renovestimate/config"
	"renovestimate/services"
)

// RateCategory is one rate table as listed by the API.
type RateCategory struct {
	Key   services.Category  `json:"key"`
	Label string             `json:"label"`
	Unit  string             `json:"unit"`
	Rates services.RateTable `json:"rates"`
}

// maxUploadBytes bounds rate sheet uploads.
const maxUploadBytes = 10 << 20

// HandleRatesList returns every rate table of a pricing version, overrides
// included.
// Route: GET /api/rates?version=
func HandleRatesList(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		raw := e.Request.URL.Query().Get("version")
		if raw == "" {
			raw = string(cfg.PricingVersion())
		}
		version, err := services.ParsePricingVersion(raw)
		if err != nil {
			return HandleServiceError(e, err)
		}
		book, err := services.LoadRateBook(app, version)
		if err != nil {
			return HandleServiceError(e, err)
		}

		categories := make([]RateCategory, 0, len(services.Categories()))
		for _, c := range services.Categories() {
			info := c.Info()
			categories = append(categories, RateCategory{
				Key:   c,
				Label: info.Label,
				Unit:  info.Unit,
				Rates: book.Table(c),
			})
		}
		return RespondSuccess(e, http.StatusOK, map[string]any{
			"pricing_version": version,
			"categories":      categories,
		}, "")
	}
}

// HandleRateDiscrepancies compares the wizard and catalog books and lists the
// formula-level divergences kept by the engine.
// Route: GET /api/rates/discrepancies
func HandleRateDiscrepancies(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		wizard, err := services.LoadRateBook(app, services.PricingWizard)
		if err != nil {
			return HandleServiceError(e, err)
		}
		catalog, err := services.LoadRateBook(app, services.PricingCatalog)
		if err != nil {
			return HandleServiceError(e, err)
		}

		discrepancies := services.CompareRateBooks(wizard, catalog)
		if discrepancies == nil {
			discrepancies = []services.RateDiscrepancy{}
		}
		return RespondSuccess(e, http.StatusOK, map[string]any{
			"left":            services.PricingWizard,
			"right":           services.PricingCatalog,
			"discrepancies":   discrepancies,
			"inconsistencies": services.KnownInconsistencies(),
		}, fmt.Sprintf("%d rates differ", len(discrepancies)))
	}
}

// HandleRateImportValidate receives a rate sheet upload and returns the
// validated rows without storing them.
// Route: POST /api/rates/import?version=
func HandleRateImportValidate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		version, err := services.ParsePricingVersion(e.Request.URL.Query().Get("version"))
		if err != nil {
			return HandleServiceError(e, err)
		}

		if err := e.Request.ParseMultipartForm(maxUploadBytes); err != nil {
			return RespondError(e, http.StatusBadRequest, "File too large or invalid form data", nil)
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return RespondError(e, http.StatusBadRequest, "Please select a file to upload", nil)
		}
		defer file.Close()

		result, err := services.ValidateRateSheet(file, header.Filename, version)
		if err != nil {
			log.Printf("rate_import: %v", err)
			return RespondError(e, http.StatusBadRequest, err.Error(), nil)
		}

		message := fmt.Sprintf("%d valid rows", result.ValidRows)
		if result.ErrorRows > 0 {
			message = fmt.Sprintf("%d rows with errors", result.ErrorRows)
		}
		return RespondSuccess(e, http.StatusOK, result, message)
	}
}

// rateCommitRequest is the body of a rate import commit.
type rateCommitRequest struct {
	Version   services.PricingVersion `json:"pricing_version"`
	Overrides []services.RateOverride `json:"overrides"`
}

// HandleRateImportCommit stores validated overrides and reprices the draft
// estimates of that version.
// Route: POST /api/rates/import/commit
func HandleRateImportCommit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body rateCommitRequest
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return RespondError(e, http.StatusBadRequest, "Invalid request body", nil)
		}
		version, err := services.ParsePricingVersion(string(body.Version))
		if err != nil {
			return HandleServiceError(e, err)
		}
		if len(body.Overrides) == 0 {
			return RespondError(e, http.StatusBadRequest, "No overrides to import", nil)
		}

		result, err := services.CommitRateOverrides(app, version, body.Overrides)
		if err != nil {
			log.Printf("rate_import_commit: %v", err)
			return RespondError(e, http.StatusUnprocessableEntity, err.Error(), result)
		}
		return RespondSuccess(e, http.StatusOK, result,
			fmt.Sprintf("%d rates imported, %d updated", result.Imported, result.Updated))
	}
}

// HandleRateImportErrors downloads the validation errors of a rate sheet as
// an Excel file.
// Route: POST /api/rates/import/errors
func HandleRateImportErrors(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var errs []services.ValidationError
		if err := json.NewDecoder(e.Request.Body).Decode(&errs); err != nil {
			return RespondError(e, http.StatusBadRequest, "Invalid error data", nil)
		}

		xlsxBytes, err := services.GenerateErrorReport(errs)
		if err != nil {
			log.Printf("rate_import_errors: %v", err)
			return RespondError(e, http.StatusInternalServerError, "Internal server error", nil)
		}

		filename := fmt.Sprintf("Tarifs_Erreurs_%s.xlsx", time.Now().Format("2006-01-02"))
		e.Response.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// StepInfo describes one wizard step for clients building the form.
type StepInfo struct {
	Key          services.StepKey `json:"key"`
	Label        string           `json:"label"`
	NeedsProject bool             `json:"needs_project"`
}

// HandleStepOptions lists the wizard steps and the choices of every select
// field, priced with the requested version.
// Route: GET /api/steps?version=
func HandleStepOptions(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		raw := e.Request.URL.Query().Get("version")
		if raw == "" {
			raw = string(cfg.PricingVersion())
		}
		version, err := services.ParsePricingVersion(raw)
		if err != nil {
			return HandleServiceError(e, err)
		}
		book, err := services.LoadRateBook(app, version)
		if err != nil {
			return HandleServiceError(e, err)
		}

		steps := make([]StepInfo, 0, len(services.StepOrder))
		for _, k := range services.StepOrder {
			steps = append(steps, StepInfo{Key: k, Label: k.Label(), NeedsProject: services.NeedsProject(k)})
		}
		return RespondSuccess(e, http.StatusOK, map[string]any{
			"pricing_version": version,
			"steps":           steps,
			"options":         services.FieldOptions(book),
		}, "")
	}
}
