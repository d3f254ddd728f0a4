package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"renovestimate/config"
	"renovestimate/services"
)

// buildQuoteExport loads the estimate summary and flattens it for export.
func buildQuoteExport(app *pocketbase.PocketBase, cfg *config.Config, id string) (services.QuoteExport, error) {
	summary, err := services.BuildEstimateSummary(app, id, cfg.Pricing.Fees)
	if err != nil {
		return services.QuoteExport{}, err
	}
	return services.BuildQuoteExport(summary, cfg.Company), nil
}

// writeDownload sends body as an attachment.
func writeDownload(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, err := e.Response.Write(body)
	return err
}

// HandleQuoteExportExcel generates and downloads the quote as an Excel file.
// Route: GET /estimates/{id}/export/excel
func HandleQuoteExportExcel(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quote, err := buildQuoteExport(app, cfg, estimateID(e))
		if err != nil {
			log.Printf("export_excel: %v", err)
			return e.String(http.StatusNotFound, "Estimate not found")
		}

		xlsxBytes, err := services.GenerateQuoteExcel(quote)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}
		return writeDownload(e, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			quote.FileName("xlsx"), xlsxBytes)
	}
}

// HandleQuoteExportPDF generates and downloads the quote as a PDF file.
// Route: GET /estimates/{id}/export/pdf
func HandleQuoteExportPDF(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quote, err := buildQuoteExport(app, cfg, estimateID(e))
		if err != nil {
			log.Printf("export_pdf: %v", err)
			return e.String(http.StatusNotFound, "Estimate not found")
		}

		pdfBytes, err := services.GenerateQuotePDF(quote)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}
		return writeDownload(e, "application/pdf", quote.FileName("pdf"), pdfBytes)
	}
}
