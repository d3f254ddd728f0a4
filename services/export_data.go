package services

import (
	"fmt"
	"strings"
	"time"
)

// CompanyInfo identifies the company issuing quotes.
type CompanyInfo struct {
	Name      string `yaml:"name" json:"name"`
	Address   string `yaml:"address" json:"address"`
	Email     string `yaml:"email" json:"email"`
	Phone     string `yaml:"phone" json:"phone"`
	Siret     string `yaml:"siret" json:"siret"`
	VATNumber string `yaml:"vat_number" json:"vat_number"`
}

// QuoteRow represents a single row in the quote export: a step header or one
// of its line items.
type QuoteRow struct {
	Level       int    // 0 = step header, 1 = line item
	Index       string // "1", "1.1", "1.2" etc
	Description string
	Quantity    float64
	Unit        string
	UnitRate    float64
	Amount      float64
}

// QuoteExport holds all data needed to render a quote.
type QuoteExport struct {
	Company        CompanyInfo
	Title          string
	Reference      string
	ClientName     string
	ClientEmail    string
	CreatedDate    string
	PricingVersion PricingVersion
	Rows           []QuoteRow

	Subtotal     float64
	EcoLevel     string
	EcoSurcharge float64
	FeeLines     []FeeLine // fees other than VAT
	TotalHT      float64
	VATRate      float64
	VAT          float64
	TotalTTC     float64
	AmountWords  string
}

// BuildQuoteExport flattens a summary into quote rows and totals. VAT is
// taken out of the fee lines and shown on its own.
func BuildQuoteExport(s *EstimateSummary, company CompanyInfo) QuoteExport {
	q := QuoteExport{
		Company:        company,
		Title:          "Devis " + s.Reference,
		Reference:      s.Reference,
		ClientName:     s.ClientName,
		ClientEmail:    s.ClientEmail,
		CreatedDate:    formatQuoteDate(s.Created),
		PricingVersion: s.PricingVersion,
		Subtotal:       s.Subtotal,
		EcoLevel:       s.EcoLevel,
		EcoSurcharge:   s.EcoSurcharge,
		VATRate:        s.Schedule.Taxes,
		VAT:            s.Fees.Taxes,
		TotalTTC:       s.GrandTotal,
	}

	for i, step := range s.Steps {
		header := fmt.Sprintf("%d", i+1)
		q.Rows = append(q.Rows, QuoteRow{
			Level:       0,
			Index:       header,
			Description: step.Label,
			Amount:      step.Amount,
		})
		for j, it := range step.Items {
			q.Rows = append(q.Rows, QuoteRow{
				Level:       1,
				Index:       fmt.Sprintf("%s.%d", header, j+1),
				Description: it.Label,
				Quantity:    it.Quantity,
				Unit:        it.Unit,
				UnitRate:    it.UnitRate,
				Amount:      it.Amount,
			})
		}
	}

	for _, l := range s.FeeLines() {
		if l.Label == "TVA" {
			continue
		}
		q.FeeLines = append(q.FeeLines, l)
	}
	q.TotalHT = q.TotalTTC - q.VAT
	q.AmountWords = AmountToWords(q.TotalTTC)
	return q
}

// EcoLabel is the display name of the eco level, empty when there is no
// surcharge.
func (q QuoteExport) EcoLabel() string {
	if q.EcoSurcharge == 0 {
		return ""
	}
	return fmt.Sprintf("Surcoût écologique (%s, %s)", q.EcoLevel, FormatPercent(EcoCoefficient(q.EcoLevel)))
}

// FileName is the download name of the quote with the given extension.
func (q QuoteExport) FileName(ext string) string {
	name := strings.NewReplacer("/", "-", " ", "_").Replace(q.Reference)
	if name == "" {
		name = "devis"
	}
	return name + "." + ext
}

var frenchMonths = []string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

func formatQuoteDate(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}
