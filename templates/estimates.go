// Package templates renders the estimate pages as templ components.
package templates

import (
	"fmt"
	"net/url"
	"strings"

	"renovestimate/services"
)

// EstimateListItem is one row of the estimate list.
type EstimateListItem struct {
	ID             string
	Reference      string
	ClientName     string
	Status         string
	PricingVersion string
	Total          float64
	Created        string
	URL            string
}

// EstimateListData feeds the estimate list page.
type EstimateListData struct {
	Items          []EstimateListItem
	Versions       []services.PricingVersion
	DefaultVersion services.PricingVersion
}

// EstimateSummaryData feeds the estimate summary page.
type EstimateSummaryData struct {
	Summary *services.EstimateSummary
	Token   string
}

// withToken appends the estimate token to path.
func (d EstimateSummaryData) withToken(path string) string {
	if d.Token == "" {
		return path
	}
	return path + "?token=" + url.QueryEscape(d.Token)
}

var statusLabels = map[string]string{
	services.StatusDraft:     "Brouillon",
	services.StatusSubmitted: "Validé",
}

func statusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// summaryMeta is the client line under the summary title.
func summaryMeta(s *services.EstimateSummary) string {
	meta := s.ClientName
	if s.ClientEmail != "" {
		meta += " · " + s.ClientEmail
	}
	return meta + fmt.Sprintf(" · tarifs %s · %s", s.PricingVersion, statusLabel(s.Status))
}

func projectLine(p *services.ProjectContext) string {
	return fmt.Sprintf("%s %s · %s m² · %s niveau(x)",
		services.TitleCase(p.ProjectType), services.TitleCase(p.ConstructionType),
		services.FormatQuantity(p.Surface), services.FormatQuantity(p.Floors))
}

func missingStepLabels(keys []services.StepKey) string {
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = k.Label()
	}
	return strings.Join(labels, ", ")
}

type totalLine struct {
	Label  string
	Amount float64
}

// summaryTotals lists the totals block: subtotal, eco surcharge when charged,
// works total, each fee and the grand total.
func summaryTotals(s *services.EstimateSummary) []totalLine {
	lines := []totalLine{{"Sous-total travaux", s.Subtotal}}
	if s.EcoSurcharge != 0 {
		lines = append(lines, totalLine{fmt.Sprintf("Surcoût écologique (%s)", FormatEco(s.EcoLevel)), s.EcoSurcharge})
	}
	lines = append(lines, totalLine{"Total travaux", s.Total})
	for _, l := range s.FeeLines() {
		lines = append(lines, totalLine{fmt.Sprintf("%s (%s)", l.Label, services.FormatPercent(l.Percentage)), l.Amount})
	}
	return append(lines, totalLine{"Total TTC", s.GrandTotal})
}

// FormatEco renders an eco level with its surcharge rate.
func FormatEco(level string) string {
	return fmt.Sprintf("%s, %s", level, services.FormatPercent(services.EcoCoefficient(level)))
}
