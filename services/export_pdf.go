package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfGrey      = &props.Color{Red: 80, Green: 80, Blue: 80}
	pdfLightGrey = &props.Color{Red: 140, Green: 140, Blue: 140}
	pdfAccent    = &props.Color{Red: 31, Green: 78, Blue: 61}
	pdfStepBg    = &props.Color{Red: 232, Green: 241, Blue: 236}
	pdfSummaryBg = &props.Color{Red: 240, Green: 240, Blue: 240}
)

// GenerateQuotePDF renders a quote with maroto/v2 and returns the raw PDF
// bytes.
func GenerateQuotePDF(q QuoteExport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} / {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   pdfLightGrey,
		}).
		Build()

	m := maroto.New(cfg)

	addQuoteHeader(m, q)
	addQuoteTableHeader(m)
	for _, r := range q.Rows {
		addQuoteRow(m, r)
	}
	addQuoteSummary(m, q)
	addQuoteFooter(m, q)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// addQuoteHeader adds the company block, the title and the client details.
func addQuoteHeader(m core.Maroto, q QuoteExport) {
	small := props.Text{Size: 8, Align: align.Left, Color: pdfGrey}

	m.AddRows(
		row.New(8).Add(
			col.New(7).Add(text.New(q.Company.Name, props.Text{
				Size:  13,
				Style: fontstyle.Bold,
				Align: align.Left,
				Color: pdfAccent,
			})),
			col.New(5).Add(text.New(q.Title, props.Text{
				Size:  13,
				Style: fontstyle.Bold,
				Align: align.Right,
			})),
		),
	)

	companyLines := []string{q.Company.Address, q.Company.Email, q.Company.Phone}
	if q.Company.Siret != "" {
		companyLines = append(companyLines, "SIRET : "+q.Company.Siret)
	}
	clientLines := []string{"Date : " + q.CreatedDate, "Client : " + q.ClientName, q.ClientEmail}

	for i := 0; i < len(companyLines) || i < len(clientLines); i++ {
		left, right := "", ""
		if i < len(companyLines) {
			left = companyLines[i]
		}
		if i < len(clientLines) {
			right = clientLines[i]
		}
		rightText := small
		rightText.Align = align.Right
		m.AddRows(
			row.New(4.5).Add(
				col.New(7).Add(text.New(left, small)),
				col.New(5).Add(text.New(right, rightText)),
			),
		)
	}

	m.AddRows(row.New(6))
}

// addQuoteTableHeader adds the column header row of the quote table.
func addQuoteTableHeader(m core.Maroto) {
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	headerCell := props.Cell{BackgroundColor: pdfAccent}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", headerText)).WithStyle(&headerCell),
			col.New(5).Add(text.New("Désignation", headerTextLeft)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Qté", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Unité", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("P.U. HT", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Montant HT", headerText)).WithStyle(&headerCell),
		),
	)
}

// addQuoteRow adds a step header or a line item.
func addQuoteRow(m core.Maroto, r QuoteRow) {
	if r.Level == 0 {
		bold := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left}
		boldRight := bold
		boldRight.Align = align.Right
		cell := &props.Cell{BackgroundColor: pdfStepBg}
		m.AddRows(
			row.New(7).Add(
				col.New(1).Add(text.New(r.Index, bold)).WithStyle(cell),
				col.New(9).Add(text.New(r.Description, bold)).WithStyle(cell),
				col.New(2).Add(text.New(FormatEUR(r.Amount), boldRight)).WithStyle(cell),
			),
		)
		return
	}

	base := props.Text{Size: 7, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	m.AddRows(
		row.New(6).Add(
			col.New(1).Add(text.New(r.Index, base)),
			col.New(5).Add(text.New("  "+r.Description, left)),
			col.New(1).Add(text.New(FormatQuantity(r.Quantity), right)),
			col.New(1).Add(text.New(r.Unit, base)),
			col.New(2).Add(text.New(FormatEUR(r.UnitRate), right)),
			col.New(2).Add(text.New(FormatEUR(r.Amount), right)),
		),
	)
}

// addQuoteSummary adds the totals section at the bottom of the quote.
func addQuoteSummary(m core.Maroto, q QuoteExport) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: pdfSummaryBg}
	labelStyle := props.Text{Size: 8, Align: align.Right}
	valueStyle := props.Text{Size: 8, Align: align.Right}

	line := func(label string, value float64, bold bool) {
		l, v := labelStyle, valueStyle
		if bold {
			l.Style, v.Style = fontstyle.Bold, fontstyle.Bold
		}
		m.AddRows(
			row.New(6).Add(
				col.New(9).Add(text.New(label, l)).WithStyle(summaryCell),
				col.New(3).Add(text.New(FormatEUR(value), v)).WithStyle(summaryCell),
			),
		)
	}

	line("Sous-total travaux", q.Subtotal, true)
	if label := q.EcoLabel(); label != "" {
		line(label, q.EcoSurcharge, false)
	}
	for _, f := range q.FeeLines {
		line(fmt.Sprintf("%s (%s)", f.Label, FormatPercent(f.Percentage)), f.Amount, false)
	}
	line("Total HT", q.TotalHT, true)
	line(fmt.Sprintf("TVA (%s)", FormatPercent(q.VATRate)), q.VAT, false)
	line("Total TTC", q.TotalTTC, true)

	m.AddRows(row.New(4))
	m.AddRows(
		row.New(10).Add(
			col.New(12).Add(text.New(
				"Arrêté le présent devis à la somme de "+q.AmountWords+".",
				props.Text{Size: 8, Style: fontstyle.Italic, Align: align.Left},
			)),
		),
	)
}

// addQuoteFooter adds the validity notice and the pricing version.
func addQuoteFooter(m core.Maroto, q QuoteExport) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Estimation indicative, grille tarifaire %q, établie le %s. Devis valable 3 mois.",
						string(q.PricingVersion), q.CreatedDate),
					props.Text{Size: 7, Align: align.Left, Color: pdfLightGrey},
				),
			),
		),
	)
}
