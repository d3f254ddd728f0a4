package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// euroNumFmt renders amounts as "1 234,56 €" in French locales.
var euroNumFmt = `#,##0.00\ "€"`

// GenerateQuoteExcel creates an Excel workbook from a quote and returns the
// file contents as a byte slice.
func GenerateQuoteExcel(q QuoteExport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Devis"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F"}
	lastCol := columns[len(columns)-1]

	widths := []float64{7, 48, 10, 9, 16, 18}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F4E3D"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	stepStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 10},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"#E8F1EC"}, Pattern: 1},
		Border:       thinBorders(),
		CustomNumFmt: &euroNumFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create step style: %w", err)
	}

	itemStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &euroNumFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}

	qtyStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
		NumFmt: 4, // #,##0.00
	})
	if err != nil {
		return nil, fmt.Errorf("create quantity style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &euroNumFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header Rows (1-4) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(q.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	headerLines := []string{
		q.Company.Name,
		"Client : " + q.ClientName,
		"Date : " + q.CreatedDate,
	}
	for i, line := range headerLines {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.MergeCell(sheetName, cell, fmt.Sprintf("%s%d", lastCol, i+2)); err != nil {
			return nil, fmt.Errorf("merge header line: %w", err)
		}
		f.SetCellValue(sheetName, cell, sanitizeExcelCell(line))
		f.SetCellStyle(sheetName, cell, cell, subtitleStyle)
	}

	// ── Row 6: Column Headers ───────────────────────────────────────────

	headers := []string{"#", "Désignation", "Qté", "Unité", "P.U. HT", "Montant HT"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s6", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A6", lastCol+"6", headerStyle)

	// ── Data Rows (starting row 7) ──────────────────────────────────────

	row := 7
	for _, r := range q.Rows {
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetName, "A"+rowStr, r.Index)
		if r.Level == 0 {
			f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(r.Description))
			f.SetCellValue(sheetName, "F"+rowStr, r.Amount)
			f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, stepStyle)
			row++
			continue
		}

		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell("  "+r.Description))
		f.SetCellValue(sheetName, "C"+rowStr, r.Quantity)
		f.SetCellValue(sheetName, "D"+rowStr, sanitizeExcelCell(r.Unit))
		f.SetCellValue(sheetName, "E"+rowStr, r.UnitRate)
		f.SetCellValue(sheetName, "F"+rowStr, r.Amount)
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, itemStyle)
		f.SetCellStyle(sheetName, "C"+rowStr, "C"+rowStr, qtyStyle)
		row++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	row++
	summary := func(label string, value float64) {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "E"+rowStr, sanitizeExcelCell(label))
		f.SetCellStyle(sheetName, "E"+rowStr, "E"+rowStr, summaryLabelStyle)
		f.SetCellValue(sheetName, "F"+rowStr, value)
		f.SetCellStyle(sheetName, "F"+rowStr, "F"+rowStr, summaryValueStyle)
		row++
	}

	summary("Sous-total travaux", q.Subtotal)
	if label := q.EcoLabel(); label != "" {
		summary(label, q.EcoSurcharge)
	}
	for _, l := range q.FeeLines {
		summary(fmt.Sprintf("%s (%s)", l.Label, FormatPercent(l.Percentage)), l.Amount)
	}
	summary("Total HT", q.TotalHT)
	summary(fmt.Sprintf("TVA (%s)", FormatPercent(q.VATRate)), q.VAT)
	summary("Total TTC", q.TotalTTC)

	row++
	wordsCell := fmt.Sprintf("A%d", row)
	if err := f.MergeCell(sheetName, wordsCell, fmt.Sprintf("%s%d", lastCol, row)); err != nil {
		return nil, fmt.Errorf("merge amount in words: %w", err)
	}
	f.SetCellValue(sheetName, wordsCell, "Arrêté le présent devis à la somme de "+q.AmountWords+".")

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
