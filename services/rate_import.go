package services

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"
)

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RateSheetResult is returned after parsing and validating an uploaded rate
// sheet.
type RateSheetResult struct {
	Version   PricingVersion    `json:"pricing_version"`
	FileName  string            `json:"file_name"`
	TotalRows int               `json:"total_rows"`
	ValidRows int               `json:"valid_rows"`
	ErrorRows int               `json:"error_rows"`
	Errors    []ValidationError `json:"errors"`
	Overrides []RateOverride    `json:"overrides"`
}

// ImportResult holds the outcome of committing rate overrides.
type ImportResult struct {
	TotalRows  int  `json:"total_rows"`
	Imported   int  `json:"imported"`
	Updated    int  `json:"updated"`
	Repriced   int  `json:"repriced"`
	RolledBack bool `json:"rolled_back"`
}

// Recognised header spellings, after lowercasing.
var rateSheetHeaders = map[string]string{
	"category":  "category",
	"categorie": "category",
	"catégorie": "category",
	"type":      "type",
	"rate":      "rate",
	"tarif":     "rate",
	"prix":      "rate",
}

// parseCSV reads a CSV file and returns headers + data rows. Semicolon
// separated files, as written by French spreadsheets, are detected from the
// header line.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	header, _, _ := strings.Cut(string(data), "\n")
	if strings.Count(header, ";") > strings.Count(header, ",") {
		reader.Comma = ';'
	}

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// mapRateSheetHeaders returns the column index of each known column.
func mapRateSheetHeaders(headers []string) (map[string]int, error) {
	cols := make(map[string]int, 3)
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := rateSheetHeaders[key]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	for _, want := range []string{"category", "type", "rate"} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("missing %q column", want)
		}
	}
	return cols, nil
}

// ValidateRateSheet parses and validates an uploaded rate sheet (.csv or
// .xlsx) with the columns category, type and rate. Rows are checked for a
// known category, a type and a non-negative rate; a category/type pair may
// appear only once.
func ValidateRateSheet(file io.Reader, fileName string, version PricingVersion) (*RateSheetResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	cols, err := mapRateSheetHeaders(headers)
	if err != nil {
		return nil, err
	}

	result := &RateSheetResult{
		Version:   version,
		FileName:  fileName,
		Errors:    []ValidationError{},
		Overrides: []RateOverride{},
	}

	cell := func(row []string, field string) string {
		if i := cols[field]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	seen := make(map[string]int)
	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		if strings.Join(row, "") == "" {
			continue
		}
		result.TotalRows++

		var rowErrors []ValidationError
		category := Category(strings.ReplaceAll(strings.ToLower(cell(row, "category")), "-", "_"))
		if !category.Known() {
			rowErrors = append(rowErrors, ValidationError{
				Row: rowNum, Field: "category",
				Message: fmt.Sprintf("unknown category %q", cell(row, "category")),
			})
		}
		typ := NormalizeKey(cell(row, "type"))
		if typ == "" {
			rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: "type", Message: "type is required"})
		}
		rate, err := ParseNumber(cell(row, "rate"))
		if err != nil || !isFinite(rate) || rate < 0 {
			rowErrors = append(rowErrors, ValidationError{
				Row: rowNum, Field: "rate",
				Message: fmt.Sprintf("rate %q must be a number ≥ 0", cell(row, "rate")),
			})
		}

		if len(rowErrors) == 0 {
			key := string(category) + "/" + typ
			if first, dup := seen[key]; dup {
				rowErrors = append(rowErrors, ValidationError{
					Row: rowNum, Field: "type",
					Message: fmt.Sprintf("duplicate of row %d", first),
				})
			} else {
				seen[key] = rowNum
			}
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}
		result.Overrides = append(result.Overrides, RateOverride{
			Version:  version,
			Category: category,
			Type:     typ,
			Rate:     rate,
		})
	}
	result.ValidRows = len(result.Overrides)
	return result, nil
}

// CommitRateOverrides upserts overrides for version in one transaction, then
// reprices the draft estimates of that version. Overrides of another version
// are rejected.
func CommitRateOverrides(app core.App, version PricingVersion, overrides []RateOverride) (*ImportResult, error) {
	result := &ImportResult{TotalRows: len(overrides)}

	col, err := app.FindCollectionByNameOrId("rate_overrides")
	if err != nil {
		return nil, fmt.Errorf("rate_overrides collection not found: %w", err)
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		for i, o := range overrides {
			if o.Version != "" && o.Version != version {
				return fmt.Errorf("row %d: override for %q in a %q import", i+1, o.Version, version)
			}
			if !o.Category.Known() || !isFinite(o.Rate) || o.Rate < 0 {
				return fmt.Errorf("row %d: invalid override %s/%s", i+1, o.Category, o.Type)
			}
			typ := NormalizeKey(o.Type)
			if typ == "" {
				return fmt.Errorf("row %d: %s override without a type", i+1, o.Category)
			}
			record, err := txApp.FindFirstRecordByFilter(col,
				"pricing_version = {:version} && category = {:category} && rate_type = {:type}",
				dbx.Params{"version": string(version), "category": string(o.Category), "type": typ},
			)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("row %d: find override: %w", i+1, err)
			}
			if record == nil {
				record = core.NewRecord(col)
				record.Set("pricing_version", string(version))
				record.Set("category", string(o.Category))
				record.Set("rate_type", typ)
				result.Imported++
			} else {
				result.Updated++
			}
			record.Set("rate", o.Rate)
			if err := txApp.Save(record); err != nil {
				return fmt.Errorf("row %d: save override: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		result.Imported, result.Updated, result.RolledBack = 0, 0, true
		return result, err
	}

	drafts, err := app.FindRecordsByFilter("estimates",
		"status = {:status} && pricing_version = {:version}", "", 0, 0,
		dbx.Params{"status": StatusDraft, "version": string(version)},
	)
	if err != nil {
		return result, nil
	}
	for _, d := range drafts {
		if err := RepriceEstimate(app, d.Id); err != nil {
			app.Logger().Warn("reprice after rate import failed", "estimate", d.Id, "error", err)
			continue
		}
		result.Repriced++
	}
	return result, nil
}

// GenerateErrorReport creates a downloadable .xlsx file from validation errors.
func GenerateErrorReport(errs []ValidationError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Erreurs"
	defaultSheet := f.GetSheetName(0)
	f.SetSheetName(defaultSheet, sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Ligne")
	f.SetCellValue(sheet, "B1", "Colonne")
	f.SetCellValue(sheet, "C1", "Erreur")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 16)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errs {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
