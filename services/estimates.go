package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// Estimate statuses.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)

// DefaultQuotePrefix prefixes quote references: DEV-2026-0001.
const DefaultQuotePrefix = "DEV"

var (
	ErrEstimateNotFound = errors.New("estimate not found")
	ErrEstimateLocked   = errors.New("estimate already submitted")
)

// NewEstimate holds the client details of an estimate being created.
type NewEstimate struct {
	ClientName     string         `json:"client_name"`
	ClientEmail    string         `json:"client_email"`
	PricingVersion PricingVersion `json:"pricing_version"`
	QuotePrefix    string         `json:"-"`
}

// StepResult is returned after a step is priced and stored.
type StepResult struct {
	Step     StepKey    `json:"step"`
	Items    []LineItem `json:"items"`
	Amount   float64    `json:"amount"`
	MontantT float64    `json:"montant_t"`
	Total    float64    `json:"total"`
}

// CreateEstimate creates a draft estimate with a fresh quote reference and
// public access token.
func CreateEstimate(app core.App, in NewEstimate, now time.Time) (*core.Record, error) {
	version, err := ParsePricingVersion(string(in.PricingVersion))
	if err != nil {
		return nil, err
	}
	prefix := in.QuotePrefix
	if prefix == "" {
		prefix = DefaultQuotePrefix
	}

	col, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		return nil, fmt.Errorf("estimates collection: %w", err)
	}

	var record *core.Record
	err = app.RunInTransaction(func(txApp core.App) error {
		ref, err := GenerateQuoteNumber(txApp, prefix, now)
		if err != nil {
			return err
		}
		record = core.NewRecord(col)
		record.Set("reference", ref)
		record.Set("client_name", strings.TrimSpace(in.ClientName))
		record.Set("client_email", strings.TrimSpace(in.ClientEmail))
		record.Set("pricing_version", string(version))
		record.Set("public_token", uuid.NewString())
		record.Set("status", StatusDraft)
		record.Set("eco_level", EcoNone)
		record.Set("subtotal", 0)
		record.Set("total", 0)
		return txApp.Save(record)
	})
	if err != nil {
		return nil, fmt.Errorf("create estimate: %w", err)
	}

	app.Logger().Info("estimate created",
		"id", record.Id,
		"reference", record.GetString("reference"),
		"pricing_version", string(version),
	)
	return record, nil
}

// FindEstimate loads an estimate record, mapping a missing record to
// ErrEstimateNotFound.
func FindEstimate(app core.App, id string) (*core.Record, error) {
	record, err := app.FindRecordById("estimates", id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEstimateNotFound, id)
	}
	return record, nil
}

// ListEstimates returns the most recent estimates first.
func ListEstimates(app core.App, limit int) ([]*core.Record, error) {
	return app.FindRecordsByFilter("estimates", "id != ''", "-created", limit, 0)
}

// EstimateVersion reads the pricing version of an estimate record, falling
// back to the canonical version for legacy values.
func EstimateVersion(record *core.Record) PricingVersion {
	v, err := ParsePricingVersion(record.GetString("pricing_version"))
	if err != nil {
		return PricingWizard
	}
	return v
}

// SubmitStep validates, prices and stores one wizard step. A resubmitted
// step replaces its previous contribution. Submitting the project step
// reprices the steps that depend on the surface.
func SubmitStep(app core.App, estimateID, key string, form FormData) (*StepResult, error) {
	step, err := DecodeStep(key, form)
	if err != nil {
		return nil, err
	}

	var result *StepResult
	err = app.RunInTransaction(func(txApp core.App) error {
		estimate, err := FindEstimate(txApp, estimateID)
		if err != nil {
			return err
		}
		if estimate.GetString("status") == StatusSubmitted {
			return ErrEstimateLocked
		}

		book, err := LoadRateBook(txApp, EstimateVersion(estimate))
		if err != nil {
			return err
		}

		var ctx ProjectContext
		if p, ok := step.(*ProjectStep); ok {
			ctx = p.Context()
		} else if ctx, err = loadProjectContext(txApp, estimate.Id); err != nil {
			return err
		}

		items, err := PriceStep(step, book, ctx)
		if err != nil {
			return err
		}
		if err := saveStep(txApp, estimate.Id, step, items); err != nil {
			return err
		}

		if step.Key() == StepProject {
			if err := repriceSteps(txApp, estimate.Id, book, ctx, NeedsProject); err != nil {
				return err
			}
		}
		if eco, ok := step.(*EcoStep); ok {
			estimate.Set("eco_level", eco.EcoLevel)
		}

		ledger, err := refreshTotals(txApp, estimate)
		if err != nil {
			return err
		}
		result = &StepResult{
			Step:     step.Key(),
			Items:    ledger.StepItems(step.Key()),
			Amount:   ledger.StepAmount(step.Key()),
			MontantT: ledger.MontantT(),
			Total:    ledger.Total(estimate.GetString("eco_level")),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveStep deletes the stored contribution of a step.
func RemoveStep(app core.App, estimateID, key string) error {
	k := StepKey(NormalizeKey(key))
	if !k.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStep, key)
	}
	return app.RunInTransaction(func(txApp core.App) error {
		estimate, err := FindEstimate(txApp, estimateID)
		if err != nil {
			return err
		}
		if estimate.GetString("status") == StatusSubmitted {
			return ErrEstimateLocked
		}
		record, err := findStepRecord(txApp, estimate.Id, k)
		if err != nil {
			return err
		}
		if record != nil {
			if err := txApp.Delete(record); err != nil {
				return fmt.Errorf("delete %s step: %w", k, err)
			}
		}
		if k == StepEco {
			estimate.Set("eco_level", EcoNone)
		}
		_, err = refreshTotals(txApp, estimate)
		return err
	})
}

// SubmitEstimate locks an estimate. The project step is required.
func SubmitEstimate(app core.App, estimateID string) (*core.Record, error) {
	var estimate *core.Record
	err := app.RunInTransaction(func(txApp core.App) error {
		var err error
		estimate, err = FindEstimate(txApp, estimateID)
		if err != nil {
			return err
		}
		if estimate.GetString("status") == StatusSubmitted {
			return ErrEstimateLocked
		}
		record, err := findStepRecord(txApp, estimate.Id, StepProject)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrProjectStepMissing
		}
		if _, err := refreshTotals(txApp, estimate); err != nil {
			return err
		}
		estimate.Set("status", StatusSubmitted)
		return txApp.Save(estimate)
	})
	if err != nil {
		return nil, err
	}

	app.Logger().Info("estimate submitted",
		"id", estimate.Id,
		"reference", estimate.GetString("reference"),
		"total", estimate.GetFloat("total"),
	)
	return estimate, nil
}

// RepriceEstimate prices every stored step again against the current rate
// book of the estimate, e.g. after rate overrides changed.
func RepriceEstimate(app core.App, estimateID string) error {
	return app.RunInTransaction(func(txApp core.App) error {
		estimate, err := FindEstimate(txApp, estimateID)
		if err != nil {
			return err
		}
		book, err := LoadRateBook(txApp, EstimateVersion(estimate))
		if err != nil {
			return err
		}
		ctx, err := loadProjectContext(txApp, estimate.Id)
		if err != nil {
			return err
		}
		if err := repriceSteps(txApp, estimate.Id, book, ctx, func(StepKey) bool { return true }); err != nil {
			return err
		}
		_, err = refreshTotals(txApp, estimate)
		return err
	})
}

// LoadLedger rebuilds the ledger of an estimate from its stored steps.
func LoadLedger(app core.App, estimateID string) (*Ledger, error) {
	records, err := findStepRecords(app, estimateID)
	if err != nil {
		return nil, err
	}
	ledger := NewLedger()
	for _, r := range records {
		var items []LineItem
		if err := r.UnmarshalJSONField("line_items", &items); err != nil {
			return nil, fmt.Errorf("decode line items of %s: %w", r.GetString("step_key"), err)
		}
		ledger.Put(StepKey(r.GetString("step_key")), items)
	}
	return ledger, nil
}

// LoadStep restores the typed answers of a stored step, or nil when the step
// has not been submitted.
func LoadStep(app core.App, estimateID string, key StepKey) (Step, error) {
	record, err := findStepRecord(app, estimateID, key)
	if err != nil || record == nil {
		return nil, err
	}
	return UnmarshalStep(key, []byte(record.GetString("payload")))
}

// GenerateQuoteNumber returns the next quote reference for the calendar year
// of now: {prefix}-{year}-{sequence}, the sequence 4-digit zero-padded.
func GenerateQuoteNumber(app core.App, prefix string, now time.Time) (string, error) {
	if prefix == "" {
		prefix = DefaultQuotePrefix
	}
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, now.Year())

	existing, err := app.FindRecordsByFilter(
		"estimates",
		"reference ~ {:prefix}",
		"",
		0,
		0,
		dbx.Params{"prefix": yearPrefix + "%"},
	)
	if err != nil {
		return "", fmt.Errorf("load %s references: %w", yearPrefix, err)
	}

	next := 1
	for _, r := range existing {
		seq, err := strconv.Atoi(strings.TrimPrefix(r.GetString("reference"), yearPrefix))
		if err == nil && seq >= next {
			next = seq + 1
		}
	}
	return formatQuoteNumber(yearPrefix, next), nil
}

func formatQuoteNumber(yearPrefix string, sequence int) string {
	return fmt.Sprintf("%s%04d", yearPrefix, sequence)
}

// LoadRateBook returns the built-in book of version with the stored rate
// overrides applied.
func LoadRateBook(app core.App, version PricingVersion) (*RateBook, error) {
	book, err := RateBookFor(version)
	if err != nil {
		return nil, err
	}
	overrides, err := LoadRateOverrides(app, version)
	if err != nil {
		return nil, err
	}
	return book.WithOverrides(overrides), nil
}

// LoadRateOverrides reads the stored overrides of version.
func LoadRateOverrides(app core.App, version PricingVersion) ([]RateOverride, error) {
	records, err := app.FindRecordsByFilter(
		"rate_overrides",
		"pricing_version = {:version}",
		"category,rate_type",
		0,
		0,
		dbx.Params{"version": string(version)},
	)
	if err != nil {
		return nil, fmt.Errorf("load rate overrides: %w", err)
	}
	out := make([]RateOverride, 0, len(records))
	for _, r := range records {
		out = append(out, RateOverride{
			Version:  version,
			Category: Category(r.GetString("category")),
			Type:     r.GetString("rate_type"),
			Rate:     r.GetFloat("rate"),
		})
	}
	return out, nil
}

// ── internal ───────────────────────────────────────────────────────────

func findStepRecords(app core.App, estimateID string) ([]*core.Record, error) {
	records, err := app.FindRecordsByFilter(
		"estimate_steps",
		"estimate = {:estimate}",
		"sort_order",
		0,
		0,
		dbx.Params{"estimate": estimateID},
	)
	if err != nil {
		return nil, fmt.Errorf("load steps: %w", err)
	}
	return records, nil
}

// findStepRecord returns nil without error when the step is not stored.
func findStepRecord(app core.App, estimateID string, key StepKey) (*core.Record, error) {
	record, err := app.FindFirstRecordByFilter(
		"estimate_steps",
		"estimate = {:estimate} && step_key = {:key}",
		dbx.Params{"estimate": estimateID, "key": string(key)},
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s step: %w", key, err)
	}
	return record, nil
}

func saveStep(app core.App, estimateID string, step Step, items []LineItem) error {
	record, err := findStepRecord(app, estimateID, step.Key())
	if err != nil {
		return err
	}
	if record == nil {
		col, err := app.FindCollectionByNameOrId("estimate_steps")
		if err != nil {
			return fmt.Errorf("estimate_steps collection: %w", err)
		}
		record = core.NewRecord(col)
		record.Set("estimate", estimateID)
		record.Set("step_key", string(step.Key()))
	}
	if items == nil {
		items = []LineItem{}
	}
	var amount float64
	for _, it := range items {
		amount += it.Amount
	}
	record.Set("sort_order", step.Key().Index())
	record.Set("payload", step)
	record.Set("line_items", items)
	record.Set("amount", amount)
	if err := app.Save(record); err != nil {
		return fmt.Errorf("save %s step: %w", step.Key(), err)
	}
	return nil
}

func loadProjectContext(app core.App, estimateID string) (ProjectContext, error) {
	step, err := LoadStep(app, estimateID, StepProject)
	if err != nil || step == nil {
		return ProjectContext{}, err
	}
	return step.(*ProjectStep).Context(), nil
}

// repriceSteps prices the stored steps selected by include again.
func repriceSteps(app core.App, estimateID string, book *RateBook, ctx ProjectContext, include func(StepKey) bool) error {
	records, err := findStepRecords(app, estimateID)
	if err != nil {
		return err
	}
	for _, r := range records {
		key := StepKey(r.GetString("step_key"))
		// Without a project step the stored prices of dependent steps stay.
		if !include(key) || (NeedsProject(key) && !ctx.Ready()) {
			continue
		}
		step, err := UnmarshalStep(key, []byte(r.GetString("payload")))
		if err != nil {
			return err
		}
		items, err := PriceStep(step, book, ctx)
		if err != nil {
			return err
		}
		if err := saveStep(app, estimateID, step, items); err != nil {
			return err
		}
	}
	return nil
}

// refreshTotals stores the ledger subtotal and total on the estimate.
func refreshTotals(app core.App, estimate *core.Record) (*Ledger, error) {
	ledger, err := LoadLedger(app, estimate.Id)
	if err != nil {
		return nil, err
	}
	estimate.Set("subtotal", ledger.Subtotal())
	estimate.Set("total", ledger.Total(estimate.GetString("eco_level")))
	if err := app.Save(estimate); err != nil {
		return nil, fmt.Errorf("save estimate totals: %w", err)
	}
	return ledger, nil
}
