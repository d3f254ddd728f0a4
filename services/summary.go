package services

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// StepSummary is one submitted step with its priced lines.
type StepSummary struct {
	Key    StepKey    `json:"key"`
	Label  string     `json:"label"`
	Items  []LineItem `json:"items"`
	Amount float64    `json:"amount"`
}

// EstimateSummary is the priced view of an estimate used by the API, the
// pages and the exports.
type EstimateSummary struct {
	ID             string         `json:"id"`
	Reference      string         `json:"reference"`
	ClientName     string         `json:"client_name"`
	ClientEmail    string         `json:"client_email"`
	Status         string         `json:"status"`
	PricingVersion PricingVersion `json:"pricing_version"`
	EcoLevel       string         `json:"eco_level"`
	Created        time.Time      `json:"created"`

	Project      *ProjectContext `json:"project,omitempty"`
	Steps        []StepSummary   `json:"steps"`
	MissingSteps []StepKey       `json:"missing_steps"`

	Subtotal     float64     `json:"subtotal"`
	EcoSurcharge float64     `json:"eco_surcharge"`
	Total        float64     `json:"total"`
	Schedule     FeeSchedule `json:"fee_schedule"`
	Fees         FeeCosts    `json:"fees"`
	GrandTotal   float64     `json:"grand_total"`
}

// FeeLines lists the non-zero fees in display order.
func (s *EstimateSummary) FeeLines() []FeeLine {
	var out []FeeLine
	for _, l := range s.Fees.Lines(s.Schedule) {
		if l.Amount != 0 {
			out = append(out, l)
		}
	}
	return out
}

// BuildEstimateSummary loads an estimate and its ledger and computes the
// totals: subtotal, eco surcharge, then fees on the subtotal.
func BuildEstimateSummary(app core.App, estimateID string, schedule FeeSchedule) (*EstimateSummary, error) {
	estimate, err := FindEstimate(app, estimateID)
	if err != nil {
		return nil, err
	}
	ledger, err := LoadLedger(app, estimate.Id)
	if err != nil {
		return nil, err
	}
	ctx, err := loadProjectContext(app, estimate.Id)
	if err != nil {
		return nil, err
	}
	return NewEstimateSummary(estimate, ledger, ctx, schedule), nil
}

// NewEstimateSummary assembles a summary from already loaded parts. The
// architect fee is left out when the project step says the client has one.
func NewEstimateSummary(estimate *core.Record, ledger *Ledger, ctx ProjectContext, schedule FeeSchedule) *EstimateSummary {
	schedule = schedule.forClient(ctx.HasArchitect)
	eco := estimate.GetString("eco_level")
	s := &EstimateSummary{
		ID:             estimate.Id,
		Reference:      estimate.GetString("reference"),
		ClientName:     estimate.GetString("client_name"),
		ClientEmail:    estimate.GetString("client_email"),
		Status:         estimate.GetString("status"),
		PricingVersion: EstimateVersion(estimate),
		EcoLevel:       eco,
		Created:        estimate.GetDateTime("created").Time(),
		Steps:          []StepSummary{},
		MissingSteps:   []StepKey{},
		Schedule:       schedule,
	}
	if ctx.Ready() {
		s.Project = &ctx
	}

	for _, k := range ledger.Steps() {
		s.Steps = append(s.Steps, StepSummary{
			Key:    k,
			Label:  k.Label(),
			Items:  ledger.StepItems(k),
			Amount: ledger.StepAmount(k),
		})
	}
	for _, k := range StepOrder {
		if !ledger.Has(k) {
			s.MissingSteps = append(s.MissingSteps, k)
		}
	}

	s.Subtotal = ledger.Subtotal()
	s.EcoSurcharge = ledger.EcoSurcharge(eco)
	s.Total = ledger.Total(eco)
	s.Fees = schedule.Apply(s.Subtotal)
	s.GrandTotal = s.Total + s.Fees.Total
	return s
}
