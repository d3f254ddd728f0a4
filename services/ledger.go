package services

import "sort"

// StepKey names a wizard step.
type StepKey string

const (
	StepProject    StepKey = "project"
	StepStructure  StepKey = "structure"
	StepRoofing    StepKey = "roofing"
	StepInsulation StepKey = "insulation"
	StepFacade     StepKey = "facade"
	StepFlooring   StepKey = "flooring"
	StepPainting   StepKey = "painting"
	StepTechnical  StepKey = "technical"
	StepKitchen    StepKey = "kitchen"
	StepBathroom   StepKey = "bathroom"
	StepWindows    StepKey = "windows"
	StepExterior   StepKey = "exterior"
	StepEco        StepKey = "eco"
)

// StepOrder is the order in which the wizard presents the steps.
var StepOrder = []StepKey{
	StepProject, StepStructure, StepRoofing, StepInsulation, StepFacade,
	StepFlooring, StepPainting, StepTechnical, StepKitchen, StepBathroom,
	StepWindows, StepExterior, StepEco,
}

var stepLabels = map[StepKey]string{
	StepProject:    "Projet",
	StepStructure:  "Structure",
	StepRoofing:    "Couverture",
	StepInsulation: "Isolation",
	StepFacade:     "Façade",
	StepFlooring:   "Revêtements de sol",
	StepPainting:   "Peinture",
	StepTechnical:  "Lots techniques",
	StepKitchen:    "Cuisine",
	StepBathroom:   "Salles de bain",
	StepWindows:    "Menuiseries",
	StepExterior:   "Extérieurs",
	StepEco:        "Solutions écologiques",
}

// Index returns the position of k in StepOrder, or -1.
func (k StepKey) Index() int {
	for i, s := range StepOrder {
		if s == k {
			return i
		}
	}
	return -1
}

// Valid reports whether k is a wizard step.
func (k StepKey) Valid() bool {
	return k.Index() >= 0
}

// Label is the French display name of the step.
func (k StepKey) Label() string {
	if l, ok := stepLabels[k]; ok {
		return l
	}
	return string(k)
}

// LineItem is one priced contribution of a wizard step.
type LineItem struct {
	Step     StepKey  `json:"step"`
	Category Category `json:"category"`
	Type     string   `json:"type,omitempty"`
	Label    string   `json:"label"`
	Quantity float64  `json:"quantity"`
	Unit     string   `json:"unit"`
	UnitRate float64  `json:"unit_rate"`
	Amount   float64  `json:"amount"`
}

// PriceLine builds a line item priced at the book rate of typ in category c.
func PriceLine(book *RateBook, step StepKey, c Category, typ string, quantity any) LineItem {
	q := nonNegative(quantity)
	rate := book.Rate(c, typ)
	return LineItem{
		Step:     step,
		Category: c,
		Type:     NormalizeKey(typ),
		Label:    lineLabel(c, typ),
		Quantity: q,
		Unit:     c.Info().Unit,
		UnitRate: rate,
		Amount:   rate * q,
	}
}

// LumpSumLine builds a single lump-sum line item.
func LumpSumLine(step StepKey, c Category, label string, amount float64) LineItem {
	if !isFinite(amount) || amount < 0 {
		amount = 0
	}
	return LineItem{
		Step:     step,
		Category: c,
		Label:    label,
		Quantity: 1,
		Unit:     UnitLumpSum,
		UnitRate: amount,
		Amount:   amount,
	}
}

func lineLabel(c Category, typ string) string {
	if typ == "" {
		return c.Info().Label
	}
	return c.Info().Label + " – " + TitleCase(typ)
}

// Ledger folds the priced contributions of wizard steps into a total. Each
// step owns its line items: submitting a step again replaces its previous
// contribution, so navigating back never double counts.
//
// The zero value is an empty ledger. A Ledger is not safe for concurrent use.
type Ledger struct {
	steps map[StepKey][]LineItem
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{steps: make(map[StepKey][]LineItem)}
}

// Put records items as the full contribution of step, replacing any earlier
// submission. Items are copied and tagged with step.
func (l *Ledger) Put(step StepKey, items []LineItem) {
	cp := make([]LineItem, len(items))
	for i, it := range items {
		it.Step = step
		cp[i] = it
	}
	if l.steps == nil {
		l.steps = make(map[StepKey][]LineItem)
	}
	l.steps[step] = cp
}

// Remove drops the contribution of step.
func (l *Ledger) Remove(step StepKey) {
	delete(l.steps, step)
}

// Has reports whether step has been submitted.
func (l *Ledger) Has(step StepKey) bool {
	_, ok := l.steps[step]
	return ok
}

// Steps returns the submitted steps in wizard order. Steps unknown to the
// wizard sort last, by name.
func (l *Ledger) Steps() []StepKey {
	out := make([]StepKey, 0, len(l.steps))
	for k := range l.steps {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Index(), out[j].Index()
		if a < 0 && b < 0 {
			return out[i] < out[j]
		}
		if a < 0 || b < 0 {
			return b < 0
		}
		return a < b
	})
	return out
}

// StepItems returns a copy of the line items of step.
func (l *Ledger) StepItems(step StepKey) []LineItem {
	return append([]LineItem(nil), l.steps[step]...)
}

// StepAmount sums the line items of step.
func (l *Ledger) StepAmount(step StepKey) float64 {
	var sum float64
	for _, it := range l.steps[step] {
		sum += it.Amount
	}
	return sum
}

// Items returns every line item in wizard order.
func (l *Ledger) Items() []LineItem {
	var out []LineItem
	for _, s := range l.Steps() {
		out = append(out, l.steps[s]...)
	}
	return out
}

// Subtotal is the sum of every line item.
func (l *Ledger) Subtotal() float64 {
	var sum float64
	for _, s := range l.Steps() {
		sum += l.StepAmount(s)
	}
	return sum
}

// MontantT is the running total shown by the wizard: the subtotal before the
// eco surcharge.
func (l *Ledger) MontantT() float64 {
	return l.Subtotal()
}

// EcoSurcharge applies the eco coefficient of level to the subtotal.
func (l *Ledger) EcoSurcharge(level string) float64 {
	return l.Subtotal() * EcoCoefficient(level)
}

// Total is the subtotal plus the eco surcharge of level.
func (l *Ledger) Total(level string) float64 {
	return l.Subtotal() + l.EcoSurcharge(level)
}
