package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
)

// stepOrder mirrors services.StepOrder.
var stepOrder = []string{
	"project", "structure", "roofing", "insulation", "facade", "flooring",
	"painting", "technical", "kitchen", "bathroom", "windows", "exterior", "eco",
}

// MigrateStepSortOrder realigns the sort_order of stored steps with the wizard
// order of their step_key. Safe to call on every startup; records already in
// place are left untouched.
func MigrateStepSortOrder(app *pocketbase.PocketBase) error {
	stepsCol, err := app.FindCollectionByNameOrId("estimate_steps")
	if err != nil {
		return fmt.Errorf("migrate_steps: could not find estimate_steps collection: %w", err)
	}

	records, err := app.FindAllRecords(stepsCol)
	if err != nil {
		return fmt.Errorf("migrate_steps: could not query steps: %w", err)
	}

	index := make(map[string]int, len(stepOrder))
	for i, k := range stepOrder {
		index[k] = i
	}

	fixed := 0
	for _, r := range records {
		want, ok := index[r.GetString("step_key")]
		if !ok {
			// Unknown keys sort after the wizard steps.
			want = len(stepOrder)
		}
		if r.GetInt("sort_order") == want {
			continue
		}
		r.Set("sort_order", want)
		if err := app.Save(r); err != nil {
			log.Printf("migrate_steps: failed to reorder step %s (%s): %v\n", r.Id, r.GetString("step_key"), err)
			continue
		}
		fixed++
	}

	if fixed > 0 {
		log.Printf("migrate_steps: reordered %d step(s)\n", fixed)
	}
	return nil
}

// MigrateEstimateDefaults fills the eco level of estimates created before it
// was tracked. Safe to call on every startup.
func MigrateEstimateDefaults(app *pocketbase.PocketBase) error {
	estimatesCol, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		return fmt.Errorf("migrate_estimates: could not find estimates collection: %w", err)
	}

	records, err := app.FindRecordsByFilter(estimatesCol, "eco_level = ''", "", 0, 0)
	if err != nil {
		return fmt.Errorf("migrate_estimates: could not query estimates: %w", err)
	}

	for _, r := range records {
		r.Set("eco_level", "none")
		if err := app.Save(r); err != nil {
			log.Printf("migrate_estimates: failed to set eco level of %s: %v\n", r.Id, err)
		}
	}
	return nil
}
