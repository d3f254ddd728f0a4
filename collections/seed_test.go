package collections_test

import (
	"testing"

	"renovestimate/collections"
	"renovestimate/testhelpers"
)

func TestSeed_InsertsDemoEstimates(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	ids, err := collections.Seed(app)
	if err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 seeded estimate ids, got %d", len(ids))
	}

	all, err := app.FindAllRecords("estimates")
	if err != nil {
		t.Fatalf("query estimates: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 estimates, got %d", len(all))
	}

	refs := map[string]bool{}
	for _, r := range all {
		refs[r.GetString("reference")] = true
		if r.GetString("public_token") == "" {
			t.Errorf("estimate %s has no public token", r.GetString("reference"))
		}
		if r.GetString("status") != "draft" {
			t.Errorf("estimate %s: expected draft, got %q", r.GetString("reference"), r.GetString("status"))
		}
	}
	for _, ref := range []string{"DEV-DEMO-0001", "DEV-DEMO-0002"} {
		if !refs[ref] {
			t.Errorf("expected seeded estimate %s", ref)
		}
	}
}

func TestSeed_Steps(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	ids, err := collections.Seed(app)
	if err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	counts := map[string]int{}
	for _, id := range ids {
		est, err := app.FindRecordById("estimates", id)
		if err != nil {
			t.Fatalf("find estimate: %v", err)
		}
		steps, err := app.FindRecordsByFilter("estimate_steps", "estimate = {:id}", "sort_order", 0, 0,
			map[string]any{"id": id})
		if err != nil {
			t.Fatalf("query steps: %v", err)
		}
		counts[est.GetString("reference")] = len(steps)

		if len(steps) == 0 || steps[0].GetString("step_key") != "project" {
			t.Errorf("%s: expected the project step first", est.GetString("reference"))
		}
		for _, s := range steps {
			if s.GetString("payload") == "" || s.GetString("payload") == "null" {
				t.Errorf("%s: step %s has no answers", est.GetString("reference"), s.GetString("step_key"))
			}
		}
	}
	if counts["DEV-DEMO-0001"] != 9 {
		t.Errorf("DEV-DEMO-0001: expected 9 steps, got %d", counts["DEV-DEMO-0001"])
	}
	if counts["DEV-DEMO-0002"] != 4 {
		t.Errorf("DEV-DEMO-0002: expected 4 steps, got %d", counts["DEV-DEMO-0002"])
	}
}

func TestSeed_RateOverrides(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	overrides, err := app.FindAllRecords("rate_overrides")
	if err != nil {
		t.Fatalf("query overrides: %v", err)
	}
	if len(overrides) != 1 {
		t.Fatalf("expected 1 rate override, got %d", len(overrides))
	}
	o := overrides[0]
	if o.GetString("pricing_version") != "catalog" || o.GetString("rate_type") != "bardeau-bitume" || o.GetFloat("rate") != 65 {
		t.Errorf("unexpected override %s/%s/%v", o.GetString("pricing_version"), o.GetString("rate_type"), o.GetFloat("rate"))
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if _, err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}
	ids, err := collections.Seed(app)
	if err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}
	if ids != nil {
		t.Errorf("expected no ids on the second run, got %v", ids)
	}

	all, _ := app.FindAllRecords("estimates")
	if len(all) != 2 {
		t.Errorf("expected 2 estimates after two runs, got %d", len(all))
	}
}

func TestSeed_SkipsWhenEstimatesExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestEstimate(t, app, "Existing Client")

	ids, err := collections.Seed(app)
	if err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected seed to be skipped, got %d ids", len(ids))
	}
}
