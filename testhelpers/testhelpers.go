// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"renovestimate/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

var referenceSeq atomic.Int64

// CreateTestEstimate creates a draft wizard estimate for clientName and
// returns it. The record carries a fresh public token.
func CreateTestEstimate(t *testing.T, app *pocketbase.PocketBase, clientName string) *core.Record {
	t.Helper()
	return CreateTestEstimateWithVersion(t, app, clientName, "wizard")
}

// CreateTestEstimateWithVersion creates a draft estimate priced with version.
func CreateTestEstimateWithVersion(t *testing.T, app *pocketbase.PocketBase, clientName, version string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		t.Fatalf("failed to find estimates collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("reference", fmt.Sprintf("TEST-%04d", referenceSeq.Add(1)))
	record.Set("client_name", clientName)
	record.Set("pricing_version", version)
	record.Set("public_token", uuid.NewString())
	record.Set("status", "draft")
	record.Set("eco_level", "none")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test estimate: %v", err)
	}

	return record
}

// CreateTestRateOverride stores a rate override and returns it.
func CreateTestRateOverride(t *testing.T, app *pocketbase.PocketBase, version, category, rateType string, rate float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("rate_overrides")
	if err != nil {
		t.Fatalf("failed to find rate_overrides collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("pricing_version", version)
	record.Set("category", category)
	record.Set("rate_type", rateType)
	record.Set("rate", rate)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test rate override: %v", err)
	}

	return record
}

// NewSuperuser returns an unsaved superuser record, suitable as the Auth of
// a test request event.
func NewSuperuser(t *testing.T, app *pocketbase.PocketBase) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(core.CollectionNameSuperusers)
	if err != nil {
		t.Fatalf("failed to find superusers collection: %v", err)
	}
	record := core.NewRecord(col)
	record.SetEmail("admin@example.fr")
	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
