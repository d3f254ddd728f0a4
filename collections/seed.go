package collections

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type stepDef struct {
	key       string
	sortOrder int
	answers   map[string]any
}

type estimateDef struct {
	reference   string
	clientName  string
	clientEmail string
	version     string
	ecoLevel    string
	status      string
	steps       []stepDef
}

type overrideDef struct {
	version  string
	category string
	rateType string
	rate     float64
}

var seedEstimates = []estimateDef{
	{
		reference:   "DEV-DEMO-0001",
		clientName:  "Famille Martin",
		clientEmail: "martin@example.fr",
		version:     "wizard",
		ecoLevel:    "moderate",
		status:      "draft",
		steps: []stepDef{
			{"project", 0, map[string]any{
				"projectType": "construction", "constructionType": "traditionnelle",
				"surface": 120, "floors": 2, "hasArchitect": false,
			}},
			{"structure", 1, map[string]any{
				"foundationType": "semelles-filantes", "wallType": "parpaing", "hasBasement": false,
			}},
			{"roofing", 2, map[string]any{"roofingType": "tuile-terre-cuite"}},
			{"insulation", 3, map[string]any{"insulationType": "laine-de-roche", "thickness": 200}},
			{"flooring", 5, map[string]any{
				"tileType": "gres-cerame", "tilePercentage": 40,
				"parquetType": "contrecolle", "parquetPercentage": 60,
				"softFloorPercentage": 0,
			}},
			{"kitchen", 8, map[string]any{"kitchenType": "standard", "kitchenCount": 1}},
			{"bathroom", 9, map[string]any{"bathroomType": "standard", "bathrooms": 2}},
			{"windows", 10, map[string]any{
				"windowType": "pvc", "windowCount": 10,
				"doorType": "entree", "doorCount": 1,
			}},
			{"eco", 12, map[string]any{
				"ecoLevel": "moderate", "includeEcoSolutions": true,
				"ecoOptions": []string{"chauffe-eau-solaire", "panneaux-solaires"},
			}},
		},
	},
	{
		reference:   "DEV-DEMO-0002",
		clientName:  "SCI Les Tilleuls",
		clientEmail: "contact@tilleuls.example.fr",
		version:     "catalog",
		ecoLevel:    "none",
		status:      "draft",
		steps: []stepDef{
			{"project", 0, map[string]any{
				"projectType": "renovation", "constructionType": "complete",
				"surface": 85, "floors": 1, "hasArchitect": true,
			}},
			{"roofing", 2, map[string]any{"roofingType": "ardoise"}},
			{"painting", 6, map[string]any{
				"basicPaintType": "standard", "basicPercentage": 80,
				"decorativePercentage": 20, "wallpaperPercentage": 0,
			}},
			{"technical", 7, map[string]any{
				"heatingType": "pompe-a-chaleur", "electricalType": "standard",
				"plumbingType": "standard", "ventilationType": "vmc-hygro", "ventilationUnits": 1,
			}},
		},
	},
}

var seedOverrides = []overrideDef{
	{"catalog", "roofing", "bardeau-bitume", 65},
}

// Seed inserts demo estimates with their step answers, plus sample rate
// overrides. Line items are left empty: the caller prices the returned
// estimates. It returns early, with no ids, if any estimate already exists.
func Seed(app *pocketbase.PocketBase) ([]string, error) {
	estimatesCol, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		return nil, fmt.Errorf("seed: could not find estimates collection: %w", err)
	}
	existing, err := app.FindRecordsByFilter(estimatesCol, "id != ''", "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("seed: could not query estimates: %w", err)
	}
	if len(existing) > 0 {
		return nil, nil // already seeded
	}

	log.Println("seed: estimates collection is empty – inserting demo estimates …")

	stepsCol, err := app.FindCollectionByNameOrId("estimate_steps")
	if err != nil {
		return nil, fmt.Errorf("seed: could not find estimate_steps collection: %w", err)
	}
	overridesCol, err := app.FindCollectionByNameOrId("rate_overrides")
	if err != nil {
		return nil, fmt.Errorf("seed: could not find rate_overrides collection: %w", err)
	}

	var ids []string
	err = app.RunInTransaction(func(txApp core.App) error {
		for _, d := range seedEstimates {
			est := core.NewRecord(estimatesCol)
			est.Set("reference", d.reference)
			est.Set("client_name", d.clientName)
			est.Set("client_email", d.clientEmail)
			est.Set("pricing_version", d.version)
			est.Set("public_token", uuid.NewString())
			est.Set("status", d.status)
			est.Set("eco_level", d.ecoLevel)
			est.Set("subtotal", 0)
			est.Set("total", 0)
			if err := txApp.Save(est); err != nil {
				return fmt.Errorf("seed: estimate %s: %w", d.reference, err)
			}

			for _, s := range d.steps {
				r := core.NewRecord(stepsCol)
				r.Set("estimate", est.Id)
				r.Set("step_key", s.key)
				r.Set("sort_order", s.sortOrder)
				r.Set("payload", s.answers)
				r.Set("line_items", []any{})
				r.Set("amount", 0)
				if err := txApp.Save(r); err != nil {
					return fmt.Errorf("seed: %s step of %s: %w", s.key, d.reference, err)
				}
			}
			ids = append(ids, est.Id)
		}

		for _, o := range seedOverrides {
			r := core.NewRecord(overridesCol)
			r.Set("pricing_version", o.version)
			r.Set("category", o.category)
			r.Set("rate_type", o.rateType)
			r.Set("rate", o.rate)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: override %s/%s: %w", o.category, o.rateType, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("seed: inserted %d estimates and %d rate overrides\n", len(ids), len(seedOverrides))
	return ids, nil
}
