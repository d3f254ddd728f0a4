package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the estimates, estimate_steps and
// rate_overrides collections exist.
func Setup(app *pocketbase.PocketBase) {
	estimates := ensureCollection(app, "estimates", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "reference", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.EmailField{Name: "client_email", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "pricing_version",
			Required:  true,
			Values:    pricingVersions,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "public_token", Required: true, Hidden: true})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "submitted"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "eco_level",
			Required:  false,
			Values:    []string{"none", "minimal", "moderate", "extensive"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "subtotal", Required: false})
		c.Fields.Add(&core.NumberField{Name: "total", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_estimates_reference", true, "reference", "")
		c.AddIndex("idx_estimates_public_token", true, "public_token", "")
	})

	ensureCollection(app, "estimate_steps", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "estimate",
			Required:      true,
			CollectionId:  estimates.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "step_key", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.Fields.Add(&core.JSONField{Name: "payload", Required: false})
		c.Fields.Add(&core.JSONField{Name: "line_items", Required: false})
		c.Fields.Add(&core.NumberField{Name: "amount", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_estimate_steps_estimate_step", true, "estimate, step_key", "")
	})

	ensureCollection(app, "rate_overrides", func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "pricing_version",
			Required:  true,
			Values:    pricingVersions,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "category", Required: true})
		c.Fields.Add(&core.TextField{Name: "rate_type", Required: true})
		c.Fields.Add(&core.NumberField{Name: "rate", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_rate_overrides_key", true, "pricing_version, category, rate_type", "")
	})
}

// pricingVersions mirrors services.PricingVersions.
var pricingVersions = []string{"wizard", "catalog"}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
