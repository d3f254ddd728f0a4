package main

import (
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"renovestimate/collections"
	"renovestimate/config"
	"renovestimate/handlers"
	"renovestimate/services"
)

func main() {
	app := pocketbase.New()

	var configPath string
	app.RootCmd.PersistentFlags().StringVar(&configPath, "config", "estimator.yaml", "estimator configuration file")
	// Early parse for --config only. PocketBase whitelists unknown flags and
	// Execute reports the rest (--help, malformed values) when it parses again.
	_ = app.RootCmd.ParseFlags(os.Args[1:])

	cfg, err := config.Load(configPath, ".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	registerCommands(app, cfg, configPath)

	// Create collections, migrate and seed demo data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.MigrateStepSortOrder(app); err != nil {
			log.Printf("Warning: step order migration failed: %v", err)
		}
		if err := collections.MigrateEstimateDefaults(app); err != nil {
			log.Printf("Warning: estimate defaults migration failed: %v", err)
		}
		ids, err := collections.Seed(app)
		if err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		for _, id := range ids {
			if err := services.RepriceEstimate(app, id); err != nil {
				log.Printf("Warning: pricing seeded estimate %s failed: %v", id, err)
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		access := handlers.EstimateAccessMiddleware(app)

		// ── Pages ────────────────────────────────────────────────
		se.Router.GET("/estimates", handlers.HandleEstimateList(app, cfg))
		se.Router.GET("/estimates/{id}/export/excel", handlers.HandleQuoteExportExcel(app, cfg)).BindFunc(access)
		se.Router.GET("/estimates/{id}/export/pdf", handlers.HandleQuoteExportPDF(app, cfg)).BindFunc(access)
		se.Router.GET("/estimates/{id}", handlers.HandleEstimateView(app, cfg)).BindFunc(access)

		// ── Estimate API ─────────────────────────────────────────
		se.Router.POST("/api/estimates", handlers.HandleEstimateCreate(app, cfg))
		se.Router.GET("/api/estimates/{id}", handlers.HandleEstimateGet(app, cfg)).BindFunc(access)
		se.Router.POST("/api/estimates/{id}/submit", handlers.HandleEstimateSubmit(app)).BindFunc(access)
		se.Router.GET("/api/estimates/{id}/steps/{step}", handlers.HandleStepGet(app)).BindFunc(access)
		se.Router.PUT("/api/estimates/{id}/steps/{step}", handlers.HandleStepSubmit(app)).BindFunc(access)
		se.Router.POST("/api/estimates/{id}/steps/{step}", handlers.HandleStepSubmit(app)).BindFunc(access)
		se.Router.DELETE("/api/estimates/{id}/steps/{step}", handlers.HandleStepDelete(app)).BindFunc(access)

		// ── Wizard metadata and stateless pricing ────────────────
		se.Router.GET("/api/steps", handlers.HandleStepOptions(app, cfg))
		se.Router.POST("/api/calculate", handlers.HandleCalculate(app, cfg))

		// ── Rates ────────────────────────────────────────────────
		se.Router.GET("/api/rates", handlers.HandleRatesList(app, cfg))
		se.Router.GET("/api/rates/discrepancies", handlers.HandleRateDiscrepancies(app))
		se.Router.POST("/api/rates/import", handlers.HandleRateImportValidate(app)).Bind(apis.RequireSuperuserAuth())
		se.Router.POST("/api/rates/import/commit", handlers.HandleRateImportCommit(app)).Bind(apis.RequireSuperuserAuth())
		se.Router.POST("/api/rates/import/errors", handlers.HandleRateImportErrors(app)).Bind(apis.RequireSuperuserAuth())

		// Redirect root to the estimate list
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/estimates")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
