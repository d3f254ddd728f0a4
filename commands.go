package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/pocketbase/pocketbase"
	"github.com/spf13/cobra"

	"renovestimate/config"
	"renovestimate/services"
)

// registerCommands adds the estimator commands next to PocketBase's serve and
// migrate commands.
func registerCommands(app *pocketbase.PocketBase, cfg *config.Config, configPath string) {
	app.RootCmd.AddCommand(estimateCommand(app, cfg))
	app.RootCmd.AddCommand(ratesCommand(app))
	app.RootCmd.AddCommand(configCommand(cfg, configPath))
}

// bookFor returns the rate book of version with the stored overrides, or the
// built-in book when the database has not been set up yet.
func bookFor(app *pocketbase.PocketBase, version services.PricingVersion) (*services.RateBook, error) {
	book, err := services.LoadRateBook(app, version)
	if err == nil {
		return book, nil
	}
	return services.RateBookFor(version)
}

func estimateCommand(app *pocketbase.PocketBase, cfg *config.Config) *cobra.Command {
	var file, version string
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Price a wizard form stored as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read form: %w", err)
			}
			form, err := services.ParseFormData(data)
			if err != nil {
				return fmt.Errorf("parse form: %w", err)
			}
			if version == "" {
				version = form.String("pricingVersion", string(cfg.PricingVersion()))
			}
			v, err := services.ParsePricingVersion(version)
			if err != nil {
				return err
			}
			book, err := bookFor(app, v)
			if err != nil {
				return err
			}
			printCalculation(cmd.OutOrStdout(), services.Calculate(book, cfg.Pricing.Fees, form), cfg.Pricing.Fees)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "wizard form as a JSON object")
	cmd.Flags().StringVar(&version, "version", "", "pricing version (wizard or catalog)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func printCalculation(out io.Writer, c services.Calculation, schedule services.FeeSchedule) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Tarifs\t%s\t\n", c.PricingVersion)
	fmt.Fprintf(w, "Base\t%s\t\n", services.FormatEUR(c.Estimation.Base))
	fmt.Fprintf(w, "Cuisine\t%s\t\n", services.FormatEUR(c.Estimation.Kitchen))
	fmt.Fprintf(w, "Salles de bain\t%s\t\n", services.FormatEUR(c.Estimation.Bathroom))
	fmt.Fprintf(w, "Menuiseries\t%s\t\n", services.FormatEUR(c.Estimation.Windows))
	fmt.Fprintf(w, "Solutions écologiques\t%s\t\n", services.FormatEUR(c.Estimation.Eco))
	fmt.Fprintf(w, "Estimation\t%s\t\n", services.FormatEUR(c.Estimation.Total))
	fmt.Fprintln(w, "\t\t")
	fmt.Fprintf(w, "Lots\t\t\n")
	fmt.Fprintf(w, "Structure\t%s\t\n", services.FormatEUR(c.Breakdown.Structural))
	fmt.Fprintf(w, "Technique\t%s\t\n", services.FormatEUR(c.Breakdown.Technical))
	fmt.Fprintf(w, "Finitions\t%s\t\n", services.FormatEUR(c.Breakdown.Finishing))
	fmt.Fprintf(w, "Extérieurs\t%s\t\n", services.FormatEUR(c.Breakdown.External))
	fmt.Fprintf(w, "Budget total\t%s\t\n", services.FormatEUR(c.Breakdown.Total))
	fmt.Fprintln(w, "\t\t")
	fmt.Fprintf(w, "Honoraires et taxes\t\t\n")
	for _, l := range c.Fees.Lines(schedule) {
		if l.Amount == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%s)\t%s\t\n", l.Label, services.FormatPercent(l.Percentage), services.FormatEUR(l.Amount))
	}
	fmt.Fprintf(w, "Total honoraires\t%s\t\n", services.FormatEUR(c.Fees.Total))
	w.Flush()
	fmt.Fprintf(out, "\n%s\n", c.EstimationWords)
}

func ratesCommand(app *pocketbase.PocketBase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Inspect the rate books",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "diff",
		Short: "List the rates that differ between the wizard and catalog books",
		RunE: func(cmd *cobra.Command, args []string) error {
			wizard, err := bookFor(app, services.PricingWizard)
			if err != nil {
				return err
			}
			catalog, err := bookFor(app, services.PricingCatalog)
			if err != nil {
				return err
			}
			printRateDiff(cmd.OutOrStdout(), services.CompareRateBooks(wizard, catalog))
			return nil
		},
	})
	return cmd
}

func printRateDiff(out io.Writer, diffs []services.RateDiscrepancy) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTYPE\tWIZARD\tCATALOG")
	cell := func(v float64, missing bool) string {
		if missing {
			return "-"
		}
		return services.FormatEUR(v)
	}
	for _, d := range diffs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Category, d.Type, cell(d.Left, d.MissingLeft), cell(d.Right, d.MissingRight))
	}
	w.Flush()

	fmt.Fprintln(out)
	for _, inc := range services.KnownInconsistencies() {
		fmt.Fprintf(out, "- %s: %s\n", inc.Key, inc.Description)
	}
}

func configCommand(cfg *config.Config, configPath string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the estimator configuration",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := cfg.Save(configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
