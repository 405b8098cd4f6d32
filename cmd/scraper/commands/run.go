package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maltedev/price-registry-scraper/internal/app"
	"github.com/maltedev/price-registry-scraper/internal/config"
	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/internal/run"
)

type runFlags struct {
	view      string
	period    string
	year      int
	region    string
	subRegion string
	headless  bool
	outputDir string
	out       string
}

var runOpts runFlags

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpts.view, "view", "monthly", "View type: monthly or quarterly.")
	f.StringVar(&runOpts.period, "period", "", "Month name (Januar..Decembar) or quarter (Q1..Q4).")
	f.IntVar(&runOpts.year, "year", time.Now().Year(), "Year, 2014 or later.")
	f.StringVar(&runOpts.region, "region", "", "Region, e.g. Beograd. Empty leaves the region filter alone.")
	f.StringVar(&runOpts.subRegion, "sub-region", models.SubRegionAll, "Sub-region, or Sve for all.")
	f.BoolVar(&runOpts.headless, "headless", false, "Run the browser without a window.")
	f.StringVar(&runOpts.outputDir, "output-dir", "", "Directory for the generated spreadsheet.")
	f.StringVar(&runOpts.out, "out", "", "Exact output file; overrides --output-dir.")
	_ = runCmd.MarkFlagRequired("period")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run --period <period> [--view monthly|quarterly] [--year <year>] [--region <region>]",
	Short: "Applies the filters, scrapes every result page and exports the rows.",
	Long: `Applies the filters, scrapes every result page and exports the rows.

The first interrupt asks the run to stop; it finishes the current step and
discards the results. A second interrupt aborts immediately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("headless") {
			cfg.Browser.Headless = runOpts.headless
		}
		if runOpts.outputDir != "" {
			cfg.Output.Dir = runOpts.outputDir
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		view, err := models.ParseViewType(runOpts.view)
		if err != nil {
			return err
		}
		sel, err := models.NewFilterSelection(view, runOpts.period, runOpts.year, runOpts.region, runOpts.subRegion, time.Now())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		stopSignals := make(chan os.Signal, 2)
		signal.Notify(stopSignals, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(stopSignals)
		go func() {
			interrupts := 0
			for {
				select {
				case <-ctx.Done():
					return
				case <-stopSignals:
					interrupts++
					if interrupts == 1 {
						a.Controller.RequestStop()
						continue
					}
					a.Logger.Warn("second interrupt, aborting")
					cancel()
					return
				}
			}
		}()

		out := a.Controller.Run(ctx, run.Request{
			Selection: sel,
			Headless:  cfg.Browser.Headless,
			Dest:      runOpts.out,
		})

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		if out.Status == models.OutcomeFailed {
			return fmt.Errorf("run failed: %w", out.Err)
		}
		return nil
	},
}
