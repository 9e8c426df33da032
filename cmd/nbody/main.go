// Command nbody runs a single N-body simulation from config.yaml and
// writes its diagnostic report to the configured output directory.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bxrne/nbodysim/internal/config"
	"github.com/bxrne/nbodysim/internal/logger"
	"github.com/bxrne/nbodysim/internal/reporting"
	"github.com/bxrne/nbodysim/internal/runner"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "nbody: failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.GetLogger(cfg.Logging.Level)

	r, err := runner.New(cfg, *log)
	if err != nil {
		log.Fatal("failed to build runner", "error", err)
	}

	log.Info("starting run", "scenario", cfg.Run.Scenario, "integrator", cfg.Run.Integrator, "steps", cfg.Run.Steps)

	samples, err := r.Run(context.Background())
	if err != nil {
		log.Fatal("run failed", "error", err)
	}

	if err := reporting.WriteTable(os.Stdout, samples); err != nil {
		log.Error("failed to print diagnostic table", "error", err)
	}

	if err := reporting.WritePoolStats(os.Stdout, r.PoolStats()); err != nil {
		log.Error("failed to print pool stats table", "error", err)
	}

	title := fmt.Sprintf("%s (%s)", cfg.Run.Scenario, cfg.Run.Integrator)
	bundle, err := reporting.GenerateBundle(*log, cfg.Report.OutputDir, samples, title)
	if err != nil {
		log.Fatal("failed to generate report bundle", "error", err)
	}

	log.Info("run complete", "csv", bundle.CSVPath, "html", bundle.HTMLPath, "plot", bundle.PlotPath)
}
