package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zerodha/logf"

	"github.com/bxrne/nbodysim/internal/runner"
)

// Bundle is the set of artifacts produced for a completed run.
type Bundle struct {
	CSVPath  string
	HTMLPath string
	PlotPath string
}

// GenerateBundle writes the DIAG CSV stream, an HTML summary page, and
// the kinetic/total energy chart for a run's samples into outputDir.
func GenerateBundle(log logf.Logger, outputDir string, samples []runner.Sample, title string) (Bundle, error) {
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return Bundle{}, fmt.Errorf("reporting: failed to create output directory %s: %w", outputDir, err)
	}

	bundle := Bundle{
		CSVPath:  filepath.Join(outputDir, "samples.csv"),
		HTMLPath: filepath.Join(outputDir, "report.html"),
		PlotPath: filepath.Join(outputDir, "energy.png"),
	}

	if err := WriteCSV(bundle.CSVPath, samples); err != nil {
		return bundle, err
	}
	log.Info("wrote csv report", "path", bundle.CSVPath)

	if err := RenderReportToFile(ReportPage(title, samples), bundle.HTMLPath); err != nil {
		return bundle, err
	}
	log.Info("wrote html report", "path", bundle.HTMLPath)

	if len(samples) > 0 {
		if err := GenerateEnergyPlot(bundle.PlotPath, samples); err != nil {
			return bundle, err
		}
		log.Info("wrote energy plot", "path", bundle.PlotPath)
	} else {
		log.Warn("skipping energy plot, no samples collected")
	}

	return bundle, nil
}
