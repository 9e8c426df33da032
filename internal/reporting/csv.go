package reporting

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/bxrne/nbodysim/internal/runner"
)

// WriteCSV writes a run's diagnostic samples as the DIAG CSV stream: one
// line per sample, each starting with the literal field "DIAG" followed
// by step index, simulated seconds, timestep, kinetic energy, potential
// energy, total energy, fractional drift, and entity count.
func WriteCSV(path string, samples []runner.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("reporting: failed to create csv file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, s := range samples {
		row := []string{
			"DIAG",
			fmt.Sprintf("%d", s.Step),
			fmt.Sprintf("%.10e", s.SimulatedSeconds),
			fmt.Sprintf("%.10e", s.Timestep),
			fmt.Sprintf("%.10e", s.KineticEnergy),
			fmt.Sprintf("%.10e", s.PotentialEnergy),
			fmt.Sprintf("%.10e", s.TotalEnergy),
			fmt.Sprintf("%.10e", s.FractionalDrift),
			fmt.Sprintf("%d", s.EntityCount),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("reporting: failed to write csv row for step %d: %w", s.Step, err)
		}
	}
	return nil
}
