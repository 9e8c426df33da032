package reporting

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/bxrne/nbodysim/internal/runner"
	"github.com/bxrne/nbodysim/pkg/pool"
)

// WriteTable renders a run's diagnostic samples as a console table.
func WriteTable(w io.Writer, samples []runner.Sample) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Step", "Sim. Seconds", "Kinetic Energy", "Total Energy", "Drift", "Entities"})

	for _, s := range samples {
		if err := table.Append([]string{
			fmt.Sprintf("%d", s.Step),
			fmt.Sprintf("%.6e", s.SimulatedSeconds),
			fmt.Sprintf("%.6e", s.KineticEnergy),
			fmt.Sprintf("%.6e", s.TotalEnergy),
			fmt.Sprintf("%.3e", s.FractionalDrift),
			fmt.Sprintf("%d", s.EntityCount),
		}); err != nil {
			return fmt.Errorf("reporting: failed to append table row: %w", err)
		}
	}
	return table.Render()
}

// WritePoolStats renders an integrator's scratch buffer pool statistics
// as a console table, one row per pool (position, velocity, acceleration
// for RK4). No-op if stats is empty, which is the case for integrators
// that don't use pooled buffers.
func WritePoolStats(w io.Writer, stats []pool.Stats) error {
	if len(stats) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Pool", "Hits", "Misses", "Hit Rate", "Peak Size"})

	names := []string{"position", "velocity", "acceleration"}
	for i, s := range stats {
		name := fmt.Sprintf("pool[%d]", i)
		if i < len(names) {
			name = names[i]
		}
		if err := table.Append([]string{
			name,
			fmt.Sprintf("%d", s.Hits),
			fmt.Sprintf("%d", s.Misses),
			fmt.Sprintf("%.1f%%", s.HitRate()),
			fmt.Sprintf("%d", s.PeakSize),
		}); err != nil {
			return fmt.Errorf("reporting: failed to append pool stats row: %w", err)
		}
	}
	return table.Render()
}
