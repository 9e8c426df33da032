package reporting

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/bxrne/nbodysim/internal/runner"
)

// GenerateEnergyPlot renders kinetic and total energy versus simulation
// step to a PNG chart, the drift-visibility check spec.md's
// energy-stability invariant calls for: a symplectic integrator's total
// energy line should stay visually flat, while its kinetic energy line
// may oscillate freely.
func GenerateEnergyPlot(path string, samples []runner.Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("reporting: cannot generate energy plot, no samples")
	}

	kinetic := make(plotter.XYs, len(samples))
	total := make(plotter.XYs, len(samples))
	for i, s := range samples {
		kinetic[i].X = float64(s.Step)
		kinetic[i].Y = s.KineticEnergy
		total[i].X = float64(s.Step)
		total[i].Y = s.TotalEnergy
	}

	p := plot.New()
	p.Title.Text = "Energy vs. Step"
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Energy (J)"

	kineticLine, err := plotter.NewLine(kinetic)
	if err != nil {
		return fmt.Errorf("reporting: failed to create kinetic energy plotter: %w", err)
	}
	kineticLine.Color = color.RGBA{R: 255, A: 255}

	totalLine, err := plotter.NewLine(total)
	if err != nil {
		return fmt.Errorf("reporting: failed to create total energy plotter: %w", err)
	}
	totalLine.Color = color.RGBA{B: 255, A: 255}

	p.Add(kineticLine, totalLine)
	p.Legend.Add("kinetic", kineticLine)
	p.Legend.Add("total", totalLine)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("reporting: failed to save energy plot %s: %w", path, err)
	}
	return nil
}
