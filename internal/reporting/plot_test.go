package reporting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bxrne/nbodysim/internal/reporting"
)

// TEST: GIVEN a sample series WHEN GenerateEnergyPlot is called THEN it writes a non-empty PNG file
func TestGenerateEnergyPlot_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "energy.png")

	err := reporting.GenerateEnergyPlot(path, sampleSeries())
	assert.NoError(t, err)

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

// TEST: GIVEN no samples WHEN GenerateEnergyPlot is called THEN it returns an error instead of writing an empty chart
func TestGenerateEnergyPlot_NoSamples_ReturnsError(t *testing.T) {
	err := reporting.GenerateEnergyPlot(filepath.Join(t.TempDir(), "energy.png"), nil)
	assert.Error(t, err)
}
