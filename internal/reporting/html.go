package reporting

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bxrne/nbodysim/internal/runner"
)

var titleCaser = cases.Title(language.English)

// ReportPage returns a templ.Component rendering a run's diagnostic
// samples as a standalone HTML page. It is handwritten rather than
// templ-generated, but implements the same Component contract the
// generated pages package would.
func ReportPage(title string, samples []runner.Sample) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		heading := titleCaser.String(title)

		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
		fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(heading))
		b.WriteString("<style>table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>")
		b.WriteString("</head><body>")
		fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(heading))

		if len(samples) == 0 {
			b.WriteString("<p>No diagnostic samples were collected for this run.</p>")
		} else {
			b.WriteString("<table><thead><tr><th>Step</th><th>Sim. Seconds</th><th>Kinetic Energy</th><th>Total Energy</th><th>Drift</th><th>Entities</th></tr></thead><tbody>")
			for _, s := range samples {
				fmt.Fprintf(&b, "<tr><td>%d</td><td>%.6e</td><td>%.6e</td><td>%.6e</td><td>%.3e</td><td>%d</td></tr>",
					s.Step, s.SimulatedSeconds, s.KineticEnergy, s.TotalEnergy, s.FractionalDrift, s.EntityCount)
			}
			b.WriteString("</tbody></table>")
		}

		b.WriteString("</body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// RenderReportToFile renders a templ.Component to the given path,
// creating parent directories as needed.
func RenderReportToFile(component templ.Component, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("reporting: failed to create output directory for %s: %w", outputPath, err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("reporting: failed to create html report %s: %w", outputPath, err)
	}
	defer f.Close()

	if err := component.Render(context.Background(), f); err != nil {
		return fmt.Errorf("reporting: failed to render html report %s: %w", outputPath, err)
	}
	return nil
}
