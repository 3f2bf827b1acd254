package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scanoutliers/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	outlierStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// renderReport prints the per-frame table and a summary line
func renderReport(w io.Writer, r *models.Report) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s: %s", r.Source, r.Metric)))
	fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf(
		"Q1 %.4f  Q3 %.4f  IQR %.4f  band [%.4f, %.4f]  proportion %g",
		r.Bounds.Q1, r.Bounds.Q3, r.Bounds.IQR, r.Bounds.Lower, r.Bounds.Upper, r.Proportion)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%-10s %14s", "frame", string(r.Metric))))
	for _, row := range r.Rows {
		line := fmt.Sprintf("%-10s %14.4f", row.Label, row.Value)
		if row.Outlier {
			line = outlierStyle.Render(line + "  outlier")
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	outliers := r.Outliers()
	if len(outliers) == 0 {
		fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("No outliers in %d measures", len(r.Rows))))
		return
	}

	labels := make([]string, len(outliers))
	for i, row := range outliers {
		labels[i] = row.Label
	}
	fmt.Fprintln(w, outlierStyle.Render(fmt.Sprintf("%d of %d measures are outliers: %s",
		len(outliers), len(r.Rows), strings.Join(labels, ", "))))
}
