package models

import (
	"fmt"

	"scanoutliers/pkg/metrics"
	"scanoutliers/pkg/pipeline"
	"scanoutliers/pkg/stats"
)

// Row is one measure of a scan report
type Row struct {
	// Index is the position of the measure in the sequence
	Index int

	// Label names the frame (or frame transition) the measure describes
	Label string

	// Value is the measure itself
	Value float64

	// Outlier is true when the measure falls outside the IQR band
	Outlier bool
}

// Report summarises the outlier screening of one image
type Report struct {
	// Source is the path of the screened image
	Source string

	// Metric is the metric the measures come from
	Metric metrics.Kind

	// Proportion is the IQR multiplier used for the thresholds
	Proportion float64

	// Bounds is the inclusion band
	Bounds stats.Bounds

	// Rows holds one entry per measure, in sequence order
	Rows []Row
}

// NewReport builds a report from a pipeline result
func NewReport(source string, proportion float64, result *pipeline.Result) *Report {
	r := &Report{
		Source:     source,
		Metric:     result.Metric,
		Proportion: proportion,
		Bounds:     result.Bounds,
		Rows:       make([]Row, len(result.Measures)),
	}

	for i, v := range result.Measures {
		r.Rows[i] = Row{
			Index:   i,
			Label:   frameLabel(result.Metric, i),
			Value:   v,
			Outlier: result.Mask[i],
		}
	}
	return r
}

// Outliers returns the rows flagged as outliers
func (r *Report) Outliers() []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Outlier {
			out = append(out, row)
		}
	}
	return out
}

// frameLabel describes measure i: dvars measures sit between two frames
func frameLabel(kind metrics.Kind, i int) string {
	if kind == metrics.KindDVARS {
		return fmt.Sprintf("%d->%d", i, i+1)
	}
	return fmt.Sprintf("%d", i)
}
