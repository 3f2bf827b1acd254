// Package pipeline flags outlier frames in a 4D scan.
//
// The pipeline has two steps:
//  1. Reduce the series to a measure sequence with a metric (dvars or SPM global)
//  2. Classify the measures with the interquartile range rule
//
// Run works on a series already in memory; RunFile first obtains it from a
// Loader such as nifti.Load. Both return the measures together with the
// outlier mask so callers can inspect why a frame was flagged.
package pipeline
