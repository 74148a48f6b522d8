// Package stats wraps the gonum statistics primitives behind the small
// surface the pipeline needs: means, quantiles with a fixed interpolation
// convention, correlation, and the per-group Summary used by reports.
package stats
