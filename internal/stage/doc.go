// Package stage defines the contract between the pipeline runner and the
// six stage implementations, plus the input-artifact helpers they share.
package stage
