// Package insights implements the final pipeline stage: descriptive
// aggregation of the evaluation output by categorical groupings such as
// genre, release window, and budget tier. It is read-only over its inputs
// and applies standard aggregate arithmetic only.
package insights
