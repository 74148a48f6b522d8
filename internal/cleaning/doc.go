// Package cleaning implements the second pipeline stage. It drops rows
// missing the target or id, applies the plan's missing-value, duplicate, and
// outlier policies, verifies the cleaned-dataset invariants, and writes
// cleaned.csv. Applying the stage to its own output changes nothing.
package cleaning
