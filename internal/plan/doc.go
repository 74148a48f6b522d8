// Package plan loads and validates the per-dataset pipeline definition.
//
// A plan is the YAML document every stage reads its policies from: required
// columns, cleaning strategies, derived features, encodings, candidate
// models, and the selection metric with its explicit min/max mode. Decoding
// is strict — unknown keys are rejected so a typo cannot silently disable a
// policy. Validation failures carry the configuration error marker, which
// routes the run to review instead of a blind retry.
package plan
