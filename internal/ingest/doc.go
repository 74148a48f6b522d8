// Package ingest implements the first pipeline stage: reading the raw CSV,
// enforcing the plan's bad-row policy, verifying the schema, and recording
// the column profile and file fingerprint on the run.
package ingest
