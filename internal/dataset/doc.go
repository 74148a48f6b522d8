// Package dataset provides the tabular data model shared by every pipeline
// stage: a raw-string Table, the CSV codec, type inference with the shared
// missing-value sentinels, content fingerprinting, and the ingest profile.
//
// Cells are kept as raw strings end to end. Stages that need numbers parse on
// demand, which keeps CSV round-trips exact and makes idempotence arguments
// about the cleaning stage straightforward.
package dataset
