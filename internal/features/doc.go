// Package features implements the feature engineering stage: derived
// columns, categorical encodings, scaling, and selection, fitted from a
// cleaned dataset per the pipeline plan. Every fitted parameter is recorded
// in the metadata artifact so the transform is deterministic and
// reproducible given the same input order and configuration.
package features
