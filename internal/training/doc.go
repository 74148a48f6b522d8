// Package training implements the model training stage: a seeded
// train/holdout split, k-fold cross-validation of every candidate grid
// point, selection by the plan's declared metric and comparison mode, and
// persistence of the refit winner. Candidates that fail to fit are excluded
// from selection and reported; the stage fails only when none survive.
package training
