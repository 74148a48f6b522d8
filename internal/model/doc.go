// Package model implements the candidate regressor families (OLS, ridge,
// kNN), the evaluation metrics, and blob persistence for trained models.
//
// Matrix work goes through gonum; the normal-equations solve surfaces
// singular systems as fit errors so the training stage can exclude a
// candidate instead of aborting the run.
package model
