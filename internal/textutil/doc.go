// Package textutil sanitizes dataset labels into workspace directory
// segments.
package textutil
