// Command marquee is the operator CLI for the movie revenue modeling
// pipeline: acquire datasets, register runs, drive them through the stages,
// and inspect artifacts and findings.
package main
