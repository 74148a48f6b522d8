// Package pipeline drives a run through the six stages in order, one stage
// at a time, persisting the run after every transition so an interrupted
// invocation can resume from committed prior-stage artifacts. A
// per-invocation file lock keeps concurrent marquee processes from driving
// runs at the same time.
package pipeline
