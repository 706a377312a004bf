// Package generate drives generation of one topic across an ordered catalog of
// backends.
//
// A Driver walks the catalog for a single request: a rate-limited backend is
// retried exactly once after a fixed backoff, any other failure cascades to the
// next backend immediately. A Planner composes one Driver run per period of a
// lesson, carrying the last successful backend forward as a hint and stopping
// at the first period that exhausts the catalog.
//
// Everything here is strictly sequential. The only deliberate waits are the
// retry backoff and the pause between periods.
package generate
