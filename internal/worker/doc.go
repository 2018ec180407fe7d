// Package worker owns the computational-server side of a coupling run.
//
// Ownership boundary:
// - the serve loop: decode step requests, invoke the evaluator, reply
// - computation-failure policy (negative-ID report vs session abort)
// - the optional HTTP status/metrics surface
//
// The evaluator is an injected, opaque, blocking collaborator. A hung
// evaluation hangs the session; supervision is external by design.
package worker
