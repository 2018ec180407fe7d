// Package compute provides evaluator collaborators for the worker loop:
// a small in-process Lennard-Jones reference and a wrapper that shells
// out to an external simulation binary. Both are opaque to the coupling
// protocol; the worker only sees the Evaluator contract.
package compute
