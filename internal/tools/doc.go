// Package tools provides reusable runtime helpers shared across the
// coupling worker.
//
// Ownership boundary:
// - command execution helpers
package tools
