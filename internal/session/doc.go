// Package session owns the coupling exchange state machine.
//
// Ownership boundary:
// - handshake and protocol-name validation
// - strict request/response alternation (one outstanding request)
// - termination handshake and abnormal-exit classification
//
// A session exclusively owns its transport handle. Every state transition
// is driven by the single goroutine using the session; the package adds no
// internal locking because the protocol has no intra-process concurrency.
package session
