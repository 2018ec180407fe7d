// Package transport owns byte-channel delivery between the two coupling
// endpoints.
//
// Ownership boundary:
// - socket mode: length-prefixed framing over one connected TCP pair
// - file mode: one file per direction, atomic-rename turn signaling
// - open/dial/bind failure and peer-loss classification
//
// A transport handle is exclusively owned by its session. Neither mode is
// safe for concurrent multi-writer use; the strict request/response
// alternation enforced one layer up is what makes the file mode's
// turn-taking correct without locks.
package transport
